package process_blob

import (
	"fmt"
	"sort"
	"sync"

	"procmem/process"
	"procmem/process/memory_map"
)

// ProcessDump implements process.Process over a set of in-memory regions. It
// stands in for a live target wherever a real process is not available.
type ProcessDump struct {
	mu      sync.Mutex
	pid     process.ProcessID
	size    process.PointerSize
	regions []*ProcessBlob // sorted by base, non-overlapping
	closed  bool
}

var _ process.Process = (*ProcessDump)(nil)

// NewProcessDump creates an empty dump that reports pid and pointer width size
func NewProcessDump(pid process.ProcessID, size process.PointerSize) *ProcessDump {
	return &ProcessDump{
		pid:  pid,
		size: size,
	}
}

// AddRegion maps data at base. Regions may touch but not overlap; a transfer
// may run across touching regions the way it runs across adjacent mappings of
// a live process.
func (p *ProcessDump) AddRegion(base process.ProcessMemoryAddress, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return process.ErrHandleClosed
	}
	if len(data) == 0 {
		return fmt.Errorf("empty region at %s", base.ToString())
	}

	blob := NewProcessBlob(base, data)
	i := sort.Search(len(p.regions), func(i int) bool {
		return p.regions[i].Base() >= base
	})
	if i > 0 && p.regions[i-1].End() > base {
		return fmt.Errorf("region %s overlaps region at %s", base.ToString(), p.regions[i-1].Base().ToString())
	}
	if i < len(p.regions) && blob.End() > p.regions[i].Base() {
		return fmt.Errorf("region %s overlaps region at %s", base.ToString(), p.regions[i].Base().ToString())
	}

	p.regions = append(p.regions, nil)
	copy(p.regions[i+1:], p.regions[i:])
	p.regions[i] = blob
	return nil
}

// Region returns the region containing addr, or nil.
func (p *ProcessDump) Region(addr process.ProcessMemoryAddress) *ProcessBlob {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.regionLocked(addr)
}

func (p *ProcessDump) regionLocked(addr process.ProcessMemoryAddress) *ProcessBlob {
	if i := p.indexLocked(addr); i >= 0 {
		return p.regions[i]
	}
	return nil
}

// indexLocked returns the index of the region containing addr, or -1.
func (p *ProcessDump) indexLocked(addr process.ProcessMemoryAddress) int {
	item := memory_map.FindRegion(uint64(addr), p.memoryMapLocked())
	if item == nil {
		return -1
	}
	return sort.Search(len(p.regions), func(i int) bool {
		return uint64(p.regions[i].Base()) >= item.Address
	})
}

// spanLocked returns the slices covering [addr, addr+size), following touching
// regions. An unmapped start is ErrAddressInvalid; a run that ends at a gap is
// ErrShortTransfer.
func (p *ProcessDump) spanLocked(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([][]byte, error) {
	i := p.indexLocked(addr)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s not mapped", process.ErrAddressInvalid, addr.ToString())
	}

	var parts [][]byte
	remaining := uint64(size)
	cur := addr
	for ; i < len(p.regions) && remaining > 0; i++ {
		r := p.regions[i]
		if len(parts) > 0 && r.Base() != cur {
			break
		}
		offset := uint64(cur - r.Base())
		n := min(uint64(len(r.Data()))-offset, remaining)
		parts = append(parts, r.Data()[offset:offset+n])
		remaining -= n
		cur = r.End()
	}

	if remaining > 0 {
		return nil, fmt.Errorf("%w: %d of %d bytes available at %s", process.ErrShortTransfer, uint64(size)-remaining, size, addr.ToString())
	}
	return parts, nil
}

// GetMemoryMap describes the dump's regions as memory map items.
func (p *ProcessDump) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, process.ErrHandleClosed
	}
	return p.memoryMapLocked(), nil
}

func (p *ProcessDump) memoryMapLocked() []memory_map.MemoryMapItem {
	items := make([]memory_map.MemoryMapItem, len(p.regions))
	for i, r := range p.regions {
		items[i] = memory_map.MemoryMapItem{
			Address: uint64(r.Base()),
			Size:    uint(r.Size()),
			Perms:   "rw-p",
		}
	}
	return items
}

func (p *ProcessDump) GetPID() process.ProcessID {
	return p.pid
}

func (p *ProcessDump) PointerSize() process.PointerSize {
	return p.size
}

func (p *ProcessDump) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, process.ErrHandleClosed
	}
	if size == 0 {
		return []byte{}, nil
	}

	parts, err := p.spanLocked(addr, size)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, size)
	for _, part := range parts {
		out = append(out, part...)
	}
	return out, nil
}

func (p *ProcessDump) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return process.ErrHandleClosed
	}
	if len(data) == 0 {
		return nil
	}

	// nothing is written unless the whole range is mapped
	parts, err := p.spanLocked(addr, process.ProcessMemorySize(len(data)))
	if err != nil {
		return err
	}
	for _, part := range parts {
		data = data[copy(part, data):]
	}
	return nil
}

// Close drops the regions. A second Close returns process.ErrHandleClosed.
func (p *ProcessDump) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return process.ErrHandleClosed
	}
	p.closed = true
	p.regions = nil
	return nil
}
