package process_blob

import (
	"fmt"

	"procmem/process"
)

// ProcessBlob is one contiguous run of target memory held locally.
type ProcessBlob struct {
	baseaddress process.ProcessMemoryAddress
	data        []byte
}

var _ process.Memory = (*ProcessBlob)(nil)

func NewProcessBlob(baseAddress process.ProcessMemoryAddress, data []byte) *ProcessBlob {
	return &ProcessBlob{
		baseaddress: baseAddress,
		data:        data,
	}
}

func (p *ProcessBlob) Data() []byte {
	return p.data
}

func (p *ProcessBlob) Base() process.ProcessMemoryAddress {
	return p.baseaddress
}

func (p *ProcessBlob) Size() process.ProcessMemorySize {
	return process.ProcessMemorySize(len(p.data))
}

// End returns the first address past the blob.
func (p *ProcessBlob) End() process.ProcessMemoryAddress {
	return p.baseaddress + process.ProcessMemoryAddress(len(p.data))
}

// Contains reports whether addr lies inside the blob.
func (p *ProcessBlob) Contains(addr process.ProcessMemoryAddress) bool {
	return addr >= p.baseaddress && addr < p.End()
}

// span returns the blob slice for [addr, addr+size). A start outside the blob
// is ErrAddressInvalid; a start inside that runs off the end is ErrShortTransfer.
func (p *ProcessBlob) span(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if !p.Contains(addr) {
		return nil, fmt.Errorf("%w: %s outside blob [%s-%s)", process.ErrAddressInvalid, addr.ToString(), p.baseaddress.ToString(), p.End().ToString())
	}

	offset := uint64(addr - p.baseaddress)
	available := uint64(len(p.data)) - offset
	if uint64(size) > available {
		return nil, fmt.Errorf("%w: %d of %d bytes available at %s", process.ErrShortTransfer, available, size, addr.ToString())
	}
	return p.data[offset : offset+uint64(size)], nil
}

// ReadMemory returns a copy of size bytes at addr.
func (p *ProcessBlob) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	src, err := p.span(addr, size)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}

// WriteMemory overwrites the blob in place.
func (p *ProcessBlob) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	dst, err := p.span(addr, process.ProcessMemorySize(len(data)))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

// Snapshot copies size bytes at addr out of m into a new blob.
func Snapshot(m process.Memory, addr process.ProcessMemoryAddress, size process.ProcessMemorySize) (*ProcessBlob, error) {
	data, err := m.ReadMemory(addr, size)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s (%s): %w", addr.ToString(), size.ToString(), err)
	}
	return NewProcessBlob(addr, data), nil
}
