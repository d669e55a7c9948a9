package memory_map

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"procmem/process"
)

// MemoryMapItem represents a memory region in a process's address space
type MemoryMapItem struct {
	Address  uint64 // The starting address of the memory region
	Size     uint   // The size of the memory region in bytes
	Perms    string // Permissions (e.g., "r-xp" for read, execute, private)
	Offset   uint64 // File offset of the mapping, zero for anonymous regions
	Pathname string // Backing file or pseudo name such as "[heap]", may be empty
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s, Path: %s", mmItem.Address, mmItem.Size, mmItem.Perms, mmItem.Pathname)
}

func (mmItem MemoryMapItem) End() uint64 {
	return mmItem.Address + uint64(mmItem.Size)
}

func (mmItem MemoryMapItem) IsReadable() bool {
	return len(mmItem.Perms) > 0 && mmItem.Perms[0] == 'r'
}

func (mmItem MemoryMapItem) IsWritable() bool {
	return len(mmItem.Perms) > 1 && mmItem.Perms[1] == 'w'
}

// IsFileBacked reports whether the region maps a file on disk.
func (mmItem MemoryMapItem) IsFileBacked() bool {
	return strings.HasPrefix(mmItem.Pathname, "/") || strings.Contains(mmItem.Pathname, `:\`)
}

// MemoryMap defines the interface for operations related to a process's memory map
type MemoryMap interface {
	// ReadMemoryMap reads and parses the memory map for a process
	ReadMemoryMap(pid process.ProcessID) ([]MemoryMapItem, error)
}

// ParseMemoryMap parses text in the /proc/[pid]/maps format. Malformed lines
// are skipped.
//
//	00400000-0040b000 r-xp 00000000 08:01 131 /usr/bin/cat
func ParseMemoryMap(r io.Reader) ([]MemoryMapItem, error) {
	var memoryMap []MemoryMapItem
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		addrRange := strings.Split(fields[0], "-")
		if len(addrRange) != 2 {
			continue
		}

		startAddr, err := strconv.ParseUint(addrRange[0], 16, 64)
		if err != nil {
			continue
		}

		endAddr, err := strconv.ParseUint(addrRange[1], 16, 64)
		if err != nil || endAddr < startAddr {
			continue
		}

		item := MemoryMapItem{
			Address: startAddr,
			Size:    uint(endAddr - startAddr),
			Perms:   fields[1],
		}

		if len(fields) > 2 {
			if off, err := strconv.ParseUint(fields[2], 16, 64); err == nil {
				item.Offset = off
			}
		}

		// pathnames may contain spaces
		if len(fields) > 5 {
			item.Pathname = strings.Join(fields[5:], " ")
		}

		memoryMap = append(memoryMap, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return memoryMap, nil
}

// FindRegion returns the region containing addr. memoryMap must be sorted by
// address with no overlaps.
func FindRegion(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	i := sort.Search(len(memoryMap), func(i int) bool {
		return memoryMap[i].End() > addr
	})
	if i < len(memoryMap) && memoryMap[i].Address <= addr {
		return &memoryMap[i]
	}

	return nil
}

// IsValidAddress checks if an address is within a mapped region
func IsValidAddress(addr uint64, memoryMap []MemoryMapItem) bool {
	return FindRegion(addr, memoryMap) != nil
}

// Modules groups the file-backed regions of a memory map into one module per
// backing file. A module's base is its lowest mapping and its size spans up to
// the end of its highest mapping. Order follows the first appearance of each
// file.
func Modules(memoryMap []MemoryMapItem) []process.ModuleInfo {
	fileBacked := lo.Filter(memoryMap, func(item MemoryMapItem, _ int) bool {
		return item.IsFileBacked()
	})

	byPath := lo.GroupBy(fileBacked, func(item MemoryMapItem) string {
		return item.Pathname
	})

	paths := lo.Uniq(lo.Map(fileBacked, func(item MemoryMapItem, _ int) string {
		return item.Pathname
	}))

	return lo.Map(paths, func(path string, _ int) process.ModuleInfo {
		regions := byPath[path]
		low := lo.MinBy(regions, func(a, b MemoryMapItem) bool { return a.Address < b.Address })
		high := lo.MaxBy(regions, func(a, b MemoryMapItem) bool { return a.End() > b.End() })
		return process.ModuleInfo{
			Name: moduleName(path),
			Path: path,
			Base: process.ProcessMemoryAddress(low.Address),
			Size: process.ProcessMemorySize(high.End() - low.Address),
		}
	})
}

// FindModule returns the first module in memoryMap whose file name is name.
func FindModule(memoryMap []MemoryMapItem, name string) (process.ModuleInfo, bool) {
	return lo.Find(Modules(memoryMap), func(m process.ModuleInfo) bool {
		return m.Name == name
	})
}

func moduleName(path string) string {
	// handle both separators, maps from a wine process carry windows paths
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		return path[i+1:]
	}
	return filepath.Base(path)
}
