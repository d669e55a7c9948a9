//go:build windows

package memory_map

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"procmem/process"
)

// WindowsMemoryMap implements MemoryMap for Windows using VirtualQueryEx
type WindowsMemoryMap struct{}

// NewWindowsMemoryMap creates a new WindowsMemoryMap instance
func NewWindowsMemoryMap() *WindowsMemoryMap {
	return &WindowsMemoryMap{}
}

// ReadMemoryMap lists the committed regions of a process
func (w *WindowsMemoryMap) ReadMemoryMap(pid process.ProcessID) ([]MemoryMapItem, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_INFORMATION, false, uint32(pid))
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(h)

	return ReadMemoryMapHandle(h), nil
}

// ReadMemoryMapHandle walks the address space of an open process handle.
func ReadMemoryMapHandle(h windows.Handle) []MemoryMapItem {
	var memoryMap []MemoryMapItem
	var addr uintptr
	for {
		var mbi windows.MemoryBasicInformation
		if err := windows.VirtualQueryEx(h, addr, &mbi, unsafe.Sizeof(mbi)); err != nil {
			break
		}
		if mbi.State == windows.MEM_COMMIT {
			memoryMap = append(memoryMap, itemFromMBI(mbi))
		}

		next := mbi.BaseAddress + mbi.RegionSize
		if next <= addr {
			break
		}
		addr = next
	}
	return memoryMap
}

// QueryRegion returns the committed region containing addr, if any.
func QueryRegion(h windows.Handle, addr uintptr) (MemoryMapItem, bool) {
	var mbi windows.MemoryBasicInformation
	if err := windows.VirtualQueryEx(h, addr, &mbi, unsafe.Sizeof(mbi)); err != nil {
		return MemoryMapItem{}, false
	}
	if mbi.State != windows.MEM_COMMIT {
		return MemoryMapItem{}, false
	}
	return itemFromMBI(mbi), true
}

func itemFromMBI(mbi windows.MemoryBasicInformation) MemoryMapItem {
	return MemoryMapItem{
		Address: uint64(mbi.BaseAddress),
		Size:    uint(mbi.RegionSize),
		Perms:   protectPerms(mbi.Protect),
	}
}

// protectPerms renders a PAGE_* protection as a maps-style permission string.
func protectPerms(protect uint32) string {
	if protect&windows.PAGE_GUARD != 0 || protect&windows.PAGE_NOACCESS != 0 {
		return "---p"
	}

	switch protect &^ (windows.PAGE_NOCACHE | windows.PAGE_WRITECOMBINE) {
	case windows.PAGE_READONLY:
		return "r--p"
	case windows.PAGE_READWRITE, windows.PAGE_WRITECOPY:
		return "rw-p"
	case windows.PAGE_EXECUTE:
		return "--xp"
	case windows.PAGE_EXECUTE_READ:
		return "r-xp"
	case windows.PAGE_EXECUTE_READWRITE, windows.PAGE_EXECUTE_WRITECOPY:
		return "rwxp"
	default:
		return "---p"
	}
}
