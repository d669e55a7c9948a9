package process

import "fmt"

// ProcessID represents a unique identifier for a process
type ProcessID int

// WindowHandle is an opaque top-level window handle (HWND on Windows)
type WindowHandle uintptr

func (h WindowHandle) ToString() string {
	return fmt.Sprintf("0x%X", uintptr(h))
}

// ProcessInfo contains basic information about a process
type ProcessInfo struct {
	PID     ProcessID // Process ID
	PPID    ProcessID // Parent Process ID
	ExeFile string    // Executable file name, no directory
}

// ModuleInfo describes one image mapped into a process, captured during a
// single enumeration.
type ModuleInfo struct {
	Name string               // Module file name, e.g. "mono-2.0-bdwgc.dll"
	Path string               // Full path when the host reports one
	Base ProcessMemoryAddress // Load address
	Size ProcessMemorySize    // Size of the mapped image
}

func (m ModuleInfo) String() string {
	return fmt.Sprintf("%s @ %s (%d bytes)", m.Name, m.Base.ToString(), m.Size)
}

// Contains reports whether addr falls inside the module image.
func (m ModuleInfo) Contains(addr ProcessMemoryAddress) bool {
	return addr >= m.Base && addr < m.Base+ProcessMemoryAddress(m.Size)
}
