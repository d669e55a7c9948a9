package process

// Locator resolves human-readable identifiers to processes, windows and
// modules. Every enumeration is a one-shot snapshot taken at call time.
//
// Name matches are exact and case-sensitive. When several entries match, the
// first one in host enumeration order wins; that order is not guaranteed to be
// stable between calls.
type Locator interface {
	// FindWindow finds a top-level window whose title matches exactly
	FindWindow(title string) (WindowHandle, error)

	// PIDFromWindow returns the process owning a live window
	PIDFromWindow(hwnd WindowHandle) (ProcessID, error)

	// PIDFromImageName returns the first process whose executable file name is
	// name. The calling process is never returned, so a tool looking for
	// another copy of itself does not find itself.
	PIDFromImageName(name string) (ProcessID, error)

	// OpenProcess opens pid with full access for memory operations
	OpenProcess(pid ProcessID, size PointerSize) (Process, error)

	// ModuleBase returns the load address of the first module named name
	ModuleBase(pid ProcessID, name string) (ProcessMemoryAddress, error)

	// Modules lists the modules loaded into pid
	Modules(pid ProcessID) ([]ModuleInfo, error)
}
