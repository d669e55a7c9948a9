package process

// Memory is the raw transfer primitive every backend implements.
type Memory interface {
	// ReadMemory reads exactly size bytes at addr. A partial read is an error.
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)

	// WriteMemory writes all of data at addr. A partial write is an error.
	WriteMemory(addr ProcessMemoryAddress, data []byte) error
}

// Process is an owned handle on one target process with read/write access.
//
// Close releases the handle exactly once; every later call, including a
// second Close, returns ErrHandleClosed.
type Process interface {
	Memory

	// GetPID returns the process ID
	GetPID() ProcessID

	// PointerSize returns the pointer width the handle was opened with
	PointerSize() PointerSize

	// Close closes the process and releases resources
	Close() error
}
