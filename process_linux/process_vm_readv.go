//go:build linux

package process_linux

import (
	"fmt"
	"unsafe"

	"procmem/process"

	"golang.org/x/sys/unix"
)

// process_vm_readv reads len(localBuf) bytes at remoteAddr of pid into
// localBuf and returns how many bytes arrived.
func process_vm_readv(
	pid process.ProcessID,
	localBuf []byte,
	remoteAddr process.ProcessMemoryAddress,
) (int, unix.Errno) {
	localIov := unix.Iovec{
		Base: &localBuf[0],
		Len:  uint64(len(localBuf)),
	}

	remoteIov := unix.RemoteIovec{
		Base: uintptr(remoteAddr),
		Len:  len(localBuf),
	}

	n, _, errno := unix.Syscall6(
		unix.SYS_PROCESS_VM_READV,
		uintptr(pid),                        // Remote process PID
		uintptr(unsafe.Pointer(&localIov)),  // Local iovec
		uintptr(1),                          // Number of local iovecs
		uintptr(unsafe.Pointer(&remoteIov)), // Remote iovec
		uintptr(1),                          // Number of remote iovecs
		uintptr(0),                          // Flags (reserved for future use)
	)

	return int(n), errno
}

// ReadMemory reads exactly size bytes at addr. A read that starts in an
// unmapped page fails with ErrAddressInvalid; one that runs into an unmapped
// page part way fails with ErrShortTransfer.
func (p *LinuxProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	pid, err := p.target()
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, size)
	n, errno := process_vm_readv(pid, buf, addr)
	if errno != 0 {
		return nil, mapErrno("process_vm_readv", addr, errno)
	}

	if n != int(size) {
		return nil, fmt.Errorf("%w: read %d of %d bytes at %s", process.ErrShortTransfer, n, size, addr.ToString())
	}

	return buf, nil
}
