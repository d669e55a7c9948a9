//go:build linux

package process_linux

import (
	"fmt"
	"unsafe"

	"procmem/process"

	"golang.org/x/sys/unix"
)

// process_vm_writev writes localBuf to remoteAddr of pid and returns how many
// bytes were written.
func process_vm_writev(
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
		unix.SYS_PROCESS_VM_WRITEV,
		uintptr(pid),                        // Remote process PID
		uintptr(unsafe.Pointer(&localIov)),  // Local iovec
		uintptr(1),                          // Number of local iovecs
		uintptr(unsafe.Pointer(&remoteIov)), // Remote iovec
		uintptr(1),                          // Number of remote iovecs
		uintptr(0),                          // Flags (reserved for future use)
	)

	return int(n), errno
}

// WriteMemory writes all of data at addr. Page protections of the target are
// honoured, so writes to read-only mappings fail with ErrAddressInvalid.
func (p *LinuxProcess) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	pid, err := p.target()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	written, errno := process_vm_writev(pid, data, addr)
	if errno != 0 {
		return mapErrno("process_vm_writev", addr, errno)
	}

	if written != len(data) {
		return fmt.Errorf("%w: wrote %d of %d bytes at %s", process.ErrShortTransfer, written, len(data), addr.ToString())
	}

	return nil
}
