//go:build linux

package process_linux

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"procmem/process"
	"procmem/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/unix"
)

// LinuxProcess implements process.Process with process_vm_readv and
// process_vm_writev.
type LinuxProcess struct {
	pid    process.ProcessID
	size   process.PointerSize
	log    *logger.Logger
	mu     sync.Mutex
	closed bool
}

var _ process.Process = (*LinuxProcess)(nil)

// Open checks that pid exists and that the caller may access its memory.
// ptrace access rules apply: the target must be a descendant, or the caller
// needs CAP_SYS_PTRACE, unless kernel.yama.ptrace_scope is 0.
func Open(pid process.ProcessID, size process.PointerSize) (*LinuxProcess, error) {
	if !size.IsValid() {
		return nil, fmt.Errorf("invalid pointer size %d", size)
	}

	if _, err := os.Stat(fmt.Sprintf("/proc/%d", pid)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: pid %d", process.ErrNotFound, pid)
		}
		return nil, fmt.Errorf("stat pid %d: %w", pid, err)
	}

	mem, err := os.Open(fmt.Sprintf("/proc/%d/mem", pid))
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("%w: pid %d: %v", process.ErrPermissionDenied, pid, err)
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: pid %d", process.ErrNotFound, pid)
		}
		return nil, fmt.Errorf("open memory of pid %d: %w", pid, err)
	}
	mem.Close()

	p := &LinuxProcess{
		pid:  pid,
		size: size,
		log:  logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid))),
	}

	p.log.Infoln("Process opened", size.String())

	return p, nil
}

func (p *LinuxProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return process.ErrHandleClosed
	}
	p.closed = true

	p.log.Infoln("Process closed")
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))

	return nil
}

// GetPID returns the process ID
func (p *LinuxProcess) GetPID() process.ProcessID {
	return p.pid
}

func (p *LinuxProcess) PointerSize() process.PointerSize {
	return p.size
}

// target returns the pid to transfer against, or ErrHandleClosed.
func (p *LinuxProcess) target() (process.ProcessID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, process.ErrHandleClosed
	}
	return p.pid, nil
}

// GetMemoryMap reads the current mappings of the process.
func (p *LinuxProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	pid, err := p.target()
	if err != nil {
		return nil, err
	}
	return memory_map.NewLinuxMemoryMap().ReadMemoryMap(pid)
}

// mapErrno translates a transfer errno into the process error taxonomy.
func mapErrno(op string, addr process.ProcessMemoryAddress, errno unix.Errno) error {
	switch errno {
	case unix.EFAULT, unix.EIO:
		return fmt.Errorf("%s at %s: %w: %v", op, addr.ToString(), process.ErrAddressInvalid, errno)
	case unix.EPERM, unix.EACCES:
		return fmt.Errorf("%s at %s: %w: %v", op, addr.ToString(), process.ErrPermissionDenied, errno)
	case unix.ESRCH:
		return fmt.Errorf("%s at %s: %w: process is gone", op, addr.ToString(), process.ErrInvalidHandle)
	default:
		return fmt.Errorf("%s at %s failed: %s (errno: %d)", op, addr.ToString(), errno.Error(), errno)
	}
}
