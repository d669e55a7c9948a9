//go:build windows

package process_windows

import (
	"errors"
	"fmt"
	"sync"

	"procmem/process"
	"procmem/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/windows"
)

// 0x1F0FFF, accepted by every Windows version
const PROCESS_ALL_ACCESS = windows.STANDARD_RIGHTS_REQUIRED | windows.SYNCHRONIZE | 0xFFF

// WindowsProcess implements process.Process with ReadProcessMemory and
// WriteProcessMemory.
type WindowsProcess struct {
	pid    process.ProcessID
	size   process.PointerSize
	handle windows.Handle
	log    *logger.Logger
	mu     sync.Mutex
}

var _ process.Process = (*WindowsProcess)(nil)

// Open requests full access to pid.
func Open(pid process.ProcessID, size process.PointerSize) (*WindowsProcess, error) {
	if !size.IsValid() {
		return nil, fmt.Errorf("invalid pointer size %d", size)
	}

	handle, err := windows.OpenProcess(PROCESS_ALL_ACCESS, false, uint32(pid))
	if err != nil {
		switch {
		case errors.Is(err, windows.ERROR_ACCESS_DENIED):
			return nil, fmt.Errorf("%w: pid %d: %v", process.ErrPermissionDenied, pid, err)
		case errors.Is(err, windows.ERROR_INVALID_PARAMETER):
			// OpenProcess reports an unknown pid as an invalid parameter
			return nil, fmt.Errorf("%w: pid %d", process.ErrNotFound, pid)
		default:
			return nil, fmt.Errorf("OpenProcess %d failed: %w", pid, err)
		}
	}

	p := &WindowsProcess{
		pid:    pid,
		size:   size,
		handle: handle,
		log:    logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid))),
	}

	p.log.Infoln("Process opened", size.String())
	return p, nil
}

func (p *WindowsProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == 0 {
		return process.ErrHandleClosed
	}

	err := windows.CloseHandle(p.handle)
	p.handle = 0
	p.log.Infoln("Process closed")
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))

	if err != nil {
		return fmt.Errorf("CloseHandle failed: %w", err)
	}
	return nil
}

func (p *WindowsProcess) GetPID() process.ProcessID {
	return p.pid
}

func (p *WindowsProcess) PointerSize() process.PointerSize {
	return p.size
}

func (p *WindowsProcess) target() (windows.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == 0 {
		return 0, process.ErrHandleClosed
	}
	return p.handle, nil
}

// GetMemoryMap lists the committed regions of the process.
func (p *WindowsProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	handle, err := p.target()
	if err != nil {
		return nil, err
	}
	return memory_map.ReadMemoryMapHandle(handle), nil
}

func (p *WindowsProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	handle, err := p.target()
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, size)
	var bytesRead uintptr
	err = windows.ReadProcessMemory(handle, uintptr(addr), &buf[0], uintptr(size), &bytesRead)
	if err != nil {
		return nil, p.transferError("ReadProcessMemory", handle, addr, err)
	}

	if bytesRead != uintptr(size) {
		return nil, fmt.Errorf("%w: read %d of %d bytes at %s", process.ErrShortTransfer, bytesRead, size, addr.ToString())
	}

	return buf, nil
}

func (p *WindowsProcess) WriteMemory(addr process.ProcessMemoryAddress, data []byte) error {
	handle, err := p.target()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	var written uintptr
	err = windows.WriteProcessMemory(handle, uintptr(addr), &data[0], uintptr(len(data)), &written)
	if err != nil {
		return p.transferError("WriteProcessMemory", handle, addr, err)
	}

	if written != uintptr(len(data)) {
		return fmt.Errorf("%w: wrote %d of %d bytes at %s", process.ErrShortTransfer, written, len(data), addr.ToString())
	}

	return nil
}

// transferError maps a failed Read/WriteProcessMemory. ERROR_PARTIAL_COPY is
// raised both for an unmapped start and for a range running off the end of a
// region, so the start address is looked up to tell them apart.
func (p *WindowsProcess) transferError(op string, handle windows.Handle, addr process.ProcessMemoryAddress, err error) error {
	switch {
	case errors.Is(err, windows.ERROR_PARTIAL_COPY):
		if _, ok := memory_map.QueryRegion(handle, uintptr(addr)); ok {
			return fmt.Errorf("%s at %s: %w: %v", op, addr.ToString(), process.ErrShortTransfer, err)
		}
		return fmt.Errorf("%s at %s: %w: %v", op, addr.ToString(), process.ErrAddressInvalid, err)
	case errors.Is(err, windows.ERROR_NOACCESS):
		return fmt.Errorf("%s at %s: %w: %v", op, addr.ToString(), process.ErrAddressInvalid, err)
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("%s at %s: %w: %v", op, addr.ToString(), process.ErrPermissionDenied, err)
	case errors.Is(err, windows.ERROR_INVALID_HANDLE):
		return fmt.Errorf("%s at %s: %w: %v", op, addr.ToString(), process.ErrInvalidHandle, err)
	default:
		return fmt.Errorf("%s at %s failed: %w", op, addr.ToString(), err)
	}
}
