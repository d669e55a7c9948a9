//go:build windows

package process_windows

import (
	"os"
	"unsafe"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/sys/windows"

	"procmem/process"
)

var (
	moduser32       = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW = moduser32.NewProc("FindWindowW")
)

// Locator implements process.Locator with user32 and toolhelp snapshots.
type Locator struct {
	log *logger.Logger
}

var _ process.Locator = (*Locator)(nil)

func NewLocator() *Locator {
	return &Locator{
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "locator")),
	}
}

// FindWindow returns the first top-level window whose title is exactly title.
func (l *Locator) FindWindow(title string) (process.WindowHandle, error) {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(titlePtr)))
	if hwnd == 0 || !windows.IsWindow(windows.HWND(hwnd)) {
		return 0, errors.Wrapf(process.ErrNotFound, "window %q", title)
	}

	l.log.Debugln("Window", title, "is", process.WindowHandle(hwnd).ToString())
	return process.WindowHandle(hwnd), nil
}

func (l *Locator) PIDFromWindow(hwnd process.WindowHandle) (process.ProcessID, error) {
	if !windows.IsWindow(windows.HWND(hwnd)) {
		return 0, errors.Wrapf(process.ErrInvalidHandle, "window %s", hwnd.ToString())
	}

	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(windows.HWND(hwnd), &pid); err != nil {
		return 0, errors.Wrapf(process.ErrInvalidHandle, "window %s: %v", hwnd.ToString(), err)
	}
	if pid == 0 {
		return 0, errors.Wrapf(process.ErrInvalidHandle, "window %s has no owner", hwnd.ToString())
	}

	return process.ProcessID(pid), nil
}

// GetProcessList takes a snapshot of every running process.
func GetProcessList() ([]process.ProcessInfo, error) {
	handle, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer windows.CloseHandle(handle) //nolint

	var pe windows.ProcessEntry32
	pe.Size = uint32(unsafe.Sizeof(pe))

	err = windows.Process32First(handle, &pe)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var processList []process.ProcessInfo
	for {
		processList = append(processList, process.ProcessInfo{
			PID:     process.ProcessID(pe.ProcessID),
			PPID:    process.ProcessID(pe.ParentProcessID),
			ExeFile: windows.UTF16ToString(pe.ExeFile[:]),
		})

		err = windows.Process32Next(handle, &pe)
		if err != nil {
			if errors.Is(err, windows.ERROR_NO_MORE_FILES) {
				break
			}
			return nil, errors.WithStack(err)
		}
	}

	return processList, nil
}

func (l *Locator) PIDFromImageName(name string) (process.ProcessID, error) {
	list, err := GetProcessList()
	if err != nil {
		return 0, err
	}

	self := process.ProcessID(os.Getpid())
	match, ok := lo.Find(list, func(p process.ProcessInfo) bool {
		return p.PID != self && p.ExeFile == name
	})
	if !ok {
		return 0, errors.Wrapf(process.ErrNotFound, "image %q", name)
	}

	l.log.Debugln("Image", name, "is pid", match.PID)
	return match.PID, nil
}

func (l *Locator) OpenProcess(pid process.ProcessID, size process.PointerSize) (process.Process, error) {
	p, err := Open(pid, size)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return p, nil
}

// Modules snapshots the modules of pid, including 32-bit modules of a WOW64
// target.
func (l *Locator) Modules(pid process.ProcessID) ([]process.ModuleInfo, error) {
	handle, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, uint32(pid))
	if err != nil {
		switch {
		case errors.Is(err, windows.ERROR_ACCESS_DENIED):
			return nil, errors.Wrapf(process.ErrPermissionDenied, "modules of pid %d: %v", pid, err)
		case errors.Is(err, windows.ERROR_INVALID_PARAMETER):
			return nil, errors.Wrapf(process.ErrNotFound, "pid %d", pid)
		default:
			return nil, errors.Wrapf(err, "modules of pid %d", pid)
		}
	}
	defer windows.CloseHandle(handle) //nolint

	var me windows.ModuleEntry32
	me.Size = uint32(unsafe.Sizeof(me))

	err = windows.Module32First(handle, &me)
	if err != nil {
		if errors.Is(err, windows.ERROR_NO_MORE_FILES) {
			return []process.ModuleInfo{}, nil
		}
		return nil, errors.WithStack(err)
	}

	var modules []process.ModuleInfo
	for {
		modules = append(modules, process.ModuleInfo{
			Name: windows.UTF16ToString(me.Module[:]),
			Path: windows.UTF16ToString(me.ExePath[:]),
			Base: process.ProcessMemoryAddress(me.ModBaseAddr),
			Size: process.ProcessMemorySize(me.ModBaseSize),
		})

		err = windows.Module32Next(handle, &me)
		if err != nil {
			if errors.Is(err, windows.ERROR_NO_MORE_FILES) {
				break
			}
			return nil, errors.WithStack(err)
		}
	}

	return modules, nil
}

func (l *Locator) ModuleBase(pid process.ProcessID, name string) (process.ProcessMemoryAddress, error) {
	modules, err := l.Modules(pid)
	if err != nil {
		return 0, err
	}

	mod, ok := lo.Find(modules, func(m process.ModuleInfo) bool {
		return m.Name == name
	})
	if !ok {
		return 0, errors.Wrapf(process.ErrNotFound, "module %q in pid %d", name, pid)
	}

	l.log.Debugln("Module", name, "of pid", pid, "at", mod.Base.ToString())
	return mod.Base, nil
}
