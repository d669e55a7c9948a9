//go:build linux

package process_linux

import (
	stderrors "errors"
	"os"
	"path/filepath"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	ps "github.com/shirou/gopsutil/v3/process"

	"procmem/process"
	"procmem/process/memory_map"
)

// Locator implements process.Locator on top of /proc.
type Locator struct {
	log *logger.Logger
}

var _ process.Locator = (*Locator)(nil)

func NewLocator() *Locator {
	return &Locator{
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "locator")),
	}
}

// FindWindow is not available: there is no window system API to query.
func (l *Locator) FindWindow(title string) (process.WindowHandle, error) {
	return 0, errors.Wrapf(stderrors.ErrUnsupported, "find window %q on linux", title)
}

func (l *Locator) PIDFromWindow(hwnd process.WindowHandle) (process.ProcessID, error) {
	return 0, errors.Wrapf(stderrors.ErrUnsupported, "window %s on linux", hwnd.ToString())
}

// PIDFromImageName matches name against each process's comm and the base name
// of its executable, the way pidof does. The calling process is skipped.
func (l *Locator) PIDFromImageName(name string) (process.ProcessID, error) {
	if name == "" {
		return 0, errors.New("empty image name")
	}

	procs, err := ps.Processes()
	if err != nil {
		return 0, errors.Wrap(err, "list processes")
	}

	self := int32(os.Getpid())
	match, ok := lo.Find(procs, func(p *ps.Process) bool {
		if p.Pid == self {
			return false
		}
		if comm, err := p.Name(); err == nil && comm == name {
			return true
		}
		// zombies and foreign processes may hide their exe link
		exe, err := p.Exe()
		return err == nil && exe != "" && filepath.Base(exe) == name
	})
	if !ok {
		return 0, errors.Wrapf(process.ErrNotFound, "image %q", name)
	}

	l.log.Debugln("Image", name, "is pid", match.Pid)
	return process.ProcessID(match.Pid), nil
}

func (l *Locator) OpenProcess(pid process.ProcessID, size process.PointerSize) (process.Process, error) {
	p, err := Open(pid, size)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return p, nil
}

// Modules groups the file-backed mappings of pid by path.
func (l *Locator) Modules(pid process.ProcessID) ([]process.ModuleInfo, error) {
	mm, err := l.readMaps(pid)
	if err != nil {
		return nil, err
	}
	return memory_map.Modules(mm), nil
}

func (l *Locator) ModuleBase(pid process.ProcessID, name string) (process.ProcessMemoryAddress, error) {
	mm, err := l.readMaps(pid)
	if err != nil {
		return 0, err
	}

	mod, ok := memory_map.FindModule(mm, name)
	if !ok {
		return 0, errors.Wrapf(process.ErrNotFound, "module %q in pid %d", name, pid)
	}

	l.log.Debugln("Module", name, "of pid", pid, "at", mod.Base.ToString())
	return mod.Base, nil
}

func (l *Locator) readMaps(pid process.ProcessID) ([]memory_map.MemoryMapItem, error) {
	mm, err := memory_map.NewLinuxMemoryMap().ReadMemoryMap(pid)
	if err == nil {
		return mm, nil
	}

	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, errors.Wrapf(process.ErrNotFound, "pid %d", pid)
	case errors.Is(err, os.ErrPermission):
		return nil, errors.Wrapf(process.ErrPermissionDenied, "maps of pid %d: %v", pid, err)
	default:
		return nil, errors.Wrapf(err, "maps of pid %d", pid)
	}
}
