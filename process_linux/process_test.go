//go:build linux

package process_linux

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"unsafe"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"procmem/pod"
	"procmem/process"
)

// openSelf opens the test binary itself. Sandboxes without
// process_vm_readv skip the test.
func openSelf(t *testing.T) *LinuxProcess {
	t.Helper()

	p, err := Open(process.ProcessID(os.Getpid()), process.Pointer64)
	if err != nil {
		t.Skipf("cannot open self: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })

	probe := uint64(0x1122334455667788)
	if _, err := p.ReadMemory(process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&probe))), 8); err != nil {
		t.Skipf("process_vm_readv unavailable: %v", err)
	}
	return p
}

func TestOpen_NotFound(t *testing.T) {
	// pid_max never reaches this
	_, err := Open(0x7FFFFFF0, process.Pointer64)
	assert.ErrorIs(t, err, process.ErrNotFound)
}

func TestOpen_InvalidPointerSize(t *testing.T) {
	_, err := Open(process.ProcessID(os.Getpid()), 6)
	assert.Error(t, err)
}

func TestReadWriteSelf(t *testing.T) {
	p := openSelf(t)

	buf := []uint32{1, 2, 3, 4}
	addr := process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&buf[0])))

	got, err := pod.ReadArray[uint32](p, addr, 4)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3, 4}, got)

	require.NoError(t, pod.Write[uint32](p, addr.Add(4, process.Pointer64), 0xCAFEBABE))
	assert.Equal(t, uint32(0xCAFEBABE), buf[1])
}

func TestResolveSelf(t *testing.T) {
	p := openSelf(t)

	type node struct {
		Value uint64
		Next  uint64
	}
	tail := &node{Value: 42}
	head := &node{Next: uint64(uintptr(unsafe.Pointer(tail)))}
	root := uint64(uintptr(unsafe.Pointer(head)))

	base := process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&root)))
	v, res, err := pod.ReadPath[uint64](p, base, 0, process.OffsetChain{8, 0})
	require.NoError(t, err)
	require.True(t, res.Present())
	assert.Equal(t, uint64(42), v)
	assert.Len(t, res.Hops, 2)

	runtime.KeepAlive(head)
	runtime.KeepAlive(tail)
}

func TestReadSelf_Errors(t *testing.T) {
	p := openSelf(t)

	_, err := p.ReadMemory(0, 8)
	assert.ErrorIs(t, err, process.ErrAddressInvalid)

	page := os.Getpagesize()
	mem, err := unix.Mmap(-1, 0, 2*page, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	require.NoError(t, err)
	t.Cleanup(func() { _ = unix.Munmap(mem) })
	require.NoError(t, unix.Mprotect(mem[page:], unix.PROT_NONE))

	straddle := process.ProcessMemoryAddress(uintptr(unsafe.Pointer(&mem[page-4])))
	_, err = p.ReadMemory(straddle, 8)
	assert.ErrorIs(t, err, process.ErrShortTransfer)

	err = p.WriteMemory(straddle, make([]byte, 8))
	assert.ErrorIs(t, err, process.ErrShortTransfer)
}

func TestClose(t *testing.T) {
	p := openSelf(t)

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Close(), process.ErrHandleClosed)

	_, err := p.ReadMemory(0x1000, 4)
	assert.ErrorIs(t, err, process.ErrHandleClosed)
	assert.ErrorIs(t, p.WriteMemory(0x1000, []byte{1}), process.ErrHandleClosed)
	_, err = p.GetMemoryMap()
	assert.ErrorIs(t, err, process.ErrHandleClosed)
}

func TestLocator(t *testing.T) {
	loc := NewLocator()
	self := process.ProcessID(os.Getpid())

	_, err := loc.FindWindow("Main Window")
	assert.ErrorIs(t, err, stderrors.ErrUnsupported)
	_, err = loc.PIDFromWindow(0x10)
	assert.ErrorIs(t, err, stderrors.ErrUnsupported)

	_, err = loc.PIDFromImageName("no-such-image-7f3a9c")
	assert.ErrorIs(t, err, process.ErrNotFound)

	_, err = loc.ModuleBase(self, "no-such-module.so")
	assert.ErrorIs(t, err, process.ErrNotFound)

	_, err = loc.Modules(0x7FFFFFF0)
	assert.ErrorIs(t, err, process.ErrNotFound)

	exe, err := os.Executable()
	require.NoError(t, err)

	// the test binary is running, but as the caller it is never its own match
	pid, err := loc.PIDFromImageName(filepath.Base(exe))
	if err == nil {
		assert.NotEqual(t, self, pid)
	} else {
		assert.ErrorIs(t, err, process.ErrNotFound)
	}

	modules, err := loc.Modules(self)
	require.NoError(t, err)
	mod, ok := lo.Find(modules, func(m process.ModuleInfo) bool { return m.Name == filepath.Base(exe) })
	require.True(t, ok, "test binary among %v", modules)

	base, err := loc.ModuleBase(self, mod.Name)
	require.NoError(t, err)
	assert.Equal(t, mod.Base, base)
}
