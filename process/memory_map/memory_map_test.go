package memory_map

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procmem/process"
)

const sampleMaps = `55d0c5a00000-55d0c5a02000 r--p 00000000 08:01 1311 /usr/bin/cat
55d0c5a02000-55d0c5a07000 r-xp 00002000 08:01 1311 /usr/bin/cat
55d0c5a0c000-55d0c5a0d000 rw-p 0000b000 08:01 1311 /usr/bin/cat
55d0c6b10000-55d0c6b31000 rw-p 00000000 00:00 0 [heap]
7f1e2c000000-7f1e2c028000 r--p 00000000 08:01 2001 /usr/lib/x86_64-linux-gnu/libc.so.6
7f1e2c028000-7f1e2c1bd000 r-xp 00028000 08:01 2001 /usr/lib/x86_64-linux-gnu/libc.so.6
7f1e2c300000-7f1e2c301000 rw-p 00000000 00:00 0
7f1e2c400000-7f1e2c401000 r--p 00000000 08:01 3003 /opt/My Game/game data.bin
garbage line
7ffd1a000000-7ffd1a021000 rw-p 00000000 00:00 0 [stack]
`

func TestParseMemoryMap(t *testing.T) {
	items, err := ParseMemoryMap(strings.NewReader(sampleMaps))
	require.NoError(t, err)
	require.Len(t, items, 9)

	assert.Equal(t, uint64(0x55d0c5a00000), items[0].Address)
	assert.Equal(t, uint(0x2000), items[0].Size)
	assert.Equal(t, "r--p", items[0].Perms)
	assert.Equal(t, "/usr/bin/cat", items[0].Pathname)

	assert.Equal(t, uint64(0x2000), items[1].Offset)
	assert.Equal(t, "[heap]", items[3].Pathname)
	assert.Equal(t, "", items[6].Pathname)
	assert.Equal(t, "/opt/My Game/game data.bin", items[7].Pathname)

	assert.True(t, items[3].IsWritable())
	assert.False(t, items[1].IsWritable())
	assert.False(t, items[3].IsFileBacked())
}

func TestFindRegion(t *testing.T) {
	items, err := ParseMemoryMap(strings.NewReader(sampleMaps))
	require.NoError(t, err)

	r := FindRegion(0x55d0c5a03000, items)
	require.NotNil(t, r)
	assert.Equal(t, uint64(0x55d0c5a02000), r.Address)

	assert.Nil(t, FindRegion(0x55d0c5a07000, items))
	assert.Nil(t, FindRegion(0x1000, items))
	assert.True(t, IsValidAddress(0x7ffd1a000010, items))
}

func TestModules(t *testing.T) {
	items, err := ParseMemoryMap(strings.NewReader(sampleMaps))
	require.NoError(t, err)

	mods := Modules(items)
	require.Len(t, mods, 3)

	assert.Equal(t, "cat", mods[0].Name)
	assert.Equal(t, process.ProcessMemoryAddress(0x55d0c5a00000), mods[0].Base)
	assert.Equal(t, process.ProcessMemorySize(0xd000), mods[0].Size)

	assert.Equal(t, "libc.so.6", mods[1].Name)
	assert.Equal(t, "/usr/lib/x86_64-linux-gnu/libc.so.6", mods[1].Path)

	assert.Equal(t, "game data.bin", mods[2].Name)
}

func TestFindModule(t *testing.T) {
	items, err := ParseMemoryMap(strings.NewReader(sampleMaps))
	require.NoError(t, err)

	mod, ok := FindModule(items, "libc.so.6")
	require.True(t, ok)
	assert.Equal(t, process.ProcessMemoryAddress(0x7f1e2c000000), mod.Base)

	_, ok = FindModule(items, "LIBC.SO.6")
	assert.False(t, ok)

	_, ok = FindModule(items, "[heap]")
	assert.False(t, ok)
}

func TestModuleName(t *testing.T) {
	assert.Equal(t, "game.exe", moduleName(`C:\Games\game.exe`))
	assert.Equal(t, "libc.so.6", moduleName("/lib/libc.so.6"))
	assert.Equal(t, "plain", moduleName("plain"))
}
