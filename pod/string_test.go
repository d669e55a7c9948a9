package pod_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procmem/pod"
	"procmem/process"
	"procmem/process_blob"
)

// countingMemory records every transfer made against the wrapped Memory.
type countingMemory struct {
	process.Memory
	reads []process.ProcessMemorySize
}

func (c *countingMemory) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	c.reads = append(c.reads, size)
	return c.Memory.ReadMemory(addr, size)
}

func TestReadCString(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		opts      []pod.Option
		want      []byte
		assertion assert.ErrorAssertionFunc
	}{
		{
			name:      "terminated",
			data:      []byte{0x41, 0x42, 0x00, 0x43, 0x44},
			want:      []byte("AB"),
			assertion: assert.NoError,
		},
		{
			name:      "empty",
			data:      []byte{0x00, 0x41},
			want:      []byte{},
			assertion: assert.NoError,
		},
		{
			name:      "terminator at cap edge",
			data:      []byte{'a', 'b', 'c', 0x00},
			opts:      []pod.Option{pod.WithMaxLength(4)},
			want:      []byte("abc"),
			assertion: assert.NoError,
		},
		{
			name: "unterminated within cap",
			data: bytes.Repeat([]byte{'x'}, 64),
			opts: []pod.Option{pod.WithMaxLength(16)},
			assertion: func(t assert.TestingT, err error, _ ...interface{}) bool {
				return assert.ErrorIs(t, err, process.ErrUnterminatedString)
			},
		},
		{
			name: "runs off mapped memory",
			data: []byte{'x', 'y'},
			assertion: func(t assert.TestingT, err error, _ ...interface{}) bool {
				return assert.ErrorIs(t, err, process.ErrAddressInvalid)
			},
		},
		{
			name: "invalid cap",
			data: []byte{0x00},
			opts: []pod.Option{pod.WithMaxLength(0)},
			assertion: func(t assert.TestingT, err error, _ ...interface{}) bool {
				return assert.Error(t, err)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dump := process_blob.NewProcessDump(1, process.Pointer64)
			require.NoError(t, dump.AddRegion(0x1000, tt.data))

			got, err := pod.ReadCString(dump, 0x1000, tt.opts...)
			tt.assertion(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadCString_DefaultCap(t *testing.T) {
	dump := process_blob.NewProcessDump(1, process.Pointer64)
	require.NoError(t, dump.AddRegion(0x1000, bytes.Repeat([]byte{'z'}, pod.DefaultMaxStringLength+16)))

	_, err := pod.ReadCString(dump, 0x1000)
	assert.ErrorIs(t, err, process.ErrUnterminatedString)
}

func TestReadCString_Transfers(t *testing.T) {
	dump := process_blob.NewProcessDump(1, process.Pointer64)
	require.NoError(t, dump.AddRegion(0x1000, []byte("hey\x00junk")))
	mem := &countingMemory{Memory: dump}

	got, err := pod.ReadCString(mem, 0x1000)
	require.NoError(t, err)
	assert.Equal(t, []byte("hey"), got)

	// four single-byte probes then one bulk read of the string
	assert.Equal(t, []process.ProcessMemorySize{1, 1, 1, 1, 3}, mem.reads)
}

func TestReadWriteString(t *testing.T) {
	dump := process_blob.NewProcessDump(1, process.Pointer64)
	require.NoError(t, dump.AddRegion(0x1000, bytes.Repeat([]byte{0xFF}, 32)))

	require.NoError(t, pod.WriteCString(dump, 0x1004, "player one"))

	s, err := pod.ReadString(dump, 0x1004)
	require.NoError(t, err)
	assert.Equal(t, "player one", s)

	_, err = pod.ReadString(dump, 0x1000, pod.WithMaxLength(2))
	assert.ErrorIs(t, err, process.ErrUnterminatedString)

	assert.ErrorIs(t, pod.WriteCString(dump, 0x101C, "too long"), process.ErrShortTransfer)
}
