package process_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procmem/process"
	"procmem/process_blob"
)

// region64 builds a little-endian image of 64-bit words.
func region64(words ...uint64) []byte {
	data := make([]byte, 8*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint64(data[i*8:], w)
	}
	return data
}

func region32(words ...uint32) []byte {
	data := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(data[i*4:], w)
	}
	return data
}

func TestResolve_SingleOffset(t *testing.T) {
	dump := process_blob.NewProcessDump(1, process.Pointer64)
	// module at 0x1000, static slot at +0x10 holds 0x5000
	require.NoError(t, dump.AddRegion(0x1000, region64(0, 0, 0x5000)))

	res, err := process.Resolve(dump, 0x1000, 0x10, process.OffsetChain{0x8})
	require.NoError(t, err)
	assert.True(t, res.Present())
	assert.Equal(t, process.ProcessMemoryAddress(0x5008), res.Address)
	assert.Equal(t, -1, res.NullStep)
	require.Len(t, res.Hops, 1)
	assert.Equal(t, process.ProcessMemoryAddress(0x1010), res.Hops[0].From)
}

func TestResolve_Chain(t *testing.T) {
	dump := process_blob.NewProcessDump(1, process.Pointer64)
	require.NoError(t, dump.AddRegion(0x1000, region64(0x2000)))
	// 0x2000+0x18 -> 0x3000, 0x3000+0x8 -> 0x4000
	require.NoError(t, dump.AddRegion(0x2000, region64(0, 0, 0, 0x3000)))
	require.NoError(t, dump.AddRegion(0x3000, region64(0, 0x4000)))

	res, err := process.Resolve(dump, 0x1000, 0, process.OffsetChain{0x18, 0x8, 0x20})
	require.NoError(t, err)
	assert.False(t, res.Null)
	assert.Equal(t, process.ProcessMemoryAddress(0x4020), res.Address)

	require.Len(t, res.Hops, 3)
	assert.Equal(t, process.ProcessMemoryAddress(0x2018), res.Hops[1].From)
	assert.Equal(t, process.ProcessMemoryAddress(0x3000), res.Hops[1].Value)
	assert.Equal(t, process.ProcessMemoryAddress(0x3008), res.Hops[2].From)
	assert.Equal(t, process.ProcessMemoryAddress(0x4000), res.Hops[2].Value)
}

func TestResolve_NegativeOffset(t *testing.T) {
	dump := process_blob.NewProcessDump(1, process.Pointer64)
	require.NoError(t, dump.AddRegion(0x1000, region64(0x2010)))
	require.NoError(t, dump.AddRegion(0x2000, region64(0x7000)))

	res, err := process.Resolve(dump, 0x1000, 0, process.OffsetChain{-0x10, -0x4})
	require.NoError(t, err)
	assert.Equal(t, process.ProcessMemoryAddress(0x6FFC), res.Address)
}

func TestResolve_NullShortCircuit(t *testing.T) {
	tests := []struct {
		name     string
		regions  map[process.ProcessMemoryAddress][]byte
		offsets  process.OffsetChain
		nullStep int
		hops     int
	}{
		{
			name:     "static slot is null",
			regions:  map[process.ProcessMemoryAddress][]byte{0x1000: region64(0)},
			offsets:  process.OffsetChain{0x8, 0x10},
			nullStep: 0,
			hops:     1,
		},
		{
			name: "intermediate pointer is null",
			regions: map[process.ProcessMemoryAddress][]byte{
				0x1000: region64(0x2000),
				0x2000: region64(0, 0),
			},
			offsets:  process.OffsetChain{0x8, 0x10, 0x4},
			nullStep: 1,
			hops:     2,
		},
		{
			name: "no null in chain",
			regions: map[process.ProcessMemoryAddress][]byte{
				0x1000: region64(0x2000),
			},
			offsets:  process.OffsetChain{0x1C},
			nullStep: -1,
			hops:     1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dump := process_blob.NewProcessDump(1, process.Pointer64)
			for base, data := range tt.regions {
				require.NoError(t, dump.AddRegion(base, data))
			}

			res, err := process.Resolve(dump, 0x1000, 0, tt.offsets)
			require.NoError(t, err)
			if tt.nullStep < 0 {
				assert.False(t, res.Null)
				assert.Equal(t, process.ProcessMemoryAddress(0x201C), res.Address)
				return
			}
			assert.True(t, res.Null)
			assert.False(t, res.Present())
			assert.Equal(t, process.ProcessMemoryAddress(0), res.Address)
			assert.Equal(t, tt.nullStep, res.NullStep)
			assert.Len(t, res.Hops, tt.hops)
		})
	}
}

func TestResolve_Pointer32(t *testing.T) {
	dump := process_blob.NewProcessDump(1, process.Pointer32)
	require.NoError(t, dump.AddRegion(0x1000, region32(0x2000, 0xDEADBEEF)))
	require.NoError(t, dump.AddRegion(0x2000, region32(0, 0xFFFFFFF0)))

	res, err := process.Resolve(dump, 0x1000, 0, process.OffsetChain{0x4, 0x20})
	require.NoError(t, err)
	// 0xFFFFFFF0 + 0x20 wraps at 32 bits
	assert.Equal(t, process.ProcessMemoryAddress(0x10), res.Address)
}

func TestResolve_Errors(t *testing.T) {
	dump := process_blob.NewProcessDump(1, process.Pointer64)
	require.NoError(t, dump.AddRegion(0x1000, region64(0x9000, 0x100C)))

	tests := []struct {
		name      string
		static    process.Offset
		offsets   process.OffsetChain
		assertion assert.ErrorAssertionFunc
	}{
		{
			name:    "empty chain",
			offsets: process.OffsetChain{},
			assertion: func(t assert.TestingT, err error, _ ...interface{}) bool {
				return assert.ErrorIs(t, err, process.ErrEmptyOffsetChain)
			},
		},
		{
			name:    "static slot unmapped",
			static:  0x100,
			offsets: process.OffsetChain{0x0},
			assertion: func(t assert.TestingT, err error, _ ...interface{}) bool {
				return assert.ErrorIs(t, err, process.ErrAddressInvalid) &&
					assert.ErrorContains(t, err, "chain step 0")
			},
		},
		{
			name:    "intermediate pointer unmapped",
			offsets: process.OffsetChain{0x0, 0x0},
			assertion: func(t assert.TestingT, err error, _ ...interface{}) bool {
				return assert.ErrorIs(t, err, process.ErrAddressInvalid) &&
					assert.ErrorContains(t, err, "chain step 1")
			},
		},
		{
			name:    "pointer straddles region end",
			static:  0x8,
			offsets: process.OffsetChain{0x0, 0x0},
			assertion: func(t assert.TestingT, err error, _ ...interface{}) bool {
				return assert.ErrorIs(t, err, process.ErrShortTransfer)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := process.Resolve(dump, 0x1000, tt.static, tt.offsets)
			tt.assertion(t, err)
		})
	}
}

func TestResolve_Closed(t *testing.T) {
	dump := process_blob.NewProcessDump(1, process.Pointer64)
	require.NoError(t, dump.AddRegion(0x1000, region64(0x2000)))
	require.NoError(t, dump.Close())

	_, err := process.Resolve(dump, 0x1000, 0, process.OffsetChain{0x8})
	assert.ErrorIs(t, err, process.ErrHandleClosed)
}

func TestPointerRoundTrip(t *testing.T) {
	for _, size := range []process.PointerSize{process.Pointer32, process.Pointer64} {
		t.Run(size.String(), func(t *testing.T) {
			dump := process_blob.NewProcessDump(1, size)
			require.NoError(t, dump.AddRegion(0x1000, make([]byte, 16)))

			require.NoError(t, process.WritePointer(dump, size, 0x1004, 0x12345678))
			got, err := process.ReadPointer(dump, size, 0x1004)
			require.NoError(t, err)
			assert.Equal(t, process.ProcessMemoryAddress(0x12345678), got)
		})
	}

	_, err := process.ReadPointer(process_blob.NewProcessDump(1, 0), 3, 0x1000)
	assert.Error(t, err)
}
