package process

import (
	"encoding/binary"
	"fmt"
)

// Hop records one dereference performed while walking a chain.
type Hop struct {
	Step   int                  // 0 is the read at base+staticOffset
	From   ProcessMemoryAddress // address the pointer was read from
	Offset Offset               // offset applied to reach From
	Value  ProcessMemoryAddress // pointer value read
}

func (h Hop) String() string {
	return fmt.Sprintf("step %d: *(%s) => %s", h.Step, h.From.ToString(), h.Value.ToString())
}

// ChainResult is the outcome of Resolve. A chain that walks through a null
// pointer is reported with Null set; it is not an error.
type ChainResult struct {
	Address  ProcessMemoryAddress // resolved address, zero when Null
	Null     bool                 // a dereference produced zero
	NullStep int                  // step of the zero dereference, -1 when not Null
	Hops     []Hop
}

// Present reports whether the chain reached a value.
func (r ChainResult) Present() bool {
	return !r.Null
}

// ReadPointer reads one pointer of the given width at addr.
func ReadPointer(m Memory, size PointerSize, addr ProcessMemoryAddress) (ProcessMemoryAddress, error) {
	if !size.IsValid() {
		return 0, fmt.Errorf("invalid pointer size %d", size)
	}

	data, err := m.ReadMemory(addr, ProcessMemorySize(size))
	if err != nil {
		return 0, err
	}
	if len(data) != int(size) {
		return 0, fmt.Errorf("%w: pointer at %s: got %d of %d bytes", ErrShortTransfer, addr.ToString(), len(data), size)
	}

	if size == Pointer32 {
		return ProcessMemoryAddress(binary.LittleEndian.Uint32(data)), nil
	}
	return ProcessMemoryAddress(binary.LittleEndian.Uint64(data)), nil
}

// Resolve walks a pointer chain inside proc.
//
// It reads a pointer at base+staticOffset, then for every offset except the
// last reads a pointer at current+offset. The last offset is added to the
// final pointer without being dereferenced. If any pointer read yields zero
// the walk stops, the trailing offset is not applied and the result is Null.
//
// Example:
//
//	// *(base+0x39B56C) -> +0x6DC -> +0x110 -> +0x64 -> +0x28, value at +0x1C
//	res, err := process.Resolve(proc, base, 0x0039B56C,
//	                            process.OffsetChain{0x6DC, 0x110, 0x64, 0x28, 0x1C})
func Resolve(proc Process, base ProcessMemoryAddress, staticOffset Offset, offsets OffsetChain) (ChainResult, error) {
	return ResolveIn(proc, proc.PointerSize(), base, staticOffset, offsets)
}

// ResolveIn is Resolve over a bare Memory with an explicit pointer width.
func ResolveIn(m Memory, size PointerSize, base ProcessMemoryAddress, staticOffset Offset, offsets OffsetChain) (ChainResult, error) {
	if len(offsets) == 0 {
		return ChainResult{NullStep: -1}, ErrEmptyOffsetChain
	}

	result := ChainResult{NullStep: -1, Hops: make([]Hop, 0, len(offsets))}

	from := base.Add(staticOffset, size)
	current, err := ReadPointer(m, size, from)
	if err != nil {
		return result, fmt.Errorf("chain step 0 (%s): %w", from.ToString(), err)
	}
	result.Hops = append(result.Hops, Hop{Step: 0, From: from, Offset: staticOffset, Value: current})

	for i, off := range offsets[:len(offsets)-1] {
		if current == 0 {
			break
		}

		step := i + 1
		from = current.Add(off, size)
		current, err = ReadPointer(m, size, from)
		if err != nil {
			return result, fmt.Errorf("chain step %d (%s): %w", step, from.ToString(), err)
		}
		result.Hops = append(result.Hops, Hop{Step: step, From: from, Offset: off, Value: current})
	}

	if current == 0 {
		result.Null = true
		result.NullStep = len(result.Hops) - 1
		return result, nil
	}

	result.Address = current.Add(offsets.Trailing(), size)
	return result, nil
}

// WritePointer stores value at addr using the given pointer width.
func WritePointer(m Memory, size PointerSize, addr, value ProcessMemoryAddress) error {
	if !size.IsValid() {
		return fmt.Errorf("invalid pointer size %d", size)
	}

	data := make([]byte, size)
	if size == Pointer32 {
		binary.LittleEndian.PutUint32(data, uint32(value))
	} else {
		binary.LittleEndian.PutUint64(data, uint64(value))
	}
	return m.WriteMemory(addr, data)
}
