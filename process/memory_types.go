package process

import (
	"fmt"
)

// ProcessMemoryAddress represents a memory address within a process
type ProcessMemoryAddress uint64

func (pma ProcessMemoryAddress) ToString() string {
	return fmt.Sprintf("0x%X", uint64(pma))
}

// Add applies a signed offset, wrapping at the given pointer width.
func (pma ProcessMemoryAddress) Add(off Offset, size PointerSize) ProcessMemoryAddress {
	return size.Mask(pma + ProcessMemoryAddress(off))
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint(pms))
}

// PointerSize is the native pointer width of the target process in bytes.
type PointerSize uint8

const (
	Pointer32 PointerSize = 4
	Pointer64 PointerSize = 8
)

// PointerSizeFromBits maps 32 or 64 to a PointerSize.
func PointerSizeFromBits(bits int) (PointerSize, error) {
	switch bits {
	case 32:
		return Pointer32, nil
	case 64:
		return Pointer64, nil
	default:
		return 0, fmt.Errorf("unsupported pointer width: %d bits", bits)
	}
}

func (s PointerSize) IsValid() bool {
	return s == Pointer32 || s == Pointer64
}

// Mask truncates addr to the pointer width.
func (s PointerSize) Mask(addr ProcessMemoryAddress) ProcessMemoryAddress {
	if s == Pointer32 {
		return addr & 0xFFFFFFFF
	}
	return addr
}

func (s PointerSize) String() string {
	return fmt.Sprintf("%d-bit", int(s)*8)
}

// Offset is a signed displacement applied to an address.
type Offset int64

// OffsetChain is the ordered list of offsets walked by Resolve. All but the
// last are dereferenced; the last is added to the final pointer.
type OffsetChain []Offset

// Trailing returns the last offset of the chain.
func (c OffsetChain) Trailing() Offset {
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1]
}

func (c OffsetChain) String() string {
	s := "["
	for i, off := range c {
		if i > 0 {
			s += ", "
		}
		if off < 0 {
			s += fmt.Sprintf("-0x%X", uint64(-off))
		} else {
			s += fmt.Sprintf("0x%X", uint64(off))
		}
	}
	return s + "]"
}
