// Package pod reads and writes plain-old-data values in another process.
//
// A POD type is any fixed-size Go type with no pointers, strings, slices,
// maps, interfaces, funcs or channels. Its in-memory layout is copied byte for
// byte, so T must mirror the target's layout exactly.
package pod

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"procmem/process"
)

// ErrNotPOD is returned for types that contain Go-managed references.
var ErrNotPOD = errors.New("type is not plain old data")

func SizeOf[T any]() process.ProcessMemorySize {
	var t T
	return process.ProcessMemorySize(unsafe.Sizeof(t))
}

// IsPOD reports whether T can be copied to and from raw target memory.
func IsPOD[T any]() bool {
	var t T
	rt := reflect.TypeOf(t)
	if rt == nil {
		// interface type argument
		return false
	}
	return !typeHasPointers(rt) && rt.Size() > 0
}

func typeHasPointers(rt reflect.Type) bool {
	switch rt.Kind() {
	case reflect.Ptr, reflect.UnsafePointer, reflect.Interface, reflect.Func, reflect.Map, reflect.Slice, reflect.String, reflect.Chan:
		return true
	case reflect.Array:
		return typeHasPointers(rt.Elem())
	case reflect.Struct:
		for i := 0; i < rt.NumField(); i++ {
			if typeHasPointers(rt.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func checkPOD[T any]() error {
	if !IsPOD[T]() {
		var t T
		return fmt.Errorf("%w: %T", ErrNotPOD, t)
	}
	return nil
}

// Bytes returns the in-memory representation of v.
func Bytes[T any](v T) []byte {
	size := int(unsafe.Sizeof(v))
	if size == 0 {
		return []byte{}
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(&v)), size)
	out := make([]byte, size)
	copy(out, src)
	return out
}

// FromBytes builds a T from the first sizeof(T) bytes of data.
func FromBytes[T any](data []byte) (T, error) {
	var zero T
	if err := checkPOD[T](); err != nil {
		return zero, err
	}

	var tmp T
	size := int(unsafe.Sizeof(tmp))
	if len(data) < size {
		return zero, fmt.Errorf("%w: need %d bytes, have %d", process.ErrShortTransfer, size, len(data))
	}

	dst := unsafe.Slice((*byte)(unsafe.Pointer(&tmp)), size)
	copy(dst, data[:size])
	return tmp, nil
}

// Read copies sizeof(T) bytes at addr into a new T. The zero T is returned
// unless the whole transfer succeeded.
func Read[T any](m process.Memory, addr process.ProcessMemoryAddress) (T, error) {
	var zero T
	if err := checkPOD[T](); err != nil {
		return zero, err
	}

	data, err := m.ReadMemory(addr, SizeOf[T]())
	if err != nil {
		return zero, fmt.Errorf("read %T at %s: %w", zero, addr.ToString(), err)
	}
	return FromBytes[T](data)
}

// Write stores the in-memory representation of v at addr.
func Write[T any](m process.Memory, addr process.ProcessMemoryAddress, v T) error {
	if err := checkPOD[T](); err != nil {
		return err
	}

	if err := m.WriteMemory(addr, Bytes(v)); err != nil {
		return fmt.Errorf("write %T at %s: %w", v, addr.ToString(), err)
	}
	return nil
}

// ReadArray reads count consecutive values in one transfer. Element i is read
// from addr + i*sizeof(T).
func ReadArray[T any](m process.Memory, addr process.ProcessMemoryAddress, count int) ([]T, error) {
	if err := checkPOD[T](); err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("read array: negative count %d", count)
	}
	if count == 0 {
		return []T{}, nil
	}

	size := SizeOf[T]()
	if uint64(count) > ^uint64(0)/uint64(size) {
		return nil, fmt.Errorf("read array: %d elements of %d bytes overflows", count, size)
	}
	total := size * process.ProcessMemorySize(count)

	data, err := m.ReadMemory(addr, total)
	if err != nil {
		return nil, fmt.Errorf("read [%d]%T at %s: %w", count, *new(T), addr.ToString(), err)
	}
	if len(data) != int(total) {
		return nil, fmt.Errorf("%w: got %d of %d bytes", process.ErrShortTransfer, len(data), total)
	}

	result := make([]T, count)
	dst := unsafe.Slice((*byte)(unsafe.Pointer(&result[0])), int(total))
	copy(dst, data)
	return result, nil
}

// WriteArray stores values as one contiguous block at addr.
func WriteArray[T any](m process.Memory, addr process.ProcessMemoryAddress, values []T) error {
	if err := checkPOD[T](); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}

	total := int(SizeOf[T]()) * len(values)
	src := unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), total)
	data := make([]byte, total)
	copy(data, src)

	if err := m.WriteMemory(addr, data); err != nil {
		return fmt.Errorf("write [%d]%T at %s: %w", len(values), values[0], addr.ToString(), err)
	}
	return nil
}

// ReadPath resolves a pointer chain and reads a T at the resulting address.
// An absent chain is not an error: the zero T comes back with res.Null set.
func ReadPath[T any](proc process.Process, base process.ProcessMemoryAddress, staticOffset process.Offset, offsets process.OffsetChain) (T, process.ChainResult, error) {
	var zero T

	res, err := process.Resolve(proc, base, staticOffset, offsets)
	if err != nil || res.Null {
		return zero, res, err
	}

	v, err := Read[T](proc, res.Address)
	return v, res, err
}
