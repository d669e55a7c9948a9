package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"procmem/pod"
	"procmem/process"
)

// valueCodec reads and writes one --type through the pod accessors.
type valueCodec struct {
	size  process.ProcessMemorySize
	read  func(m process.Memory, addr process.ProcessMemoryAddress, count int) ([]string, error)
	write func(m process.Memory, addr process.ProcessMemoryAddress, value string) error
}

func codecOf[T any](parse func(string) (T, error), format func(T) string) valueCodec {
	return valueCodec{
		size: pod.SizeOf[T](),
		read: func(m process.Memory, addr process.ProcessMemoryAddress, count int) ([]string, error) {
			values, err := pod.ReadArray[T](m, addr, count)
			if err != nil {
				return nil, err
			}
			return lo.Map(values, func(v T, _ int) string { return format(v) }), nil
		},
		write: func(m process.Memory, addr process.ProcessMemoryAddress, value string) error {
			v, err := parse(value)
			if err != nil {
				return errors.Wrapf(err, "value %q", value)
			}
			return pod.Write(m, addr, v)
		},
	}
}

func parseUint[T ~uint8 | ~uint16 | ~uint32 | ~uint64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseUint(s, 0, bits)
		return T(v), err
	}
}

func parseInt[T ~int8 | ~int16 | ~int32 | ~int64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseInt(s, 0, bits)
		return T(v), err
	}
}

func parseFloat[T ~float32 | ~float64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseFloat(s, bits)
		return T(v), err
	}
}

func formatUint[T ~uint8 | ~uint16 | ~uint32 | ~uint64](v T) string {
	return fmt.Sprintf("%d (0x%X)", uint64(v), uint64(v))
}

func formatInt[T ~int8 | ~int16 | ~int32 | ~int64](v T) string {
	return strconv.FormatInt(int64(v), 10)
}

func formatFloat[T ~float32 | ~float64](bits int) func(T) string {
	return func(v T) string {
		return strconv.FormatFloat(float64(v), 'g', -1, bits)
	}
}

var codecs = map[string]valueCodec{
	"u8":  codecOf(parseUint[uint8](8), formatUint[uint8]),
	"u16": codecOf(parseUint[uint16](16), formatUint[uint16]),
	"u32": codecOf(parseUint[uint32](32), formatUint[uint32]),
	"u64": codecOf(parseUint[uint64](64), formatUint[uint64]),
	"i8":  codecOf(parseInt[int8](8), formatInt[int8]),
	"i16": codecOf(parseInt[int16](16), formatInt[int16]),
	"i32": codecOf(parseInt[int32](32), formatInt[int32]),
	"i64": codecOf(parseInt[int64](64), formatInt[int64]),
	"f32": codecOf(parseFloat[float32](32), formatFloat[float32](32)),
	"f64": codecOf(parseFloat[float64](64), formatFloat[float64](64)),
}

func codecFor(name string) (valueCodec, error) {
	c, ok := codecs[name]
	if !ok {
		names := lo.Keys(codecs)
		sort.Strings(names)
		return valueCodec{}, errors.Errorf("unsupported type %q, want one of %v", name, names)
	}
	return c, nil
}
