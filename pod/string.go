package pod

import (
	"fmt"

	"procmem/process"
)

// DefaultMaxStringLength caps the terminator search of ReadCString.
const DefaultMaxStringLength = 4096

type stringReader struct {
	maxLength int
}

// Option configures ReadCString and ReadString
type Option func(*stringReader)

// WithMaxLength sets how many bytes are inspected for a terminator.
func WithMaxLength(n int) Option {
	return func(s *stringReader) {
		s.maxLength = n
	}
}

// ReadCString reads a zero-terminated byte string at addr. The length is found
// by reading one byte at a time; the string is then fetched with a single
// read. The terminator is not included in the result.
//
// If no zero byte appears within the configured maximum length the read fails
// with process.ErrUnterminatedString.
func ReadCString(m process.Memory, addr process.ProcessMemoryAddress, opts ...Option) ([]byte, error) {
	r := stringReader{maxLength: DefaultMaxStringLength}
	for _, opt := range opts {
		opt(&r)
	}
	if r.maxLength <= 0 {
		return nil, fmt.Errorf("read string: invalid max length %d", r.maxLength)
	}

	length := -1
	for i := 0; i < r.maxLength; i++ {
		b, err := m.ReadMemory(addr+process.ProcessMemoryAddress(i), 1)
		if err != nil {
			return nil, fmt.Errorf("read string at %s, byte %d: %w", addr.ToString(), i, err)
		}
		if len(b) != 1 {
			return nil, fmt.Errorf("read string at %s, byte %d: %w", addr.ToString(), i, process.ErrShortTransfer)
		}
		if b[0] == 0 {
			length = i
			break
		}
	}

	if length < 0 {
		return nil, fmt.Errorf("%w: no terminator within %d bytes at %s", process.ErrUnterminatedString, r.maxLength, addr.ToString())
	}
	if length == 0 {
		return []byte{}, nil
	}

	data, err := m.ReadMemory(addr, process.ProcessMemorySize(length))
	if err != nil {
		return nil, fmt.Errorf("read string at %s (%d bytes): %w", addr.ToString(), length, err)
	}
	if len(data) != length {
		return nil, fmt.Errorf("%w: string at %s: got %d of %d bytes", process.ErrShortTransfer, addr.ToString(), len(data), length)
	}
	return data, nil
}

// ReadString is ReadCString returning a Go string.
func ReadString(m process.Memory, addr process.ProcessMemoryAddress, opts ...Option) (string, error) {
	data, err := ReadCString(m, addr, opts...)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteCString stores s followed by a zero byte at addr.
func WriteCString(m process.Memory, addr process.ProcessMemoryAddress, s string) error {
	data := make([]byte, len(s)+1)
	copy(data, s)
	if err := m.WriteMemory(addr, data); err != nil {
		return fmt.Errorf("write string at %s: %w", addr.ToString(), err)
	}
	return nil
}
