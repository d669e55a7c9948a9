// Package process provides interfaces and types for reading and writing the
// memory of another process.
package process

import "errors"

var (
	// ErrNotFound is returned when a window, process or module lookup has no match.
	ErrNotFound = errors.New("not found")

	// ErrInvalidHandle is returned when a window or process handle does not
	// refer to a live object.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrHandleClosed is returned by any operation on a Process after Close.
	ErrHandleClosed = errors.New("process handle closed")

	// ErrPermissionDenied is returned when the host refuses the requested access.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrAddressInvalid is returned when the host refuses a read or write at an address.
	ErrAddressInvalid = errors.New("address invalid")

	// ErrShortTransfer is returned when fewer bytes were moved than requested.
	ErrShortTransfer = errors.New("short transfer")

	// ErrUnterminatedString is returned when no terminator is found within the
	// string length cap.
	ErrUnterminatedString = errors.New("unterminated string")

	// ErrEmptyOffsetChain is returned by Resolve when no offsets are given.
	ErrEmptyOffsetChain = errors.New("offset chain is empty")
)
