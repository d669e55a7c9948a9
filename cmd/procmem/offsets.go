package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"procmem/process"
)

// parseOffset accepts decimal or 0x-prefixed hex, optionally negative.
func parseOffset(s string) (process.Offset, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "offset %q", s)
	}
	return process.Offset(v), nil
}

// parseOffsets splits a comma separated chain such as "0x6DC,0x110,-0x8".
func parseOffsets(s string) (process.OffsetChain, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	var firstErr error
	chain := lo.Map(parts, func(part string, _ int) process.Offset {
		off, err := parseOffset(part)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return off
	})
	if firstErr != nil {
		return nil, firstErr
	}

	if lo.SomeBy(parts, func(part string) bool { return strings.TrimSpace(part) == "" }) {
		return nil, errors.Errorf("empty offset in %q", s)
	}

	return chain, nil
}
