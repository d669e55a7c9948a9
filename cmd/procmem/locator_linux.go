//go:build linux

package main

import (
	"procmem/process"
	"procmem/process_linux"
)

func newLocator() process.Locator {
	return process_linux.NewLocator()
}
