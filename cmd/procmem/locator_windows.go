//go:build windows

package main

import (
	"procmem/process"
	"procmem/process_windows"
)

func newLocator() process.Locator {
	return process_windows.NewLocator()
}
