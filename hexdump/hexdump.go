package hexdump

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"procmem/process"
)

// HexDumpOptions defines options for customizing the hexdump output
type HexDumpOptions struct {
	// BytesPerLine defines the number of bytes to display per line
	BytesPerLine int

	// GroupSize defines the grouping of bytes (usually 1, 2, 4, or 8)
	GroupSize int

	// ShowASCII determines whether to show the ASCII representation
	ShowASCII bool

	// StartAddress is the target address of data[0]
	StartAddress process.ProcessMemoryAddress

	// MaxLines is the maximum number of lines to show (0 for no limit)
	MaxLines int

	// PointerSize, when set together with Modules, annotates aligned words
	// that point into a module as module+offset
	PointerSize process.PointerSize

	// Modules used for pointer annotation
	Modules []process.ModuleInfo
}

// DefaultOptions returns the default hexdump options
func DefaultOptions() HexDumpOptions {
	return HexDumpOptions{
		BytesPerLine: 16,
		GroupSize:    1,
		ShowASCII:    true,
	}
}

// Dump creates a hex dump of the given data with specified options
func Dump(data []byte, options HexDumpOptions) string {
	var buffer bytes.Buffer
	DumpToWriter(&buffer, data, options)
	return buffer.String()
}

// DumpToWriter writes a hex dump of the given data to the specified writer
func DumpToWriter(writer io.Writer, data []byte, options HexDumpOptions) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}
	if options.GroupSize <= 0 {
		options.GroupSize = 1
	}

	lineCount := 0
	for offset := 0; offset < len(data); offset += options.BytesPerLine {
		if options.MaxLines > 0 && lineCount >= options.MaxLines {
			fmt.Fprintf(writer, "... %d more bytes\n", len(data)-offset)
			break
		}

		end := min(offset+options.BytesPerLine, len(data))
		formatLine(writer, data[offset:end], options.StartAddress+process.ProcessMemoryAddress(offset), options)
		lineCount++
	}
}

func formatLine(writer io.Writer, data []byte, addr process.ProcessMemoryAddress, options HexDumpOptions) {
	fmt.Fprintf(writer, "%016x  ", uint64(addr))

	groups := lo.Map(lo.Chunk(data, options.GroupSize), func(group []byte, _ int) string {
		return fmt.Sprintf("%x", group)
	})
	hex := strings.Join(groups, " ")

	// pad short lines so the ASCII column stays aligned
	fullGroups := (options.BytesPerLine + options.GroupSize - 1) / options.GroupSize
	width := options.BytesPerLine*2 + fullGroups - 1
	fmt.Fprint(writer, hex, strings.Repeat(" ", max(0, width-len(hex))))

	if options.ShowASCII {
		fmt.Fprint(writer, " |")
		for _, b := range data {
			if b < 0x80 && unicode.IsPrint(rune(b)) {
				fmt.Fprintf(writer, "%c", b)
			} else {
				fmt.Fprint(writer, ".")
			}
		}
		fmt.Fprint(writer, "|")
	}

	if notes := pointerNotes(data, addr, options); len(notes) > 0 {
		fmt.Fprint(writer, "  ", strings.Join(notes, " "))
	}

	fmt.Fprintln(writer)
}

// pointerNotes lists the pointer-aligned words of a line that land inside a
// known module.
func pointerNotes(data []byte, addr process.ProcessMemoryAddress, options HexDumpOptions) []string {
	size := int(options.PointerSize)
	if !options.PointerSize.IsValid() || len(options.Modules) == 0 {
		return nil
	}

	var notes []string
	for i := 0; i+size <= len(data); i += size {
		if (uint64(addr)+uint64(i))%uint64(size) != 0 {
			continue
		}

		var ptr process.ProcessMemoryAddress
		if size == 4 {
			ptr = process.ProcessMemoryAddress(binary.LittleEndian.Uint32(data[i:]))
		} else {
			ptr = process.ProcessMemoryAddress(binary.LittleEndian.Uint64(data[i:]))
		}
		if ptr == 0 {
			continue
		}

		if mod, ok := lo.Find(options.Modules, func(m process.ModuleInfo) bool { return m.Contains(ptr) }); ok {
			notes = append(notes, fmt.Sprintf("%s+0x%x", mod.Name, uint64(ptr-mod.Base)))
		}
	}
	return notes
}

// DumpBytes creates a simple hex dump with default options
func DumpBytes(data []byte) string {
	return Dump(data, DefaultOptions())
}
