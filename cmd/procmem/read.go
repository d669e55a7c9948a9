package main

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"procmem/hexdump"
	"procmem/pod"
	"procmem/process"
)

// readCmd reads --count values of --type at the resolved address
var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read typed values at the resolved address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		typeName, _ := cmd.Flags().GetString("type")
		count, _ := cmd.Flags().GetInt("count")

		codec, err := codecFor(typeName)
		if err != nil {
			return err
		}

		t, err := openTarget(cmd)
		if err != nil {
			return err
		}
		defer t.Close()

		addr, present, err := t.address(cmd)
		if err != nil {
			return err
		}
		if !present {
			fmt.Fprintln(cmd.OutOrStdout(), "null")
			return nil
		}

		values, err := codec.read(t.proc, addr, count)
		if err != nil {
			return err
		}

		stride := process.ProcessMemoryAddress(codec.size)
		for i, v := range values {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", (addr + stride*process.ProcessMemoryAddress(i)).ToString(), v)
		}
		return nil
	},
}

// stringCmd reads a zero-terminated string at the resolved address
var stringCmd = &cobra.Command{
	Use:   "string",
	Short: "Read a zero-terminated string at the resolved address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		maxLen, _ := cmd.Flags().GetInt("max-len")

		t, err := openTarget(cmd)
		if err != nil {
			return err
		}
		defer t.Close()

		addr, present, err := t.address(cmd)
		if err != nil {
			return err
		}
		if !present {
			fmt.Fprintln(cmd.OutOrStdout(), "null")
			return nil
		}

		s, err := pod.ReadString(t.proc, addr, pod.WithMaxLength(maxLen))
		if errors.Is(err, process.ErrUnterminatedString) {
			log.Warn("no string at ", addr.ToString(), ": ", err)
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", addr.ToString(), strconv.Quote(s))
		return nil
	},
}

// dumpCmd hex dumps memory at the resolved address
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Hex dump --count bytes at the resolved address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		if count <= 0 {
			return errors.Errorf("--count must be positive, got %d", count)
		}

		t, err := openTarget(cmd)
		if err != nil {
			return err
		}
		defer t.Close()

		addr, present, err := t.address(cmd)
		if err != nil {
			return err
		}
		if !present {
			fmt.Fprintln(cmd.OutOrStdout(), "null")
			return nil
		}

		data, err := t.proc.ReadMemory(addr, process.ProcessMemorySize(count))
		if err != nil {
			return err
		}

		opts := hexdump.DefaultOptions()
		opts.StartAddress = addr
		opts.PointerSize = t.proc.PointerSize()
		if modules, err := t.loc.Modules(t.proc.GetPID()); err == nil {
			opts.Modules = modules
		} else {
			log.Warn("pointer annotation disabled: ", err)
		}

		hexdump.DumpToWriter(cmd.OutOrStdout(), data, opts)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(stringCmd)
	rootCmd.AddCommand(dumpCmd)

	readCmd.Flags().StringP("type", "t", "u32", "value type: u8 u16 u32 u64 i8 i16 i32 i64 f32 f64")
	readCmd.Flags().IntP("count", "n", 1, "number of consecutive values")

	stringCmd.Flags().Int("max-len", pod.DefaultMaxStringLength, "bytes to search for the terminator")

	dumpCmd.Flags().IntP("count", "n", 64, "number of bytes")
}
