package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"procmem/pod"
	"procmem/process"
)

// writeCmd stores --value at the resolved address
var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write a typed value or string at the resolved address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		typeName, _ := cmd.Flags().GetString("type")
		value, _ := cmd.Flags().GetString("value")
		if !cmd.Flags().Changed("value") {
			return errors.New("--value is required")
		}

		var write func(m process.Memory, addr process.ProcessMemoryAddress) error
		if typeName == "str" {
			write = func(m process.Memory, addr process.ProcessMemoryAddress) error {
				return pod.WriteCString(m, addr, value)
			}
		} else {
			codec, err := codecFor(typeName)
			if err != nil {
				return err
			}
			write = func(m process.Memory, addr process.ProcessMemoryAddress) error {
				return codec.write(m, addr, value)
			}
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
			return errors.New("chain is null, nothing to write to")
		}

		if err := write(t.proc, addr); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: wrote %s %s\n", addr.ToString(), typeName, value)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)

	writeCmd.Flags().StringP("type", "t", "u32", "value type: u8 u16 u32 u64 i8 i16 i32 i64 f32 f64 str")
	writeCmd.Flags().String("value", "", "value to write, integers accept 0x prefixes")
}
