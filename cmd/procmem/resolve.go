package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// resolveCmd prints the address a pointer chain ends at
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Walk the pointer chain and print the resulting address",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		fmt.Fprintln(cmd.OutOrStdout(), addr.ToString())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
