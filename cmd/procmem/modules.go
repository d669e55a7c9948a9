package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// modulesCmd lists the modules of the target
var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List the modules loaded in the target",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTarget(cmd)
		if err != nil {
			return err
		}
		defer t.Close()

		modules, err := t.loc.Modules(t.proc.GetPID())
		if err != nil {
			return err
		}

		table := NewTable(
			ColumnSpec{Header: "BASE", AlignRight: true},
			ColumnSpec{Header: "SIZE", AlignRight: true},
			ColumnSpec{Header: "NAME"},
			ColumnSpec{Header: "PATH"},
		)
		for _, m := range modules {
			table.AddRow(m.Base.ToString(), fmt.Sprintf("0x%X", uint(m.Size)), m.Name, m.Path)
		}
		return table.Render(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(modulesCmd)
}
