package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/smoors/test-suite/internal/catalog"
	"github.com/smoors/test-suite/internal/config"
	"github.com/spf13/cobra"
)

var scalesCmd = &cobra.Command{
	Use:   "scales",
	Short: "List the scale catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		scales := catalog.Builtin()
		if _, err := os.Stat(config.Global.ScalesFile); err == nil {
			if err := scales.LoadFile(config.Global.ScalesFile); err != nil {
				return err
			}
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Scale", "Nodes", "CPUs/node", "GPUs/node", "Node part"})
		for _, name := range scales.Names() {
			scale, err := scales.Lookup(name)
			if err != nil {
				return err
			}
			t.AppendRow(table.Row{
				scale.Name,
				scale.NumNodes,
				optCell(scale.NumCpusPerNode),
				optCell(scale.NumGpusPerNode),
				optCell(scale.NodePart),
			})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scalesCmd)
}
