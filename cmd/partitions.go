package cmd

import (
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/smoors/test-suite/internal/capacity"
	"github.com/smoors/test-suite/internal/utils"
	"github.com/spf13/cobra"
)

var partitionsCmd = &cobra.Command{
	Use:   "partitions",
	Short: "List partitions and their discovered capacity",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := capacity.ActiveProvider()
		if provider == nil {
			utils.PrintError("No partition capacity available (no partitions file, no sinfo).")
			os.Exit(1)
		}

		partitions, err := provider.Partitions()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Partition", "Cores", "Sockets", "GPUs", "Features"})
		for _, part := range partitions {
			t.AppendRow(table.Row{
				part.Name,
				optCell(part.Capacity.NumCores),
				optCell(part.Capacity.NumSockets),
				part.Capacity.MaxDevicesPerNode,
				strings.Join(part.Features, ","),
			})
		}
		t.Render()
		return nil
	},
}

// optCell renders an optional capacity value, "?" when unknown.
func optCell(p *int) string {
	if p == nil {
		return "?"
	}
	return strconv.Itoa(*p)
}

func init() {
	rootCmd.AddCommand(partitionsCmd)
}
