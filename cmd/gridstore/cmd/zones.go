/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ssargent/gridstore/pkg/export"
	"github.com/ssargent/gridstore/pkg/mesh"
)

// zonesCmd represents the zones command
var zonesCmd = &cobra.Command{
	Use:   "zones <file>",
	Short: "List the zones of a case file",
	Long: `List every zone of a case file with its base, type, size vector, node
and cell counts and coordinate bounds.

Example:
  gridstore zones river.gs`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runZones(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func runZones(ctx context.Context, w io.Writer, path string) error {
	reg, fid, err := openCase(ctx, path)
	if err != nil {
		return err
	}
	defer reg.Close(fid)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBASE\tNAME\tTYPE\tSIZE\tNODES\tCELLS\tBOUNDS")
	err = reg.With(fid, func(f *mesh.File) error {
		for _, z := range f.Zones() {
			summary, err := export.Summarize(z)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%v\t%d\t%d\t%s\n",
				z.ID(), mesh.BaseGroupName(z.Dim()), z.Name(), z.Type(), z.Size(),
				z.NodeCount(), z.CellCount(), formatBounds(summary.Bounds))
		}
		return nil
	})
	if err != nil {
		return err
	}
	return tw.Flush()
}

func formatBounds(bounds []export.Bounds) string {
	if len(bounds) == 0 {
		return "-"
	}
	parts := make([]string, len(bounds))
	for i, b := range bounds {
		parts[i] = fmt.Sprintf("%s[%g,%g]", strings.ToLower(b.Axis), b.Min, b.Max)
	}
	return strings.Join(parts, " ")
}

func init() {
	rootCmd.AddCommand(zonesCmd)
}
