/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ssargent/gridstore/pkg/store"
)

// lsCmd represents the ls command
var lsCmd = &cobra.Command{
	Use:   "ls <file> [group]",
	Short: "List the groups and arrays of a case file",
	Long: `Recursively list the groups and arrays below a group (the root by
default). Arrays show their element type and length.

Examples:
  gridstore ls river.gs
  gridstore ls river.gs /Base2D/Grid_001`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "/"
		if len(args) == 2 {
			root = args[1]
		}
		return runLs(cmd.Context(), cmd.OutOrStdout(), args[0], root)
	},
}

func runLs(ctx context.Context, w io.Writer, path, root string) error {
	c, err := openContainer(ctx, path)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Walk(root, func(info store.NodeInfo) error {
		depth := strings.Count(strings.TrimPrefix(info.Path, "/"), "/")
		indent := strings.Repeat("  ", depth)
		if info.IsGroup {
			_, err := fmt.Fprintf(w, "%s%s/\n", indent, info.Name)
			return err
		}
		compressed := ""
		if info.Compressed {
			compressed = " zstd"
		}
		_, err := fmt.Fprintf(w, "%s%s  %s[%d]%s\n", indent, info.Name, info.DType, info.Len, compressed)
		return err
	})
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
