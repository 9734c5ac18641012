/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/spf13/cobra"
	"github.com/ssargent/gridstore/pkg/codec"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <file> <array-path>",
	Short: "Print the values of an array",
	Long: `Print the values of one array, one per line.

Example:
  gridstore dump river.gs /Base2D/Grid_001/GridCoordinates/CoordinateX`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump(cmd.Context(), cmd.OutOrStdout(), args[0], args[1])
	},
}

func runDump(ctx context.Context, w io.Writer, file, arrayPath string) error {
	c, err := openContainer(ctx, file)
	if err != nil {
		return err
	}
	defer c.Close()

	arrayPath = path.Clean("/" + arrayPath)
	g, err := c.OpenGroup(path.Dir(arrayPath))
	if err != nil {
		return fmt.Errorf("%s: %w", path.Dir(arrayPath), err)
	}
	defer g.Close()

	name := path.Base(arrayPath)
	info, err := g.Stat(name)
	if err != nil {
		return fmt.Errorf("%s: %w", arrayPath, err)
	}
	if info.IsGroup {
		return fmt.Errorf("%s is a group", arrayPath)
	}

	switch info.DType {
	case codec.DTypeFloat64:
		values, err := g.ReadFloat64s(name)
		if err != nil {
			return err
		}
		for _, v := range values {
			fmt.Fprintf(w, "%g\n", v)
		}
	case codec.DTypeInt32:
		values, err := g.ReadInt32s(name)
		if err != nil {
			return err
		}
		for _, v := range values {
			fmt.Fprintf(w, "%d\n", v)
		}
	default:
		return fmt.Errorf("%s: unsupported element type %s", arrayPath, info.DType)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
