/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/gridstore/pkg/export"
	"github.com/ssargent/gridstore/pkg/logger"
	"github.com/ssargent/gridstore/pkg/mesh"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export a zone to NetCDF",
	Long: `Write the coordinates, connectivity and fields of one zone to a NetCDF
file. With --step the fields of that solution step are written instead of the
grid fields.

Examples:
  gridstore export river.gs --zone-id 1 --out river.nc
  gridstore export river.gs --zone-id 1 --out step3.nc --step 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		zid, _ := cmd.Flags().GetInt("zone-id")
		out, _ := cmd.Flags().GetString("out")
		step, _ := cmd.Flags().GetInt("step")
		if out == "" {
			return fmt.Errorf("--out is required")
		}
		if err := runExport(cmd.Context(), args[0], zid, out, step); err != nil {
			return err
		}
		cmd.Printf("Exported zone %d to %s\n", zid, out)
		return nil
	},
}

func runExport(ctx context.Context, path string, zid int, out string, step int) error {
	reg, fid, err := openCase(ctx, path)
	if err != nil {
		return err
	}
	defer reg.Close(fid)

	fh, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer fh.Close()

	err = reg.With(fid, func(f *mesh.File) error {
		z, err := f.Zone(zid)
		if err != nil {
			return err
		}
		logger.Debug("exporting zone", "zone", z.Name(), "step", step, "out", out)
		return export.WriteNetCDF(fh, z, export.Options{Step: step})
	})
	if err != nil {
		_ = fh.Close()
		_ = os.Remove(out)
		return err
	}
	return fh.Sync()
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().Int("zone-id", 1, "Zone to export")
	exportCmd.Flags().StringP("out", "o", "", "NetCDF file to write")
	exportCmd.Flags().Int("step", 0, "Solution step to export (0 for grid fields)")
}
