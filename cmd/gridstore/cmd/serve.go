/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Serve a case file read-only over HTTP",
	Long: `Open a case file read-only and serve its zones, fields, solution steps and
particle groups as JSON under /api/v1. Prometheus metrics are served at
/metrics. When an API key is configured every /api/v1 request must carry it
in the X-API-Key header.

Examples:
  gridstore serve river.gs --port 8080
  gridstore serve river.gs --bind 0.0.0.0 --api-key mysecretkey`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, args[0])
	},
}

func runServe(ctx context.Context, path string) error {
	reg, fid, err := openCase(ctx, path)
	if err != nil {
		return err
	}
	defer reg.Close(fid)

	starter := container.GetServerFactory().CreateServerStarter(reg, fid, container.ServerConfig(), container.Metrics())
	return starter.StartServer(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "", "Address to bind (default from config, 127.0.0.1)")
	serveCmd.Flags().String("api-key", "", "Require this key in the X-API-Key header")

	bindFlag("server.port", serveCmd.Flags().Lookup("port"))
	bindFlag("server.bind", serveCmd.Flags().Lookup("bind"))
	bindFlag("server.api_key", serveCmd.Flags().Lookup("api-key"))
}
