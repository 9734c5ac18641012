/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/gridstore/pkg/config"
)

// configCmd groups configuration commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the gridstore configuration",
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Long: `Write the default configuration YAML, ready for editing.

Examples:
  gridstore config init
  gridstore config init --path ./gridstore.yaml --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		force, _ := cmd.Flags().GetBool("force")
		if path == "" {
			path = config.GetDefaultConfigPath()
		}
		if err := initConfig(path, force); err != nil {
			return err
		}
		cmd.Printf("Wrote default configuration to %s\n", path)
		return nil
	},
}

func initConfig(path string, force bool) error {
	if config.ConfigExists(path) && !force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}
	return config.SaveConfig(config.DefaultConfig(), path)
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().String("path", "", "Where to write the config (default "+config.GetDefaultConfigPath()+")")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}
