/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/ssargent/gridstore/pkg/config"
	"github.com/ssargent/gridstore/pkg/di"
	"github.com/ssargent/gridstore/pkg/iric"
	"github.com/ssargent/gridstore/pkg/logger"
	"github.com/ssargent/gridstore/pkg/mesh"
	"github.com/ssargent/gridstore/pkg/store"
)

// Cfg layers flags and GRIDSTORE_* environment variables over the config file
var Cfg = newViper()

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("GRIDSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// container is built once the configuration is known
var container *di.Container

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gridstore",
	Short: "gridstore - mesh and solution case files",
	Long: `gridstore inspects case files holding computational meshes and
simulation results: zones, coordinates, attribute fields, solution steps and
particle groups.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}
		cfg, err := loadConfig(Cfg.GetString("config"))
		if err != nil {
			return err
		}
		if err := logger.Configure(cfg.Logging.Level, cfg.Logging.File); err != nil {
			return fmt.Errorf("failed to configure logging: %w", err)
		}
		container = di.NewContainer(cfg)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return nil
		}
		return container.Registry().CloseAll()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configKeys maps persistent flags to config keys
var configKeys = map[string]string{
	"log-level": "logging.level",
	"log-file":  "logging.file",
	"backend":   "storage.backend",
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default "+config.GetDefaultConfigPath()+")")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-file", "", "Log to this file instead of stderr")
	flags.String("backend", "", "Storage backend: log or pebble")

	bindFlag("config", flags.Lookup("config"))
	for name, key := range configKeys {
		bindFlag(key, flags.Lookup(name))
	}
}

func bindFlag(key string, flag *pflag.Flag) {
	if err := Cfg.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// loadConfig reads the config file, if any, then applies flag and
// environment overrides
func loadConfig(path string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case path != "":
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case config.ConfigExists(config.GetDefaultConfigPath()):
		loaded, err := config.LoadConfig(config.GetDefaultConfigPath())
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	overrides := map[string]*string{
		"logging.level":   &cfg.Logging.Level,
		"logging.file":    &cfg.Logging.File,
		"storage.backend": &cfg.Storage.Backend,
		"server.bind":     &cfg.Server.Bind,
		"server.api_key":  &cfg.Server.APIKey,
	}
	for key, dst := range overrides {
		if Cfg.IsSet(key) {
			*dst = Cfg.GetString(key)
		}
	}
	if Cfg.IsSet("server.port") {
		cfg.Server.Port = Cfg.GetInt("server.port")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openCase opens a case file read-only through the registry
func openCase(ctx context.Context, path string) (*iric.Registry, iric.FileID, error) {
	if container == nil {
		return nil, "", fmt.Errorf("dependency container not initialized")
	}
	reg := container.Registry()
	fid, err := reg.Open(ctx, path, mesh.ModeRead)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	return reg, fid, nil
}

// openContainer opens the raw group/array tree of a case file read-only
func openContainer(ctx context.Context, path string) (*store.Container, error) {
	if container == nil {
		return nil, fmt.Errorf("dependency container not initialized")
	}
	c, err := store.Open(ctx, path, store.ModeRead, container.Config().StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return c, nil
}
