package main

import (
	"os"

	"blocks-cms/config"
	"blocks-cms/internal/domain/catalog"
	"blocks-cms/internal/domain/registry"
	"blocks-cms/logging"

	"github.com/spf13/cobra"
)

var catalogPath string

var rootCmd = &cobra.Command{
	Use:   "cmsctl",
	Short: "Inspect and migrate the CMS model registry",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadBase()
		logging.Init(config.LOG_LEVEL, os.Stderr)
		if catalogPath == "" {
			catalogPath = config.CATALOG_PATH
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "c", "", "YAML model catalog merged into the built-in models (default $CATALOG_PATH)")
}

func loadRegistry() *registry.Registry {
	reg, err := catalog.Load(catalogPath)
	if err != nil {
		fatal("Failed to load catalog", err)
	}
	return reg
}
