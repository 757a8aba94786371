package main

import (
	"github.com/spf13/cobra"

	"github.com/mapcrown/mapcrown/internal/dataset"
	"github.com/mapcrown/mapcrown/internal/place"
	"github.com/mapcrown/mapcrown/internal/platform/config"
	"github.com/mapcrown/mapcrown/internal/platform/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mapcrownctl",
		Short:         "MapCrown dataset and challenge tooling",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			logging.Setup(cmd.ErrOrStderr(), level, "text")
		},
	}
	root.PersistentFlags().String("log-level", "error", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("data-dir", "", "Read datasets from this directory (overrides MAPCROWN_DATA_SOURCE)")

	root.AddCommand(newValidateCmd())
	root.AddCommand(newDailyCmd())
	root.AddCommand(newFactsCmd())
	root.AddCommand(newPublishCmd())
	return root
}

// loadConfig reads the environment and applies the --data-dir override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.Data.Source = "file"
		cfg.Data.Dir = dir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type datasets struct {
	cfg      *config.Config
	loader   *dataset.Loader
	resolver *place.Resolver
	format   *place.Formatter
}

func openDatasets(cmd *cobra.Command) (*datasets, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	schemas, err := place.LoadSchemaFile(cfg.Data.SchemaPath)
	if err != nil {
		return nil, err
	}
	source, err := dataset.NewSource(cfg.Data)
	if err != nil {
		return nil, err
	}
	validator, err := dataset.NewValidator()
	if err != nil {
		return nil, err
	}
	format := place.NewFormatter(place.DefaultLocale)
	return &datasets{
		cfg:      cfg,
		loader:   dataset.NewLoader(source, dataset.Paths(cfg.Data), validator),
		resolver: place.NewResolver(schemas, format),
		format:   format,
	}, nil
}
