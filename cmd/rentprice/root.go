package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rushteam/rentprice/config"
)

var version = "dev"

type rootOptions struct {
	configPath string
	debug      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "rentprice",
		Short: "rentprice - rent estimation engine",
		Long: `rentprice estimates the monthly rent of a partially specified property.

It blends a trained model's prediction with recent comparable listings and
reports a confidence score and a price range.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to YAML config (defaults are used when empty)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if opts.debug {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	cmd.AddCommand(newEstimateCommand(opts))
	cmd.AddCommand(newModelStatusCommand(opts))

	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(o.configPath)
}

func execute() error {
	return newRootCommand().Execute()
}
