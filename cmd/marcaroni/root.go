package main

import (
	"github.com/spf13/cobra"
)

// skipConfigAnnotation marks commands that must run without a valid config.
const skipConfigAnnotation = "skipConfigLoad"

func newRootCommand() *cobra.Command {
	var configPath string
	ctx := newCommandContext(&configPath)

	root := &cobra.Command{
		Use:   "marcaroni",
		Short: "Match vendor MARC records against the catalog",
		Long: `marcaroni sorts a vendor's MARC file into add, update and review
partitions by comparing each record's identifiers with a snapshot of the
catalog and the license held on every matching copy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (default: ~/.config/marcaroni/config.toml)")

	root.AddCommand(
		newMatchCommand(ctx),
		newSourcesCommand(ctx),
		newSnapshotCommand(ctx),
		newConfigCommand(ctx),
		newVersionCommand(),
	)
	return root
}
