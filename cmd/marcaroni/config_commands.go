package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mutronic/marcaroni/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, err := os.Stat(target)
				switch {
				case err == nil:
					return fmt.Errorf("%s already exists (pass --overwrite to replace it)", target)
				case !errors.Is(err, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Point data.sources_file and data.bib_data_file at your exports (or set MARCARONI_SOURCES_FILE and MARCARONI_BIB_DATA_FILE), then run 'marcaroni config validate'.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the file (default: ~/.config/marcaroni/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func initTarget(flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	path, err := config.ExpandPath(flagValue)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Snapshot backend: %s\n", cfg.Data.SnapshotBackend)
			fmt.Fprintf(out, "Identifier field: %s $%s\n", cfg.Matching.IdentifierField, strings.Join(cfg.Matching.IdentifierSubfields, " $"))
			fmt.Fprintf(out, "Tie policy: %s\n", cfg.Matching.TiePolicy)
			fmt.Fprintf(out, "Exceptions: %d\n", len(cfg.Matching.Exceptions))
			fmt.Fprintf(out, "Record runs: %s\n", yesNo(cfg.Data.RecordRuns))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
