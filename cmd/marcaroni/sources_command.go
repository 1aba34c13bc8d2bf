package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mutronic/marcaroni/internal/sources"
)

func newSourcesCommand(ctx *commandContext) *cobra.Command {
	var search string
	var platform string

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List registered record sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			reg, err := sources.LoadFile(cfg.Data.SourcesFile)
			if err != nil {
				return err
			}

			var list []sources.Source
			switch {
			case strings.TrimSpace(search) != "":
				list = reg.Search(search)
			case strings.TrimSpace(platform) != "":
				list = reg.ByPlatform(strings.TrimSpace(platform))
			default:
				list = reg.All()
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No matching sources")
				return nil
			}
			rows := make([][]string, 0, len(list))
			for _, src := range list {
				rows = append(rows, []string{src.ID, src.Name, src.Platform, string(src.License)})
			}
			fmt.Fprintln(out, renderTable(tableSpec{
				Headers: []string{"ID", "Name", "Platform", "License"},
				Rows:    rows,
				Aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			}))
			fmt.Fprintln(out, platformSummary(reg))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive search on source name")
	cmd.Flags().StringVar(&platform, "platform", "", "Only list sources on this platform")
	return cmd
}

// platformSummary renders "Platforms: Ebookcentral (4), Oapen (1)".
func platformSummary(reg *sources.Registry) string {
	caser := cases.Title(language.English)
	parts := make([]string, 0, len(reg.Platforms()))
	for _, p := range reg.Platforms() {
		parts = append(parts, caser.String(p)+" ("+strconv.Itoa(len(reg.ByPlatform(p)))+")")
	}
	return "Platforms: " + strings.Join(parts, ", ")
}
