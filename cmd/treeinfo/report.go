// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/glenn-horton-smith/treeinfo/internal/report"
	"github.com/glenn-horton-smith/treeinfo/internal/store"
	"github.com/glenn-horton-smith/treeinfo/pkg/types"
)

// defaultSourcePrefix is the repository-browser URL the HTML report
// links into when none is configured.
const defaultSourcePrefix = "https://github.com/ubneutrinos/searchingfornues/blob/v30genie/"

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the tree database as CSV, HTML, or YAML",
	Long: `Report renders the database filled by scan. Each format joins branches
with their trees, files, and correlated comment and assignment lines:
csv emits one row per branch, html groups recurring leaf definitions
with row spans and links every line into a source browser, and yaml
dumps the full nested dataset.`,
}

// --- csv subcommand ---

var reportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Write the branch table as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := reportConfig(cmd, "treeinfo.csv")
		return withReportOutput(cfg, func(ctx context.Context, st *store.Store, out *os.File) error {
			return report.WriteCSV(ctx, st, out)
		})
	},
}

// --- html subcommand ---

var reportHTMLCmd = &cobra.Command{
	Use:   "html",
	Short: "Write the branch table as an HTML page",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := reportConfig(cmd, "treeinfo.html")
		return withReportOutput(cfg, func(ctx context.Context, st *store.Store, out *os.File) error {
			return report.WriteHTML(ctx, st, out, cfg.SourceURLPrefix)
		})
	},
}

// --- yaml subcommand ---

var reportYAMLCmd = &cobra.Command{
	Use:   "yaml",
	Short: "Dump the full dataset as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := reportConfig(cmd, "treeinfo.yaml")
		return withReportOutput(cfg, func(ctx context.Context, st *store.Store, out *os.File) error {
			return report.WriteYAML(ctx, st, out)
		})
	},
}

// withReportOutput opens the store and output file and runs one writer.
func withReportOutput(cfg types.ReportConfig, fn func(context.Context, *store.Store, *os.File) error) error {
	if cfg.OutPath == cfg.DBPath {
		return fmt.Errorf("output file %s would overwrite the database", cfg.OutPath)
	}

	st, err := store.Open(cfg.StoreConfig)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Ready(ctx); err != nil {
		return err
	}

	out, err := os.Create(cfg.OutPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", cfg.OutPath, err)
	}
	defer out.Close()

	if err := fn(ctx, st, out); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Wrote", cfg.OutPath)
	return nil
}

func reportConfig(cmd *cobra.Command, defaultOut string) types.ReportConfig {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = defaultOut
	}

	prefix, _ := cmd.Flags().GetString("source-prefix")
	if prefix == "" {
		prefix = viper.GetString("source_url_prefix")
	}
	if prefix == "" {
		prefix = defaultSourcePrefix
	}

	return types.ReportConfig{
		StoreConfig:     types.StoreConfig{DBPath: dbPath(cmd)},
		OutPath:         out,
		SourceURLPrefix: prefix,
	}
}

func init() {
	for _, c := range []*cobra.Command{reportCSVCmd, reportHTMLCmd, reportYAMLCmd} {
		c.Flags().String("out", "", "output file (default depends on format)")
		reportCmd.AddCommand(c)
	}
	reportHTMLCmd.Flags().String("source-prefix", "", "URL prefix for source links (default: searchingfornues on GitHub)")

	rootCmd.AddCommand(reportCmd)
}
