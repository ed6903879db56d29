// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the treeinfo CLI: source-code
// archeology for ROOT TTree definitions. The scan command recovers
// trees, branches, and correlated source lines from C++ source into a
// SQLite database; the report commands render that database.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the treeinfo CLI.
var rootCmd = &cobra.Command{
	Use:   "treeinfo",
	Short: "Extract ROOT TTree definitions from C++ source code",
	Long: `treeinfo scrapes C++ source files for the ad hoc statements that create
ROOT TTrees and register their branches, and rebuilds from them a queryable
model: which trees exist, which branches they carry, which variables feed
those branches, and every comment or assignment touching those variables.

No parsing is involved: the extraction is a cascade of line patterns plus
deliberately crude lexical heuristics, tuned for real analysis code that
never declares its trees in any machine-readable way.

Run init once to create the database schema, scan to fill it, and report
to render CSV, HTML, or YAML views.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./treeinfo.yaml or ~/.config/treeinfo/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database file (default: treeinfo.db)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("treeinfo")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "treeinfo"))
		}
	}

	viper.SetEnvPrefix("TREEINFO")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// dbPath resolves the database file from flag, config, then default.
func dbPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p
	}
	if p := viper.GetString("db_path"); p != "" {
		return p
	}
	return "treeinfo.db"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
