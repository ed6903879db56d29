// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/glenn-horton-smith/treeinfo/internal/scan"
	"github.com/glenn-horton-smith/treeinfo/internal/store"
	"github.com/glenn-horton-smith/treeinfo/pkg/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan [files...]",
	Short: "Scan C++ sources and fill the tree database",
	Long: `Scan reads C++ source files and extracts TTree creations, Branch
registrations, and the comments and assignments touching branch value
variables, writing everything to the SQLite database.

Sources come from positional arguments, from a list file (--list, one
path per line), or from walking a directory (--root) with glob patterns.
Files are processed strictly in order; the first unrecognized Branch
syntax or database inconsistency aborts the whole run.`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg := scanConfig(cmd)
	ctx := context.Background()

	paths := args
	if len(paths) == 0 {
		var err error
		if cfg.Root != "" {
			paths, err = scan.Discover(cfg.Root, cfg.Include, cfg.Ignore)
		} else {
			paths, err = scan.ReadList(cfg.ListFile)
		}
		if err != nil {
			return err
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("no source files to scan")
	}

	st, err := store.Open(cfg.StoreConfig)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Ready(ctx); err != nil {
		return err
	}

	_, err = scan.NewScanner(st).Run(ctx, paths, os.Stdout)
	return err
}

func scanConfig(cmd *cobra.Command) types.ScanConfig {
	listFile, _ := cmd.Flags().GetString("list")
	if listFile == "" {
		listFile = viper.GetString("list_file")
	}
	if listFile == "" {
		listFile = "TTree-making-files.txt"
	}

	root, _ := cmd.Flags().GetString("root")
	if root == "" {
		root = viper.GetString("root")
	}

	include, _ := cmd.Flags().GetStringSlice("include")
	if len(include) == 0 {
		include = viper.GetStringSlice("include")
	}
	ignore, _ := cmd.Flags().GetStringSlice("ignore")
	if len(ignore) == 0 {
		ignore = viper.GetStringSlice("ignore")
	}

	return types.ScanConfig{
		StoreConfig: types.StoreConfig{DBPath: dbPath(cmd)},
		ListFile:    listFile,
		Root:        root,
		Include:     include,
		Ignore:      ignore,
	}
}

func init() {
	scanCmd.Flags().String("list", "", "file listing sources to scan, one path per line (default: TTree-making-files.txt)")
	scanCmd.Flags().String("root", "", "directory to walk for sources instead of using a list file")
	scanCmd.Flags().StringSlice("include", nil, "glob patterns selecting files under --root (default: C++ sources)")
	scanCmd.Flags().StringSlice("ignore", nil, "glob patterns for paths to skip under --root")

	rootCmd.AddCommand(scanCmd)
}
