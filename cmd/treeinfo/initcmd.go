// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glenn-horton-smith/treeinfo/internal/store"
	"github.com/glenn-horton-smith/treeinfo/pkg/types"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the tree database schema",
	Long: `Init creates the SQLite schema the scan stage writes into. Scan itself
never creates tables: running it against a missing or uninitialized
database is an error, so a typo in --db cannot silently produce a
second, empty dataset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(types.StoreConfig{DBPath: dbPath(cmd)})
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Init(context.Background()); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Initialized", dbPath(cmd))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
