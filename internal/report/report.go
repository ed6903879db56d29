// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders the extracted tree model as CSV, HTML, or YAML.
// It only reads; the relational model built by the scan stage is the
// whole contract between the two.
package report

import (
	"context"
	"strconv"
	"strings"

	"github.com/glenn-horton-smith/treeinfo/internal/store"
	"github.com/glenn-horton-smith/treeinfo/pkg/types"
)

// Source is the query surface the writers consume. *store.Store
// implements it.
type Source interface {
	BranchRows(ctx context.Context) ([]store.BranchRow, error)
	Comments(ctx context.Context, fileID, branchID int64) ([]types.Reference, error)
	Assignments(ctx context.Context, fileID, branchID int64) ([]types.Reference, error)
	SourceFiles(ctx context.Context) ([]types.SourceFile, error)
	TreesForFile(ctx context.Context, fileID int64) ([]types.Tree, error)
	BranchesForTree(ctx context.Context, treeID int64) ([]types.Branch, error)
}

// columns is the shared report header.
var columns = []string{
	"leaf_def",
	"tree_name",
	"branch_creation_file_line",
	"source_file_comments",
	"source_file_assignments",
}

// joinRefs renders references as newline-joined "line: text" entries.
func joinRefs(refs []types.Reference) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = strconv.Itoa(r.Line) + ": " + r.Text
	}
	return strings.Join(parts, "\n")
}
