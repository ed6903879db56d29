// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"

	"github.com/glenn-horton-smith/treeinfo/pkg/types"
)

// BranchRow is one branch joined with its tree and source file, the unit
// the report writers consume.
type BranchRow struct {
	LeafDef  string
	TreeName string
	FileName string
	Line     int
	BranchID int64
	FileID   int64
}

// BranchRows returns every branch joined with tree and file, ordered by
// leaf definition, then tree name, then file name. The ordering is the
// contract the report writers group on.
func (s *Store) BranchRows(ctx context.Context) ([]BranchRow, error) {
	rows, err := s.querier().QueryContext(ctx,
		`SELECT bleafdef, treename, filename, branch.fileline, branchid, srcfile.fileid
		 FROM branch, tree, srcfile
		 WHERE branch.fileid = srcfile.fileid AND branch.treeid = tree.treeid
		 ORDER BY bleafdef, treename, filename`)
	if err != nil {
		return nil, fmt.Errorf("querying branches: %w", err)
	}
	defer rows.Close()

	var out []BranchRow
	for rows.Next() {
		var r BranchRow
		if err := rows.Scan(&r.LeafDef, &r.TreeName, &r.FileName, &r.Line, &r.BranchID, &r.FileID); err != nil {
			return nil, fmt.Errorf("scanning branch row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Comments returns the comment references for one branch in one file,
// in line order.
func (s *Store) Comments(ctx context.Context, fileID, branchID int64) ([]types.Reference, error) {
	return s.references(ctx,
		`SELECT fileline, commenttext FROM srccomment
		 WHERE fileid = ? AND branchid = ? ORDER BY fileline`,
		fileID, branchID)
}

// Assignments returns the assignment references for one branch in one
// file, in line order.
func (s *Store) Assignments(ctx context.Context, fileID, branchID int64) ([]types.Reference, error) {
	return s.references(ctx,
		`SELECT fileline, assigntext FROM srcassign
		 WHERE fileid = ? AND branchid = ? ORDER BY fileline`,
		fileID, branchID)
}

func (s *Store) references(ctx context.Context, query string, fileID, branchID int64) ([]types.Reference, error) {
	rows, err := s.querier().QueryContext(ctx, query, fileID, branchID)
	if err != nil {
		return nil, fmt.Errorf("querying references: %w", err)
	}
	defer rows.Close()

	var out []types.Reference
	for rows.Next() {
		r := types.Reference{FileID: fileID, BranchID: branchID}
		if err := rows.Scan(&r.Line, &r.Text); err != nil {
			return nil, fmt.Errorf("scanning reference row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SourceFiles returns all scanned files in id order.
func (s *Store) SourceFiles(ctx context.Context) ([]types.SourceFile, error) {
	rows, err := s.querier().QueryContext(ctx,
		`SELECT fileid, filename FROM srcfile ORDER BY fileid`)
	if err != nil {
		return nil, fmt.Errorf("querying source files: %w", err)
	}
	defer rows.Close()

	var out []types.SourceFile
	for rows.Next() {
		var f types.SourceFile
		if err := rows.Scan(&f.ID, &f.Path); err != nil {
			return nil, fmt.Errorf("scanning source file row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// TreesForFile returns the trees defined in one file in id order.
func (s *Store) TreesForFile(ctx context.Context, fileID int64) ([]types.Tree, error) {
	rows, err := s.querier().QueryContext(ctx,
		`SELECT treeid, treename, treetitle, tvarname, fileid, fileline
		 FROM tree WHERE fileid = ? ORDER BY treeid`, fileID)
	if err != nil {
		return nil, fmt.Errorf("querying trees: %w", err)
	}
	defer rows.Close()

	var out []types.Tree
	for rows.Next() {
		var t types.Tree
		if err := rows.Scan(&t.ID, &t.Name, &t.Title, &t.VarName, &t.FileID, &t.Line); err != nil {
			return nil, fmt.Errorf("scanning tree row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// BranchesForTree returns the branch rows of one tree in id order,
// including re-registrations.
func (s *Store) BranchesForTree(ctx context.Context, treeID int64) ([]types.Branch, error) {
	rows, err := s.querier().QueryContext(ctx,
		`SELECT branchid, treeid, branchname, bleafdef, bvalvarname, fileid, fileline
		 FROM branch WHERE treeid = ? ORDER BY branchid`, treeID)
	if err != nil {
		return nil, fmt.Errorf("querying branches: %w", err)
	}
	defer rows.Close()

	var out []types.Branch
	for rows.Next() {
		var b types.Branch
		if err := rows.Scan(&b.ID, &b.TreeID, &b.Name, &b.LeafDef, &b.ValueVar, &b.FileID, &b.Line); err != nil {
			return nil, fmt.Errorf("scanning branch row: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
