// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"

	"github.com/glenn-horton-smith/treeinfo/pkg/types"
)

// ConsistencyError reports a rescan that derived a tree disagreeing with
// the stored row for the same (treename, fileid) key. Both tuples are
// carried so the conflict is diagnosable from the error alone.
type ConsistencyError struct {
	Observed types.Tree
	Stored   types.Tree
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf(
		"database inconsistency: found tree (name=%s title=%q var=%s fileid=%d line=%d)"+
			" but existing entry is (name=%s title=%q var=%s fileid=%d line=%d)",
		e.Observed.Name, e.Observed.Title, e.Observed.VarName, e.Observed.FileID, e.Observed.Line,
		e.Stored.Name, e.Stored.Title, e.Stored.VarName, e.Stored.FileID, e.Stored.Line)
}

// ShapeError reports multiple rows under a natural key that must be
// unique. It means the store was corrupted or written outside this tool.
type ShapeError struct {
	Entity string
	Key    string
	Count  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("database error: %d %s entries for %s", e.Count, e.Entity, e.Key)
}
