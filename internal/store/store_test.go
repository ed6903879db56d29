// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glenn-horton-smith/treeinfo/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "treeinfo.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Init(context.Background()))
	return s
}

func TestReadyBeforeInit(t *testing.T) {
	s, err := Open(types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "empty.db")})
	require.NoError(t, err)
	defer s.Close()

	err = s.Ready(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")

	require.NoError(t, s.Init(context.Background()))
	assert.NoError(t, s.Ready(context.Background()))
}

func TestEnsureSourceFile(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id1, err := s.EnsureSourceFile(ctx, "./Selection/A_tool.cc")
	require.NoError(t, err)

	// Same path resolves to the same surrogate id.
	id2, err := s.EnsureSourceFile(ctx, "./Selection/A_tool.cc")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	// A different path gets a distinct id.
	id3, err := s.EnsureSourceFile(ctx, "./Selection/B_tool.cc")
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}

func TestResolveTree(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	fid, err := s.EnsureSourceFile(ctx, "a.cc")
	require.NoError(t, err)

	tr := types.Tree{Name: "mytree", Title: "my title", VarName: "t", FileID: fid, Line: 12}
	id1, err := s.ResolveTree(ctx, tr)
	require.NoError(t, err)

	// Identical re-derivation is a no-op returning the same id.
	id2, err := s.ResolveTree(ctx, tr)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	rows, err := s.TreesForFile(ctx, fid)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestResolveTreeConsistencyViolation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	fid, err := s.EnsureSourceFile(ctx, "a.cc")
	require.NoError(t, err)

	tr := types.Tree{Name: "mytree", Title: "my title", VarName: "t", FileID: fid, Line: 12}
	_, err = s.ResolveTree(ctx, tr)
	require.NoError(t, err)

	tr.Title = "another title"
	_, err = s.ResolveTree(ctx, tr)
	var cerr *ConsistencyError
	require.True(t, errors.As(err, &cerr), "want ConsistencyError, got %v", err)
	assert.Equal(t, "another title", cerr.Observed.Title)
	assert.Equal(t, "my title", cerr.Stored.Title)
}

func TestResolveTreeShapeError(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	fid, err := s.EnsureSourceFile(ctx, "a.cc")
	require.NoError(t, err)
	require.NoError(t, s.Flush(ctx))

	// Corrupt the store from outside: two rows under one natural key.
	for i := 0; i < 2; i++ {
		_, err := s.db.Exec(
			`INSERT INTO tree (treename, treetitle, tvarname, fileid, fileline)
			 VALUES ('dup', '', 't', ?, 1)`, fid)
		require.NoError(t, err)
	}

	_, err = s.ResolveTree(ctx, types.Tree{Name: "dup", VarName: "t", FileID: fid, Line: 1})
	var serr *ShapeError
	require.True(t, errors.As(err, &serr), "want ShapeError, got %v", err)
	assert.Equal(t, 2, serr.Count)
}

func TestInsertBranchKeepsEarliestID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	fid, err := s.EnsureSourceFile(ctx, "a.cc")
	require.NoError(t, err)
	tid, err := s.ResolveTree(ctx, types.Tree{Name: "mytree", VarName: "t", FileID: fid, Line: 1})
	require.NoError(t, err)

	b := types.Branch{TreeID: tid, Name: "b1", LeafDef: "x/F", ValueVar: "x", FileID: fid, Line: 5}
	id1, err := s.InsertBranch(ctx, b)
	require.NoError(t, err)

	// Re-registration adds a row but references keep attaching to the
	// first one.
	b.Line = 9
	id2, err := s.InsertBranch(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	rows, err := s.BranchesForTree(ctx, tid)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestReferencesRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	fid, err := s.EnsureSourceFile(ctx, "a.cc")
	require.NoError(t, err)
	tid, err := s.ResolveTree(ctx, types.Tree{Name: "mytree", VarName: "t", FileID: fid, Line: 1})
	require.NoError(t, err)
	bid, err := s.InsertBranch(ctx, types.Branch{
		TreeID: tid, Name: "b1", LeafDef: "x/F", ValueVar: "x", FileID: fid, Line: 2,
	})
	require.NoError(t, err)

	require.NoError(t, s.InsertComment(ctx, types.Reference{
		BranchID: bid, FileID: fid, Line: 3, Text: "// x holds energy",
	}))
	require.NoError(t, s.InsertAssignment(ctx, types.Reference{
		BranchID: bid, FileID: fid, Line: 4, Text: "x = 3.14;",
	}))
	require.NoError(t, s.Flush(ctx))

	comments, err := s.Comments(ctx, fid, bid)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "// x holds energy", comments[0].Text)
	assert.Equal(t, 3, comments[0].Line)

	assigns, err := s.Assignments(ctx, fid, bid)
	require.NoError(t, err)
	require.Len(t, assigns, 1)
	assert.Equal(t, "x = 3.14;", assigns[0].Text)
}

func TestFlushCommits(t *testing.T) {
	ctx := context.Background()
	cfg := types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "treeinfo.db")}

	s, err := Open(cfg)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Init(ctx))

	_, err = s.EnsureSourceFile(ctx, "a.cc")
	require.NoError(t, err)
	require.NoError(t, s.Flush(ctx))

	// A second connection to the same file sees the committed row.
	s2, err := Open(cfg)
	require.NoError(t, err)
	defer s2.Close()

	files, err := s2.SourceFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.cc", files[0].Path)
}
