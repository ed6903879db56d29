// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/glenn-horton-smith/treeinfo/internal/store"
	"github.com/glenn-horton-smith/treeinfo/pkg/types"
)

// --- fake source ---

type refKey struct{ fileID, branchID int64 }

type fakeSource struct {
	rows     []store.BranchRow
	files    []types.SourceFile
	trees    map[int64][]types.Tree
	branches map[int64][]types.Branch
	comments map[refKey][]types.Reference
	assigns  map[refKey][]types.Reference
}

func (f *fakeSource) BranchRows(context.Context) ([]store.BranchRow, error) {
	return f.rows, nil
}

func (f *fakeSource) Comments(_ context.Context, fileID, branchID int64) ([]types.Reference, error) {
	return f.comments[refKey{fileID, branchID}], nil
}

func (f *fakeSource) Assignments(_ context.Context, fileID, branchID int64) ([]types.Reference, error) {
	return f.assigns[refKey{fileID, branchID}], nil
}

func (f *fakeSource) SourceFiles(context.Context) ([]types.SourceFile, error) {
	return f.files, nil
}

func (f *fakeSource) TreesForFile(_ context.Context, fileID int64) ([]types.Tree, error) {
	return f.trees[fileID], nil
}

func (f *fakeSource) BranchesForTree(_ context.Context, treeID int64) ([]types.Branch, error) {
	return f.branches[treeID], nil
}

// testSource models one file with one tree and a leaf definition that
// recurs in a second file's tree.
func testSource() *fakeSource {
	return &fakeSource{
		rows: []store.BranchRow{
			{LeafDef: "nslice/I", TreeName: "nu", FileName: "./Selection/A_tool.cc", Line: 10, BranchID: 1, FileID: 1},
			{LeafDef: "nslice/I", TreeName: "numu", FileName: "./Selection/B_tool.cc", Line: 20, BranchID: 2, FileID: 2},
			{LeafDef: "trk_len/F", TreeName: "nu", FileName: "./Selection/A_tool.cc", Line: 11, BranchID: 3, FileID: 1},
		},
		files: []types.SourceFile{
			{ID: 1, Path: "./Selection/A_tool.cc"},
			{ID: 2, Path: "./Selection/B_tool.cc"},
		},
		trees: map[int64][]types.Tree{
			1: {{ID: 1, Name: "nu", Title: "selected", VarName: "t", FileID: 1, Line: 5}},
			2: {{ID: 2, Name: "numu", Title: "cc inclusive", VarName: "t", FileID: 2, Line: 6}},
		},
		branches: map[int64][]types.Branch{
			1: {
				{ID: 1, TreeID: 1, Name: "nslice", LeafDef: "nslice/I", ValueVar: "nslice", FileID: 1, Line: 10},
				{ID: 3, TreeID: 1, Name: "trk_len", LeafDef: "trk_len/F", ValueVar: "trklen", FileID: 1, Line: 11},
			},
			2: {
				{ID: 2, TreeID: 2, Name: "nslice", LeafDef: "nslice/I", ValueVar: "nslice", FileID: 2, Line: 20},
			},
		},
		comments: map[refKey][]types.Reference{
			{1, 1}: {{BranchID: 1, FileID: 1, Line: 30, Text: "nslice = 0; // number of slices"}},
		},
		assigns: map[refKey][]types.Reference{
			{1, 1}: {
				{BranchID: 1, FileID: 1, Line: 30, Text: "nslice = 0; // number of slices"},
				{BranchID: 1, FileID: 1, Line: 42, Text: "nslice = slices.size();"},
			},
		},
	}
}

// --- CSV ---

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(context.Background(), testSource(), &buf))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header + 3 branches

	assert.Equal(t, columns, records[0])

	first := records[1]
	assert.Equal(t, "nslice/I", first[0])
	assert.Equal(t, "nu", first[1])
	assert.Equal(t, "./Selection/A_tool.cc:10", first[2])
	assert.Equal(t, "30: nslice = 0; // number of slices", first[3])
	assert.Equal(t, "30: nslice = 0; // number of slices\n42: nslice = slices.size();", first[4])

	// Branch with no references has empty reference columns.
	assert.Equal(t, "trk_len/F", records[3][0])
	assert.Empty(t, records[3][3])
	assert.Empty(t, records[3][4])
}

// --- HTML ---

func TestWriteHTML(t *testing.T) {
	const prefix = "https://github.com/ubneutrinos/searchingfornues/blob/v30genie/"

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(context.Background(), testSource(), &buf, prefix))
	out := buf.String()

	// The recurring leaf definition spans its two rows; the singleton
	// does not get a rowspan.
	assert.Equal(t, 1, strings.Count(out, `rowspan="2"`))
	assert.Equal(t, 1, strings.Count(out, ">nslice/I</td>"))
	assert.Contains(t, out, ">trk_len/F</td>")

	// Source links: leading ./ stripped, #L fragment appended.
	assert.Contains(t, out, `href="`+prefix+`Selection/A_tool.cc#L10"`)
	assert.Contains(t, out, `href="`+prefix+`Selection/A_tool.cc#L30"`)
	assert.NotContains(t, out, prefix+"./")

	// Reference text is escaped, not emitted raw.
	assert.Contains(t, out, "nslice = slices.size();")
}

func TestWriteHTMLEscapes(t *testing.T) {
	src := testSource()
	src.comments[refKey{1, 3}] = []types.Reference{
		{BranchID: 3, FileID: 1, Line: 50, Text: `trklen = len<float>(trk); // "length"`},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(context.Background(), src, &buf, ""))
	out := buf.String()

	assert.Contains(t, out, "len&lt;float&gt;(trk)")
	assert.NotContains(t, out, "len<float>")
}

// --- YAML ---

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(context.Background(), testSource(), &buf))

	var ds Dataset
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &ds))

	require.Len(t, ds.Files, 2)
	require.Len(t, ds.Files[0].Trees, 1)

	tree := ds.Files[0].Trees[0]
	assert.Equal(t, "nu", tree.Name)
	require.Len(t, tree.Branches, 2)

	b := tree.Branches[0]
	assert.Equal(t, "nslice", b.Name)
	assert.Equal(t, "nslice/I", b.LeafDef)
	require.Len(t, b.Comments, 1)
	assert.Equal(t, 30, b.Comments[0].Line)
	require.Len(t, b.Assignments, 2)
}
