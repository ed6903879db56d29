// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/glenn-horton-smith/treeinfo/pkg/types"
)

// Dataset is the full extracted model, nested file → tree → branch for
// consumers that want the whole thing rather than the tabular join.
type Dataset struct {
	Files []FileExport `yaml:"files"`
}

// FileExport is one scanned source file and its trees.
type FileExport struct {
	Path  string       `yaml:"path"`
	Trees []TreeExport `yaml:"trees"`
}

// TreeExport is one tree and its branch registrations.
type TreeExport struct {
	Name     string         `yaml:"name"`
	Title    string         `yaml:"title"`
	VarName  string         `yaml:"var_name"`
	Line     int            `yaml:"line"`
	Branches []BranchExport `yaml:"branches"`
}

// BranchExport is one branch row with its correlated references.
type BranchExport struct {
	Name        string      `yaml:"name"`
	LeafDef     string      `yaml:"leaf_def"`
	ValueVar    string      `yaml:"value_var"`
	Line        int         `yaml:"line"`
	Comments    []RefExport `yaml:"comments,omitempty"`
	Assignments []RefExport `yaml:"assignments,omitempty"`
}

// RefExport is one correlated source line.
type RefExport struct {
	Line int    `yaml:"line"`
	Text string `yaml:"text"`
}

// WriteYAML writes the whole dataset as YAML.
func WriteYAML(ctx context.Context, src Source, w io.Writer) error {
	ds, err := BuildDataset(ctx, src)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(ds)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// BuildDataset assembles the nested export model from the store.
func BuildDataset(ctx context.Context, src Source) (*Dataset, error) {
	files, err := src.SourceFiles(ctx)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{}
	for _, f := range files {
		fe := FileExport{Path: f.Path}

		trees, err := src.TreesForFile(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		for _, t := range trees {
			te := TreeExport{
				Name:    t.Name,
				Title:   t.Title,
				VarName: t.VarName,
				Line:    t.Line,
			}

			branches, err := src.BranchesForTree(ctx, t.ID)
			if err != nil {
				return nil, err
			}
			for _, b := range branches {
				be := BranchExport{
					Name:     b.Name,
					LeafDef:  b.LeafDef,
					ValueVar: b.ValueVar,
					Line:     b.Line,
				}
				comments, err := src.Comments(ctx, b.FileID, b.ID)
				if err != nil {
					return nil, err
				}
				assigns, err := src.Assignments(ctx, b.FileID, b.ID)
				if err != nil {
					return nil, err
				}
				be.Comments = refExports(comments)
				be.Assignments = refExports(assigns)
				te.Branches = append(te.Branches, be)
			}
			fe.Trees = append(fe.Trees, te)
		}
		ds.Files = append(ds.Files, fe)
	}
	return ds, nil
}

func refExports(refs []types.Reference) []RefExport {
	out := make([]RefExport, len(refs))
	for i, r := range refs {
		out[i] = RefExport{Line: r.Line, Text: r.Text}
	}
	return out
}
