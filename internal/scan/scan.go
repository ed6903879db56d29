// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan drives extraction: three ordered passes over each source
// file, wiring matcher output into repository writes. Pass 1 discovers
// tree creations, pass 2 branch registrations, pass 3 correlates raw
// lines with branch value variables. The passes have hard data
// dependencies in that order, so files are processed strictly one at a
// time, each against fresh file-scoped maps.
package scan

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/glenn-horton-smith/treeinfo/internal/correlate"
	"github.com/glenn-horton-smith/treeinfo/internal/match"
	"github.com/glenn-horton-smith/treeinfo/pkg/types"
)

// maxLineBytes bounds a single source line; generated C++ occasionally
// carries very long lines.
const maxLineBytes = 1 << 20

// Repository is the persistence surface the scanner writes through.
// *store.Store implements it; tests supply an in-memory fake.
type Repository interface {
	// EnsureSourceFile returns the surrogate id for a path, creating the
	// row on first sighting.
	EnsureSourceFile(ctx context.Context, path string) (int64, error)

	// ResolveTree inserts the tree if its (name, file) key is new, or
	// verifies the stored row matches and returns its id.
	ResolveTree(ctx context.Context, t types.Tree) (int64, error)

	// InsertBranch appends a branch row and returns the id references
	// should attach to.
	InsertBranch(ctx context.Context, b types.Branch) (int64, error)

	InsertComment(ctx context.Context, r types.Reference) error
	InsertAssignment(ctx context.Context, r types.Reference) error

	// Flush commits accumulated writes; called after each pass and at
	// end of file.
	Flush(ctx context.Context) error
}

// SyntaxError reports a Branch call whose arguments fit none of the
// known shapes. It aborts the whole run: skipping the line would leave a
// dataset that looks complete but is missing a branch.
type SyntaxError struct {
	Path string
	Line int
	Text string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: unrecognized Branch syntax %q", e.Path, e.Line, e.Text)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// FileStats counts what one file contributed.
type FileStats struct {
	Trees       int
	Ghosts      int
	Branches    int
	Comments    int
	Assignments int
}

// Summary accumulates FileStats over a run.
type Summary struct {
	Files int
	FileStats
}

func (s *Summary) add(fs FileStats) {
	s.Files++
	s.Trees += fs.Trees
	s.Ghosts += fs.Ghosts
	s.Branches += fs.Branches
	s.Comments += fs.Comments
	s.Assignments += fs.Assignments
}

// Scanner runs the extraction pipeline against one repository. The
// repository connection is exclusively owned for the duration of a run.
type Scanner struct {
	repo Repository
}

// NewScanner returns a Scanner writing through repo.
func NewScanner(repo Repository) *Scanner {
	return &Scanner{repo: repo}
}

// Run processes paths in order, one file completing all three passes
// before the next begins. Progress goes to w. The first fatal error
// aborts the remaining files: precision over availability.
func (s *Scanner) Run(ctx context.Context, paths []string, w io.Writer) (Summary, error) {
	var summary Summary
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		fs, err := s.ProcessFile(ctx, path)
		if err != nil {
			return summary, err
		}
		summary.add(fs)
		fmt.Fprintf(w, "scanned %s: %d trees (%d ghost), %d branches, %d comments, %d assignments\n",
			path, fs.Trees, fs.Ghosts, fs.Branches, fs.Comments, fs.Assignments)
	}
	fmt.Fprintf(w, "\nfiles: %d, trees: %d, branches: %d, comments: %d, assignments: %d\n",
		summary.Files, summary.Trees, summary.Branches, summary.Comments, summary.Assignments)
	return summary, nil
}

// ProcessFile runs the three extraction passes over one file. The
// variable-to-tree and value-variable-to-branch maps live only for this
// call: the same identifier in two files names two distinct entities.
func (s *Scanner) ProcessFile(ctx context.Context, path string) (FileStats, error) {
	var stats FileStats

	lines, err := readLines(path)
	if err != nil {
		return stats, err
	}

	fileID, err := s.repo.EnsureSourceFile(ctx, path)
	if err != nil {
		return stats, err
	}

	// Pass 1: tree creation statements.
	treeByVar := make(map[string]int64)
	for i, line := range lines {
		m := match.Tree(line)
		if m == nil {
			continue
		}
		id, err := s.repo.ResolveTree(ctx, types.Tree{
			Name:    m.Name,
			Title:   m.Title,
			VarName: m.VarName,
			FileID:  fileID,
			Line:    i + 1,
		})
		if err != nil {
			return stats, err
		}
		treeByVar[m.VarName] = id
		stats.Trees++
	}
	if err := s.repo.Flush(ctx); err != nil {
		return stats, err
	}

	// Pass 2: branch registrations.
	branchByVar := make(map[string]int64)
	for i, line := range lines {
		m, err := match.Branch(line)
		if err != nil {
			return stats, &SyntaxError{Path: path, Line: i + 1, Text: line, Err: err}
		}
		if m == nil {
			continue
		}

		treeID, ok := treeByVar[m.TreeVar]
		if !ok {
			// A Branch call on a variable this file never created, e.g.
			// a filter that only adds branches to a tree handed in from
			// outside. Model it as a ghost tree keyed by the variable.
			treeID, err = s.repo.ResolveTree(ctx, types.Tree{
				Name:    m.TreeVar,
				Title:   "",
				VarName: m.TreeVar,
				FileID:  fileID,
				Line:    types.GhostLine,
			})
			if err != nil {
				return stats, err
			}
			treeByVar[m.TreeVar] = treeID
			stats.Ghosts++
		}

		branchID, err := s.repo.InsertBranch(ctx, types.Branch{
			TreeID:   treeID,
			Name:     m.Name,
			LeafDef:  m.LeafDef,
			ValueVar: m.ValueVar,
			FileID:   fileID,
			Line:     i + 1,
		})
		if err != nil {
			return stats, err
		}
		branchByVar[m.ValueVar] = branchID
		stats.Branches++
	}
	if err := s.repo.Flush(ctx); err != nil {
		return stats, err
	}

	// Pass 3: correlate raw lines mentioning branch value variables.
	known := func(tok string) bool {
		_, ok := branchByVar[tok]
		return ok
	}
	for i, line := range lines {
		line = strings.TrimSpace(line)
		for _, ident := range correlate.Identifiers(line, known) {
			ref := types.Reference{
				BranchID: branchByVar[ident],
				FileID:   fileID,
				Line:     i + 1,
				Text:     line,
			}
			cls := correlate.Classify(line, ident)
			if cls.Comment {
				if err := s.repo.InsertComment(ctx, ref); err != nil {
					return stats, err
				}
				stats.Comments++
			}
			if cls.Assign {
				if err := s.repo.InsertAssignment(ctx, ref); err != nil {
					return stats, err
				}
				stats.Assignments++
			}
		}
	}
	if err := s.repo.Flush(ctx); err != nil {
		return stats, err
	}

	return stats, nil
}

// readLines reads a file into memory so the passes can rescan it without
// reopening.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}
