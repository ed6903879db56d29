// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the extracted tree model in a SQLite database.
// The write surface is deliberately narrow: insert-or-verify for trees,
// append-only inserts for everything else, and natural-key lookups. The
// extraction engine never updates or deletes rows.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/glenn-horton-smith/treeinfo/pkg/types"
)

// tables lists the five entity tables, in creation order.
var tables = []string{"srcfile", "tree", "branch", "srccomment", "srcassign"}

// Store is the SQLite-backed repository. Writes between Flush calls
// accumulate in one transaction, so each extraction pass lands atomically.
type Store struct {
	db *sql.DB
	tx *sql.Tx
}

// Open opens the SQLite database at cfg.DBPath. It does not create the
// schema; see Init.
func Open(cfg types.StoreConfig) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close rolls back any unflushed writes and releases the connection.
func (s *Store) Close() error {
	if s.tx != nil {
		s.tx.Rollback()
		s.tx = nil
	}
	return s.db.Close()
}

// Init creates the entity tables and indexes if they do not exist.
// Schema provisioning is kept out of the scan path on purpose: a scan
// against an unprovisioned database fails instead of silently creating
// an empty one.
func (s *Store) Init(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS srcfile (
			fileid INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tree (
			treeid INTEGER PRIMARY KEY AUTOINCREMENT,
			treename TEXT NOT NULL,
			treetitle TEXT NOT NULL,
			tvarname TEXT NOT NULL,
			fileid INTEGER NOT NULL REFERENCES srcfile(fileid),
			fileline INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS branch (
			branchid INTEGER PRIMARY KEY AUTOINCREMENT,
			treeid INTEGER NOT NULL REFERENCES tree(treeid),
			branchname TEXT NOT NULL,
			bleafdef TEXT NOT NULL,
			bvalvarname TEXT NOT NULL,
			fileid INTEGER NOT NULL REFERENCES srcfile(fileid),
			fileline INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS srccomment (
			commenttext TEXT NOT NULL,
			branchid INTEGER NOT NULL REFERENCES branch(branchid),
			fileid INTEGER NOT NULL REFERENCES srcfile(fileid),
			fileline INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS srcassign (
			assigntext TEXT NOT NULL,
			branchid INTEGER NOT NULL REFERENCES branch(branchid),
			fileid INTEGER NOT NULL REFERENCES srcfile(fileid),
			fileline INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_srcfile_filename ON srcfile(filename)`,
		`CREATE INDEX IF NOT EXISTS idx_tree_name_file ON tree(treename, fileid)`,
		`CREATE INDEX IF NOT EXISTS idx_branch_tree_name ON branch(treeid, branchname)`,
		`CREATE INDEX IF NOT EXISTS idx_srccomment_file_branch ON srccomment(fileid, branchid)`,
		`CREATE INDEX IF NOT EXISTS idx_srcassign_file_branch ON srcassign(fileid, branchid)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Ready reports an error naming any missing entity tables. Used by the
// scan command to fail early against an unprovisioned database.
func (s *Store) Ready(ctx context.Context) error {
	var missing []string
	for _, name := range tables {
		var n int
		err := s.db.QueryRowContext(ctx,
			`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, name,
		).Scan(&n)
		if err != nil {
			return fmt.Errorf("checking schema: %w", err)
		}
		if n == 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("database not initialized: missing table(s) %s (run init first)",
			strings.Join(missing, ", "))
	}
	return nil
}

// writer returns the open transaction, starting one if needed, so writes
// accumulate until the next Flush.
func (s *Store) writer(ctx context.Context) (*sql.Tx, error) {
	if s.tx == nil {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("beginning transaction: %w", err)
		}
		s.tx = tx
	}
	return s.tx, nil
}

// Flush commits all writes since the previous Flush. The extraction
// engine calls it after each pass and at end of file, so a crash leaves
// at most one incomplete pass.
func (s *Store) Flush(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// querier routes reads through the open transaction when there is one,
// so resolve-or-insert sequences observe their own unflushed writes.
func (s *Store) querier() interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
} {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// EnsureSourceFile returns the surrogate id for path, inserting the row
// on first sighting.
func (s *Store) EnsureSourceFile(ctx context.Context, path string) (int64, error) {
	q := s.querier()
	var id int64
	err := q.QueryRowContext(ctx,
		`SELECT fileid FROM srcfile WHERE filename = ?`, path).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("looking up source file %s: %w", path, err)
	}

	tx, err := s.writer(ctx)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO srcfile (filename) VALUES (?)`, path)
	if err != nil {
		return 0, fmt.Errorf("inserting source file %s: %w", path, err)
	}
	return res.LastInsertId()
}

// ResolveTree returns the id for the tree with natural key
// (t.Name, t.FileID), inserting it on first sighting. If a row already
// exists its title, variable name, and line must match t exactly;
// a mismatch is a ConsistencyError, and more than one existing row for
// the key is a ShapeError signalling upstream corruption.
func (s *Store) ResolveTree(ctx context.Context, t types.Tree) (int64, error) {
	stored, err := s.treesByKey(ctx, t.Name, t.FileID)
	if err != nil {
		return 0, err
	}

	if len(stored) == 0 {
		// The usual case for a fresh database.
		tx, err := s.writer(ctx)
		if err != nil {
			return 0, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tree (treename, treetitle, tvarname, fileid, fileline)
			 VALUES (?, ?, ?, ?, ?)`,
			t.Name, t.Title, t.VarName, t.FileID, t.Line)
		if err != nil {
			return 0, fmt.Errorf("inserting tree %s: %w", t.Name, err)
		}
		stored, err = s.treesByKey(ctx, t.Name, t.FileID)
		if err != nil {
			return 0, err
		}
	}

	switch len(stored) {
	case 1:
		// Possible when rescanning a file already processed: the stored
		// row must agree with what this scan derived.
		got := stored[0]
		if got.Title != t.Title || got.VarName != t.VarName || got.Line != t.Line {
			return 0, &ConsistencyError{Observed: t, Stored: got}
		}
		return got.ID, nil
	default:
		return 0, &ShapeError{
			Entity: "tree",
			Key:    fmt.Sprintf("treename=%s fileid=%d", t.Name, t.FileID),
			Count:  len(stored),
		}
	}
}

func (s *Store) treesByKey(ctx context.Context, name string, fileID int64) ([]types.Tree, error) {
	rows, err := s.querier().QueryContext(ctx,
		`SELECT treeid, treename, treetitle, tvarname, fileid, fileline
		 FROM tree WHERE treename = ? AND fileid = ?`, name, fileID)
	if err != nil {
		return nil, fmt.Errorf("looking up tree %s: %w", name, err)
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

// InsertBranch appends a branch row and returns the id of the earliest
// row for (b.TreeID, b.Name). Re-registration of the same branch name is
// legal and keeps the first row as the one references attach to.
func (s *Store) InsertBranch(ctx context.Context, b types.Branch) (int64, error) {
	tx, err := s.writer(ctx)
	if err != nil {
		return 0, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO branch (treeid, branchname, bleafdef, bvalvarname, fileid, fileline)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.TreeID, b.Name, b.LeafDef, b.ValueVar, b.FileID, b.Line)
	if err != nil {
		return 0, fmt.Errorf("inserting branch %s: %w", b.Name, err)
	}

	var id int64
	err = s.querier().QueryRowContext(ctx,
		`SELECT branchid FROM branch WHERE treeid = ? AND branchname = ?
		 ORDER BY branchid LIMIT 1`,
		b.TreeID, b.Name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolving branch %s: %w", b.Name, err)
	}
	return id, nil
}

// InsertComment appends a comment reference row.
func (s *Store) InsertComment(ctx context.Context, r types.Reference) error {
	tx, err := s.writer(ctx)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO srccomment (commenttext, branchid, fileid, fileline)
		 VALUES (?, ?, ?, ?)`,
		r.Text, r.BranchID, r.FileID, r.Line)
	if err != nil {
		return fmt.Errorf("inserting comment reference: %w", err)
	}
	return nil
}

// InsertAssignment appends an assignment reference row.
func (s *Store) InsertAssignment(ctx context.Context, r types.Reference) error {
	tx, err := s.writer(ctx)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO srcassign (assigntext, branchid, fileid, fileline)
		 VALUES (?, ?, ?, ?)`,
		r.Text, r.BranchID, r.FileID, r.Line)
	if err != nil {
		return fmt.Errorf("inserting assignment reference: %w", err)
	}
	return nil
}
