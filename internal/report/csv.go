// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes one row per branch with its correlated comment and
// assignment lines, ordered by leaf definition, tree name, then file.
func WriteCSV(ctx context.Context, src Source, w io.Writer) error {
	rows, err := src.BranchRows(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, r := range rows {
		comments, err := src.Comments(ctx, r.FileID, r.BranchID)
		if err != nil {
			return err
		}
		assigns, err := src.Assignments(ctx, r.FileID, r.BranchID)
		if err != nil {
			return err
		}

		record := []string{
			r.LeafDef,
			r.TreeName,
			r.FileName + ":" + strconv.Itoa(r.Line),
			joinRefs(comments),
			joinRefs(assigns),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
