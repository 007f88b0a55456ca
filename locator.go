package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Table location.  Row positions are never stored anywhere: they are
// recomputed from static configuration or by scanning sheet content on every
// call, so manual edits to the spreadsheet need no resynchronization.

const (
	// A table with no table after it is bounded at anchor+tableSafetyRows.
	tableSafetyRows = 200
	// One blank buffer row is left before the next table's header, so the
	// previous table ends two rows above it.
	tableGapRows = 2
)

// HeaderNotFoundError reports that no row in the configured search range
// looked like a table header.  The bounds are included so the reply can name
// what was searched.
type HeaderNotFoundError struct {
	Handle     string
	Start, End int
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("no header row for %s in rows %d-%d", e.Handle, e.Start, e.End)
}

// findHeaderRow scans the identity's configured search range for the first
// row whose three tracked cells case-insensitively contain "purpose", "goal"
// and "status".  Substring match, not exact: "Purpose (what)" still counts.
// Returns the absolute 1-based row.
func (s *Store) findHeaderRow(ctx context.Context, sheet SheetRef, id Identity) (int, error) {
	loc := id.Location
	rng := fmt.Sprintf("'%s'!B%d:D%d", sheet.Title, loc.SearchStart, loc.SearchEnd)
	rows, err := s.sheets.ReadRange(ctx, rng)
	if err != nil {
		return 0, err
	}
	for i, row := range rows {
		if isHeaderRow(row) {
			return loc.SearchStart + i, nil
		}
	}
	return 0, &HeaderNotFoundError{Handle: id.Handle, Start: loc.SearchStart, End: loc.SearchEnd}
}

func isHeaderRow(cells []string) bool {
	if len(cells) < 3 {
		return false
	}
	return containsFold(cells[0], "purpose") &&
		containsFold(cells[1], "goal") &&
		containsFold(cells[2], "status")
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// anchorRow is the row a table hangs off: the configured start row for the
// fixed variant, or the located header row for the search variant.
func (s *Store) anchorRow(ctx context.Context, sheet SheetRef, id Identity) (int, error) {
	if id.Location.fixed() {
		return id.Location.StartRow, nil
	}
	return s.findHeaderRow(ctx, sheet, id)
}

// dataStartRow is where the identity's data rows begin.  For the fixed
// variant that is the configured row itself; for the search variant data
// starts just below the header.
func (s *Store) dataStartRow(ctx context.Context, sheet SheetRef, id Identity) (int, error) {
	anchor, err := s.anchorRow(ctx, sheet, id)
	if err != nil {
		return 0, err
	}
	if id.Location.fixed() {
		return anchor, nil
	}
	return anchor + 1, nil
}

// tableBounds computes the inclusive data row range for one identity.  The
// end is derived from the nearest other table below this one: the smallest
// other-identity anchor strictly greater than ours, minus the gap.  Other
// identities whose header search fails are simply not boundaries; if nobody
// is below us the safety bound applies.
func (s *Store) tableBounds(ctx context.Context, sheet SheetRef, id Identity) (dataStart, dataEnd int, err error) {
	anchor, err := s.anchorRow(ctx, sheet, id)
	if err != nil {
		return 0, 0, err
	}
	dataStart = anchor
	if !id.Location.fixed() {
		dataStart = anchor + 1
	}

	next := 0
	for _, other := range s.registry.Others(id.Handle) {
		a, err := s.anchorRow(ctx, sheet, other)
		if err != nil {
			var notFound *HeaderNotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return 0, 0, err
		}
		if a > anchor && (next == 0 || a < next) {
			next = a
		}
	}
	if next > 0 {
		dataEnd = next - tableGapRows
	} else {
		dataEnd = anchor + tableSafetyRows
	}
	return dataStart, dataEnd, nil
}
