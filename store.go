package main

import (
	"context"
	"fmt"
	"strings"
)

// Store performs the row operations against the located table ranges.  The
// spreadsheet is the only persistence layer; the Store itself holds nothing
// but its collaborators.
//
// Column layout is fixed: B = purpose, C = goal, D = status.  Column A is
// not touched.

const statusDone = "done"

// TodoItem is one row of a person's table.  RowNumber is the absolute
// 1-based sheet row, valid only as long as no insert has shifted the table
// since it was read.
type TodoItem struct {
	Purpose   string
	Goal      string
	Status    string
	RowNumber int
}

func (t TodoItem) done() bool {
	return strings.ToLower(strings.TrimSpace(t.Status)) == statusDone
}

type Store struct {
	sheets   SheetBackend
	registry *Registry
}

func NewStore(sheets SheetBackend, registry *Registry) *Store {
	return &Store{sheets: sheets, registry: registry}
}

// splitPayload splits free text into purpose and goal at the first comma.
// Everything after the first comma is the goal, inner commas preserved.
// No comma means no goal.
func splitPayload(text string) (purpose, goal string) {
	parts := strings.SplitN(text, ",", 2)
	purpose = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		goal = strings.TrimSpace(parts[1])
	}
	return purpose, goal
}

// AddTodo inserts one blank row at the top of the identity's data block and
// writes purpose and goal into it, so the newest item is always first.  The
// insert and the write are two separate calls; if the write fails the extra
// blank row stays; no rollback.
func (s *Store) AddTodo(ctx context.Context, id Identity, purpose, goal string) error {
	sheet, err := s.sheets.FirstSheet(ctx)
	if err != nil {
		return err
	}
	row, err := s.dataStartRow(ctx, sheet, id)
	if err != nil {
		return err
	}
	if err := s.sheets.InsertRows(ctx, sheet.ID, row, 1); err != nil {
		return err
	}
	rng := fmt.Sprintf("'%s'!B%d:C%d", sheet.Title, row, row)
	return s.sheets.WriteRange(ctx, rng, [][]string{{purpose, goal}})
}

// ListTodos reads the identity's whole data range and returns the pending
// items in sheet order (newest first, by the insert invariant).  Rows with a
// blank purpose are structural gaps, not items; rows whose status is "done"
// are filtered out.  Every returned item carries its absolute row number for
// a later MarkDone.
func (s *Store) ListTodos(ctx context.Context, id Identity) ([]TodoItem, error) {
	sheet, err := s.sheets.FirstSheet(ctx)
	if err != nil {
		return nil, err
	}
	dataStart, dataEnd, err := s.tableBounds(ctx, sheet, id)
	if err != nil {
		return nil, err
	}
	if dataEnd < dataStart {
		return nil, nil
	}
	rng := fmt.Sprintf("'%s'!B%d:D%d", sheet.Title, dataStart, dataEnd)
	rows, err := s.sheets.ReadRange(ctx, rng)
	if err != nil {
		return nil, err
	}
	var items []TodoItem
	for i, row := range rows {
		item := TodoItem{RowNumber: dataStart + i}
		if len(row) > 0 {
			item.Purpose = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			item.Goal = strings.TrimSpace(row[1])
		}
		if len(row) > 2 {
			item.Status = row[2]
		}
		if item.Purpose == "" || item.done() {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// MarkDone overwrites the status cell of the given absolute row with "done".
// The row number must come from a recent ListTodos; a concurrent insert can
// shift rows underneath it, which is an accepted limitation of the
// single-process deployment.  Marking an already-done row just rewrites the
// same value.
func (s *Store) MarkDone(ctx context.Context, row int) error {
	sheet, err := s.sheets.FirstSheet(ctx)
	if err != nil {
		return err
	}
	rng := fmt.Sprintf("'%s'!D%d", sheet.Title, row)
	return s.sheets.WriteRange(ctx, rng, [][]string{{statusDone}})
}
