package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// SheetBackend is the minimal surface of the spreadsheet API the bot needs:
// find the leftmost tab, read and write rectangular cell ranges, and insert
// blank rows.  Keeping it an interface lets tests run against an in-memory
// grid instead of the network.
type SheetBackend interface {
	// FirstSheet returns the leftmost tab of the spreadsheet, by position.
	FirstSheet(ctx context.Context) (SheetRef, error)
	// ReadRange reads a rectangular range (A1 notation) as rows of strings.
	// Trailing empty cells may be absent from a row, as the API delivers them.
	ReadRange(ctx context.Context, a1 string) ([][]string, error)
	// WriteRange overwrites a rectangular range with the given values.
	WriteRange(ctx context.Context, a1 string, rows [][]string) error
	// InsertRows inserts count blank rows at startRow (1-based), shifting
	// that row and everything below it down.
	InsertRows(ctx context.Context, sheetID int64, startRow, count int) error
}

// SheetRef identifies one tab within the spreadsheet.
type SheetRef struct {
	Title string
	ID    int64
}

var (
	ErrNoSheets      = errors.New("spreadsheet has no sheets")
	ErrUntitledSheet = errors.New("leftmost sheet has no title")
)

type googleSheets struct {
	svc           *sheets.Service
	spreadsheetID string
}

// newGoogleSheets authenticates with a service-account key and returns a
// client bound to one spreadsheet.  Constructed once at startup and passed
// to everything that touches the sheet.
func newGoogleSheets(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*googleSheets, error) {
	jwt, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	return &googleSheets{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (g *googleSheets) FirstSheet(ctx context.Context) (SheetRef, error) {
	spreadsheet, err := g.svc.Spreadsheets.Get(g.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return SheetRef{}, fmt.Errorf("Spreadsheets.Get: %w", err)
	}
	var first *sheets.SheetProperties
	for _, sh := range spreadsheet.Sheets {
		if sh.Properties == nil {
			continue
		}
		if first == nil || sh.Properties.Index < first.Index {
			first = sh.Properties
		}
	}
	if first == nil {
		return SheetRef{}, ErrNoSheets
	}
	if first.Title == "" {
		return SheetRef{}, ErrUntitledSheet
	}
	return SheetRef{Title: first.Title, ID: first.SheetId}, nil
}

func (g *googleSheets) ReadRange(ctx context.Context, a1 string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, a1).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("Values.Get %s: %w", a1, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = strCell(c)
		}
		rows[i] = cells
	}
	return rows, nil
}

func (g *googleSheets) WriteRange(ctx context.Context, a1 string, rows [][]string) error {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, c := range row {
			cells[j] = c
		}
		values[i] = cells
	}
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, a1, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("Values.Update %s: %w", a1, err)
	}
	return nil
}

func (g *googleSheets) InsertRows(ctx context.Context, sheetID int64, startRow, count int) error {
	// The dimension range is 0-based and half-open; sheet rows are 1-based.
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			InsertDimension: &sheets.InsertDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(startRow - 1),
					EndIndex:   int64(startRow - 1 + count),
				},
				InheritFromBefore: false,
			},
		}},
	}
	if _, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("BatchUpdate InsertDimension: %w", err)
	}
	return nil
}

// strCell coerces a cell value to a string.  Numeric cells come back from
// the API as float64.
func strCell(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
