// Package license wraps the Google Sheets spreadsheet used for
// license bookkeeping behind a small column-store interface.
package license

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// Store is the add-row / remove-row / read-column surface the rest of
// the backend needs from the bookkeeping sheet.
type Store interface {
	AddRow(ctx context.Context, values []string) error
	// RemoveRow deletes the first row whose first cell equals key.
	RemoveRow(ctx context.Context, key string) error
	ReadColumn(ctx context.Context, column string) ([]string, error)
}

type sheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsStore builds a Store backed by one sheet of one
// spreadsheet, authenticated with a service-account key file.
func NewSheetsStore(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (Store, error) {
	raw, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}
	cfg, err := google.JWTConfigFromJSON(raw, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithTokenSource(cfg.TokenSource(ctx)))
	if err != nil {
		return nil, err
	}
	return &sheetsStore{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func (s *sheetsStore) AddRow(ctx context.Context, values []string) error {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.sheetName, &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (s *sheetsStore) RemoveRow(ctx context.Context, key string) error {
	keys, err := s.ReadColumn(ctx, "A")
	if err != nil {
		return err
	}
	rowIdx := -1
	for i, k := range keys {
		if k == key {
			rowIdx = i
			break
		}
	}
	if rowIdx < 0 {
		return nil
	}
	sheetID, err := s.sheetID(ctx)
	if err != nil {
		return err
	}
	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIdx),
					EndIndex:   int64(rowIdx + 1),
				},
			},
		}},
	}).Context(ctx).Do()
	return err
}

func (s *sheetsStore) ReadColumn(ctx context.Context, column string) ([]string, error) {
	rng := fmt.Sprintf("%s!%s:%s", s.sheetName, column, column)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 {
			out = append(out, "")
			continue
		}
		out = append(out, fmt.Sprint(row[0]))
	}
	return out, nil
}

func (s *sheetsStore) sheetID(ctx context.Context) (int64, error) {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.sheetName {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", s.sheetName)
}

// Noop is the Store used when no spreadsheet is configured.
type Noop struct{}

func (Noop) AddRow(ctx context.Context, values []string) error { return nil }

func (Noop) RemoveRow(ctx context.Context, key string) error { return nil }

func (Noop) ReadColumn(ctx context.Context, column string) ([]string, error) { return nil, nil }
