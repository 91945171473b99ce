package database

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"codecomp-bot/internal/config"
)

// SheetsClient wraps the Google Sheets API for one spreadsheet. All
// worksheet repositories share a single client.
type SheetsClient struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheetsClient authenticates against the Sheets API using the configured
// service account and returns a client bound to the configured spreadsheet.
func NewSheetsClient(ctx context.Context, cfg *config.Config) (*SheetsClient, error) {
	var opts []option.ClientOption
	switch {
	case cfg.GoogleServiceAccountJSON != "":
		jwtConfig, err := google.JWTConfigFromJSON([]byte(cfg.GoogleServiceAccountJSON), sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account JSON: %w", err)
		}
		opts = append(opts, option.WithHTTPClient(jwtConfig.Client(ctx)))
	case cfg.GoogleCredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	default:
		return nil, fmt.Errorf("no Google credentials configured")
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsClient{svc: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

// readRows fetches the values of an A1 range. Missing trailing cells are
// absent from the returned rows, so callers go through the cell helpers.
func (c *SheetsClient) readRows(ctx context.Context, a1Range string) ([][]interface{}, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, a1Range).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %s: %w", a1Range, err)
	}
	return resp.Values, nil
}

// appendRow appends one row after the last non-empty row of the range's
// worksheet.
func (c *SheetsClient) appendRow(ctx context.Context, a1Range string, row []interface{}) error {
	body := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, a1Range, body).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to range %s: %w", a1Range, err)
	}
	return nil
}

// updateRange overwrites the cells of an A1 range.
func (c *SheetsClient) updateRange(ctx context.Context, a1Range string, values [][]interface{}) error {
	body := &sheets.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1Range, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update range %s: %w", a1Range, err)
	}
	return nil
}

// batchUpdate overwrites several disjoint A1 ranges in a single request.
func (c *SheetsClient) batchUpdate(ctx context.Context, data []*sheets.ValueRange) error {
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	_, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to batch update: %w", err)
	}
	return nil
}

// clearRange blanks the cells of an A1 range without removing formatting.
func (c *SheetsClient) clearRange(ctx context.Context, a1Range string) error {
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, a1Range, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to clear range %s: %w", a1Range, err)
	}
	return nil
}
