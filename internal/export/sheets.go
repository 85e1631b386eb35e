package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// SheetsResult locates the tab a document was written to.
type SheetsResult struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	Sheet         string `json:"sheet"`
	URL           string `json:"url"`
}

type sheetWriter interface {
	AddSheet(ctx context.Context, spreadsheetID, title string) (sheetID int64, err error)
	WriteValues(ctx context.Context, spreadsheetID, rng string, values [][]any) error
}

// SheetsRenderer writes each document to a new tab of one spreadsheet.
type SheetsRenderer struct {
	api           sheetWriter
	spreadsheetID string
}

func NewSheetsRenderer(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*SheetsRenderer, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsRenderer{api: googleSheets{svc: svc}, spreadsheetID: spreadsheetID}, nil
}

func (r *SheetsRenderer) Render(ctx context.Context, doc Document) (SheetsResult, error) {
	title := sheetTitle(doc)
	sheetID, err := r.api.AddSheet(ctx, r.spreadsheetID, title)
	if err != nil {
		return SheetsResult{}, fmt.Errorf("add sheet %q: %w", title, err)
	}

	grid := doc.Grid()
	values := make([][]any, len(grid))
	for i, row := range grid {
		cells := make([]any, len(row))
		for j, c := range row {
			cells[j] = c
		}
		values[i] = cells
	}
	if err := r.api.WriteValues(ctx, r.spreadsheetID, fmt.Sprintf("'%s'!A1", title), values); err != nil {
		return SheetsResult{}, fmt.Errorf("write sheet %q: %w", title, err)
	}

	slog.InfoContext(ctx, "Report exported to Google Sheets", "sheet", title, "rows", len(values))
	return SheetsResult{
		SpreadsheetID: r.spreadsheetID,
		Sheet:         title,
		URL:           fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%d", r.spreadsheetID, sheetID),
	}, nil
}

// sheetTitle is unique per minute and free of the characters Sheets rejects.
func sheetTitle(doc Document) string {
	title := strings.NewReplacer("'", "", "[", "", "]", "", "*", "", "?", "", "/", "-", "\\", "-", ":", "").Replace(doc.Title)
	return fmt.Sprintf("%s %s", title, doc.GeneratedAt.Format("2006-01-02 15h04"))
}

type googleSheets struct {
	svc *gsheet.Service
}

func (g googleSheets) AddSheet(ctx context.Context, spreadsheetID, title string) (int64, error) {
	resp, err := g.svc.Spreadsheets.BatchUpdate(spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, errors.New("empty add sheet reply")
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func (g googleSheets) WriteValues(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	_, err := g.svc.Spreadsheets.Values.Update(spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}
