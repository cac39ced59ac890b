// Package google exports month schedules to a Google Sheets spreadsheet,
// one tab per month.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/export"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
}

var _ export.ScheduleExporter = (*Client)(nil)

// New creates a Sheets exporter. sheetBase is the tab name prefix, the
// month key is appended per tab ("Bilancio 2025-06").
func New(ctx context.Context, spreadsheetID, sheetBase string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetBase) == "" {
		sheetBase = "Bilancio"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// ExportMonth rewrites the month's tab from scratch: instance rows first,
// then a totals block. Clearing before writing keeps repeated exports
// idempotent.
func (c *Client) ExportMonth(ctx context.Context, schedule core.MonthSchedule) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	sheetName := fmt.Sprintf("%s %04d-%02d", c.sheetBase, schedule.Year, schedule.Month)

	if err := c.ensureSheet(ctx, sheetName); err != nil {
		return err
	}

	clearRange := fmt.Sprintf("%s!A:G", sheetName)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheetName, err)
	}

	rows := buildRows(schedule)
	writeRange := fmt.Sprintf("%s!A1", sheetName)
	vr := &gsheet.ValueRange{Values: rows}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write sheet %s: %w", sheetName, err)
	}

	slog.InfoContext(ctx, "Exported month schedule",
		"sheet", sheetName,
		"rows", len(rows))
	return nil
}

// ensureSheet adds the tab when missing. An "already exists" error from
// the API is fine.
func (c *Client) ensureSheet(ctx context.Context, sheetName string) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: sheetName},
			},
		}},
	}
	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("add sheet %s: %w", sheetName, err)
	}
	return nil
}

func buildRows(schedule core.MonthSchedule) [][]any {
	names := make(map[int64]string, len(schedule.Overview.ByCategory))
	for _, ca := range schedule.Overview.ByCategory {
		names[ca.CategoryID] = ca.Name
	}

	rows := [][]any{
		{"Giorno", "Titolo", "Categoria", "Persona", "Importo", "Tipo", "Pagato"},
	}

	for _, inst := range schedule.Instances {
		// Base records of recurring templates carry no dated occurrence.
		if inst.Recurring && !inst.RecurringInstance {
			continue
		}
		d := inst.InstanceDate
		if d.Year() != schedule.Year || int(d.Month()) != schedule.Month {
			continue
		}

		kind := "uscita"
		if !inst.IsExpense {
			kind = "entrata"
		}
		paid := "no"
		if inst.Paid {
			paid = "sì"
		}

		rows = append(rows, []any{
			d.Day(),
			inst.Title,
			names[inst.CategoryID],
			inst.Person,
			inst.Amount.Euros(),
			kind,
			paid,
		})
	}

	ov := schedule.Overview
	rows = append(rows,
		[]any{},
		[]any{"Entrate", ov.Income.Euros()},
		[]any{"Uscite", ov.Expense.Euros()},
		[]any{"Netto", ov.Net.Euros()},
		[]any{"Risparmi", ov.Savings.Euros()},
	)

	return rows
}
