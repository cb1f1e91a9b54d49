package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/pennybook/pennybook/internal/config"
)

// GoogleClient appends rows to one sheet of a Google spreadsheet using a
// service account.
type GoogleClient struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ExpenseWriter = (*GoogleClient)(nil)

func NewGoogleClient(ctx context.Context, cfg config.Sheets) (*GoogleClient, error) {
	if cfg.SpreadsheetId == "" {
		return nil, errors.New("sheets backup requires a spreadsheet id")
	}
	credentials, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("could not read sheets credentials: %w", err)
	}
	jwtConfig, err := google.JWTConfigFromJSON(credentials, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("could not parse sheets credentials: %w", err)
	}
	svc, err := gsheet.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("could not create sheets service: %w", err)
	}
	return &GoogleClient{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetId,
		sheetName:     cfg.SheetName,
	}, nil
}

// Append writes the rows below the sheet's existing content.
func (c *GoogleClient) Append(ctx context.Context, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	// Existing row count determines where the new block starts.
	dims, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, fmt.Sprintf("%s!A:A", c.sheetName)).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("could not read sheet %s: %w", c.sheetName, err)
	}
	startRow := len(dims.Values) + 1

	values := make([][]any, 0, len(rows))
	width := 0
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		values = append(values, cells)
		if len(row) > width {
			width = len(row)
		}
	}

	writeRange := fmt.Sprintf("%s!A%d:%c%d",
		c.sheetName, startRow, rune('A'+width-1), startRow+len(rows)-1)
	_, err = c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, writeRange, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("could not append to sheet %s: %w", c.sheetName, err)
	}
	log.Infof("backed up %d rows to sheet %s starting at row %d", len(rows), c.sheetName, startRow)
	return nil
}
