// Package sheets pushes expense rows to an external spreadsheet as an
// off-site backup target.
package sheets

import "context"

// ExpenseWriter is the outbound port for spreadsheet backups. Rows are CSV
// cells, header included.
type ExpenseWriter interface {
	Append(ctx context.Context, rows [][]string) error
}
