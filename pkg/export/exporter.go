package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennybook/pennybook/internal/utils"
	"github.com/pennybook/pennybook/pkg/budget"
	"github.com/pennybook/pennybook/pkg/category"
	"github.com/pennybook/pennybook/pkg/expense"
	"github.com/pennybook/pennybook/pkg/income"
	"github.com/pennybook/pennybook/pkg/money"
	"github.com/pennybook/pennybook/pkg/period"
	"github.com/pennybook/pennybook/pkg/report"
	"github.com/pennybook/pennybook/pkg/tracker"
)

// BackupVersion tags the backup document format.
const BackupVersion = 1

// PeriodBackup carries one period's ledgers in their stored blob form so the
// codecs stay the single source of truth for the shape.
type PeriodBackup struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Income   json.RawMessage `json:"income"`
	Budget   json.RawMessage `json:"budget"`
	Expenses json.RawMessage `json:"expenses"`
	Summary  SummaryBackup   `json:"summary"`
}

// SummaryBackup duplicates the derived totals for human inspection of the
// backup file. Restore ignores it; the ledgers are authoritative.
type SummaryBackup struct {
	TotalIncome     decimal.Decimal `json:"totalIncome"`
	TotalBudget     decimal.Decimal `json:"totalBudget"`
	TotalSpent      decimal.Decimal `json:"totalSpent"`
	RemainingBudget decimal.Decimal `json:"remainingBudget"`
}

type Backup struct {
	Version    int            `json:"version"`
	ExportedAt time.Time      `json:"exportedAt"`
	Currency   string         `json:"currency"`
	Periods    []PeriodBackup `json:"periods"`
}

// Exporter turns stored period state into downloadable documents and
// restores them.
type Exporter struct {
	store *tracker.Store
	clock utils.Clock
}

func NewExporter(store *tracker.Store, clock utils.Clock) *Exporter {
	return &Exporter{store: store, clock: clock}
}

// ExpenseRows renders the period's expenses as CSV cells, newest first.
func (e *Exporter) ExpenseRows(state tracker.PeriodState) [][]string {
	rows := [][]string{{"Date", "Category", "Amount", "Description"}}
	for record := range state.Expenses.ForPeriod(state.Key) {
		label := record.CategoryID
		if c, err := category.ByID(record.CategoryID); err == nil {
			label = c.Label
		}
		rows = append(rows, []string{
			record.Date.Format(expense.DateLayout),
			label,
			record.Amount.StringFixed(2),
			record.Description,
		})
	}
	return rows
}

// ReportRows renders the monthly report: a summary block followed by the
// per-category breakdown in registry order.
func (e *Exporter) ReportRows(state tracker.PeriodState) [][]string {
	snapshot := report.Build(state.Key, state.Income, state.Budget, state.Expenses)
	monthName := time.Month(state.Key.Month + 1).String()

	rows := [][]string{
		{"Monthly Report"},
		{fmt.Sprintf("Year: %d, Month: %s", state.Key.Year, monthName)},
		{},
		{"SUMMARY"},
		{"Total Income", snapshot.TotalIncome.StringFixed(2)},
		{"Total Budget", snapshot.TotalBudget.StringFixed(2)},
		{"Total Spent", snapshot.TotalSpent.StringFixed(2)},
		{"Remaining", snapshot.RemainingBudget.StringFixed(2)},
		{},
		{"CATEGORY BREAKDOWN"},
		{"Category", "Budget", "Spent", "Remaining"},
	}
	for _, row := range snapshot.Rows {
		rows = append(rows, []string{
			row.Label,
			row.Budgeted.StringFixed(2),
			row.Spent.StringFixed(2),
			row.Remaining.StringFixed(2),
		})
	}
	return rows
}

// BackupAll collects every stored period into one restorable document.
func (e *Exporter) BackupAll(ctx context.Context) (Backup, error) {
	keys, err := e.store.PeriodKeys(ctx)
	if err != nil {
		return Backup{}, fmt.Errorf("could not list stored periods: %w", err)
	}

	backup := Backup{
		Version:    BackupVersion,
		ExportedAt: e.clock.Now().UTC(),
		Currency:   string(e.store.Currency(ctx)),
		Periods:    make([]PeriodBackup, 0, len(keys)),
	}
	for _, key := range keys {
		state, err := e.store.Load(ctx, key)
		if err != nil {
			return Backup{}, err
		}
		periodBackup, err := backupPeriod(state)
		if err != nil {
			return Backup{}, fmt.Errorf("could not back up %s: %w", key, err)
		}
		backup.Periods = append(backup.Periods, periodBackup)
	}
	return backup, nil
}

// Restore writes every period of the backup into the store, replacing
// whatever those periods held before. Periods outside the backup are left
// alone. Unlike loading, restore is strict: a blob that does not decode
// fails the whole operation rather than silently dropping data.
func (e *Exporter) Restore(ctx context.Context, backup Backup) error {
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %d", backup.Version)
	}
	for _, p := range backup.Periods {
		key, err := period.New(p.Year, p.Month)
		if err != nil {
			return fmt.Errorf("backup contains invalid period %d-%d: %w", p.Year, p.Month, err)
		}
		state := tracker.NewPeriodState(key, e.clock)
		if state.Income, err = income.Decode(string(p.Income)); err != nil {
			return fmt.Errorf("backup income for %s: %w", key, err)
		}
		if state.Budget, err = budget.Decode(string(p.Budget)); err != nil {
			return fmt.Errorf("backup budget for %s: %w", key, err)
		}
		if state.Expenses, err = expense.Decode(string(p.Expenses), e.clock); err != nil {
			return fmt.Errorf("backup expenses for %s: %w", key, err)
		}
		if err := e.store.Save(ctx, state); err != nil {
			return err
		}
	}
	if currency, ok := money.ParseCurrency(backup.Currency); ok {
		if err := e.store.SetCurrency(ctx, currency); err != nil {
			return err
		}
	}
	return nil
}

func backupPeriod(state tracker.PeriodState) (PeriodBackup, error) {
	incomeBlob, err := income.Encode(state.Income)
	if err != nil {
		return PeriodBackup{}, err
	}
	budgetBlob, err := budget.Encode(state.Budget)
	if err != nil {
		return PeriodBackup{}, err
	}
	expensesBlob, err := expense.Encode(state.Expenses)
	if err != nil {
		return PeriodBackup{}, err
	}
	totalBudget := state.Budget.Total()
	totalSpent := state.Expenses.TotalForPeriod(state.Key)
	return PeriodBackup{
		Year:     state.Key.Year,
		Month:    state.Key.Month,
		Income:   json.RawMessage(incomeBlob),
		Budget:   json.RawMessage(budgetBlob),
		Expenses: json.RawMessage(expensesBlob),
		Summary: SummaryBackup{
			TotalIncome:     state.Income.Total(),
			TotalBudget:     totalBudget,
			TotalSpent:      totalSpent,
			RemainingBudget: totalBudget.Sub(totalSpent),
		},
	}, nil
}
