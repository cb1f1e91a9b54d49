package report

import (
	"github.com/shopspring/decimal"

	"github.com/pennybook/pennybook/pkg/budget"
	"github.com/pennybook/pennybook/pkg/category"
	"github.com/pennybook/pennybook/pkg/expense"
	"github.com/pennybook/pennybook/pkg/income"
	"github.com/pennybook/pennybook/pkg/period"
)

// Status classifies spending against a budget.
type Status string

const (
	StatusOnTrack Status = "on-track"
	StatusWarning Status = "warning"
	StatusOver    Status = "over"
	// StatusNotSet is the global status when no budget is configured at all.
	// A 0% reading with no budget is not "on track".
	StatusNotSet Status = "not-set"
)

// CashFlowState qualifies the sign of the net cash flow.
type CashFlowState string

const (
	CashFlowPositive  CashFlowState = "positive"
	CashFlowNegative  CashFlowState = "negative"
	CashFlowBreakEven CashFlowState = "break-even"
)

// warningThresholdPct is inclusive: utilization of exactly 80% is a warning.
const warningThresholdPct = 80

// Row is the derived state of one category.
type Row struct {
	CategoryID     string
	Label          string
	Budgeted       decimal.Decimal
	Spent          decimal.Decimal
	Remaining      decimal.Decimal
	UtilizationPct int64
	Status         Status
}

// Snapshot is the full derived view of one period, ready for rendering.
// It is a value, never stored, recomputed after every mutation.
type Snapshot struct {
	Key             period.Key
	TotalIncome     decimal.Decimal
	TotalBudget     decimal.Decimal
	TotalSpent      decimal.Decimal
	NetCashFlow     decimal.Decimal
	RemainingBudget decimal.Decimal
	UtilizationPct  int64
	GlobalStatus    Status
	CashFlowState   CashFlowState
	Rows            []Row
}

// Build derives a snapshot from the three ledgers. It has no side effects and
// no state of its own. Amounts are carried at full precision; only the
// utilization percentages are rounded.
func Build(key period.Key, incomeLedger income.Ledger, budgetLedger budget.Ledger, expenses *expense.Ledger) Snapshot {
	totalIncome := incomeLedger.Total()
	totalBudget := budgetLedger.Total()
	totalSpent := expenses.TotalForPeriod(key)

	rows := make([]Row, 0, len(category.All()))
	for _, c := range category.All() {
		budgeted := budgetLedger.Get(c.ID)
		spent := expenses.TotalForCategory(key, c.ID)
		rows = append(rows, Row{
			CategoryID:     c.ID,
			Label:          c.Label,
			Budgeted:       budgeted,
			Spent:          spent,
			Remaining:      budgeted.Sub(spent),
			UtilizationPct: utilizationPct(spent, budgeted),
			Status:         classify(spent, budgeted),
		})
	}

	globalStatus := classify(totalSpent, totalBudget)
	if totalBudget.IsZero() {
		globalStatus = StatusNotSet
	}

	return Snapshot{
		Key:             key,
		TotalIncome:     totalIncome,
		TotalBudget:     totalBudget,
		TotalSpent:      totalSpent,
		NetCashFlow:     totalIncome.Sub(totalSpent),
		RemainingBudget: totalBudget.Sub(totalSpent),
		UtilizationPct:  utilizationPct(totalSpent, totalBudget),
		GlobalStatus:    globalStatus,
		CashFlowState:   cashFlowState(totalIncome.Sub(totalSpent)),
		Rows:            rows,
	}
}

// classify applies the status thresholds on the raw amounts, never on the
// rounded percentage: rounding must not hide an overrun or promote 79.99%
// into warning territory.
func classify(spent, budgeted decimal.Decimal) Status {
	if spent.GreaterThan(budgeted) {
		return StatusOver
	}
	threshold := budgeted.Mul(decimal.NewFromInt(warningThresholdPct)).Div(decimal.NewFromInt(100))
	if budgeted.IsPositive() && spent.GreaterThanOrEqual(threshold) {
		return StatusWarning
	}
	return StatusOnTrack
}

func utilizationPct(spent, budgeted decimal.Decimal) int64 {
	if !budgeted.IsPositive() {
		return 0
	}
	return spent.Div(budgeted).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func cashFlowState(net decimal.Decimal) CashFlowState {
	switch {
	case net.IsPositive():
		return CashFlowPositive
	case net.IsNegative():
		return CashFlowNegative
	default:
		return CashFlowBreakEven
	}
}
