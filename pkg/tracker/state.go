package tracker

import (
	"github.com/pennybook/pennybook/internal/utils"
	"github.com/pennybook/pennybook/pkg/budget"
	"github.com/pennybook/pennybook/pkg/expense"
	"github.com/pennybook/pennybook/pkg/income"
	"github.com/pennybook/pennybook/pkg/period"
)

// PeriodState is the full mutable state of one budgeting period: the three
// ledgers plus the key that namespaces them in storage. Exactly one
// PeriodState is active at a time, owned by the Session.
type PeriodState struct {
	Key      period.Key
	Income   income.Ledger
	Budget   budget.Ledger
	Expenses *expense.Ledger
}

// NewPeriodState returns an empty state for a period with no stored data.
func NewPeriodState(key period.Key, clock utils.Clock) PeriodState {
	return PeriodState{
		Key:      key,
		Expenses: expense.NewLedger(clock),
	}
}
