package budget

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pennybook/pennybook/pkg/category"
	"github.com/pennybook/pennybook/pkg/money"
)

var ErrEmptyBudget = errors.New("budget submission has no categories")

// Ledger maps category ids to budgeted amounts for one period. Categories
// without an entry have budget zero.
type Ledger struct {
	amounts map[string]decimal.Decimal
}

// Set assigns a budget to one category, clamping negatives to zero.
func (l *Ledger) Set(categoryID string, amount decimal.Decimal) error {
	if _, err := category.ByID(categoryID); err != nil {
		return err
	}
	if l.amounts == nil {
		l.amounts = make(map[string]decimal.Decimal)
	}
	l.amounts[categoryID] = money.Clamp(amount)
	return nil
}

// Get returns the budget for a category, zero when unset.
func (l *Ledger) Get(categoryID string) decimal.Decimal {
	amount, ok := l.amounts[categoryID]
	if !ok {
		return decimal.Zero
	}
	return amount
}

// Total sums all budgeted amounts.
func (l *Ledger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range l.amounts {
		total = total.Add(amount)
	}
	return total
}

// Replace is the atomic full-form save: the submitted set becomes the entire
// mapping, zeroing categories it omits. A submission with no positive amount
// or with an unknown category id rejects the whole operation without touching
// stored state.
func (l *Ledger) Replace(amounts map[string]decimal.Decimal) error {
	next := make(map[string]decimal.Decimal, len(amounts))
	hasPositive := false
	for categoryID, amount := range amounts {
		if !category.Exists(categoryID) {
			return fmt.Errorf("%w: %q", category.ErrUnknownCategory, categoryID)
		}
		clamped := money.Clamp(amount)
		if clamped.IsPositive() {
			hasPositive = true
		}
		next[categoryID] = clamped
	}
	if !hasPositive {
		return ErrEmptyBudget
	}
	l.amounts = next
	return nil
}

// Amounts returns a copy of the mapping, for serialization and form
// rendering.
func (l *Ledger) Amounts() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(l.amounts))
	for categoryID, amount := range l.amounts {
		out[categoryID] = amount
	}
	return out
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() Ledger {
	return Ledger{amounts: l.Amounts()}
}
