package income

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pennybook/pennybook/pkg/money"
)

var (
	ErrEntryNotFound = errors.New("income entry not found")
	ErrUnknownList   = errors.New("unknown income list")
)

// List names one of the two itemized income collections.
type List string

const (
	ListOneToOne List = "oneToOne"
	ListGroup    List = "group"
)

// Entry is one named income row. ID is a stable identifier so deletion is
// never position-based.
type Entry struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Ledger holds all income sources of one period. Amounts are never negative;
// every setter clamps its input.
type Ledger struct {
	FixedMonthly decimal.Decimal `json:"fixedMonthly"`
	OneToOne     []Entry         `json:"oneToOne"`
	Group        []Entry         `json:"group"`
	Investment   decimal.Decimal `json:"investment"`
	Other        decimal.Decimal `json:"other"`
}

// AddOneToOne appends a zeroed one-to-one entry and returns it.
func (l *Ledger) AddOneToOne() Entry {
	entry := Entry{ID: uuid.NewString(), Amount: decimal.Zero}
	l.OneToOne = append(l.OneToOne, entry)
	return entry
}

// AddGroup appends a zeroed group entry and returns it.
func (l *Ledger) AddGroup() Entry {
	entry := Entry{ID: uuid.NewString(), Amount: decimal.Zero}
	l.Group = append(l.Group, entry)
	return entry
}

// RemoveEntry deletes the entry with the given id from the given list. The
// relative order of the remaining entries is preserved.
func (l *Ledger) RemoveEntry(list List, id string) error {
	entries, err := l.entries(list)
	if err != nil {
		return err
	}
	for i, entry := range *entries {
		if entry.ID == id {
			*entries = append((*entries)[:i], (*entries)[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s/%s", ErrEntryNotFound, list, id)
}

// SetEntryName updates the display name of an entry.
func (l *Ledger) SetEntryName(list List, id string, name string) error {
	entry, err := l.find(list, id)
	if err != nil {
		return err
	}
	entry.Name = name
	return nil
}

// SetEntryAmount updates the amount of an entry, clamping negatives to zero.
func (l *Ledger) SetEntryAmount(list List, id string, amount decimal.Decimal) error {
	entry, err := l.find(list, id)
	if err != nil {
		return err
	}
	entry.Amount = money.Clamp(amount)
	return nil
}

func (l *Ledger) SetFixedMonthly(amount decimal.Decimal) {
	l.FixedMonthly = money.Clamp(amount)
}

func (l *Ledger) SetInvestment(amount decimal.Decimal) {
	l.Investment = money.Clamp(amount)
}

func (l *Ledger) SetOther(amount decimal.Decimal) {
	l.Other = money.Clamp(amount)
}

// Total sums every income source. The fixed monthly salary is additive with
// the itemized breakdown.
func (l *Ledger) Total() decimal.Decimal {
	total := l.FixedMonthly.Add(l.Investment).Add(l.Other)
	for _, entry := range l.OneToOne {
		total = total.Add(entry.Amount)
	}
	for _, entry := range l.Group {
		total = total.Add(entry.Amount)
	}
	return total
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() Ledger {
	clone := *l
	clone.OneToOne = append([]Entry(nil), l.OneToOne...)
	clone.Group = append([]Entry(nil), l.Group...)
	return clone
}

func (l *Ledger) entries(list List) (*[]Entry, error) {
	switch list {
	case ListOneToOne:
		return &l.OneToOne, nil
	case ListGroup:
		return &l.Group, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownList, list)
	}
}

func (l *Ledger) find(list List, id string) (*Entry, error) {
	entries, err := l.entries(list)
	if err != nil {
		return nil, err
	}
	for i := range *entries {
		if (*entries)[i].ID == id {
			return &(*entries)[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrEntryNotFound, list, id)
}
