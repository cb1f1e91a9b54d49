package expense

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pennybook/pennybook/internal/utils"
	"github.com/pennybook/pennybook/pkg/category"
	"github.com/pennybook/pennybook/pkg/period"
)

var ErrRecordNotFound = errors.New("expense record not found")

// DateLayout is the calendar-date format used by forms and stored blobs.
const DateLayout = "2006-01-02"

// ValidationError reports a rejected expense submission. The message is
// suitable for direct user display.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ParseDate parses a form date. Failures come back as ValidationError.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, &ValidationError{Field: "date", Reason: "date is required"}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Reason: "date must be YYYY-MM-DD"}
	}
	return t, nil
}

// Record is one dated, categorized expense. Records are immutable after
// creation; corrections are delete and re-add. Period membership is derived
// from Date alone.
type Record struct {
	ID          int64
	Date        time.Time
	Amount      decimal.Decimal
	CategoryID  string
	Description string
}

// Ledger holds the expense records of the process in insertion order and
// assigns process-unique ids.
type Ledger struct {
	clock   utils.Clock
	records []Record
	lastID  int64
}

func NewLedger(clock utils.Clock) *Ledger {
	return &Ledger{clock: clock}
}

// Add validates and appends a new record. Nothing is mutated when validation
// fails.
func (l *Ledger) Add(date time.Time, amount decimal.Decimal, categoryID, description string) (Record, error) {
	if date.IsZero() {
		return Record{}, &ValidationError{Field: "date", Reason: "date is required"}
	}
	if !amount.IsPositive() {
		return Record{}, &ValidationError{Field: "amount", Reason: "amount must be greater than zero"}
	}
	if _, err := category.ByID(categoryID); err != nil {
		return Record{}, err
	}

	record := Record{
		ID:          l.nextID(),
		Date:        date,
		Amount:      amount,
		CategoryID:  categoryID,
		Description: description,
	}
	l.records = append(l.records, record)
	return record, nil
}

// Remove deletes a record by id. A second delete of the same id surfaces
// ErrRecordNotFound so callers can detect stale state.
func (l *Ledger) Remove(id int64) error {
	for i, record := range l.records {
		if record.ID == id {
			l.records = append(l.records[:i], l.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrRecordNotFound, id)
}

// ForPeriod yields the records of one period, newest date first, insertion
// order preserved for same-day records. The sequence is restartable: each
// range over it walks the ledger afresh.
func (l *Ledger) ForPeriod(key period.Key) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, record := range l.periodRecords(key) {
			if !yield(record) {
				return
			}
		}
	}
}

// TotalForPeriod sums all expense amounts in the period.
func (l *Ledger) TotalForPeriod(key period.Key) decimal.Decimal {
	total := decimal.Zero
	for _, record := range l.records {
		if key.Contains(record.Date) {
			total = total.Add(record.Amount)
		}
	}
	return total
}

// TotalForCategory sums the period's expenses for one category.
func (l *Ledger) TotalForCategory(key period.Key, categoryID string) decimal.Decimal {
	total := decimal.Zero
	for _, record := range l.records {
		if key.Contains(record.Date) && record.CategoryID == categoryID {
			total = total.Add(record.Amount)
		}
	}
	return total
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{clock: l.clock, records: l.All(), lastID: l.lastID}
}

// All returns every record in insertion order.
func (l *Ledger) All() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// RemovePeriod drops every record belonging to the period and reports how
// many were removed.
func (l *Ledger) RemovePeriod(key period.Key) int {
	kept := l.records[:0]
	removed := 0
	for _, record := range l.records {
		if key.Contains(record.Date) {
			removed++
			continue
		}
		kept = append(kept, record)
	}
	l.records = kept
	return removed
}

func (l *Ledger) periodRecords(key period.Key) []Record {
	var matched []Record
	for _, record := range l.records {
		if key.Contains(record.Date) {
			matched = append(matched, record)
		}
	}
	slices.SortStableFunc(matched, func(a, b Record) int {
		return b.Date.Compare(a.Date)
	})
	return matched
}

// nextID derives a monotonic id from the clock. Ids never repeat within a
// process even when the clock does not advance between calls.
func (l *Ledger) nextID() int64 {
	id := l.clock.Now().UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	l.lastID = id
	return id
}
