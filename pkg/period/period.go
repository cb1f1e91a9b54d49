package period

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// KeyPrefix namespaces every value pennybook writes to the key-value store.
// The v1 tag is the on-disk schema version; bump it when a blob shape changes
// so old data can be migrated instead of silently misread.
const KeyPrefix = "pennybook:v1"

// Domains stored per period.
const (
	DomainIncome   = "income"
	DomainBudget   = "budget"
	DomainExpenses = "expenses"
)

var ErrInvalidPeriod = errors.New("invalid period")

// Key identifies one (year, month) budgeting period. Month is zero-based
// (0 = January), matching the stored data. Immutable once constructed.
type Key struct {
	Year  int
	Month int
}

// New validates and constructs a period key.
func New(year, month int) (Key, error) {
	if month < 0 || month > 11 {
		return Key{}, fmt.Errorf("%w: month %d out of range 0-11", ErrInvalidPeriod, month)
	}
	if year < 1000 || year > 9999 {
		return Key{}, fmt.Errorf("%w: year %d is not a four-digit year", ErrInvalidPeriod, year)
	}
	return Key{Year: year, Month: month}, nil
}

// FromDate returns the key of the period containing t.
func FromDate(t time.Time) Key {
	return Key{Year: t.Year(), Month: int(t.Month()) - 1}
}

// Contains reports whether t falls inside this period. Expense records belong
// to the period of their date, nothing else.
func (k Key) Contains(t time.Time) bool {
	return t.Year() == k.Year && int(t.Month())-1 == k.Month
}

// StorageKey derives the persistence key for one domain of this period.
// It is a pure function of its inputs and stable across restarts.
func (k Key) StorageKey(domain string) string {
	return fmt.Sprintf("%s:%s:%d-%d", KeyPrefix, domain, k.Year, k.Month)
}

func (k Key) String() string {
	return fmt.Sprintf("%d-%02d", k.Year, k.Month+1)
}

// ParseStorageKey is the inverse of StorageKey. It reports ok=false for keys
// that do not belong to pennybook or do not carry a period suffix.
func ParseStorageKey(storageKey string) (key Key, domain string, ok bool) {
	rest, found := strings.CutPrefix(storageKey, KeyPrefix+":")
	if !found {
		return Key{}, "", false
	}
	domain, suffix, found := strings.Cut(rest, ":")
	if !found {
		return Key{}, "", false
	}
	yearStr, monthStr, found := strings.Cut(suffix, "-")
	if !found {
		return Key{}, "", false
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return Key{}, "", false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return Key{}, "", false
	}
	key, err = New(year, month)
	if err != nil {
		return Key{}, "", false
	}
	return key, domain, true
}
