package tracker

import (
	"context"
	"fmt"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/pennybook/pennybook/internal/kvstore"
	"github.com/pennybook/pennybook/internal/utils"
	"github.com/pennybook/pennybook/pkg/budget"
	"github.com/pennybook/pennybook/pkg/expense"
	"github.com/pennybook/pennybook/pkg/income"
	"github.com/pennybook/pennybook/pkg/money"
	"github.com/pennybook/pennybook/pkg/period"
)

// currencyKey stores the display currency preference, shared by all periods.
const currencyKey = period.KeyPrefix + ":currency"

// Store loads and saves period state as three namespaced blobs in the
// key-value substrate. A blob that is absent or fails to decode degrades to
// the zero-value ledger; corrupt stored state must never fail a load.
type Store struct {
	kv    kvstore.Store
	clock utils.Clock
}

func NewStore(kv kvstore.Store, clock utils.Clock) *Store {
	return &Store{kv: kv, clock: clock}
}

// Load reads the period's three blobs. The returned error reports substrate
// failures only; decode failures are logged and recovered locally.
func (s *Store) Load(ctx context.Context, key period.Key) (PeriodState, error) {
	state := NewPeriodState(key, s.clock)

	if blob, ok, err := s.kv.Get(ctx, key.StorageKey(period.DomainIncome)); err != nil {
		return PeriodState{}, err
	} else if ok {
		decoded, err := income.Decode(blob)
		if err != nil {
			log.Warnf("stored income for %s is unreadable, starting empty: %v", key, err)
		} else {
			state.Income = decoded
		}
	}

	if blob, ok, err := s.kv.Get(ctx, key.StorageKey(period.DomainBudget)); err != nil {
		return PeriodState{}, err
	} else if ok {
		decoded, err := budget.Decode(blob)
		if err != nil {
			log.Warnf("stored budget for %s is unreadable, starting empty: %v", key, err)
		} else {
			state.Budget = decoded
		}
	}

	if blob, ok, err := s.kv.Get(ctx, key.StorageKey(period.DomainExpenses)); err != nil {
		return PeriodState{}, err
	} else if ok {
		decoded, err := expense.Decode(blob, s.clock)
		if err != nil {
			log.Warnf("stored expenses for %s are unreadable, starting empty: %v", key, err)
		} else {
			state.Expenses = decoded
		}
	}

	return state, nil
}

// Save writes all three blobs, replacing prior content entirely.
func (s *Store) Save(ctx context.Context, state PeriodState) error {
	incomeBlob, err := income.Encode(state.Income)
	if err != nil {
		return err
	}
	budgetBlob, err := budget.Encode(state.Budget)
	if err != nil {
		return err
	}
	expensesBlob, err := expense.Encode(state.Expenses)
	if err != nil {
		return err
	}

	if err := s.kv.Set(ctx, state.Key.StorageKey(period.DomainIncome), incomeBlob); err != nil {
		return fmt.Errorf("could not save income for %s: %w", state.Key, err)
	}
	if err := s.kv.Set(ctx, state.Key.StorageKey(period.DomainBudget), budgetBlob); err != nil {
		return fmt.Errorf("could not save budget for %s: %w", state.Key, err)
	}
	if err := s.kv.Set(ctx, state.Key.StorageKey(period.DomainExpenses), expensesBlob); err != nil {
		return fmt.Errorf("could not save expenses for %s: %w", state.Key, err)
	}
	return nil
}

// ClearPeriod deletes the period's three blobs.
func (s *Store) ClearPeriod(ctx context.Context, key period.Key) error {
	for _, domain := range []string{period.DomainIncome, period.DomainBudget, period.DomainExpenses} {
		if err := s.kv.Remove(ctx, key.StorageKey(domain)); err != nil {
			return fmt.Errorf("could not clear %s for %s: %w", domain, key, err)
		}
	}
	return nil
}

// ClearAll deletes every blob pennybook owns, including the currency
// preference. Keys belonging to other applications in the same substrate are
// left alone.
func (s *Store) ClearAll(ctx context.Context) error {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if !strings.HasPrefix(key, period.KeyPrefix+":") {
			continue
		}
		if err := s.kv.Remove(ctx, key); err != nil {
			return fmt.Errorf("could not remove %q: %w", key, err)
		}
	}
	return nil
}

// PeriodKeys lists every period with stored data, sorted ascending. Foreign
// and malformed keys in the substrate are skipped.
func (s *Store) PeriodKeys(ctx context.Context) ([]period.Key, error) {
	storageKeys, err := s.kv.Keys(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[period.Key]bool)
	var keys []period.Key
	for _, storageKey := range storageKeys {
		key, _, ok := period.ParseStorageKey(storageKey)
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b period.Key) int {
		if a.Year != b.Year {
			return a.Year - b.Year
		}
		return a.Month - b.Month
	})
	return keys, nil
}

// Currency returns the stored display currency, defaulting to USD when unset
// or unreadable.
func (s *Store) Currency(ctx context.Context) money.Currency {
	blob, ok, err := s.kv.Get(ctx, currencyKey)
	if err != nil || !ok {
		return money.USD
	}
	currency, valid := money.ParseCurrency(blob)
	if !valid {
		log.Warnf("stored currency preference %q is invalid, defaulting to USD", blob)
		return money.USD
	}
	return currency
}

func (s *Store) SetCurrency(ctx context.Context, currency money.Currency) error {
	return s.kv.Set(ctx, currencyKey, string(currency))
}
