package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/pennybook/pennybook/internal/event_bus"
	"github.com/pennybook/pennybook/internal/utils"
	"github.com/pennybook/pennybook/pkg/expense"
	"github.com/pennybook/pennybook/pkg/income"
	"github.com/pennybook/pennybook/pkg/money"
	"github.com/pennybook/pennybook/pkg/period"
	"github.com/pennybook/pennybook/pkg/report"
)

// Session owns the single active PeriodState. Every mutating operation is
// applied to the in-memory ledgers and immediately written through to the
// store before returning, so a snapshot taken right after any mutator is
// always consistent with persisted state. The mutex serializes HTTP callers;
// the ledgers themselves have no internal synchronization.
type Session struct {
	mu    sync.Mutex
	store *Store
	bus   *event_bus.EventBus
	clock utils.Clock
	state PeriodState
}

// NewSession loads (or constructs empty) state for the period containing the
// current date and binds it as active.
func NewSession(ctx context.Context, store *Store, bus *event_bus.EventBus, clock utils.Clock) (*Session, error) {
	key := period.FromDate(clock.Now())
	state, err := store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return &Session{store: store, bus: bus, clock: clock, state: state}, nil
}

// ActiveKey returns the key of the currently bound period.
func (s *Session) ActiveKey() period.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Key
}

// SwitchPeriod binds a different period as active. The previous period's
// state is already persisted (write-through), so its in-memory copy is simply
// discarded.
func (s *Session) SwitchPeriod(ctx context.Context, year, month int) error {
	key, err := period.New(year, month)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if key == s.state.Key {
		return nil
	}
	state, err := s.store.Load(ctx, key)
	if err != nil {
		return err
	}
	log.Infof("switching active period from %s to %s", s.state.Key, key)
	s.state = state
	return nil
}

// Reload re-reads the active period from storage, discarding the in-memory
// copy. Needed after the store is rewritten underneath the session, e.g. by
// a backup restore.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.store.Load(ctx, s.state.Key)
	if err != nil {
		return err
	}
	s.state = state
	s.publish(ctx)
	return nil
}

// Snapshot derives the full display-ready view of the active period.
func (s *Session) Snapshot() report.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return report.Build(s.state.Key, s.state.Income, s.state.Budget, s.state.Expenses)
}

// State returns an independent copy of the active period state, for export.
func (s *Session) State() PeriodState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PeriodState{
		Key:      s.state.Key,
		Income:   s.state.Income.Clone(),
		Budget:   s.state.Budget.Clone(),
		Expenses: s.state.Expenses.Clone(),
	}
}

// Currency returns the persisted display currency preference.
func (s *Session) Currency(ctx context.Context) money.Currency {
	return s.store.Currency(ctx)
}

func (s *Session) SetCurrency(ctx context.Context, currency money.Currency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SetCurrency(ctx, currency); err != nil {
		return err
	}
	s.publish(ctx)
	return nil
}

// AddOneToOneEntry appends a zeroed one-to-one income row.
func (s *Session) AddOneToOneEntry(ctx context.Context) (income.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.state.Income.AddOneToOne()
	return entry, s.commit(ctx)
}

// AddGroupEntry appends a zeroed group income row.
func (s *Session) AddGroupEntry(ctx context.Context) (income.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.state.Income.AddGroup()
	return entry, s.commit(ctx)
}

func (s *Session) RemoveIncomeEntry(ctx context.Context, list income.List, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.Income.RemoveEntry(list, id); err != nil {
		return err
	}
	return s.commit(ctx)
}

func (s *Session) SetIncomeEntryName(ctx context.Context, list income.List, id string, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.Income.SetEntryName(list, id, name); err != nil {
		return err
	}
	return s.commit(ctx)
}

func (s *Session) SetIncomeEntryAmount(ctx context.Context, list income.List, id string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.Income.SetEntryAmount(list, id, amount); err != nil {
		return err
	}
	return s.commit(ctx)
}

func (s *Session) SetFixedMonthly(ctx context.Context, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Income.SetFixedMonthly(amount)
	return s.commit(ctx)
}

func (s *Session) SetInvestment(ctx context.Context, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Income.SetInvestment(amount)
	return s.commit(ctx)
}

func (s *Session) SetOther(ctx context.Context, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Income.SetOther(amount)
	return s.commit(ctx)
}

// ReplaceBudget atomically replaces the whole category budget mapping.
func (s *Session) ReplaceBudget(ctx context.Context, amounts map[string]decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.Budget.Replace(amounts); err != nil {
		return err
	}
	return s.commit(ctx)
}

// BudgetAmounts returns the active period's budget mapping.
func (s *Session) BudgetAmounts() map[string]decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Budget.Amounts()
}

// AddExpense records a new expense. A record belongs to the period of its
// date: a date outside the active period is written straight into that
// period's stored ledger and never touches the active state.
func (s *Session) AddExpense(ctx context.Context, date time.Time, amount decimal.Decimal, categoryID, description string) (expense.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Key.Contains(date) {
		record, err := s.state.Expenses.Add(date, amount, categoryID, description)
		if err != nil {
			return expense.Record{}, err
		}
		return record, s.commit(ctx)
	}

	// Offline period: load, modify, save without disturbing the active state.
	other, err := s.store.Load(ctx, period.FromDate(date))
	if err != nil {
		return expense.Record{}, err
	}
	record, err := other.Expenses.Add(date, amount, categoryID, description)
	if err != nil {
		return expense.Record{}, err
	}
	if err := s.store.Save(ctx, other); err != nil {
		return expense.Record{}, err
	}
	s.bus.Publish(event_bus.NewEvent(ctx, event_bus.PeriodChangedEvent, event_bus.PeriodChanged{Key: other.Key}))
	return record, nil
}

func (s *Session) RemoveExpense(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.Expenses.Remove(id); err != nil {
		return err
	}
	return s.commit(ctx)
}

// ClearExpenses removes every expense of the active period and reports how
// many were dropped.
func (s *Session) ClearExpenses(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.state.Expenses.RemovePeriod(s.state.Key)
	if removed == 0 {
		return 0, nil
	}
	return removed, s.commit(ctx)
}

// ClearAll wipes every pennybook blob across all periods and resets the
// active state. Destructive and irreversible; the caller is responsible for
// explicit confirmation.
func (s *Session) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.ClearAll(ctx); err != nil {
		return err
	}
	s.state = NewPeriodState(s.state.Key, s.clock)
	s.publish(ctx)
	return nil
}

// commit is the write-through: persist the active state, then notify
// subscribers. Callers hold the mutex.
func (s *Session) commit(ctx context.Context) error {
	if err := s.store.Save(ctx, s.state); err != nil {
		return err
	}
	s.publish(ctx)
	return nil
}

func (s *Session) publish(ctx context.Context) {
	s.bus.Publish(event_bus.NewEvent(ctx, event_bus.PeriodChangedEvent, event_bus.PeriodChanged{Key: s.state.Key}))
}
