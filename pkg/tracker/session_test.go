package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennybook/pennybook/internal/event_bus"
	"github.com/pennybook/pennybook/internal/kvstore"
	"github.com/pennybook/pennybook/pkg/budget"
	"github.com/pennybook/pennybook/pkg/expense"
	"github.com/pennybook/pennybook/pkg/income"
	"github.com/pennybook/pennybook/pkg/money"
	"github.com/pennybook/pennybook/pkg/period"
	"github.com/pennybook/pennybook/pkg/report"
)

type sessionFixture struct {
	session *Session
	store   *Store
	kv      *kvstore.MemoryStore
	bus     *event_bus.EventBus
}

func newSessionFixture(t *testing.T) sessionFixture {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	clock := testClock()
	store := NewStore(kv, clock)
	bus := event_bus.NewEventBus()
	session, err := NewSession(context.Background(), store, bus, clock)
	require.NoError(t, err)
	return sessionFixture{session: session, store: store, kv: kv, bus: bus}
}

func TestSession_BindsPeriodOfCurrentDate(t *testing.T) {
	// given: the clock says 2025-01-15
	f := newSessionFixture(t)

	// then
	assert.Equal(t, period.Key{Year: 2025, Month: 0}, f.session.ActiveKey())
}

func TestSession_SwitchPeriodLoadsOtherState(t *testing.T) {
	// given: February has a stored budget
	f := newSessionFixture(t)
	feb, _ := period.New(2025, 1)
	febState := NewPeriodState(feb, testClock())
	require.NoError(t, febState.Budget.Set("food", decimal.NewFromInt(250)))
	require.NoError(t, f.store.Save(context.Background(), febState))

	// when
	require.NoError(t, f.session.SwitchPeriod(context.Background(), 2025, 1))

	// then
	assert.Equal(t, feb, f.session.ActiveKey())
	state := f.session.State()
	assert.True(t, state.Budget.Get("food").Equal(decimal.NewFromInt(250)))
}

func TestSession_SwitchPeriodRejectsInvalidMonth(t *testing.T) {
	// given
	f := newSessionFixture(t)
	before := f.session.ActiveKey()

	// when
	err := f.session.SwitchPeriod(context.Background(), 2025, 12)

	// then
	require.ErrorIs(t, err, period.ErrInvalidPeriod)
	assert.Equal(t, before, f.session.ActiveKey())
}

func TestSession_MutationsAreWrittenThrough(t *testing.T) {
	// given
	f := newSessionFixture(t)

	// when
	require.NoError(t, f.session.SetFixedMonthly(context.Background(), decimal.NewFromInt(5000)))
	_, err := f.session.AddExpense(context.Background(),
		time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(40), "food", "groceries")
	require.NoError(t, err)

	// then: a fresh load from the same substrate sees every change
	reloaded, err := f.store.Load(context.Background(), f.session.ActiveKey())
	require.NoError(t, err)
	assert.True(t, reloaded.Income.FixedMonthly.Equal(decimal.NewFromInt(5000)))
	assert.Len(t, reloaded.Expenses.All(), 1)
}

func TestSession_ExpenseOutsideActivePeriodLandsInItsOwnPeriod(t *testing.T) {
	// given: January is active
	f := newSessionFixture(t)

	// when: the expense is dated in March
	record, err := f.session.AddExpense(context.Background(),
		time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(99), "travel", "flight")
	require.NoError(t, err)
	assert.Equal(t, "travel", record.CategoryID)

	// then: the active period stays untouched and March holds the record
	assert.Empty(t, f.session.State().Expenses.All())
	march, _ := period.New(2025, 2)
	marchState, err := f.store.Load(context.Background(), march)
	require.NoError(t, err)
	require.Len(t, marchState.Expenses.All(), 1)
	assert.True(t, marchState.Expenses.All()[0].Amount.Equal(decimal.NewFromInt(99)))
}

func TestSession_RejectedExpenseLeavesStateIntact(t *testing.T) {
	// given
	f := newSessionFixture(t)

	// when: amount is not positive
	_, err := f.session.AddExpense(context.Background(),
		time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		decimal.Zero, "food", "")

	// then
	var validationErr *expense.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, f.session.State().Expenses.All())
	reloaded, _ := f.store.Load(context.Background(), f.session.ActiveKey())
	assert.Empty(t, reloaded.Expenses.All())
}

func TestSession_ReplaceBudgetIsAtomic(t *testing.T) {
	// given
	f := newSessionFixture(t)
	require.NoError(t, f.session.ReplaceBudget(context.Background(), map[string]decimal.Decimal{
		"food": decimal.NewFromInt(100),
	}))

	// when: one unknown category poisons the whole replacement
	err := f.session.ReplaceBudget(context.Background(), map[string]decimal.Decimal{
		"bills":     decimal.NewFromInt(300),
		"groceries": decimal.NewFromInt(50),
	})

	// then: nothing of the rejected call applied
	require.Error(t, err)
	amounts := f.session.BudgetAmounts()
	assert.True(t, amounts["food"].Equal(decimal.NewFromInt(100)))
	assert.True(t, amounts["bills"].IsZero())
}

func TestSession_ReplaceBudgetRejectsEmpty(t *testing.T) {
	// given
	f := newSessionFixture(t)

	// when
	err := f.session.ReplaceBudget(context.Background(), map[string]decimal.Decimal{
		"food": decimal.Zero,
	})

	// then
	require.ErrorIs(t, err, budget.ErrEmptyBudget)
}

func TestSession_RemoveExpenseTwiceFails(t *testing.T) {
	// given
	f := newSessionFixture(t)
	record, err := f.session.AddExpense(context.Background(),
		time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(10), "food", "")
	require.NoError(t, err)

	// when
	require.NoError(t, f.session.RemoveExpense(context.Background(), record.ID))
	err = f.session.RemoveExpense(context.Background(), record.ID)

	// then
	require.ErrorIs(t, err, expense.ErrRecordNotFound)
}

func TestSession_IncomeEntryLifecycle(t *testing.T) {
	// given
	f := newSessionFixture(t)
	entry, err := f.session.AddOneToOneEntry(context.Background())
	require.NoError(t, err)

	// when
	require.NoError(t, f.session.SetIncomeEntryName(context.Background(), income.ListOneToOne, entry.ID, "Tutoring"))
	require.NoError(t, f.session.SetIncomeEntryAmount(context.Background(), income.ListOneToOne, entry.ID, decimal.NewFromInt(150)))

	// then
	state := f.session.State()
	require.Len(t, state.Income.OneToOne, 1)
	assert.Equal(t, "Tutoring", state.Income.OneToOne[0].Name)
	assert.True(t, state.Income.Total().Equal(decimal.NewFromInt(150)))

	// when: removed, the total drops back and removal persists
	require.NoError(t, f.session.RemoveIncomeEntry(context.Background(), income.ListOneToOne, entry.ID))
	reloaded, _ := f.store.Load(context.Background(), f.session.ActiveKey())
	assert.Empty(t, reloaded.Income.OneToOne)
}

func TestSession_SnapshotReflectsLedgers(t *testing.T) {
	// given
	f := newSessionFixture(t)
	require.NoError(t, f.session.SetFixedMonthly(context.Background(), decimal.NewFromInt(1000)))
	require.NoError(t, f.session.ReplaceBudget(context.Background(), map[string]decimal.Decimal{
		"food": decimal.NewFromInt(100),
	}))
	_, err := f.session.AddExpense(context.Background(),
		time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(85), "food", "")
	require.NoError(t, err)

	// when
	snapshot := f.session.Snapshot()

	// then
	assert.Equal(t, report.StatusWarning, snapshot.GlobalStatus)
	assert.True(t, snapshot.NetCashFlow.Equal(decimal.NewFromInt(915)))
	var foodRow report.Row
	for _, row := range snapshot.Rows {
		if row.CategoryID == "food" {
			foodRow = row
		}
	}
	assert.Equal(t, int64(85), foodRow.UtilizationPct)
	assert.Equal(t, report.StatusWarning, foodRow.Status)
}

func TestSession_ClearExpensesOnlyTouchesActivePeriod(t *testing.T) {
	// given: an expense in January and one in March
	f := newSessionFixture(t)
	_, err := f.session.AddExpense(context.Background(),
		time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(10), "food", "")
	require.NoError(t, err)
	_, err = f.session.AddExpense(context.Background(),
		time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(20), "travel", "")
	require.NoError(t, err)

	// when
	removed, err := f.session.ClearExpenses(context.Background())

	// then
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	march, _ := period.New(2025, 2)
	marchState, _ := f.store.Load(context.Background(), march)
	assert.Len(t, marchState.Expenses.All(), 1)
}

func TestSession_ClearAllResetsEverything(t *testing.T) {
	// given
	f := newSessionFixture(t)
	require.NoError(t, f.session.SetCurrency(context.Background(), money.CAD))
	require.NoError(t, f.session.SetFixedMonthly(context.Background(), decimal.NewFromInt(5000)))

	// when
	require.NoError(t, f.session.ClearAll(context.Background()))

	// then
	state := f.session.State()
	assert.True(t, state.Income.Total().IsZero())
	assert.Equal(t, money.USD, f.session.Currency(context.Background()))
	keys, err := f.kv.Keys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSession_MutationsPublishChangeEvents(t *testing.T) {
	// given
	f := newSessionFixture(t)
	var received []event_bus.Event
	f.bus.Subscribe(event_bus.PeriodChangedEvent, func(e event_bus.Event) {
		received = append(received, e)
	})

	// when
	require.NoError(t, f.session.SetFixedMonthly(context.Background(), decimal.NewFromInt(100)))

	// then
	require.Len(t, received, 1)
	payload, ok := received[0].Data.(event_bus.PeriodChanged)
	require.True(t, ok)
	assert.Equal(t, f.session.ActiveKey(), payload.Key)
}
