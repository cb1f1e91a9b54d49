package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennybook/pennybook/internal/kvstore"
	"github.com/pennybook/pennybook/internal/utils"
	"github.com/pennybook/pennybook/pkg/income"
	"github.com/pennybook/pennybook/pkg/money"
	"github.com/pennybook/pennybook/pkg/period"
)

func testClock() *utils.MockClock {
	return &utils.MockClock{FixedNow: time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)}
}

func TestStore_LoadMissingPeriod(t *testing.T) {
	// given
	store := NewStore(kvstore.NewMemoryStore(), testClock())
	key, err := period.New(2025, 0)
	require.NoError(t, err)

	// when
	state, err := store.Load(context.Background(), key)

	// then
	require.NoError(t, err)
	assert.Equal(t, key, state.Key)
	assert.True(t, state.Income.Total().IsZero())
	assert.True(t, state.Budget.Total().IsZero())
	assert.Empty(t, state.Expenses.All())
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	// given
	clock := testClock()
	store := NewStore(kvstore.NewMemoryStore(), clock)
	key, _ := period.New(2025, 0)
	state := NewPeriodState(key, clock)
	state.Income.SetFixedMonthly(decimal.NewFromInt(4500))
	entry := state.Income.AddOneToOne()
	require.NoError(t, state.Income.SetEntryAmount(income.ListOneToOne, entry.ID, decimal.NewFromInt(200)))
	require.NoError(t, state.Budget.Set("food", decimal.NewFromInt(600)))
	_, err := state.Expenses.Add(clock.Now(), decimal.NewFromFloat(12.5), "food", "lunch")
	require.NoError(t, err)

	// when
	require.NoError(t, store.Save(context.Background(), state))
	loaded, err := store.Load(context.Background(), key)

	// then
	require.NoError(t, err)
	assert.True(t, loaded.Income.Total().Equal(decimal.NewFromInt(4700)))
	assert.True(t, loaded.Budget.Get("food").Equal(decimal.NewFromInt(600)))
	records := loaded.Expenses.All()
	require.Len(t, records, 1)
	assert.Equal(t, "food", records[0].CategoryID)
	assert.True(t, records[0].Amount.Equal(decimal.NewFromFloat(12.5)))
}

func TestStore_CorruptBlobDegradesToEmpty(t *testing.T) {
	// given
	clock := testClock()
	kv := kvstore.NewMemoryStore()
	store := NewStore(kv, clock)
	key, _ := period.New(2025, 0)
	state := NewPeriodState(key, clock)
	require.NoError(t, state.Budget.Set("bills", decimal.NewFromInt(300)))
	require.NoError(t, store.Save(context.Background(), state))
	require.NoError(t, kv.Set(context.Background(), key.StorageKey(period.DomainIncome), "{not json"))

	// when
	loaded, err := store.Load(context.Background(), key)

	// then: the broken blob resets, the readable ones survive
	require.NoError(t, err)
	assert.True(t, loaded.Income.Total().IsZero())
	assert.True(t, loaded.Budget.Get("bills").Equal(decimal.NewFromInt(300)))
}

func TestStore_ClearPeriodRemovesAllThreeBlobs(t *testing.T) {
	// given
	clock := testClock()
	kv := kvstore.NewMemoryStore()
	store := NewStore(kv, clock)
	key, _ := period.New(2025, 0)
	require.NoError(t, store.Save(context.Background(), NewPeriodState(key, clock)))

	// when
	require.NoError(t, store.ClearPeriod(context.Background(), key))

	// then
	keys, err := kv.Keys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStore_ClearAllPreservesForeignKeys(t *testing.T) {
	// given
	clock := testClock()
	kv := kvstore.NewMemoryStore()
	store := NewStore(kv, clock)
	key, _ := period.New(2025, 0)
	require.NoError(t, store.Save(context.Background(), NewPeriodState(key, clock)))
	require.NoError(t, store.SetCurrency(context.Background(), money.CAD))
	require.NoError(t, kv.Set(context.Background(), "otherapp:state", "untouched"))

	// when
	require.NoError(t, store.ClearAll(context.Background()))

	// then
	keys, err := kv.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"otherapp:state"}, keys)
	assert.Equal(t, money.USD, store.Currency(context.Background()))
}

func TestStore_PeriodKeysSortedAndDeduplicated(t *testing.T) {
	// given
	clock := testClock()
	kv := kvstore.NewMemoryStore()
	store := NewStore(kv, clock)
	dec2024, _ := period.New(2024, 11)
	jan2025, _ := period.New(2025, 0)
	require.NoError(t, store.Save(context.Background(), NewPeriodState(jan2025, clock)))
	require.NoError(t, store.Save(context.Background(), NewPeriodState(dec2024, clock)))
	require.NoError(t, kv.Set(context.Background(), "otherapp:state", "ignored"))
	require.NoError(t, kv.Set(context.Background(), period.KeyPrefix+":currency", "USD"))

	// when
	keys, err := store.PeriodKeys(context.Background())

	// then
	require.NoError(t, err)
	assert.Equal(t, []period.Key{dec2024, jan2025}, keys)
}

func TestStore_CurrencyDefaultsToUSD(t *testing.T) {
	// given
	store := NewStore(kvstore.NewMemoryStore(), testClock())

	// then
	assert.Equal(t, money.USD, store.Currency(context.Background()))
}

func TestStore_CurrencyRoundTrip(t *testing.T) {
	// given
	store := NewStore(kvstore.NewMemoryStore(), testClock())

	// when
	require.NoError(t, store.SetCurrency(context.Background(), money.CAD))

	// then
	assert.Equal(t, money.CAD, store.Currency(context.Background()))
}

func TestStore_InvalidStoredCurrencyDefaultsToUSD(t *testing.T) {
	// given
	kv := kvstore.NewMemoryStore()
	store := NewStore(kv, testClock())
	require.NoError(t, kv.Set(context.Background(), currencyKey, "DOGE"))

	// then
	assert.Equal(t, money.USD, store.Currency(context.Background()))
}
