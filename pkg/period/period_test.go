package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	key, err := New(2025, 0)
	require.NoError(t, err)
	assert.Equal(t, 2025, key.Year)
	assert.Equal(t, 0, key.Month)

	_, err = New(2025, 12)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = New(2025, -1)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = New(25, 3)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestStorageKey(t *testing.T) {
	key := Key{Year: 2025, Month: 0}
	assert.Equal(t, "pennybook:v1:expenses:2025-0", key.StorageKey(DomainExpenses))
	// Deterministic: same inputs, same key.
	assert.Equal(t, key.StorageKey(DomainIncome), key.StorageKey(DomainIncome))
	// Distinct domains and periods never collide.
	assert.NotEqual(t, key.StorageKey(DomainIncome), key.StorageKey(DomainBudget))
	assert.NotEqual(t, key.StorageKey(DomainIncome), Key{Year: 2025, Month: 1}.StorageKey(DomainIncome))
}

func TestContains(t *testing.T) {
	key := Key{Year: 2025, Month: 0}
	assert.True(t, key.Contains(time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)))
	assert.False(t, key.Contains(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, key.Contains(time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)))
}

func TestFromDate(t *testing.T) {
	key := FromDate(time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, Key{Year: 2025, Month: 2}, key)
}

func TestParseStorageKey(t *testing.T) {
	key, domain, ok := ParseStorageKey("pennybook:v1:budget:2025-11")
	require.True(t, ok)
	assert.Equal(t, Key{Year: 2025, Month: 11}, key)
	assert.Equal(t, DomainBudget, domain)

	_, _, ok = ParseStorageKey("someone-elses-key")
	assert.False(t, ok)
	_, _, ok = ParseStorageKey("pennybook:v1:currency")
	assert.False(t, ok)
	_, _, ok = ParseStorageKey("pennybook:v1:budget:2025-42")
	assert.False(t, ok)
}
