package income

import (
	"encoding/json"
	"fmt"

	"github.com/pennybook/pennybook/pkg/money"
)

// Encode serializes the ledger for the period store.
func Encode(l Ledger) (string, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("could not encode income ledger: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored ledger blob. Amounts are re-clamped so a hand-edited
// blob cannot reintroduce negative values.
func Decode(blob string) (Ledger, error) {
	var l Ledger
	if err := json.Unmarshal([]byte(blob), &l); err != nil {
		return Ledger{}, fmt.Errorf("could not decode income ledger: %w", err)
	}
	l.FixedMonthly = money.Clamp(l.FixedMonthly)
	l.Investment = money.Clamp(l.Investment)
	l.Other = money.Clamp(l.Other)
	for i := range l.OneToOne {
		l.OneToOne[i].Amount = money.Clamp(l.OneToOne[i].Amount)
	}
	for i := range l.Group {
		l.Group[i].Amount = money.Clamp(l.Group[i].Amount)
	}
	return l, nil
}
