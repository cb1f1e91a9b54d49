package budget

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/pennybook/pennybook/pkg/category"
	"github.com/pennybook/pennybook/pkg/money"
)

// Encode serializes the ledger for the period store.
func Encode(l Ledger) (string, error) {
	data, err := json.Marshal(l.Amounts())
	if err != nil {
		return "", fmt.Errorf("could not encode budget ledger: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored ledger blob. Entries for category ids no longer in
// the registry are dropped so they cannot inflate totals.
func Decode(blob string) (Ledger, error) {
	var amounts map[string]decimal.Decimal
	if err := json.Unmarshal([]byte(blob), &amounts); err != nil {
		return Ledger{}, fmt.Errorf("could not decode budget ledger: %w", err)
	}
	ledger := Ledger{amounts: make(map[string]decimal.Decimal, len(amounts))}
	for categoryID, amount := range amounts {
		if !category.Exists(categoryID) {
			log.Warnf("dropping stored budget for unregistered category %q", categoryID)
			continue
		}
		ledger.amounts[categoryID] = money.Clamp(amount)
	}
	return ledger, nil
}
