package expense

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/pennybook/pennybook/internal/utils"
	"github.com/pennybook/pennybook/pkg/category"
)

type recordDTO struct {
	ID          int64           `json:"id"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  string          `json:"categoryId"`
	Description string          `json:"description,omitempty"`
}

// Encode serializes the ledger's records for the period store.
func Encode(l *Ledger) (string, error) {
	records := l.All()
	dtos := make([]recordDTO, 0, len(records))
	for _, record := range records {
		dtos = append(dtos, recordDTO{
			ID:          record.ID,
			Date:        record.Date.Format(DateLayout),
			Amount:      record.Amount,
			CategoryID:  record.CategoryID,
			Description: record.Description,
		})
	}
	data, err := json.Marshal(dtos)
	if err != nil {
		return "", fmt.Errorf("could not encode expense ledger: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored blob into a fresh ledger. Records that no longer
// validate (bad date, non-positive amount, unregistered category) are dropped
// rather than failing the whole load.
func Decode(blob string, clock utils.Clock) (*Ledger, error) {
	var dtos []recordDTO
	if err := json.Unmarshal([]byte(blob), &dtos); err != nil {
		return nil, fmt.Errorf("could not decode expense ledger: %w", err)
	}
	ledger := NewLedger(clock)
	for _, dto := range dtos {
		date, err := time.Parse(DateLayout, dto.Date)
		if err != nil {
			log.Warnf("dropping stored expense %d: unparseable date %q", dto.ID, dto.Date)
			continue
		}
		if !dto.Amount.IsPositive() {
			log.Warnf("dropping stored expense %d: non-positive amount", dto.ID)
			continue
		}
		if !category.Exists(dto.CategoryID) {
			log.Warnf("dropping stored expense %d: unregistered category %q", dto.ID, dto.CategoryID)
			continue
		}
		ledger.records = append(ledger.records, Record{
			ID:          dto.ID,
			Date:        date,
			Amount:      dto.Amount,
			CategoryID:  dto.CategoryID,
			Description: dto.Description,
		})
		if dto.ID > ledger.lastID {
			ledger.lastID = dto.ID
		}
	}
	return ledger, nil
}
