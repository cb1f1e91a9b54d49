package tracker

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/pennybook/pennybook/internal/rest"
	"github.com/pennybook/pennybook/pkg/budget"
	"github.com/pennybook/pennybook/pkg/category"
	"github.com/pennybook/pennybook/pkg/expense"
	"github.com/pennybook/pennybook/pkg/income"
	"github.com/pennybook/pennybook/pkg/money"
	"github.com/pennybook/pennybook/pkg/period"
	"github.com/pennybook/pennybook/pkg/report"
)

type PeriodDTO struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type EntryDTO struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type IncomeDTO struct {
	FixedMonthly decimal.Decimal `json:"fixedMonthly"`
	OneToOne     []EntryDTO      `json:"oneToOne"`
	Group        []EntryDTO      `json:"group"`
	Investment   decimal.Decimal `json:"investment"`
	Other        decimal.Decimal `json:"other"`
	Total        decimal.Decimal `json:"total"`
}

type RowDTO struct {
	CategoryID     string          `json:"categoryId"`
	Label          string          `json:"label"`
	ColorHint      string          `json:"colorHint"`
	Budgeted       decimal.Decimal `json:"budgeted"`
	Spent          decimal.Decimal `json:"spent"`
	Remaining      decimal.Decimal `json:"remaining"`
	UtilizationPct int64           `json:"utilizationPct"`
	Status         string          `json:"status"`
}

type SnapshotDTO struct {
	Period          PeriodDTO       `json:"period"`
	Currency        string          `json:"currency"`
	TotalIncome     decimal.Decimal `json:"totalIncome"`
	TotalBudget     decimal.Decimal `json:"totalBudget"`
	TotalSpent      decimal.Decimal `json:"totalSpent"`
	NetCashFlow     decimal.Decimal `json:"netCashFlow"`
	RemainingBudget decimal.Decimal `json:"remainingBudget"`
	UtilizationPct  int64           `json:"utilizationPct"`
	GlobalStatus    string          `json:"globalStatus"`
	CashFlowState   string          `json:"cashFlowState"`
	// Display fields are pre-formatted with the currency symbol; rounding to
	// two decimals happens here and nowhere upstream.
	TotalIncomeDisplay     string   `json:"totalIncomeDisplay"`
	TotalSpentDisplay      string   `json:"totalSpentDisplay"`
	NetCashFlowDisplay     string   `json:"netCashFlowDisplay"`
	RemainingBudgetDisplay string   `json:"remainingBudgetDisplay"`
	Rows                   []RowDTO `json:"rows"`
}

type ExpenseDTO struct {
	ID            int64           `json:"id"`
	Date          string          `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	CategoryID    string          `json:"categoryId"`
	CategoryLabel string          `json:"categoryLabel"`
	Description   string          `json:"description,omitempty"`
}

// Handler exposes the session over HTTP. It is a thin adapter: all rules
// live in the ledgers and the session.
type Handler struct {
	session *Session
}

func NewHandler(session *Session) *Handler {
	return &Handler{session: session}
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.snapshotDTO(r))
}

func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	key := h.session.ActiveKey()
	writeJSON(w, http.StatusOK, PeriodDTO{Year: key.Year, Month: key.Month})
}

func (h *Handler) SwitchPeriod(w http.ResponseWriter, r *http.Request) {
	var dto PeriodDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := h.session.SwitchPeriod(r.Context(), dto.Year, dto.Month); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.snapshotDTO(r))
}

func (h *Handler) GetCurrency(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"currency": string(h.session.Currency(r.Context()))})
}

func (h *Handler) SetCurrency(w http.ResponseWriter, r *http.Request) {
	var dto struct {
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	currency, ok := money.ParseCurrency(dto.Currency)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unsupported currency", "currency must be USD or CAD")
		return
	}
	if err := h.session.SetCurrency(r.Context(), currency); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, category.All())
}

func (h *Handler) GetIncome(w http.ResponseWriter, r *http.Request) {
	ledger := h.session.State().Income
	writeJSON(w, http.StatusOK, incomeToDTO(ledger))
}

func (h *Handler) AddIncomeEntry(w http.ResponseWriter, r *http.Request) {
	list, err := listFromPath(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	var entry income.Entry
	if list == income.ListOneToOne {
		entry, err = h.session.AddOneToOneEntry(r.Context())
	} else {
		entry, err = h.session.AddGroupEntry(r.Context())
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, EntryDTO{ID: entry.ID, Name: entry.Name, Amount: entry.Amount})
}

func (h *Handler) UpdateIncomeEntry(w http.ResponseWriter, r *http.Request) {
	list, err := listFromPath(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	entryId := mux.Vars(r)["entryId"]

	var dto struct {
		Name   *string `json:"name"`
		Amount *string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if dto.Name != nil {
		if err := h.session.SetIncomeEntryName(r.Context(), list, entryId, *dto.Name); err != nil {
			writeFailure(w, err)
			return
		}
	}
	if dto.Amount != nil {
		if err := h.session.SetIncomeEntryAmount(r.Context(), list, entryId, money.ParseAmount(*dto.Amount)); err != nil {
			writeFailure(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteIncomeEntry(w http.ResponseWriter, r *http.Request) {
	list, err := listFromPath(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := h.session.RemoveIncomeEntry(r.Context(), list, mux.Vars(r)["entryId"]); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetIncomeField(w http.ResponseWriter, r *http.Request) {
	var dto struct {
		Amount string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	amount := money.ParseAmount(dto.Amount)

	var err error
	switch mux.Vars(r)["field"] {
	case "fixed":
		err = h.session.SetFixedMonthly(r.Context(), amount)
	case "investment":
		err = h.session.SetInvestment(r.Context(), amount)
	case "other":
		err = h.session.SetOther(r.Context(), amount)
	default:
		writeError(w, http.StatusNotFound, "Unknown income field", "field must be fixed, investment, or other")
		return
	}
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	amounts := h.session.BudgetAmounts()
	dto := make(map[string]decimal.Decimal, len(amounts))
	for categoryID, amount := range amounts {
		dto[categoryID] = amount
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) SaveBudget(w http.ResponseWriter, r *http.Request) {
	var dto map[string]string
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	amounts := make(map[string]decimal.Decimal, len(dto))
	for categoryID, value := range dto {
		amounts[categoryID] = money.ParseAmount(value)
	}
	if err := h.session.ReplaceBudget(r.Context(), amounts); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.snapshotDTO(r))
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	state := h.session.State()
	dtos := make([]ExpenseDTO, 0)
	for record := range state.Expenses.ForPeriod(state.Key) {
		dtos = append(dtos, expenseToDTO(record))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	log.Debug("Registering new expense")
	var dto struct {
		Date        string `json:"date"`
		Amount      string `json:"amount"`
		CategoryID  string `json:"categoryId"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	date, err := expense.ParseDate(dto.Date)
	if err != nil {
		writeFailure(w, err)
		return
	}
	record, err := h.session.AddExpense(r.Context(), date, money.ParseAmount(dto.Amount), dto.CategoryID, dto.Description)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expenseToDTO(record))
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid expense id", err.Error())
		return
	}
	if err := h.session.RemoveExpense(r.Context(), id); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearExpenses drops every expense of the active period. Requires an
// explicit confirm query parameter; there is no undo.
func (h *Handler) ClearExpenses(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "Confirmation required", "pass confirm=true to clear this month's expenses")
		return
	}
	removed, err := h.session.ClearExpenses(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	log.Infof("cleared %d expenses for period %s", removed, h.session.ActiveKey())
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// ClearAll wipes every stored period and the currency preference.
func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "Confirmation required", "pass confirm=true to erase all stored data")
		return
	}
	if err := h.session.ClearAll(r.Context()); err != nil {
		writeFailure(w, err)
		return
	}
	log.Warn("all stored data cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) snapshotDTO(r *http.Request) SnapshotDTO {
	snapshot := h.session.Snapshot()
	currency := h.session.Currency(r.Context())
	return snapshotToDTO(snapshot, currency)
}

func snapshotToDTO(snapshot report.Snapshot, currency money.Currency) SnapshotDTO {
	rows := make([]RowDTO, 0, len(snapshot.Rows))
	for _, row := range snapshot.Rows {
		colorHint := ""
		if c, err := category.ByID(row.CategoryID); err == nil {
			colorHint = c.ColorHint
		}
		rows = append(rows, RowDTO{
			CategoryID:     row.CategoryID,
			Label:          row.Label,
			ColorHint:      colorHint,
			Budgeted:       row.Budgeted,
			Spent:          row.Spent,
			Remaining:      row.Remaining,
			UtilizationPct: row.UtilizationPct,
			Status:         string(row.Status),
		})
	}
	return SnapshotDTO{
		Period:                 PeriodDTO{Year: snapshot.Key.Year, Month: snapshot.Key.Month},
		Currency:               string(currency),
		TotalIncome:            snapshot.TotalIncome,
		TotalBudget:            snapshot.TotalBudget,
		TotalSpent:             snapshot.TotalSpent,
		NetCashFlow:            snapshot.NetCashFlow,
		RemainingBudget:        snapshot.RemainingBudget,
		UtilizationPct:         snapshot.UtilizationPct,
		GlobalStatus:           string(snapshot.GlobalStatus),
		CashFlowState:          string(snapshot.CashFlowState),
		TotalIncomeDisplay:     money.Format(snapshot.TotalIncome, currency),
		TotalSpentDisplay:      money.Format(snapshot.TotalSpent, currency),
		NetCashFlowDisplay:     money.Format(snapshot.NetCashFlow, currency),
		RemainingBudgetDisplay: money.Format(snapshot.RemainingBudget, currency),
		Rows:                   rows,
	}
}

func incomeToDTO(ledger income.Ledger) IncomeDTO {
	toDTOs := func(entries []income.Entry) []EntryDTO {
		dtos := make([]EntryDTO, 0, len(entries))
		for _, entry := range entries {
			dtos = append(dtos, EntryDTO{ID: entry.ID, Name: entry.Name, Amount: entry.Amount})
		}
		return dtos
	}
	return IncomeDTO{
		FixedMonthly: ledger.FixedMonthly,
		OneToOne:     toDTOs(ledger.OneToOne),
		Group:        toDTOs(ledger.Group),
		Investment:   ledger.Investment,
		Other:        ledger.Other,
		Total:        ledger.Total(),
	}
}

func expenseToDTO(record expense.Record) ExpenseDTO {
	label := record.CategoryID
	if c, err := category.ByID(record.CategoryID); err == nil {
		label = c.Label
	}
	return ExpenseDTO{
		ID:            record.ID,
		Date:          record.Date.Format(expense.DateLayout),
		Amount:        record.Amount,
		CategoryID:    record.CategoryID,
		CategoryLabel: label,
		Description:   record.Description,
	}
}

func listFromPath(r *http.Request) (income.List, error) {
	switch mux.Vars(r)["list"] {
	case "one-to-one":
		return income.ListOneToOne, nil
	case "group":
		return income.ListGroup, nil
	default:
		return "", income.ErrUnknownList
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message, Details: details}); err != nil {
		log.Errorf("failed to encode error response: %v", err)
	}
}

// writeFailure maps core errors onto HTTP statuses. Validation-style input
// errors are 400s; references to data that no longer exists are 404s so a
// stale UI notices instead of silently succeeding.
func writeFailure(w http.ResponseWriter, err error) {
	var validationErr *expense.ValidationError
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, period.ErrInvalidPeriod),
		errors.Is(err, budget.ErrEmptyBudget):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, category.ErrUnknownCategory),
		errors.Is(err, expense.ErrRecordNotFound),
		errors.Is(err, income.ErrEntryNotFound),
		errors.Is(err, income.ErrUnknownList):
		writeError(w, http.StatusNotFound, err.Error(), "")
	default:
		log.Errorf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal error", "")
	}
}
