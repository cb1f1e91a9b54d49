package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennybook/pennybook/internal/event_bus"
	"github.com/pennybook/pennybook/internal/kvstore"
)

func setupHandlerTest(t *testing.T) (*Handler, *mux.Router) {
	t.Helper()
	store := NewStore(kvstore.NewMemoryStore(), testClock())
	session, err := NewSession(context.Background(), store, event_bus.NewEventBus(), testClock())
	require.NoError(t, err)
	handler := NewHandler(session)

	r := mux.NewRouter()
	r.HandleFunc("/api/snapshot", handler.GetSnapshot).Methods("GET")
	r.HandleFunc("/api/period", handler.SwitchPeriod).Methods("PUT")
	r.HandleFunc("/api/income/list/{list}/entry", handler.AddIncomeEntry).Methods("POST")
	r.HandleFunc("/api/income/list/{list}/entry/{entryId}", handler.UpdateIncomeEntry).Methods("PUT")
	r.HandleFunc("/api/income/{field}", handler.SetIncomeField).Methods("PUT")
	r.HandleFunc("/api/budget", handler.SaveBudget).Methods("PUT")
	r.HandleFunc("/api/expense", handler.AddExpense).Methods("POST")
	r.HandleFunc("/api/expense/{id}", handler.DeleteExpense).Methods("DELETE")
	r.HandleFunc("/api/expense", handler.ClearExpenses).Methods("DELETE")
	return handler, r
}

func doJSON(t *testing.T, r *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_SnapshotIncludesFormattedTotals(t *testing.T) {
	// given
	_, router := setupHandlerTest(t)
	doJSON(t, router, http.MethodPut, "/api/income/fixed", map[string]string{"amount": "2500"})

	// when
	w := doJSON(t, router, http.MethodGet, "/api/snapshot", nil)

	// then
	require.Equal(t, http.StatusOK, w.Code)
	var dto SnapshotDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
	assert.Equal(t, 2025, dto.Period.Year)
	assert.Equal(t, 0, dto.Period.Month)
	assert.Equal(t, "$2500.00", dto.TotalIncomeDisplay)
	assert.Equal(t, "not-set", dto.GlobalStatus)
}

func TestHandler_SwitchPeriodRejectsInvalidMonth(t *testing.T) {
	// given
	_, router := setupHandlerTest(t)

	// when
	w := doJSON(t, router, http.MethodPut, "/api/period", PeriodDTO{Year: 2025, Month: 12})

	// then
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_IncomeEntryFlow(t *testing.T) {
	// given
	_, router := setupHandlerTest(t)

	// when: add an entry then rename it
	w := doJSON(t, router, http.MethodPost, "/api/income/list/one-to-one/entry", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var entry EntryDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&entry))
	require.NotEmpty(t, entry.ID)

	w = doJSON(t, router, http.MethodPut, "/api/income/list/one-to-one/entry/"+entry.ID,
		map[string]string{"name": "Coaching", "amount": "300"})

	// then
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_UnknownIncomeListIs404(t *testing.T) {
	// given
	_, router := setupHandlerTest(t)

	// when
	w := doJSON(t, router, http.MethodPost, "/api/income/list/bonus/entry", nil)

	// then
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_SaveBudgetRejectsUnknownCategory(t *testing.T) {
	// given
	_, router := setupHandlerTest(t)

	// when
	w := doJSON(t, router, http.MethodPut, "/api/budget", map[string]string{"groceries": "100"})

	// then
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_SaveBudgetRejectsAllZero(t *testing.T) {
	// given
	_, router := setupHandlerTest(t)

	// when
	w := doJSON(t, router, http.MethodPut, "/api/budget", map[string]string{"food": "0"})

	// then
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_AddExpenseWithLenientAmount(t *testing.T) {
	// given
	_, router := setupHandlerTest(t)

	// when: a non-numeric amount parses to zero, which is rejected
	w := doJSON(t, router, http.MethodPost, "/api/expense", map[string]string{
		"date": "2025-01-10", "amount": "abc", "categoryId": "food",
	})

	// then
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_AddAndDeleteExpense(t *testing.T) {
	// given
	_, router := setupHandlerTest(t)
	w := doJSON(t, router, http.MethodPost, "/api/expense", map[string]string{
		"date": "2025-01-10", "amount": "12.50", "categoryId": "food", "description": "lunch",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var dto ExpenseDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
	assert.Equal(t, "Food", dto.CategoryLabel)

	// when
	id := strconv.FormatInt(dto.ID, 10)
	w = doJSON(t, router, http.MethodDelete, "/api/expense/"+id, nil)

	// then: deleting it again reports it gone
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, router, http.MethodDelete, "/api/expense/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ClearExpensesRequiresConfirmation(t *testing.T) {
	// given
	_, router := setupHandlerTest(t)

	// when
	w := doJSON(t, router, http.MethodDelete, "/api/expense", nil)

	// then
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// and with confirmation it succeeds
	w = doJSON(t, router, http.MethodDelete, "/api/expense?confirm=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
