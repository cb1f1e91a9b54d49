package export

import (
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/pennybook/pennybook/internal/rest"
	"github.com/pennybook/pennybook/pkg/export/sheets"
	"github.com/pennybook/pennybook/pkg/tracker"
)

// Handler serves downloads of the active period and full-backup documents.
// sheetsWriter is nil when no spreadsheet backup is configured.
type Handler struct {
	session      *tracker.Session
	exporter     *Exporter
	renderer     CsvRenderer
	sheetsWriter sheets.ExpenseWriter
}

func NewHandler(session *tracker.Session, exporter *Exporter, renderer CsvRenderer, sheetsWriter sheets.ExpenseWriter) *Handler {
	return &Handler{
		session:      session,
		exporter:     exporter,
		renderer:     renderer,
		sheetsWriter: sheetsWriter,
	}
}

func (h *Handler) DownloadExpensesCSV(w http.ResponseWriter, r *http.Request) {
	state := h.session.State()
	h.serveCSV(w, h.exporter.ExpenseRows(state), fmt.Sprintf("expenses-%d-%d.csv", state.Key.Year, state.Key.Month+1))
}

func (h *Handler) DownloadReportCSV(w http.ResponseWriter, r *http.Request) {
	state := h.session.State()
	h.serveCSV(w, h.exporter.ReportRows(state), fmt.Sprintf("report-%d-%d.csv", state.Key.Year, state.Key.Month+1))
}

func (h *Handler) DownloadBackup(w http.ResponseWriter, r *http.Request) {
	backup, err := h.exporter.BackupAll(r.Context())
	if err != nil {
		log.Errorf("backup failed: %v", err)
		h.writeError(w, http.StatusInternalServerError, "Backup failed", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="pennybook-backup.json"`)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(backup); err != nil {
		log.Errorf("failed to encode backup: %v", err)
	}
}

func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	var backup Backup
	if err := json.NewDecoder(r.Body).Decode(&backup); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid backup document", err.Error())
		return
	}
	if err := h.exporter.Restore(r.Context(), backup); err != nil {
		log.Errorf("restore failed: %v", err)
		h.writeError(w, http.StatusBadRequest, "Restore failed", err.Error())
		return
	}
	// The active period may have been overwritten; rebind it from storage.
	if err := h.session.Reload(r.Context()); err != nil {
		log.Errorf("could not reload active period after restore: %v", err)
		h.writeError(w, http.StatusInternalServerError, "Restore succeeded but reload failed", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BackupToSheets appends the active period's expense rows to the configured
// spreadsheet.
func (h *Handler) BackupToSheets(w http.ResponseWriter, r *http.Request) {
	if h.sheetsWriter == nil {
		h.writeError(w, http.StatusConflict, "Sheets backup is not configured", "set sheets.enabled and credentials in the configuration")
		return
	}
	state := h.session.State()
	rows := h.exporter.ExpenseRows(state)
	if err := h.sheetsWriter.Append(r.Context(), rows); err != nil {
		log.Errorf("sheets backup failed: %v", err)
		h.writeError(w, http.StatusBadGateway, "Sheets backup failed", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"rows": len(rows)})
}

func (h *Handler) serveCSV(w http.ResponseWriter, rows [][]string, filename string) {
	content, err := h.renderer.Render(rows)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "CSV rendering failed", "")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(content)); err != nil {
		log.Errorf("failed to write csv response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(rest.ErrorResponse{Error: message, Details: details}); err != nil {
		log.Errorf("failed to encode error response: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}
