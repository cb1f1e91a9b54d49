package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Dashboard
	r.HandleFunc("/api/snapshot", deps.TrackerHandler.GetSnapshot).Methods("GET")
	r.HandleFunc("/api/categories", deps.TrackerHandler.GetCategories).Methods("GET")

	// Period
	r.HandleFunc("/api/period", deps.TrackerHandler.GetPeriod).Methods("GET")
	r.HandleFunc("/api/period", deps.TrackerHandler.SwitchPeriod).Methods("PUT")

	// Settings
	r.HandleFunc("/api/currency", deps.TrackerHandler.GetCurrency).Methods("GET")
	r.HandleFunc("/api/currency", deps.TrackerHandler.SetCurrency).Methods("PUT")

	// Income
	r.HandleFunc("/api/income", deps.TrackerHandler.GetIncome).Methods("GET")
	r.HandleFunc("/api/income/{field}", deps.TrackerHandler.SetIncomeField).Methods("PUT")
	r.HandleFunc("/api/income/list/{list}/entry", deps.TrackerHandler.AddIncomeEntry).Methods("POST")
	r.HandleFunc("/api/income/list/{list}/entry/{entryId}", deps.TrackerHandler.UpdateIncomeEntry).Methods("PUT")
	r.HandleFunc("/api/income/list/{list}/entry/{entryId}", deps.TrackerHandler.DeleteIncomeEntry).Methods("DELETE")

	// Budget
	r.HandleFunc("/api/budget", deps.TrackerHandler.GetBudget).Methods("GET")
	r.HandleFunc("/api/budget", deps.TrackerHandler.SaveBudget).Methods("PUT")

	// Expenses
	r.HandleFunc("/api/expense", deps.TrackerHandler.ListExpenses).Methods("GET")
	r.HandleFunc("/api/expense", deps.TrackerHandler.AddExpense).Methods("POST")
	r.HandleFunc("/api/expense/{id}", deps.TrackerHandler.DeleteExpense).Methods("DELETE")
	r.HandleFunc("/api/expense", deps.TrackerHandler.ClearExpenses).Methods("DELETE")

	// Data management
	r.HandleFunc("/api/data", deps.TrackerHandler.ClearAll).Methods("DELETE")
	r.HandleFunc("/api/export/expenses", deps.ExportHandler.DownloadExpensesCSV).Methods("GET")
	r.HandleFunc("/api/export/report", deps.ExportHandler.DownloadReportCSV).Methods("GET")
	r.HandleFunc("/api/export/backup", deps.ExportHandler.DownloadBackup).Methods("GET")
	r.HandleFunc("/api/export/backup", deps.ExportHandler.RestoreBackup).Methods("POST")
	r.HandleFunc("/api/export/sheets", deps.ExportHandler.BackupToSheets).Methods("POST")
}
