package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"alphawealth/internal/export"
)

// handleExport streams the user's transactions as a CSV or JSON download.
// List filters apply, so ?from=&to= exports a slice of the history.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, userID string) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		writeError(w, http.StatusUnprocessableEntity, "format must be csv or json")
		return
	}

	txns, err := s.repo.ListTransactions(r.Context(), userID, transactionFilter(r))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	filename := fmt.Sprintf("transactions-%s.%s", time.Now().Format("20060102"), format)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = export.WriteCSV(w, txns)
	case "json":
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		err = export.WriteJSON(w, txns)
	}
	if err != nil {
		// Headers are out the door; all we can do is log.
		slog.ErrorContext(r.Context(), "Export streaming failed",
			"error", err, "format", format, "user_id", userID)
	}
}
