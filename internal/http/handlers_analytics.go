package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"alphawealth/internal/analytics"
	"alphawealth/internal/core"
	"alphawealth/internal/storage"
)

// serveCachedAnalytics serves the marshaled result from the per-user cache,
// computing and storing it on a miss. Entries are dropped whenever a change
// event for the user arrives, so a stale entry can outlive a write only until
// the event round-trips the broker.
func (s *Server) serveCachedAnalytics(w http.ResponseWriter, r *http.Request, userID string, compute func() any) {
	key := userID + ":" + r.URL.Path + "?" + r.URL.RawQuery
	if body, ok := s.analyticsCache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(body)
		return
	}

	body, err := json.Marshal(compute())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed marshaling analytics response",
			"error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.analyticsCache.Set(key, body)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(body)
}

// loadTransactions fetches the user's transactions for analytics views. Read
// failures degrade to empty data rather than an error response.
func (s *Server) loadTransactions(ctx context.Context, userID string, f storage.TransactionFilter) []core.Transaction {
	txns, err := s.repo.ListTransactions(ctx, userID, f)
	if err != nil {
		slog.ErrorContext(ctx, "Failed loading transactions for analytics",
			"error", err, "user_id", userID)
		return nil
	}
	return txns
}

func (s *Server) loadCategories(ctx context.Context, userID string) []core.Category {
	categories, err := s.repo.ListCategories(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed loading categories for analytics",
			"error", err, "user_id", userID)
		return nil
	}
	return categories
}

type summaryResponse struct {
	Income           core.Money `json:"income"`
	Expense          core.Money `json:"expense"`
	Net              core.Money `json:"net"`
	TransactionCount int        `json:"transaction_count"`
}

// handleSummary returns income/expense totals, over the last ?months=N
// calendar months or over everything when the parameter is absent.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, userID string) {
	s.serveCachedAnalytics(w, r, userID, func() any {
		var filter storage.TransactionFilter
		if months := queryInt(r, "months", 0); months > 0 {
			now := time.Now()
			filter.From = core.NewDate(now.Year(), int(now.Month())-months+1, 1)
		}
		txns := s.loadTransactions(r.Context(), userID, filter)
		totals := analytics.TotalsByType(txns)
		return summaryResponse{
			Income:           totals.Income,
			Expense:          totals.Expense,
			Net:              core.Money{Cents: totals.Income.Cents - totals.Expense.Cents},
			TransactionCount: len(txns),
		}
	})
}

func (s *Server) handleSpendingByCategory(w http.ResponseWriter, r *http.Request, userID string) {
	s.serveCachedAnalytics(w, r, userID, func() any {
		txns := s.loadTransactions(r.Context(), userID, transactionFilter(r))
		categories := s.loadCategories(r.Context(), userID)
		slices := analytics.SpendingByCategory(txns, categories)
		if slices == nil {
			slices = []analytics.CategorySlice{}
		}
		return slices
	})
}

func (s *Server) handleTopCategories(w http.ResponseWriter, r *http.Request, userID string) {
	s.serveCachedAnalytics(w, r, userID, func() any {
		txns := s.loadTransactions(r.Context(), userID, transactionFilter(r))
		top := analytics.TopCategories(txns)
		if top == nil {
			top = []analytics.TopCategory{}
		}
		return top
	})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request, userID string) {
	s.serveCachedAnalytics(w, r, userID, func() any {
		months := queryInt(r, "months", 6)
		if months < 1 || months > 36 {
			months = 6
		}
		txns := s.loadTransactions(r.Context(), userID, storage.TransactionFilter{})
		return analytics.MonthlySeries(txns, time.Now(), months)
	})
}

func (s *Server) handleMonthComparison(w http.ResponseWriter, r *http.Request, userID string) {
	s.serveCachedAnalytics(w, r, userID, func() any {
		txns := s.loadTransactions(r.Context(), userID, storage.TransactionFilter{})
		return analytics.MonthComparison(txns, time.Now())
	})
}

func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request, userID string) {
	s.serveCachedAnalytics(w, r, userID, func() any {
		budgets, err := s.repo.ListBudgets(r.Context(), userID)
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed loading budgets for progress view",
				"error", err, "user_id", userID)
			return []analytics.BudgetStatus{}
		}
		// Rollover budgets look at the period before their own range, so
		// the full history is loaded once for all of them.
		txns := s.loadTransactions(r.Context(), userID, storage.TransactionFilter{})
		statuses := make([]analytics.BudgetStatus, len(budgets))
		for i, b := range budgets {
			statuses[i] = analytics.BudgetProgress(b, txns)
		}
		return statuses
	})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request, userID string) {
	s.serveCachedAnalytics(w, r, userID, func() any {
		year, month := parseYearMonth(r)
		// The grid shows up to six leading and trailing days of the
		// adjacent months; pad the fetch window accordingly.
		monthStart := core.NewDate(year, month, 1)
		monthEnd := core.Date{Time: monthStart.AddDate(0, 1, -1)}
		txns := s.loadTransactions(r.Context(), userID, storage.TransactionFilter{
			From: core.Date{Time: monthStart.AddDate(0, 0, -6)},
			To:   core.Date{Time: monthEnd.AddDate(0, 0, 6)},
		})
		return analytics.CalendarMonth(txns, year, time.Month(month))
	})
}
