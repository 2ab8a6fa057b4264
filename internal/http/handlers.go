package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"salesview/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// requireMonth enforces the month query parameter. Store failures stay out of
// the response body; only the descriptive 400 carries detail.
func requireMonth(w http.ResponseWriter, r *http.Request) (string, bool) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		writeError(w, http.StatusBadRequest, "Month parameter is required")
		return "", false
	}
	return month, true
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := services.DefaultPage
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			page = p
		}
	}
	perPage := services.DefaultPerPage
	if v := strings.TrimSpace(q.Get("per_page")); v != "" {
		if pp, err := strconv.Atoi(v); err == nil {
			perPage = pp
		}
	}

	result, err := s.analytics.ListTransactions(r.Context(), q.Get("month"), q.Get("search"), page, perPage)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error fetching transactions")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTotalSaleAmount(w http.ResponseWriter, r *http.Request) {
	month, ok := requireMonth(w, r)
	if !ok {
		return
	}

	total, err := s.analytics.TotalSaleAmount(r.Context(), month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Total sale amount failed", "error", err, "month", month)
		writeError(w, http.StatusInternalServerError, "Error calculating total sale amount")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"totalSaleAmount": total})
}

func (s *Server) handleTotalSoldItems(w http.ResponseWriter, r *http.Request) {
	month, ok := requireMonth(w, r)
	if !ok {
		return
	}

	count, err := s.analytics.TotalSoldItems(r.Context(), month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Total sold items failed", "error", err, "month", month)
		writeError(w, http.StatusInternalServerError, "Error calculating total sold items")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"totalSoldItems": count})
}

func (s *Server) handleTotalNotSoldItems(w http.ResponseWriter, r *http.Request) {
	month, ok := requireMonth(w, r)
	if !ok {
		return
	}

	count, err := s.analytics.TotalNotSoldItems(r.Context(), month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Total not-sold items failed", "error", err, "month", month)
		writeError(w, http.StatusInternalServerError, "Error calculating total not sold items")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"totalNotSoldItems": count})
}

func (s *Server) handleBarChart(w http.ResponseWriter, r *http.Request) {
	month, ok := requireMonth(w, r)
	if !ok {
		return
	}

	histogram, err := s.analytics.PriceHistogram(r.Context(), month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Bar chart failed", "error", err, "month", month)
		writeError(w, http.StatusInternalServerError, "Error fetching bar chart data")
		return
	}

	writeJSON(w, http.StatusOK, histogram)
}

func (s *Server) handlePieChart(w http.ResponseWriter, r *http.Request) {
	month, ok := requireMonth(w, r)
	if !ok {
		return
	}

	distribution, err := s.analytics.CategoryDistribution(r.Context(), month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Pie chart failed", "error", err, "month", month)
		writeError(w, http.StatusInternalServerError, "Error fetching pie chart data")
		return
	}

	writeJSON(w, http.StatusOK, distribution)
}

func (s *Server) handleCombinedData(w http.ResponseWriter, r *http.Request) {
	month, ok := requireMonth(w, r)
	if !ok {
		return
	}

	report, err := s.analytics.CombinedReport(r.Context(), month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Combined report failed", "error", err, "month", month)
		writeError(w, http.StatusInternalServerError, "Error fetching combined data")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
