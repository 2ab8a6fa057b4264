package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"salesview/internal/services"
)

// Analytics is the view contract the server exposes over HTTP. The combined
// report reuses the same component contracts in-process instead of calling
// back into the server's own endpoints.
type Analytics interface {
	ListTransactions(ctx context.Context, month, search string, page, perPage int) (services.TransactionPage, error)
	TotalSaleAmount(ctx context.Context, month string) (decimal.Decimal, error)
	TotalSoldItems(ctx context.Context, month string) (int, error)
	TotalNotSoldItems(ctx context.Context, month string) (int, error)
	PriceHistogram(ctx context.Context, month string) ([]services.RangeCount, error)
	CategoryDistribution(ctx context.Context, month string) ([]services.CategoryCount, error)
	CombinedReport(ctx context.Context, month string) (services.CombinedReport, error)
}

type Server struct {
	http.Server
	analytics Analytics
}

// NewServer configures the API routes, returning a ready-to-run http.Server.
func NewServer(addr string, analytics Analytics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		analytics: analytics,
	}

	mux.HandleFunc("/transactions", s.withAPIMiddleware(s.handleTransactions))
	mux.HandleFunc("/statistics/total-sale-amount", s.withAPIMiddleware(s.handleTotalSaleAmount))
	mux.HandleFunc("/statistics/total-sold-items", s.withAPIMiddleware(s.handleTotalSoldItems))
	mux.HandleFunc("/statistics/total-not-sold-items", s.withAPIMiddleware(s.handleTotalNotSoldItems))
	mux.HandleFunc("/bar-chart", s.withAPIMiddleware(s.handleBarChart))
	mux.HandleFunc("/pie-chart", s.withAPIMiddleware(s.handlePieChart))
	mux.HandleFunc("/combined-data", s.withAPIMiddleware(s.handleCombinedData))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	return s
}

// withAPIMiddleware adds request logging, security headers, and CORS to the
// JSON endpoints. The dashboard is served from another origin, so every
// response allows cross-origin GETs.
func (s *Server) withAPIMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET, OPTIONS")
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
