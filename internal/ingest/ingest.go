package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"salesview/internal/core"
)

// RawTransaction is one record of the upstream snapshot payload.
type RawTransaction struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	Sold        bool      `json:"sold"`
	DateOfSale  time.Time `json:"dateOfSale"`
}

// Fetcher retrieves the full snapshot from the upstream source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]RawTransaction, error)
}

// Store is the write side of the record store: a single atomic-in-effect
// swap of the entire contents.
type Store interface {
	ReplaceAll(ctx context.Context, records []core.Transaction) error
}

// SnapshotClient fetches the snapshot JSON over HTTP.
type SnapshotClient struct {
	url        string
	httpClient *http.Client
}

func NewSnapshotClient(url string, timeout time.Duration) *SnapshotClient {
	return &SnapshotClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *SnapshotClient) Fetch(ctx context.Context) ([]RawTransaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build snapshot request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch snapshot: unexpected status %d", resp.StatusCode)
	}

	var records []RawTransaction
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return records, nil
}

// Result describes one completed ingestion run.
type Result struct {
	RunID       string
	Records     int
	StartedAt   time.Time
	CompletedAt time.Time
}

// Service owns the truncate-and-reload lifecycle of the record store.
type Service struct {
	fetcher Fetcher
	store   Store
}

func NewService(fetcher Fetcher, store Store) *Service {
	return &Service{fetcher: fetcher, store: store}
}

// Run fetches a fresh snapshot and replaces the store contents with it,
// deriving each record's month from its sale date. On any failure the store
// keeps its prior contents; there is no retry.
func (s *Service) Run(ctx context.Context) (Result, error) {
	runID := uuid.NewString()
	startedAt := time.Now()

	slog.InfoContext(ctx, "Ingestion run started", "run_id", runID)

	raw, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("ingestion run %s: %w", runID, err)
	}

	records := make([]core.Transaction, len(raw))
	for i, r := range raw {
		records[i] = core.Transaction{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Price:       decimal.NewFromFloat(r.Price),
			Category:    r.Category,
			ImageURL:    r.Image,
			Sold:        r.Sold,
			DateOfSale:  r.DateOfSale,
			Month:       core.MonthOf(r.DateOfSale),
		}
	}

	if err := s.store.ReplaceAll(ctx, records); err != nil {
		return Result{}, fmt.Errorf("ingestion run %s: %w", runID, err)
	}

	result := Result{
		RunID:       runID,
		Records:     len(records),
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
	}

	slog.InfoContext(ctx, "Ingestion run completed",
		"run_id", result.RunID,
		"records", result.Records,
		"duration_ms", result.CompletedAt.Sub(result.StartedAt).Milliseconds())

	return result, nil
}
