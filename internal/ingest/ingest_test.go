package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"salesview/internal/core"
)

type captureStore struct {
	records []core.Transaction
	calls   int
	err     error
}

func (s *captureStore) ReplaceAll(ctx context.Context, records []core.Transaction) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.records = records
	return nil
}

const snapshotJSON = `[
	{"id": 1, "title": "Floral Dress", "price": 150.5, "description": "summer dress",
	 "category": "clothing", "image": "https://example.com/1.jpg", "sold": true,
	 "dateOfSale": "2022-03-15T10:30:00Z"},
	{"id": 2, "title": "Laptop", "price": 950, "description": "portable computer",
	 "category": "electronics", "image": "", "sold": false,
	 "dateOfSale": "2021-11-27T20:29:54Z"}
]`

func TestRunReplacesStoreWithDerivedMonths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(snapshotJSON))
	}))
	defer srv.Close()

	store := &captureStore{}
	svc := NewService(NewSnapshotClient(srv.URL, 5*time.Second), store)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Records != 2 {
		t.Errorf("result records = %d, want 2", result.Records)
	}
	if result.RunID == "" {
		t.Error("run ID must be set")
	}
	if len(store.records) != 2 {
		t.Fatalf("store received %d records, want 2", len(store.records))
	}

	first := store.records[0]
	if first.Month != "March" {
		t.Errorf("derived month = %q, want March", first.Month)
	}
	if !first.Price.Equal(decimal.NewFromFloat(150.5)) {
		t.Errorf("price = %s, want 150.5", first.Price)
	}
	if first.ImageURL != "https://example.com/1.jpg" {
		t.Errorf("image url = %q", first.ImageURL)
	}
	if store.records[1].Month != "November" {
		t.Errorf("derived month = %q, want November", store.records[1].Month)
	}
}

func TestRunFetchFailureLeavesStoreUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := &captureStore{}
	svc := NewService(NewSnapshotClient(srv.URL, 5*time.Second), store)

	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("run must fail on upstream error")
	}
	if store.calls != 0 {
		t.Errorf("store was written %d times on a failed fetch, want 0", store.calls)
	}
}

func TestRunPropagatesStoreError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(snapshotJSON))
	}))
	defer srv.Close()

	storeErr := errors.New("disk full")
	svc := NewService(NewSnapshotClient(srv.URL, 5*time.Second), &captureStore{err: storeErr})

	_, err := svc.Run(context.Background())
	if !errors.Is(err, storeErr) {
		t.Errorf("error %v does not wrap the store error", err)
	}
}

func TestFetchMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"}`))
	}))
	defer srv.Close()

	client := NewSnapshotClient(srv.URL, 5*time.Second)
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("fetch must fail on a malformed payload")
	}
}
