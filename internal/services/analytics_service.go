package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"salesview/internal/core"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

// RecordStore is the read contract every view is computed against. The only
// writer is the ingestion job; between ingestion runs the store is immutable,
// so concurrent readers never block each other.
type RecordStore interface {
	// ListTransactions returns matching records sorted ascending by sale
	// date. A limit of zero or less disables windowing.
	ListTransactions(ctx context.Context, f core.Filter, limit, offset int) ([]core.Transaction, error)
	CountTransactions(ctx context.Context, f core.Filter) (int, error)
	SumPrice(ctx context.Context, f core.Filter) (decimal.Decimal, error)
}

type (
	// TransactionPage is one window of the listing plus paging metadata.
	TransactionPage struct {
		Transactions []core.Transaction `json:"transactions"`
		TotalPages   int                `json:"totalPages"`
		CurrentPage  int                `json:"currentPage"`
		PerPage      int                `json:"perPage"`
		TotalCount   int                `json:"totalCount"`
	}

	// Statistics bundles the three month-scoped scalars.
	Statistics struct {
		TotalSaleAmount   decimal.Decimal `json:"totalSaleAmount"`
		TotalSoldItems    int             `json:"totalSoldItems"`
		TotalNotSoldItems int             `json:"totalNotSoldItems"`
	}

	// RangeCount is one bar of the price histogram.
	RangeCount struct {
		Range string `json:"range"`
		Count int    `json:"count"`
	}

	// CategoryCount is one slice of the category distribution.
	CategoryCount struct {
		Category string `json:"category"`
		Count    int    `json:"count"`
	}

	// CombinedReport bundles every view for a single month. The embedded
	// values are identical to what the standalone views produce.
	CombinedReport struct {
		Transactions      TransactionPage `json:"transactions"`
		TotalSale         decimal.Decimal `json:"totalSale"`
		TotalSoldItems    int             `json:"totalSoldItems"`
		TotalNotSoldItems int             `json:"totalNotSoldItems"`
		BarChartData      []RangeCount    `json:"barChartData"`
		PieChartData      []CategoryCount `json:"pieChartData"`
	}
)

// AnalyticsService derives the month-scoped views from the record store.
type AnalyticsService struct {
	store RecordStore
}

func NewAnalyticsService(store RecordStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// ListTransactions returns one page of records matching the month and search
// term, sorted ascending by sale date. Page and perPage fall back to defaults
// when out of range; a page past the end yields an empty list while the
// totals still reflect the full match set.
func (s *AnalyticsService) ListTransactions(ctx context.Context, month, search string, page, perPage int) (TransactionPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	f := core.NewSearchFilter(month, search)

	records, err := s.store.ListTransactions(ctx, f, perPage, (page-1)*perPage)
	if err != nil {
		return TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}
	if records == nil {
		records = []core.Transaction{}
	}

	totalCount, err := s.store.CountTransactions(ctx, f)
	if err != nil {
		return TransactionPage{}, fmt.Errorf("count transactions: %w", err)
	}

	return TransactionPage{
		Transactions: records,
		TotalPages:   (totalCount + perPage - 1) / perPage,
		CurrentPage:  page,
		PerPage:      perPage,
		TotalCount:   totalCount,
	}, nil
}

// TotalSaleAmount sums the price of sold records in the month. An empty month
// totals zero.
func (s *AnalyticsService) TotalSaleAmount(ctx context.Context, month string) (decimal.Decimal, error) {
	sold := true
	total, err := s.store.SumPrice(ctx, core.Filter{Month: core.NormalizeMonth(month), Sold: &sold})
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("sum sale amount: %w", err)
	}
	return total, nil
}

// TotalSoldItems counts sold records in the month.
func (s *AnalyticsService) TotalSoldItems(ctx context.Context, month string) (int, error) {
	sold := true
	count, err := s.store.CountTransactions(ctx, core.Filter{Month: core.NormalizeMonth(month), Sold: &sold})
	if err != nil {
		return 0, fmt.Errorf("count sold items: %w", err)
	}
	return count, nil
}

// TotalNotSoldItems counts unsold records in the month.
func (s *AnalyticsService) TotalNotSoldItems(ctx context.Context, month string) (int, error) {
	sold := false
	count, err := s.store.CountTransactions(ctx, core.Filter{Month: core.NormalizeMonth(month), Sold: &sold})
	if err != nil {
		return 0, fmt.Errorf("count not-sold items: %w", err)
	}
	return count, nil
}

// Statistics computes the three scalars for one month.
func (s *AnalyticsService) Statistics(ctx context.Context, month string) (Statistics, error) {
	total, err := s.TotalSaleAmount(ctx, month)
	if err != nil {
		return Statistics{}, err
	}
	soldCount, err := s.TotalSoldItems(ctx, month)
	if err != nil {
		return Statistics{}, err
	}
	notSoldCount, err := s.TotalNotSoldItems(ctx, month)
	if err != nil {
		return Statistics{}, err
	}

	return Statistics{
		TotalSaleAmount:   total,
		TotalSoldItems:    soldCount,
		TotalNotSoldItems: notSoldCount,
	}, nil
}

// PriceHistogram counts the month's records per fixed price range. Every
// range is present in the result, zero counts included, ordered by lower
// bound ascending.
func (s *AnalyticsService) PriceHistogram(ctx context.Context, month string) ([]RangeCount, error) {
	records, err := s.store.ListTransactions(ctx, core.Filter{Month: core.NormalizeMonth(month)}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list transactions for histogram: %w", err)
	}

	index := make(map[string]int, len(core.PriceRanges))
	histogram := make([]RangeCount, len(core.PriceRanges))
	for i, r := range core.PriceRanges {
		index[r.Label] = i
		histogram[i] = RangeCount{Range: r.Label}
	}

	for _, t := range records {
		if r, ok := core.RangeFor(t.Price); ok {
			histogram[index[r.Label]].Count++
		}
	}

	return histogram, nil
}

// CategoryDistribution counts the month's records per category, ordered by
// count descending. Ties keep first-seen order over the date-sorted scan, so
// the result is deterministic for identical input.
func (s *AnalyticsService) CategoryDistribution(ctx context.Context, month string) ([]CategoryCount, error) {
	records, err := s.store.ListTransactions(ctx, core.Filter{Month: core.NormalizeMonth(month)}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list transactions for distribution: %w", err)
	}

	index := make(map[string]int)
	distribution := []CategoryCount{}
	for _, t := range records {
		i, seen := index[t.Category]
		if !seen {
			i = len(distribution)
			index[t.Category] = i
			distribution = append(distribution, CategoryCount{Category: t.Category})
		}
		distribution[i].Count++
	}

	sort.SliceStable(distribution, func(i, j int) bool {
		return distribution[i].Count > distribution[j].Count
	})

	return distribution, nil
}

// CombinedReport computes all views for one month concurrently. The four
// sub-computations share the month filter and are independent; the first
// failure cancels the siblings and fails the whole report.
func (s *AnalyticsService) CombinedReport(ctx context.Context, month string) (CombinedReport, error) {
	var (
		page  TransactionPage
		stats Statistics
		bar   []RangeCount
		pie   []CategoryCount
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = s.ListTransactions(ctx, month, "", DefaultPage, DefaultPerPage)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.Statistics(ctx, month)
		return err
	})
	g.Go(func() error {
		var err error
		bar, err = s.PriceHistogram(ctx, month)
		return err
	})
	g.Go(func() error {
		var err error
		pie, err = s.CategoryDistribution(ctx, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return CombinedReport{}, fmt.Errorf("combined report: %w", err)
	}

	return CombinedReport{
		Transactions:      page,
		TotalSale:         stats.TotalSaleAmount,
		TotalSoldItems:    stats.TotalSoldItems,
		TotalNotSoldItems: stats.TotalNotSoldItems,
		BarChartData:      bar,
		PieChartData:      pie,
	}, nil
}
