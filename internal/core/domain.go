package core

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

func init() {
	// API clients expect prices as plain JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Months lists the twelve canonical month names used as the month filter key.
// Records store one of these, derived from the sale date at ingestion time.
var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

type (
	// Transaction is a single sales record. The field set mirrors the
	// upstream snapshot payload plus the derived Month column.
	Transaction struct {
		ID          int64           `json:"id"`
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
		Category    string          `json:"category"`
		ImageURL    string          `json:"image"`
		Sold        bool            `json:"sold"`
		DateOfSale  time.Time       `json:"dateOfSale"`
		Month       string          `json:"month"`
	}

	// Filter is the predicate shared by every month-scoped view. The store
	// evaluates it verbatim; Matches gives the reference semantics.
	Filter struct {
		Month  string // canonical month name; empty means no month condition
		Search string // optional free-text term
		Sold   *bool  // optional sold/not-sold condition
	}
)

// NormalizeMonth canonicalizes a free-form month token: first rune upper,
// rest lower. It is a pure string transform and does not check membership in
// Months; an unrecognized token simply matches no records.
func NormalizeMonth(month string) string {
	if month == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(month)
	return strings.ToUpper(string(r)) + strings.ToLower(month[size:])
}

// MonthOf derives the stored month name from a sale date.
func MonthOf(t time.Time) string {
	return t.Month().String()
}

// NewSearchFilter builds the listing predicate: month equality (when month is
// non-empty, normalized first) plus the optional search term.
func NewSearchFilter(month, search string) Filter {
	return Filter{
		Month:  NormalizeMonth(month),
		Search: strings.TrimSpace(search),
	}
}

// SearchPrice reports the exact-price clause of the search disjunction: the
// parsed value and whether the term is numeric at all. A non-numeric term
// excludes the price clause entirely rather than treating it as a non-match.
func (f Filter) SearchPrice() (decimal.Decimal, bool) {
	if f.Search == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(f.Search)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// Matches evaluates the predicate against a single record: month equality,
// AND (title substring OR description substring OR exact price), with the
// substring matches case-insensitive. This is the contract SQL-backed stores
// must reproduce.
func (f Filter) Matches(t Transaction) bool {
	if f.Month != "" && t.Month != f.Month {
		return false
	}
	if f.Sold != nil && t.Sold != *f.Sold {
		return false
	}
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	if strings.Contains(strings.ToLower(t.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), term) {
		return true
	}
	if price, ok := f.SearchPrice(); ok && t.Price.Equal(price) {
		return true
	}
	return false
}
