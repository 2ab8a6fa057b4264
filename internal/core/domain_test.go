package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNormalizeMonth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"all upper", "MARCH", "March"},
		{"all lower", "march", "March"},
		{"mixed case", "mArCh", "March"},
		{"already canonical", "March", "March"},
		{"unknown token still normalized", "marchh", "Marchh"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeMonth(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeMonth(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeMonthIdempotent(t *testing.T) {
	for _, m := range Months {
		if got := NormalizeMonth(m); got != m {
			t.Errorf("NormalizeMonth(%q) = %q, want unchanged", m, got)
		}
	}
}

func TestMonthOf(t *testing.T) {
	d := time.Date(2022, time.March, 15, 10, 0, 0, 0, time.UTC)
	if got := MonthOf(d); got != "March" {
		t.Errorf("MonthOf = %q, want March", got)
	}
	if got := MonthOf(d.AddDate(0, 9, 0)); got != "December" {
		t.Errorf("MonthOf = %q, want December", got)
	}
}

func record(title, desc string, price float64) Transaction {
	return Transaction{
		Title:       title,
		Description: desc,
		Price:       decimal.NewFromFloat(price),
		Month:       "March",
	}
}

func TestFilterMatchesSearch(t *testing.T) {
	rec := record("Floral Dress", "A summer dress with floral print", 150)

	tests := []struct {
		name   string
		search string
		want   bool
	}{
		{"title substring lower", "floral", true},
		{"title substring upper", "FLORAL", true},
		{"title substring partial", "dress", true},
		{"description substring", "summer", true},
		{"exact price", "150", true},
		{"price with decimals", "150.0", true},
		{"numeric non-matching price", "151", false},
		{"no match", "jacket", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewSearchFilter("march", tt.search)
			if got := f.Matches(rec); got != tt.want {
				t.Errorf("Matches with search %q = %v, want %v", tt.search, got, tt.want)
			}
		})
	}
}

func TestFilterMatchesMonth(t *testing.T) {
	rec := record("Laptop", "portable computer", 950)

	if !NewSearchFilter("MARCH", "").Matches(rec) {
		t.Error("month filter should match after normalization")
	}
	if NewSearchFilter("April", "").Matches(rec) {
		t.Error("month filter should reject other months")
	}
	if !NewSearchFilter("", "").Matches(rec) {
		t.Error("empty filter should match everything")
	}
}

func TestFilterMatchesSold(t *testing.T) {
	rec := record("Laptop", "portable computer", 950)
	rec.Sold = true

	sold, notSold := true, false
	if !(Filter{Month: "March", Sold: &sold}).Matches(rec) {
		t.Error("sold filter should match a sold record")
	}
	if (Filter{Month: "March", Sold: &notSold}).Matches(rec) {
		t.Error("not-sold filter should reject a sold record")
	}
}

func TestSearchPrice(t *testing.T) {
	if _, ok := NewSearchFilter("march", "dress").SearchPrice(); ok {
		t.Error("non-numeric term must not produce a price clause")
	}
	price, ok := NewSearchFilter("march", "150.50").SearchPrice()
	if !ok {
		t.Fatal("numeric term must produce a price clause")
	}
	if !price.Equal(decimal.NewFromFloat(150.50)) {
		t.Errorf("parsed price = %s, want 150.5", price)
	}
	if _, ok := (Filter{}).SearchPrice(); ok {
		t.Error("empty search must not produce a price clause")
	}
}
