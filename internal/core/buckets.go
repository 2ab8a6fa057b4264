package core

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// PriceRange is one fixed histogram bucket. Bounds are inclusive; an open
// range has no upper bound.
type PriceRange struct {
	Label string
	Min   int64
	Max   int64
	Open  bool
}

// PriceRanges is the static, ordered bucket table for the price histogram.
// Ranges are contiguous and non-overlapping; the last one is open-ended.
var PriceRanges = buildPriceRanges()

func buildPriceRanges() []PriceRange {
	ranges := []PriceRange{{Label: "0-100", Min: 0, Max: 100}}
	for min := int64(101); min <= 801; min += 100 {
		max := min + 99
		ranges = append(ranges, PriceRange{
			Label: strconv.FormatInt(min, 10) + "-" + strconv.FormatInt(max, 10),
			Min:   min,
			Max:   max,
		})
	}
	return append(ranges, PriceRange{Label: "901-above", Min: 901, Open: true})
}

// Contains reports whether a price falls inside the range.
func (r PriceRange) Contains(price decimal.Decimal) bool {
	if price.LessThan(decimal.NewFromInt(r.Min)) {
		return false
	}
	return r.Open || price.LessThanOrEqual(decimal.NewFromInt(r.Max))
}

// RangeFor assigns a price to the first matching range, scanning the table
// in order.
func RangeFor(price decimal.Decimal) (PriceRange, bool) {
	for _, r := range PriceRanges {
		if r.Contains(price) {
			return r, true
		}
	}
	return PriceRange{}, false
}
