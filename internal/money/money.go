// Package money implements the fixed-point pricing arithmetic the booking
// coordinator needs: seat prices are an event's base price scaled by a
// per-seat modifier, summed with banker's rounding applied once at the sum
// rather than per line item, per spec.
package money

import "math"

// Cents is a fixed-point monetary amount with an implicit two decimal
// places (i.e. its unit is one cent / one hundredth of the base currency
// unit).
type Cents = int64

// SeatPrice returns basePriceCents scaled by modifier as an unrounded float64
// intermediate, so that the final Sum can apply a single banker's-rounding
// pass over the exact total instead of compounding per-seat rounding error.
func SeatPrice(basePriceCents uint32, modifier float64) float64 {
	return float64(basePriceCents) * modifier
}

// Sum banker's-rounds the sum of unrounded per-seat amounts into a single
// Cents total. Go's math.RoundToEven implements IEEE 754 round-half-to-even,
// the same rule the spec names for the sum.
func Sum(amounts []float64) Cents {
	var total float64
	for _, a := range amounts {
		total += a
	}
	return Cents(math.RoundToEven(total))
}
