package money

import "testing"

func TestSumBankersRounding(t *testing.T) {
	cases := []struct {
		name   string
		prices []float64
		want   Cents
	}{
		{"exact", []float64{1000, 1000}, 2000},
		{"round down to even", []float64{0.5}, 0},
		{"round up to even", []float64{1.5}, 2},
		{"mixed seats", []float64{SeatPrice(1200, 1.0), SeatPrice(1200, 1.5)}, 3000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Sum(tc.prices)
			if got != tc.want {
				t.Fatalf("Sum(%v) = %d, want %d", tc.prices, got, tc.want)
			}
		})
	}
}

func TestSeatPrice(t *testing.T) {
	if got := SeatPrice(1000, 1.0); got != 1000 {
		t.Fatalf("SeatPrice(1000, 1.0) = %v, want 1000", got)
	}
	if got := SeatPrice(1000, 1.25); got != 1250 {
		t.Fatalf("SeatPrice(1000, 1.25) = %v, want 1250", got)
	}
}
