package mathutil

import (
	"math"
	"testing"
)

func TestSignFloat(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{0, 1},
		{math.Copysign(0, -1), 1},
		{1e-300, 1},
		{-1e-300, -1},
		{42.5, 1},
		{-3, -1},
		{math.Inf(-1), -1},
		{math.Inf(1), 1},
		{math.NaN(), -1},
	}
	for _, tc := range cases {
		if got := Sign(tc.in); got != tc.want {
			t.Fatalf("Sign(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSignIntegers(t *testing.T) {
	if Sign(0) != 1 || Sign(7) != 1 || Sign(-7) != -1 {
		t.Fatalf("unexpected integer signs")
	}
	if Sign(uint8(0)) != 1 {
		t.Fatalf("unsigned zero should be positive")
	}
	if Sign(int64(math.MinInt64)) != -1 {
		t.Fatalf("MinInt64 should be negative")
	}
}
