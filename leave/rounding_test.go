package leave_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/HP189-pr/admindesk-sub000/leave"
)

// =============================================================================
// PRESENTATION ROUNDING
// =============================================================================

func TestRoundHalf(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{4.2, 4},
		{4.25, 4.5}, // half-up at the midpoint
		{4.3, 4.5},
		{4.5, 4.5},
		{4.7, 4.5},
		{4.75, 5},
		{4.8, 5},
		{0, 0},
		{-1.3, -1.5}, // away from zero
	}
	for _, c := range cases {
		got := leave.RoundHalf(decimal.NewFromFloat(c.in))
		if !got.Equal(decimal.NewFromFloat(c.want)) {
			t.Errorf("RoundHalf(%v) = %s, want %v", c.in, got, c.want)
		}
	}
}

func TestRoundWhole(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{4.4, 4},
		{4.5, 5},
		{4.6, 5},
		{12, 12},
	}
	for _, c := range cases {
		got := leave.RoundWhole(decimal.NewFromFloat(c.in))
		if !got.Equal(decimal.NewFromFloat(c.want)) {
			t.Errorf("RoundWhole(%v) = %s, want %v", c.in, got, c.want)
		}
	}
}

func TestDisplayRound_ELWholeOthersHalf(t *testing.T) {
	// EL displays in whole days; every other code in half-day steps.
	v := decimal.NewFromFloat(4.3)

	if got := leave.DisplayRound(leave.CodeEL, v); !got.Equal(decimal.NewFromInt(4)) {
		t.Errorf("EL should round to whole days, got %s", got)
	}
	if got := leave.DisplayRound(leave.CodeCL, v); !got.Equal(decimal.NewFromFloat(4.5)) {
		t.Errorf("CL should round to half days, got %s", got)
	}
	if got := leave.DisplayRound(leave.CodeSL, v); !got.Equal(decimal.NewFromFloat(4.5)) {
		t.Errorf("SL should round to half days, got %s", got)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{12, "12"},
		{4.5, "4.5"},
		{0, "0"},
		{-2.5, "-2.5"},
	}
	for _, c := range cases {
		if got := leave.FormatAmount(decimal.NewFromFloat(c.in)); got != c.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestProrationDisplaysAsHalfDay(t *testing.T) {
	// The canonical proration 6 x 303/365 = 4.98... presents as 5.0 for CL.
	prorated := decimal.NewFromInt(6).
		Mul(decimal.NewFromInt(303)).
		Div(decimal.NewFromInt(365))

	got := leave.DisplayRound(leave.CodeCL, prorated)
	if !got.Equal(decimal.NewFromInt(5)) {
		t.Errorf("expected display 5, got %s", got)
	}
	if s := leave.FormatAmount(got); s != "5" {
		t.Errorf("expected \"5\", got %q", s)
	}
}
