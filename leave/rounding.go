package leave

import "github.com/shopspring/decimal"

// =============================================================================
// PRESENTATION ROUNDING
// =============================================================================
// Applied ONLY at presentation boundaries (api/dto.go). The running balance
// the engine carries between periods is never rounded, so rounding error
// cannot compound across periods.

var two = decimal.NewFromInt(2)

// RoundHalf rounds to the nearest 0.5, half up (2.25 -> 2.5, 2.74 -> 2.5).
func RoundHalf(v decimal.Decimal) decimal.Decimal {
	return v.Mul(two).Round(0).Div(two)
}

// RoundWhole rounds to the nearest integer, half up.
func RoundWhole(v decimal.Decimal) decimal.Decimal {
	return v.Round(0)
}

// DisplayRound applies the per-code display rule: EL rounds to whole days,
// every other tracked code rounds to the nearest half day.
func DisplayRound(code Code, v decimal.Decimal) decimal.Decimal {
	if code == CodeEL {
		return RoundWhole(v)
	}
	return RoundHalf(v)
}

// FormatAmount renders a display value: an integer string when whole,
// otherwise a single decimal digit ("4" not "4.0", "4.5" not "4.50").
func FormatAmount(v decimal.Decimal) string {
	if v.IsInteger() {
		return v.StringFixed(0)
	}
	return v.StringFixed(1)
}
