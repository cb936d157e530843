package leave_test

import (
	"testing"

	"github.com/HP189-pr/admindesk-sub000/leave"
)

// =============================================================================
// INCLUSIVE DAY COUNTING
// =============================================================================

func TestDaysInclusive_CountsBothEndpoints(t *testing.T) {
	// GIVEN: A ten-day span
	// WHEN: Counting inclusively
	// THEN: Both endpoints count

	from := leave.MustParseDate("2025-08-01")
	to := leave.MustParseDate("2025-08-10")

	if got := leave.DaysInclusive(from, to); got != 10 {
		t.Errorf("expected 10 days, got %d", got)
	}
}

func TestDaysInclusive_SingleDay(t *testing.T) {
	d := leave.MustParseDate("2025-08-01")
	if got := leave.DaysInclusive(d, d); got != 1 {
		t.Errorf("expected 1 day, got %d", got)
	}
}

func TestDaysInclusive_ReversedRangeIsZero(t *testing.T) {
	from := leave.MustParseDate("2025-08-10")
	to := leave.MustParseDate("2025-08-01")
	if got := leave.DaysInclusive(from, to); got != 0 {
		t.Errorf("expected 0 for reversed range, got %d", got)
	}
}

func TestDaysInclusive_ProrationWindow(t *testing.T) {
	// The mid-year joiner window used by CL proration: Sep 1 through the
	// June 30 fiscal year end.
	from := leave.MustParseDate("2025-09-01")
	to := leave.MustParseDate("2026-06-30")
	if got := leave.DaysInclusive(from, to); got != 303 {
		t.Errorf("expected 303 days, got %d", got)
	}

	// And the full fiscal year span.
	from = leave.MustParseDate("2025-07-01")
	if got := leave.DaysInclusive(from, to); got != 365 {
		t.Errorf("expected 365 days, got %d", got)
	}
}

// =============================================================================
// SERVICE ANNIVERSARY
// =============================================================================

func TestAnniversary_PlainDate(t *testing.T) {
	join := leave.MustParseDate("2023-04-15")
	want := leave.MustParseDate("2024-04-15")
	if got := leave.Anniversary(join); !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestAnniversary_LeapDayNormalizesToFeb28(t *testing.T) {
	// GIVEN: Joining on Feb 29 of a leap year
	// WHEN: Computing the first service anniversary
	// THEN: It lands on Feb 28 of the next (non-leap) year, never Mar 1

	join := leave.MustParseDate("2024-02-29")
	want := leave.MustParseDate("2025-02-28")
	if got := leave.Anniversary(join); !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}
}

// =============================================================================
// ORDERING AND PARSING
// =============================================================================

func TestDateOrdering(t *testing.T) {
	a := leave.MustParseDate("2025-01-01")
	b := leave.MustParseDate("2025-01-02")

	if !a.Before(b) || b.Before(a) {
		t.Error("Before is wrong")
	}
	if !a.BeforeOrEqual(a) || !a.BeforeOrEqual(b) {
		t.Error("BeforeOrEqual is wrong")
	}
	if !b.After(a) {
		t.Error("After is wrong")
	}
	if !leave.MaxDate(a, b).Equal(b) || !leave.MinDate(a, b).Equal(a) {
		t.Error("MaxDate/MinDate are wrong")
	}
}

func TestParseDate_RejectsGarbage(t *testing.T) {
	if _, err := leave.ParseDate("01/08/2025"); err == nil {
		t.Error("expected error for non-ISO date")
	}
	if _, err := leave.ParseDate(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestDateString_RoundTrips(t *testing.T) {
	d := leave.MustParseDate("2025-08-09")
	parsed, err := leave.ParseDate(d.String())
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if !parsed.Equal(d) {
		t.Errorf("round trip changed the date: %s vs %s", d, parsed)
	}
}
