package leave

import "time"

// =============================================================================
// CALENDAR - Working-day arithmetic with a weekly off-day and holidays
// =============================================================================

// HolidaySet is a lookup of dates marked non-working regardless of weekday.
type HolidaySet map[Date]struct{}

// NewHolidaySet builds a set from a list of holiday dates.
func NewHolidaySet(dates ...Date) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[NewDate(d.Year(), d.Month(), d.Day())] = struct{}{}
	}
	return set
}

func (h HolidaySet) Contains(d Date) bool {
	_, ok := h[NewDate(d.Year(), d.Month(), d.Day())]
	return ok
}

// Calendar computes working-day counts for the institution.
// WeeklyOff is the fixed weekly off-day (Sunday in the source policy).
type Calendar struct {
	WeeklyOff time.Weekday
	Holidays  HolidaySet
}

// NewCalendar returns a calendar with Sunday off and the given holidays.
func NewCalendar(holidays HolidaySet) Calendar {
	return Calendar{WeeklyOff: time.Sunday, Holidays: holidays}
}

// IsWorkingDay reports whether a single date counts as a working day.
func (c Calendar) IsWorkingDay(d Date) bool {
	if d.Weekday() == c.WeeklyOff {
		return false
	}
	if c.Holidays != nil && c.Holidays.Contains(d) {
		return false
	}
	return true
}

// WorkingDays counts the working days in [from, to] inclusive, excluding
// the weekly off-day and holidays. Returns 0 when to < from.
// Correct for single-day ranges and for ranges spanning months/years.
func (c Calendar) WorkingDays(from, to Date) int {
	if to.Before(from) {
		return 0
	}
	count := 0
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		if c.IsWorkingDay(d) {
			count++
		}
	}
	return count
}
