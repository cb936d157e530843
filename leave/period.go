package leave

import "sort"

// =============================================================================
// PERIOD WINDOW - Fiscal leave period
// =============================================================================

// PeriodWindow is an immutable fiscal leave period with an inclusive date
// range. Periods form a contiguous, non-overlapping timeline by convention;
// the engine requires them sorted ascending by start date but does not
// hard-enforce non-overlap.
type PeriodWindow struct {
	ID     string
	Name   string
	Start  Date
	End    Date
	Active bool
}

// Contains returns true if the date is within [Start, End].
func (p PeriodWindow) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Overlap clamps [from, to] to the period window. ok is false when the
// ranges do not intersect.
func (p PeriodWindow) Overlap(from, to Date) (start, end Date, ok bool) {
	start = MaxDate(from, p.Start)
	end = MinDate(to, p.End)
	if end.Before(start) {
		return Date{}, Date{}, false
	}
	return start, end, true
}

func (p PeriodWindow) String() string {
	return p.Name + " [" + p.Start.String() + ", " + p.End.String() + "]"
}

// SortPeriods orders periods ascending by start date. This ordering is a
// precondition for the splitter's early exit and for the engine's
// carry-forward walk.
func SortPeriods(periods []PeriodWindow) {
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Start.Before(periods[j].Start)
	})
}

// PeriodFor selects the period containing the date, falling back to the
// most recently ended period before it. Used by the "current balance as of
// date" endpoint. Returns nil when no period starts on or before the date.
func PeriodFor(sorted []PeriodWindow, d Date) *PeriodWindow {
	var candidate *PeriodWindow
	for i := range sorted {
		p := &sorted[i]
		if p.Contains(d) {
			return p
		}
		if p.End.Before(d) {
			candidate = p
		}
	}
	return candidate
}

// PrecedingPeriod returns the latest period whose end date is before the
// given start date, or nil when none exists. The activation job uses this
// to locate the carry-forward source.
func PrecedingPeriod(sorted []PeriodWindow, start Date) *PeriodWindow {
	var prior *PeriodWindow
	for i := range sorted {
		p := &sorted[i]
		if p.End.Before(start) {
			prior = p
		}
	}
	return prior
}
