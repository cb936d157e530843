/*
split.go - Distributes one leave entry across the periods it overlaps

PURPOSE:
  An approved entry may span period boundaries. The splitter walks the
  sorted period windows, clamps the entry to each overlap, converts the
  overlap to a day-count (working days, or the full inclusive span under
  the sandwich rule) and scales by the leave type's day value.

DAY-COUNT POLICY:
  sandwich = entry override when set, else the allocation book's resolved
  flag. Sandwiched leave charges weekends and holidays inside the overlap
  as leave days; otherwise only working days count.

ORDERING:
  Periods MUST be sorted ascending by start. Once a period starts after the
  entry ends, no later period can overlap - the early exit is required for
  correctness under that invariant, not just speed.
*/
package leave

import "github.com/shopspring/decimal"

// =============================================================================
// SPLITTER
// =============================================================================

// Splitter converts entries into per-period, per-group used amounts.
type Splitter struct {
	Calendar Calendar
	Registry *TypeRegistry
}

// Split distributes one entry's day-count across every period it overlaps.
// Returns period id -> group code -> amount. Entries with missing dates or
// end before start produce nothing.
func (s *Splitter) Split(entry Entry, sortedPeriods []PeriodWindow, resolver SandwichResolver) map[string]map[Code]decimal.Decimal {
	if entry.Start.IsZero() || entry.End.IsZero() || entry.End.Before(entry.Start) {
		return nil
	}

	group := s.Registry.GroupCode(entry.TypeCode)
	dayValue := s.Registry.DayValue(entry.TypeCode)

	out := make(map[string]map[Code]decimal.Decimal)
	for _, p := range sortedPeriods {
		if p.End.Before(entry.Start) {
			continue
		}
		if p.Start.After(entry.End) {
			// Sorted periods: nothing later can overlap.
			break
		}

		from, to, ok := p.Overlap(entry.Start, entry.End)
		if !ok {
			continue
		}

		sandwich := false
		switch {
		case entry.Sandwich != nil:
			sandwich = *entry.Sandwich
		case resolver != nil:
			sandwich = resolver.SandwichApplies(entry.EmployeeID, p.ID, group)
		}

		var days int
		if sandwich {
			days = DaysInclusive(from, to)
		} else {
			days = s.Calendar.WorkingDays(from, to)
		}
		if days == 0 {
			continue
		}

		amount := decimal.NewFromInt(int64(days)).Mul(dayValue)
		bucket, ok := out[p.ID]
		if !ok {
			bucket = make(map[Code]decimal.Decimal)
			out[p.ID] = bucket
		}
		bucket[group] = bucket[group].Add(amount)
	}
	return out
}

// =============================================================================
// USAGE BOOK - aggregated used amounts across all entries
// =============================================================================

// UsageBook holds the summed used amounts for one compute pass.
type UsageBook struct {
	used map[empPeriodKey]map[Code]decimal.Decimal
}

// BuildUsageBook splits every entry and accumulates the results. Entries of
// different child codes sharing a parent group sum into the same bucket.
// Non-approved entries are skipped defensively even though the store
// contract already filters them.
func (s *Splitter) BuildUsageBook(entries []Entry, sortedPeriods []PeriodWindow, resolver SandwichResolver) *UsageBook {
	book := &UsageBook{used: make(map[empPeriodKey]map[Code]decimal.Decimal)}
	for _, entry := range entries {
		if entry.Status != StatusApproved {
			continue
		}
		for periodID, amounts := range s.Split(entry, sortedPeriods, resolver) {
			key := empPeriodKey{Employee: entry.EmployeeID, PeriodID: periodID}
			bucket, ok := book.used[key]
			if !ok {
				bucket = make(map[Code]decimal.Decimal)
				book.used[key] = bucket
			}
			for code, amount := range amounts {
				bucket[code] = bucket[code].Add(amount)
			}
		}
	}
	return book
}

// Used returns the summed used amount for (employee, period, code).
// Missing keys are zero.
func (u *UsageBook) Used(emp EmployeeID, periodID string, code Code) decimal.Decimal {
	if bucket, ok := u.used[empPeriodKey{Employee: emp, PeriodID: periodID}]; ok {
		return bucket[code]
	}
	return decimal.Zero
}
