/*
allocation.go - Allocation aggregation and the sandwich-flag resolver

PURPOSE:
  Merges global (employee-agnostic) and employee-specific allocation rows
  into per-period, per-group totals, and resolves the "sandwich applies"
  flag for (employee, period, code) with specific-beats-general precedence.

AGGREGATION:
  Multiple rows may exist per (employee-or-global, period, code); they sum.
  Every tracked code is pre-seeded with zero for every period in the pass,
  so downstream lookups never hit a missing key.

CARRY ROWS:
  Rows written by the activation job (Carried = true) hold the prior
  period's closing balance, which the engine's own walk reproduces whenever
  it visits the prior period itself. They are therefore kept OUT of the
  allocation totals and out of the sandwich flags, and surface only
  through CarrySeed/HasCarry for walks that start at the seeded period.

SANDWICH PRECEDENCE (hard contract):
  employee+code, employee+wildcard, global+code, global+wildcard.
  The first flag found wins; no flag means false.

SEE ALSO:
  - split.go: consumes the resolver when an entry has no explicit override
  - engine.go: consumes the totals
*/
package leave

import "github.com/shopspring/decimal"

// =============================================================================
// ALLOCATION - one HR-entered allocation row
// =============================================================================

// Allocation links a leave code (or the "*" wildcard) to a period and
// optionally one employee. Empty EmployeeID means the row applies to every
// employee in the period.
type Allocation struct {
	ID         string
	Code       string
	PeriodID   string
	EmployeeID EmployeeID
	Quantity   decimal.Decimal
	Sandwich   bool

	// Carried marks a row seeded by the activation job from the prior
	// period's closing balance. Carried rows never join the allocation
	// totals; see CarrySeed.
	Carried bool
}

// IsGlobal reports whether the row applies to all employees.
func (a Allocation) IsGlobal() bool { return a.EmployeeID == "" }

// =============================================================================
// ALLOCATION BOOK - aggregated lookup structures
// =============================================================================

type empPeriodKey struct {
	Employee EmployeeID
	PeriodID string
}

type flagKey struct {
	Employee EmployeeID // empty for global
	PeriodID string
	Code     string // "*" for wildcard
}

// AllocationBook holds the aggregated allocation totals and sandwich flags
// for one compute pass.
type AllocationBook struct {
	tracked   []Code
	global    map[string]map[Code]decimal.Decimal
	employee  map[empPeriodKey]map[Code]decimal.Decimal
	carried   map[empPeriodKey]map[Code]decimal.Decimal
	flags     map[flagKey]bool
	anomalies []Anomaly
}

// BuildAllocationBook aggregates allocation rows for the given period set.
// Rows whose code cannot be resolved to a tracked group are recorded as
// anomalies and skipped; they never abort the pass. Wildcard rows
// contribute only their sandwich flag.
func BuildAllocationBook(rows []Allocation, periods []PeriodWindow, reg *TypeRegistry, tracked []Code) *AllocationBook {
	book := &AllocationBook{
		tracked:  tracked,
		global:   make(map[string]map[Code]decimal.Decimal, len(periods)),
		employee: make(map[empPeriodKey]map[Code]decimal.Decimal),
		carried:  make(map[empPeriodKey]map[Code]decimal.Decimal),
		flags:    make(map[flagKey]bool),
	}

	// Seed every period with zero for every tracked code up front.
	for _, p := range periods {
		book.global[p.ID] = book.zeroRow()
	}

	trackedSet := make(map[Code]bool, len(tracked))
	for _, c := range tracked {
		trackedSet[c] = true
	}

	for _, row := range rows {
		if row.Code == CodeWildcard {
			book.recordFlag(row, CodeWildcard)
			continue
		}

		group := reg.GroupCode(row.Code)
		if !trackedSet[group] {
			book.anomalies = append(book.anomalies, Anomaly{
				EmployeeID: row.EmployeeID,
				PeriodID:   row.PeriodID,
				Code:       row.Code,
				Stage:      "allocation",
				Message:    "code does not resolve to a tracked leave group",
			})
			continue
		}

		if row.Carried {
			// Prior-period closing, not a grant: kept out of the totals
			// and out of the flag precedence.
			key := empPeriodKey{Employee: row.EmployeeID, PeriodID: row.PeriodID}
			bucket, ok := book.carried[key]
			if !ok {
				bucket = book.zeroRow()
				book.carried[key] = bucket
			}
			bucket[group] = bucket[group].Add(row.Quantity)
			continue
		}

		book.recordFlag(row, string(group))

		if row.IsGlobal() {
			bucket, ok := book.global[row.PeriodID]
			if !ok {
				bucket = book.zeroRow()
				book.global[row.PeriodID] = bucket
			}
			bucket[group] = bucket[group].Add(row.Quantity)
			continue
		}

		key := empPeriodKey{Employee: row.EmployeeID, PeriodID: row.PeriodID}
		bucket, ok := book.employee[key]
		if !ok {
			bucket = book.zeroRow()
			book.employee[key] = bucket
		}
		bucket[group] = bucket[group].Add(row.Quantity)
	}

	return book
}

func (b *AllocationBook) zeroRow() map[Code]decimal.Decimal {
	row := make(map[Code]decimal.Decimal, len(b.tracked))
	for _, c := range b.tracked {
		row[c] = decimal.Zero
	}
	return row
}

func (b *AllocationBook) recordFlag(row Allocation, code string) {
	key := flagKey{Employee: row.EmployeeID, PeriodID: row.PeriodID, Code: code}
	// A key set true by any row stays true.
	b.flags[key] = b.flags[key] || row.Sandwich
}

// Global returns the employee-agnostic total for (period, code).
func (b *AllocationBook) Global(periodID string, code Code) decimal.Decimal {
	if bucket, ok := b.global[periodID]; ok {
		return bucket[code]
	}
	return decimal.Zero
}

// ForEmployee returns the employee-specific total for (employee, period, code).
func (b *AllocationBook) ForEmployee(emp EmployeeID, periodID string, code Code) decimal.Decimal {
	if bucket, ok := b.employee[empPeriodKey{Employee: emp, PeriodID: periodID}]; ok {
		return bucket[code]
	}
	return decimal.Zero
}

// Allocated returns the combined allocation for (employee, period, code):
// global plus employee-specific.
func (b *AllocationBook) Allocated(emp EmployeeID, periodID string, code Code) decimal.Decimal {
	return b.Global(periodID, code).Add(b.ForEmployee(emp, periodID, code))
}

// HasCarry reports whether activation seeded carry rows for
// (employee, period), i.e. the period's predecessor has been closed out
// for this employee.
func (b *AllocationBook) HasCarry(emp EmployeeID, periodID string) bool {
	_, ok := b.carried[empPeriodKey{Employee: emp, PeriodID: periodID}]
	return ok
}

// CarrySeed returns the activation-seeded carry amount for
// (employee, period, code). Zero when no carry row exists; activation
// writes no row for zero carries and for reset codes.
func (b *AllocationBook) CarrySeed(emp EmployeeID, periodID string, code Code) decimal.Decimal {
	if bucket, ok := b.carried[empPeriodKey{Employee: emp, PeriodID: periodID}]; ok {
		return bucket[code]
	}
	return decimal.Zero
}

// Anomalies returns the rows that could not be aggregated.
func (b *AllocationBook) Anomalies() []Anomaly { return b.anomalies }

// =============================================================================
// SANDWICH RESOLVER
// =============================================================================

// SandwichResolver answers whether the sandwich rule applies for an
// (employee, period, code) combination when the entry itself carries no
// explicit override.
type SandwichResolver interface {
	SandwichApplies(emp EmployeeID, periodID string, code Code) bool
}

// SandwichApplies resolves the flag with specific-beats-general precedence:
// employee+code, employee+wildcard, global+code, global+wildcard. Returns
// false when no row carries a flag.
func (b *AllocationBook) SandwichApplies(emp EmployeeID, periodID string, code Code) bool {
	lookups := []flagKey{
		{Employee: emp, PeriodID: periodID, Code: string(code)},
		{Employee: emp, PeriodID: periodID, Code: CodeWildcard},
		{Employee: "", PeriodID: periodID, Code: string(code)},
		{Employee: "", PeriodID: periodID, Code: CodeWildcard},
	}
	for _, key := range lookups {
		if flag, ok := b.flags[key]; ok {
			return flag
		}
	}
	return false
}

var _ SandwichResolver = (*AllocationBook)(nil)
