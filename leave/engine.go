/*
engine.go - Balance engine orchestrator

PURPOSE:
  Walks each employee through the period timeline carrying a running
  balance per tracked leave group: applies waiting-period and proration
  policy to allocations, subtracts used amounts, and applies carry-forward
  or reset-to-zero at each period boundary.

KEY INSIGHT:
  The engine is pure and synchronous. Every input (profiles, periods,
  allocations, entries, holidays) is loaded up front into in-memory
  structures, so the walk costs O(employees x periods x codes + entries)
  with no I/O inside the hot loop.

CARRY-FORWARD:
  Codes flagged reset-at-period-end (the CL family) enter the next period
  at zero no matter what the ending value was. Everything else carries the
  full unrounded ending value - rounding is presentation-only (rounding.go)
  and never touches the carried balance.

  The activation job materializes the same carry into marked allocation
  rows (allocation.go). Those rows never join a period's allocation total;
  a period's ending is counted once whether the engine walks the prior
  period itself or starts from the seeded carry.

SEE ALSO:
  - policy.go: per-code waiting and reset rules
  - activation.go: materializes engine output into snapshot rows
*/
package leave

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ENGINE - stateless service object
// =============================================================================

// Engine computes per-employee, per-period leave ledgers. It holds only
// configuration; one instance is constructed at startup and shared.
type Engine struct {
	Tracked  []Code
	Policies map[Code]CodePolicy

	// FirstPeriodOpeningIncludesAllocation adds the first processed
	// period's effective allocation to that period's DISPLAYED opening.
	// Presentation-only: the ending computation always uses the raw
	// carried balance. Default off.
	FirstPeriodOpeningIncludesAllocation bool

	// ClampNegative forces negative ending balances to zero. Default off:
	// negative balances signal overuse and are worth surfacing.
	ClampNegative bool
}

// NewEngine returns an engine with the default tracked codes and policies.
func NewEngine() *Engine {
	return &Engine{
		Tracked:  DefaultTrackedCodes(),
		Policies: DefaultCodePolicies(),
	}
}

// =============================================================================
// INPUT / OUTPUT
// =============================================================================

// ComputeInput bundles everything one compute pass reads. The engine never
// mutates any of it.
type ComputeInput struct {
	Profiles    []Profile
	Periods     []PeriodWindow
	Types       []LeaveType
	Allocations []Allocation
	Entries     []Entry
	Holidays    []Date

	// AsOf overrides the calculation date for every employee. When nil,
	// each profile's CalcDate applies, then the first period's start.
	AsOf *Date
}

// AllocationMeta is the audit record for one (period, code) allocation
// decision, exposed verbatim in the output.
type AllocationMeta struct {
	Original  decimal.Decimal
	Effective decimal.Decimal
	Applied   bool
	Reason    string // empty when no policy reduced the allocation
}

// PeriodLedger is one period's balances for one employee, with one entry
// per tracked code in each map.
type PeriodLedger struct {
	PeriodID    string
	PeriodName  string
	PeriodStart Date
	PeriodEnd   Date

	Starting       map[Code]decimal.Decimal
	Allocation     map[Code]decimal.Decimal
	Used           map[Code]decimal.Decimal
	Ending         map[Code]decimal.Decimal
	AllocationMeta map[Code]AllocationMeta
}

// EmployeeLedger is the full period walk for one employee.
type EmployeeLedger struct {
	EmployeeID EmployeeID
	Name       string
	JoinDate   *Date
	CalcDate   Date
	Periods    []PeriodLedger
}

// PeriodRef identifies a period in the metadata block.
type PeriodRef struct {
	ID    string
	Name  string
	Start Date
	End   Date
}

// Metadata describes the period set a result was computed against.
type Metadata struct {
	PeriodCount  int
	TrackedCodes []Code
	Periods      []PeriodRef
}

// Result is the structured output of one compute pass.
type Result struct {
	Employees []EmployeeLedger
	Metadata  Metadata

	// Anomalies collects recovered per-item failures (bad allocation rows).
	Anomalies []Anomaly
}

// =============================================================================
// COMPUTE
// =============================================================================

// Compute runs the balance walk for every profile in the input.
// Returns ErrNoPeriods when the period set is empty.
func (e *Engine) Compute(in ComputeInput) (*Result, error) {
	if len(in.Periods) == 0 {
		return nil, ErrNoPeriods
	}

	periods := make([]PeriodWindow, len(in.Periods))
	copy(periods, in.Periods)
	SortPeriods(periods)

	registry := NewTypeRegistry(in.Types)
	calendar := NewCalendar(NewHolidaySet(in.Holidays...))
	book := BuildAllocationBook(in.Allocations, periods, registry, e.Tracked)
	splitter := &Splitter{Calendar: calendar, Registry: registry}
	usage := splitter.BuildUsageBook(in.Entries, periods, book)

	result := &Result{
		Metadata:  e.metadata(periods),
		Anomalies: book.Anomalies(),
	}
	for _, profile := range in.Profiles {
		result.Employees = append(result.Employees, e.computeEmployee(profile, periods, book, usage, in.AsOf))
	}
	return result, nil
}

// ComputeOne runs the walk for a single employee. Shares all the semantics
// of Compute; used by the single-employee reporting endpoints.
func (e *Engine) ComputeOne(profile Profile, in ComputeInput) (*EmployeeLedger, error) {
	in.Profiles = []Profile{profile}
	result, err := e.Compute(in)
	if err != nil {
		return nil, err
	}
	return &result.Employees[0], nil
}

func (e *Engine) metadata(sorted []PeriodWindow) Metadata {
	meta := Metadata{
		PeriodCount:  len(sorted),
		TrackedCodes: append([]Code(nil), e.Tracked...),
	}
	for _, p := range sorted {
		meta.Periods = append(meta.Periods, PeriodRef{ID: p.ID, Name: p.Name, Start: p.Start, End: p.End})
	}
	return meta
}

func (e *Engine) computeEmployee(profile Profile, sorted []PeriodWindow, book *AllocationBook, usage *UsageBook, asOf *Date) EmployeeLedger {
	calcDate := sorted[0].Start
	switch {
	case asOf != nil:
		calcDate = *asOf
	case profile.CalcDate != nil:
		calcDate = *profile.CalcDate
	}

	ledger := EmployeeLedger{
		EmployeeID: profile.EmployeeID,
		Name:       profile.Name,
		JoinDate:   profile.JoinDate,
		CalcDate:   calcDate,
	}

	// Running balance per code, seeded from the profile baseline plus the
	// one-time joining-year allocation.
	running := make(map[Code]decimal.Decimal, len(e.Tracked))
	for _, code := range e.Tracked {
		running[code] = profile.opening(code)
	}

	first := true
	for _, p := range sorted {
		if p.End.Before(calcDate) {
			continue
		}

		// When the walk opens at a period the activation job already
		// seeded, the carry rows hold the predecessor's closing balances
		// (opening baseline included) and replace the profile seed.
		// Codes without a carry row closed at zero or reset.
		if first && book.HasCarry(profile.EmployeeID, p.ID) {
			for _, code := range e.Tracked {
				running[code] = book.CarrySeed(profile.EmployeeID, p.ID, code)
			}
		}

		row := PeriodLedger{
			PeriodID:       p.ID,
			PeriodName:     p.Name,
			PeriodStart:    p.Start,
			PeriodEnd:      p.End,
			Starting:       make(map[Code]decimal.Decimal, len(e.Tracked)),
			Allocation:     make(map[Code]decimal.Decimal, len(e.Tracked)),
			Used:           make(map[Code]decimal.Decimal, len(e.Tracked)),
			Ending:         make(map[Code]decimal.Decimal, len(e.Tracked)),
			AllocationMeta: make(map[Code]AllocationMeta, len(e.Tracked)),
		}

		for _, code := range e.Tracked {
			policy := policyFor(e.Policies, code)
			original := book.Allocated(profile.EmployeeID, p.ID, code)
			meta := e.eligibility(policy, profile.JoinDate, p, original)

			opening := running[code]
			used := usage.Used(profile.EmployeeID, p.ID, code)
			ending := opening.Add(meta.Effective).Sub(used)
			if e.ClampNegative && ending.IsNegative() {
				ending = decimal.Zero
			}

			starting := opening
			if first && e.FirstPeriodOpeningIncludesAllocation {
				starting = opening.Add(meta.Effective)
			}

			row.Starting[code] = starting
			row.Allocation[code] = meta.Effective
			row.Used[code] = used
			row.Ending[code] = ending
			row.AllocationMeta[code] = meta

			if policy.ResetAtPeriodEnd {
				running[code] = decimal.Zero
			} else {
				running[code] = ending
			}
		}

		ledger.Periods = append(ledger.Periods, row)
		first = false
	}

	return ledger
}

// eligibility applies the waiting-period and proration policy for one
// (employee, period, code) allocation.
func (e *Engine) eligibility(policy CodePolicy, join *Date, p PeriodWindow, original decimal.Decimal) AllocationMeta {
	meta := AllocationMeta{Original: original}

	// No join date on record: long-tenured veteran, full allocation.
	if join == nil {
		meta.Effective = original
		meta.Applied = true
		return meta
	}

	if join.After(p.End) {
		meta.Effective = decimal.Zero
		meta.Reason = ReasonNotJoinedYet
		return meta
	}

	// Waiting period completed before this period began.
	if Anniversary(*join).BeforeOrEqual(p.Start) {
		meta.Effective = original
		meta.Applied = true
		return meta
	}

	switch policy.Waiting {
	case WaitingFullYear:
		meta.Effective = decimal.Zero
		meta.Reason = ReasonWithinWaiting
	case WaitingProrate:
		effectiveStart := MaxDate(*join, p.Start)
		if effectiveStart.After(p.End) {
			meta.Effective = decimal.Zero
			meta.Reason = ReasonNotJoinedYet
			return meta
		}
		present := decimal.NewFromInt(int64(DaysInclusive(effectiveStart, p.End)))
		span := decimal.NewFromInt(int64(DaysInclusive(p.Start, p.End)))
		meta.Effective = original.Mul(present).Div(span)
		meta.Applied = true
		meta.Reason = ReasonProratedCL
	default: // WaitingNone
		meta.Effective = original
		meta.Applied = true
	}
	return meta
}
