/*
Package leave implements the leave balance computation engine.

PURPOSE:
  Given employees, leave periods, allocations, holidays, and approved leave
  entries, compute per-employee per-period opening/allocated/used/closing
  balances for each tracked leave category. The engine is a pure, synchronous
  computation over data loaded up front; persistence and HTTP are external
  collaborators behind the store interfaces in store.go.

KEY CONCEPTS IN THIS FILE (types.go):
  - Code: a tracked leave group (EL, CL, SL, VAC)
  - LeaveType: master row for a leave code (day value, parent group)
  - TypeRegistry: resolves day values and folds child codes into groups
  - Profile: employee master data as the engine sees it
  - Entry: one approved leave request

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every quantity, never float64
  2. The engine never mutates master data - it reads and emits
  3. Child variants (HCL1, HCL2) roll up into their parent group (CL)
  4. Rounding happens only at presentation boundaries (rounding.go)

SEE ALSO:
  - engine.go: the balance orchestrator
  - split.go: entry-to-period distribution
  - allocation.go: allocation aggregation and the sandwich resolver
*/
package leave

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// Code is a tracked leave group code.
type Code string

// EmployeeID is the institution-assigned employee key.
type EmployeeID string

// Tracked leave groups. Child codes (half-day and custom variants) fold
// into these for all balance arithmetic.
const (
	CodeEL  Code = "EL"  // Earned Leave
	CodeCL  Code = "CL"  // Casual Leave
	CodeSL  Code = "SL"  // Sick Leave
	CodeVAC Code = "VAC" // Vacation
)

// CodeWildcard on an allocation row means "applies to every code".
const CodeWildcard = "*"

// DefaultTrackedCodes is the canonical tracked-code order.
func DefaultTrackedCodes() []Code {
	return []Code{CodeEL, CodeCL, CodeSL, CodeVAC}
}

// =============================================================================
// LEAVE TYPE - master data for one leave code
// =============================================================================

// LeaveType is a reference row describing one leave code.
// Immutable once referenced by historical entries.
type LeaveType struct {
	Code       string
	Name       string
	DayValue   decimal.Decimal // quantity one day of this type consumes; zero means unset
	IsHalf     bool            // half-day variant flag
	ParentCode string          // group this code folds into; blank = own group
	Active     bool
}

// =============================================================================
// TYPE REGISTRY - day-value and group resolution
// =============================================================================

var (
	dayValueFull = decimal.NewFromInt(1)
	dayValueHalf = decimal.NewFromFloat(0.5)
)

// TypeRegistry resolves leave-type codes to their day value and group.
// Built once per compute pass from the full LeaveType list.
type TypeRegistry struct {
	types map[string]LeaveType
}

// NewTypeRegistry indexes leave types by code.
func NewTypeRegistry(types []LeaveType) *TypeRegistry {
	m := make(map[string]LeaveType, len(types))
	for _, lt := range types {
		m[lt.Code] = lt
	}
	return &TypeRegistry{types: m}
}

// DayValue returns the day value for a code. Half-day types with a
// missing or out-of-range stored value are clamped to 0.5; unknown codes
// default to a full day.
func (r *TypeRegistry) DayValue(code string) decimal.Decimal {
	lt, ok := r.types[code]
	if !ok {
		return dayValueFull
	}
	if lt.IsHalf && (lt.DayValue.IsZero() || lt.DayValue.GreaterThanOrEqual(dayValueFull)) {
		return dayValueHalf
	}
	if lt.DayValue.IsZero() {
		return dayValueFull
	}
	return lt.DayValue
}

// GroupCode returns the group a code's usage and allocations count against:
// the declared parent when present, otherwise the code itself.
func (r *TypeRegistry) GroupCode(code string) Code {
	if lt, ok := r.types[code]; ok && lt.ParentCode != "" {
		return Code(lt.ParentCode)
	}
	return Code(code)
}

// ActiveTypes returns the active leave types sorted by code.
func (r *TypeRegistry) ActiveTypes() []LeaveType {
	var out []LeaveType
	for _, lt := range r.types {
		if lt.Active {
			out = append(out, lt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// =============================================================================
// EMPLOYEE PROFILE - master data as the engine consumes it
// =============================================================================

// Profile is the engine's view of one employee. The collaborator that loads
// profiles resolves the source's multiple join-date candidate fields into
// the single JoinDate here; the engine never sees field-name ambiguity.
type Profile struct {
	EmployeeID EmployeeID
	Name       string

	// JoinDate is nil for long-tenured employees with no recorded joining
	// date; such veterans receive full allocations unconditionally.
	JoinDate *Date
	LeftDate *Date

	// Per-group balances carried in from a prior manual baseline.
	OpeningBalance map[Code]decimal.Decimal

	// One-time allocations granted at hire, added to the opening seed.
	JoiningAllocation map[Code]decimal.Decimal

	// Optional per-employee calculation date override. The compute call's
	// explicit as-of date wins over this.
	CalcDate *Date
}

// opening returns the initial running balance for a code:
// baseline + joining-year allocation.
func (p Profile) opening(code Code) decimal.Decimal {
	v := decimal.Zero
	if b, ok := p.OpeningBalance[code]; ok {
		v = v.Add(b)
	}
	if j, ok := p.JoiningAllocation[code]; ok {
		v = v.Add(j)
	}
	return v
}

// =============================================================================
// LEAVE ENTRY - one approved leave request
// =============================================================================

// Entry statuses. The engine only ever consumes approved entries; the
// store contract filters the rest.
const (
	StatusApproved = "Approved"
	StatusPending  = "Pending"
	StatusRejected = "Rejected"
)

// Entry is one leave request with an inclusive date range.
type Entry struct {
	ID         string
	EmployeeID EmployeeID
	TypeCode   string
	Start      Date
	End        Date
	Status     string

	// Sandwich is a tri-state override: nil defers to the allocation's
	// flag, true/false wins over it.
	Sandwich *bool
}
