package leave

// =============================================================================
// CODE POLICY - waiting-period and carry-forward behavior per leave group
// =============================================================================

// WaitingRule describes how an employee's first year of service affects a
// period's allocation.
type WaitingRule int

const (
	// WaitingNone: the full allocation applies regardless of tenure.
	WaitingNone WaitingRule = iota

	// WaitingFullYear: zero allocation until the first work anniversary
	// falls on or before the period start.
	WaitingFullYear

	// WaitingProrate: within the first year, the allocation scales by the
	// fraction of the period the employee was actually present.
	WaitingProrate
)

// CodePolicy is the per-group behavior table the engine consults.
type CodePolicy struct {
	// ResetAtPeriodEnd forces the running balance entering the next period
	// to zero regardless of the computed ending value.
	ResetAtPeriodEnd bool

	Waiting WaitingRule
}

// DefaultCodePolicies returns the institution's standing policy:
// EL and SL wait a full year and carry forward; CL prorates for new
// joiners and never carries forward; VAC has no waiting rule and carries.
func DefaultCodePolicies() map[Code]CodePolicy {
	return map[Code]CodePolicy{
		CodeEL:  {ResetAtPeriodEnd: false, Waiting: WaitingFullYear},
		CodeCL:  {ResetAtPeriodEnd: true, Waiting: WaitingProrate},
		CodeSL:  {ResetAtPeriodEnd: false, Waiting: WaitingFullYear},
		CodeVAC: {ResetAtPeriodEnd: false, Waiting: WaitingNone},
	}
}

// policyFor returns the configured policy for a code, defaulting to
// carry-forward with no waiting rule for untracked extensions.
func policyFor(policies map[Code]CodePolicy, code Code) CodePolicy {
	if p, ok := policies[code]; ok {
		return p
	}
	return CodePolicy{}
}

// Allocation eligibility reasons, exposed verbatim in allocation metadata.
const (
	ReasonNotJoinedYet  = "not_joined_yet"
	ReasonWithinWaiting = "within_waiting_period"
	ReasonProratedCL    = "prorated_CL_for_new_joiner"
)
