package leave

import "github.com/shopspring/decimal"

// =============================================================================
// BALANCE SNAPSHOT - persisted materialization of computed balances
// =============================================================================

// BalanceSnapshot is one persisted row of computed balances, keyed by
// (employee, balance date). Written by the activation job with
// get-or-create semantics so repeated runs never duplicate rows; used for
// fast reporting reads and as the carry-forward seed audit trail.
type BalanceSnapshot struct {
	ID          string
	EmployeeID  EmployeeID
	BalanceDate Date

	Starting  map[Code]decimal.Decimal
	Allocated map[Code]decimal.Decimal
	Used      map[Code]decimal.Decimal
	Ending    map[Code]decimal.Decimal

	// AllocationRef points at the allocation row the carry was folded into.
	AllocationRef string
	Note          string
}
