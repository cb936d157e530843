/*
activation.go - Period activation and snapshot batch job

PURPOSE:
  Seeds a new period from the one before it and freezes the prior period's
  balances. For each employee and tracked code: compute the prior period's
  closing balance, derive the carry amount (zero for reset codes, the
  positive closing otherwise), upsert a carry-forward allocation row for
  the new period, and upsert a balance snapshot keyed (employee, date).

IDEMPOTENCY:
  Carry rows have deterministic ids, so re-running updates in place. A
  stored carry within epsilon (1e-6) of the freshly computed value is left
  untouched; snapshot upserts are get-or-create on (employee, date).

FAULT TOLERANCE:
  A failure for one employee/code pair is logged with identifying context,
  recorded in the report, and never aborts the remaining pairs. Only a
  missing period is fatal.

CONCURRENCY:
  Invocations for the SAME period are serialized through a per-period
  mutex; different periods proceed independently. Each employee's writes
  run inside one store transaction when the store supports it.
*/
package leave

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// carryEpsilon is the threshold below which a stored carry allocation is
// considered already correct and left untouched.
var carryEpsilon = decimal.New(1, -6)

// =============================================================================
// ACTIVATOR
// =============================================================================

// Activator runs the period activation job against a store.
type Activator struct {
	Engine *Engine
	Stores Stores

	mu          sync.Mutex
	periodLocks map[string]*sync.Mutex
}

// NewActivator creates an activator sharing the given engine configuration.
func NewActivator(engine *Engine, stores Stores) *Activator {
	return &Activator{
		Engine:      engine,
		Stores:      stores,
		periodLocks: make(map[string]*sync.Mutex),
	}
}

// ActivationItem is the outcome for one employee/code pair.
type ActivationItem struct {
	EmployeeID EmployeeID
	Code       Code
	Carry      decimal.Decimal
	Updated    bool // false when the stored carry was already correct
	Err        string
}

// ActivationReport is the explicit per-item result of one activation run.
type ActivationReport struct {
	RunID    string
	PeriodID string
	PriorID  string // empty when the period has no predecessor

	Items     []ActivationItem
	Anomalies []Anomaly
	Processed int
	Failed    int
}

// lockFor serializes activations of the same period.
func (a *Activator) lockFor(periodID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.periodLocks[periodID]
	if !ok {
		m = &sync.Mutex{}
		a.periodLocks[periodID] = m
	}
	return m
}

// ActivatePeriod runs the job for one period. Returns leave.ErrPeriodNotFound when
// the period id does not exist; every other failure is per-item and
// collected into the report.
func (a *Activator) ActivatePeriod(ctx context.Context, periodID string) (*ActivationReport, error) {
	lock := a.lockFor(periodID)
	lock.Lock()
	defer lock.Unlock()

	target, err := a.Stores.GetPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}

	report := &ActivationReport{
		RunID:    uuid.NewString(),
		PeriodID: target.ID,
	}

	periods, err := a.Stores.ListPeriods(ctx)
	if err != nil {
		return nil, err
	}
	SortPeriods(periods)

	prior := PrecedingPeriod(periods, target.Start)
	if prior == nil {
		// First period on the timeline: nothing to carry, just activate.
		if err := a.Stores.MarkActive(ctx, target.ID); err != nil {
			return nil, err
		}
		log.Printf("[Activation] run %s: period %s has no predecessor, marked active", report.RunID, target.ID)
		return report, nil
	}
	report.PriorID = prior.ID

	closing, err := a.priorClosings(ctx, *prior)
	if err != nil {
		return nil, err
	}
	report.Anomalies = closing.Anomalies

	// One load of the target period's rows; the carry loop never queries.
	seeded, err := a.Stores.AllocationsForPeriods(ctx, []string{target.ID})
	if err != nil {
		return nil, err
	}
	seededByID := make(map[string]Allocation, len(seeded))
	for _, row := range seeded {
		seededByID[row.ID] = row
	}

	for _, ledger := range closing.Employees {
		ledger := ledger
		process := func(s Stores) error {
			return a.carryEmployee(ctx, s, *target, *prior, ledger, seededByID, report)
		}

		var runErr error
		if tx, ok := a.Stores.(TxRunner); ok {
			runErr = tx.WithTx(ctx, process)
		} else {
			runErr = process(a.Stores)
		}
		if runErr != nil {
			// Per-employee failure: log with context and continue.
			log.Printf("[Activation] run %s: employee %s failed: %v", report.RunID, ledger.EmployeeID, runErr)
			report.Failed++
			report.Anomalies = append(report.Anomalies, Anomaly{
				EmployeeID: ledger.EmployeeID,
				PeriodID:   target.ID,
				Stage:      "carry",
				Message:    runErr.Error(),
			})
			continue
		}
		report.Processed++
	}

	if err := a.Stores.MarkActive(ctx, target.ID); err != nil {
		return nil, err
	}

	log.Printf("[Activation] run %s: period %s activated from %s: %d processed, %d failed",
		report.RunID, target.ID, prior.ID, report.Processed, report.Failed)
	return report, nil
}

// priorClosings computes the prior period's full ledger for every employee.
func (a *Activator) priorClosings(ctx context.Context, prior PeriodWindow) (*Result, error) {
	profiles, err := a.Stores.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	types, err := a.Stores.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	holidays, err := a.Stores.ListHolidays(ctx)
	if err != nil {
		return nil, err
	}
	allocations, err := a.Stores.AllocationsForPeriods(ctx, []string{prior.ID})
	if err != nil {
		return nil, err
	}
	entries, err := a.Stores.ApprovedEntries(ctx, prior.Start, prior.End)
	if err != nil {
		return nil, err
	}

	asOf := prior.Start
	return a.Engine.Compute(ComputeInput{
		Profiles:    profiles,
		Periods:     []PeriodWindow{prior},
		Types:       types,
		Allocations: allocations,
		Entries:     entries,
		Holidays:    holidays,
		AsOf:        &asOf,
	})
}

// carryEmployee upserts the carry rows and the snapshot for one employee,
// writing through the (possibly transactional) store view s.
func (a *Activator) carryEmployee(ctx context.Context, s Stores, target, prior PeriodWindow, ledger EmployeeLedger, seededByID map[string]Allocation, report *ActivationReport) error {
	if len(ledger.Periods) == 0 {
		return nil
	}
	row := ledger.Periods[len(ledger.Periods)-1]

	for _, code := range a.Engine.Tracked {
		item := ActivationItem{EmployeeID: ledger.EmployeeID, Code: code}

		carry := decimal.Zero
		if !policyFor(a.Engine.Policies, code).ResetAtPeriodEnd {
			if ending := row.Ending[code]; ending.IsPositive() {
				carry = ending
			}
		}
		item.Carry = carry

		updated, err := a.upsertCarry(ctx, s, target, ledger.EmployeeID, code, carry, seededByID)
		if err != nil {
			item.Err = err.Error()
			report.Failed++
			report.Items = append(report.Items, item)
			log.Printf("[Activation] employee %s code %s period %s: %v",
				ledger.EmployeeID, code, target.ID, err)
			continue
		}
		item.Updated = updated
		report.Items = append(report.Items, item)
	}

	snapshot := BalanceSnapshot{
		ID:            uuid.NewString(),
		EmployeeID:    ledger.EmployeeID,
		BalanceDate:   prior.End,
		Starting:      row.Starting,
		Allocated:     row.Allocation,
		Used:          row.Used,
		Ending:        row.Ending,
		AllocationRef: target.ID,
		Note:          fmt.Sprintf("carry-forward seed for %s", target.Name),
	}
	return s.UpsertSnapshot(ctx, snapshot)
}

// upsertCarry writes the deterministic carry-forward allocation row for
// (employee, target period, code). Returns false when the stored amount is
// already within epsilon of the computed carry.
func (a *Activator) upsertCarry(ctx context.Context, s Stores, target PeriodWindow, emp EmployeeID, code Code, carry decimal.Decimal, seededByID map[string]Allocation) (bool, error) {
	rowID := carryRowID(target.ID, emp, code)

	existing, ok := seededByID[rowID]
	if ok && existing.Quantity.Sub(carry).Abs().LessThanOrEqual(carryEpsilon) {
		return false, nil
	}
	if !ok && carry.IsZero() {
		// No row and nothing to carry: don't write zero rows.
		return false, nil
	}

	return true, s.UpsertAllocation(ctx, Allocation{
		ID:         rowID,
		Code:       string(code),
		PeriodID:   target.ID,
		EmployeeID: emp,
		Quantity:   carry,
		Carried:    true,
	})
}

// carryRowID is deterministic so re-runs update in place instead of
// stacking carry on top of carry.
func carryRowID(periodID string, emp EmployeeID, code Code) string {
	return fmt.Sprintf("carry-%s-%s-%s", periodID, emp, code)
}
