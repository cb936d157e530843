/*
store.go - Persistence interfaces between the engine and its collaborators

PURPOSE:
  The engine itself is pure; these interfaces define what the activation
  job and the reporting layer need from storage. Implementations:
  store/sqlite (production) and leave/store (in-memory, for tests).

CONTRACTS:
  - EntryStore returns ONLY approved entries. The engine must never see a
    non-approved entry; filtering is a store responsibility.
  - ProfileStore resolves the source's join-date candidate fields into the
    single Profile.JoinDate before the engine sees the row.
  - SnapshotStore upserts are keyed (employee, balance date): get-or-create,
    never duplicate.
*/
package leave

import "context"

// PeriodStore provides the fiscal period timeline.
type PeriodStore interface {
	// ListPeriods returns all periods. Callers sort before engine use.
	ListPeriods(ctx context.Context) ([]PeriodWindow, error)

	// GetPeriod returns the period with the given id, or ErrPeriodNotFound.
	GetPeriod(ctx context.Context, id string) (*PeriodWindow, error)

	// MarkActive flags a period active after successful activation.
	MarkActive(ctx context.Context, id string) error
}

// ProfileStore provides employee master data with join dates resolved.
type ProfileStore interface {
	ListProfiles(ctx context.Context) ([]Profile, error)

	// GetProfile returns the profile, or ErrEmployeeNotFound.
	GetProfile(ctx context.Context, id EmployeeID) (*Profile, error)
}

// TypeStore provides the leave type master list.
type TypeStore interface {
	ListTypes(ctx context.Context) ([]LeaveType, error)
}

// HolidayStore provides the non-working dates.
type HolidayStore interface {
	ListHolidays(ctx context.Context) ([]Date, error)
}

// AllocationStore provides and seeds allocation rows.
type AllocationStore interface {
	// AllocationsForPeriods returns every row whose period is in the set.
	AllocationsForPeriods(ctx context.Context, periodIDs []string) ([]Allocation, error)

	// UpsertAllocation inserts or updates one row keyed by
	// (employee-or-global, period, code).
	UpsertAllocation(ctx context.Context, a Allocation) error
}

// EntryStore provides approved leave entries only.
type EntryStore interface {
	ApprovedEntries(ctx context.Context, from, to Date) ([]Entry, error)
}

// SnapshotStore persists balance snapshots, one per (employee, date).
type SnapshotStore interface {
	UpsertSnapshot(ctx context.Context, s BalanceSnapshot) error
	GetSnapshot(ctx context.Context, emp EmployeeID, date Date) (*BalanceSnapshot, error)
}

// Stores bundles everything the activation job and the reporting layer
// read and write.
type Stores interface {
	PeriodStore
	ProfileStore
	TypeStore
	HolidayStore
	AllocationStore
	EntryStore
	SnapshotStore
}

// TxRunner executes fn atomically against a transactional view of the
// store. If fn returns an error the transaction rolls back. Implementations
// back this with a database transaction; the in-memory store simulates it
// with snapshot + restore.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(s Stores) error) error
}
