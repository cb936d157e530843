package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HP189-pr/admindesk-sub000/leave"
	"github.com/HP189-pr/admindesk-sub000/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(s string) leave.Date {
	return leave.MustParseDate(s)
}

// =============================================================================
// PERIODS
// =============================================================================

func TestPeriods_RoundTripAndOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Insert out of order; listing sorts by start.
	require.NoError(t, store.SavePeriod(ctx, leave.PeriodWindow{
		ID: "fy-2025-26", Name: "FY 2025-26",
		Start: date("2025-07-01"), End: date("2026-06-30"),
	}))
	require.NoError(t, store.SavePeriod(ctx, leave.PeriodWindow{
		ID: "fy-2024-25", Name: "FY 2024-25",
		Start: date("2024-07-01"), End: date("2025-06-30"),
	}))

	periods, err := store.ListPeriods(ctx)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, "fy-2024-25", periods[0].ID)
	assert.True(t, periods[0].Start.Equal(date("2024-07-01")))

	p, err := store.GetPeriod(ctx, "fy-2025-26")
	require.NoError(t, err)
	assert.False(t, p.Active)

	require.NoError(t, store.MarkActive(ctx, "fy-2025-26"))
	p, err = store.GetPeriod(ctx, "fy-2025-26")
	require.NoError(t, err)
	assert.True(t, p.Active)
}

func TestPeriods_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetPeriod(ctx, "nope")
	assert.True(t, errors.Is(err, leave.ErrPeriodNotFound))
	assert.True(t, errors.Is(store.MarkActive(ctx, "nope"), leave.ErrPeriodNotFound))
}

// =============================================================================
// PROFILES
// =============================================================================

func TestProfiles_BalancesSurviveAsDecimals(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	join := date("2025-09-01")
	require.NoError(t, store.SaveProfile(ctx, leave.Profile{
		EmployeeID: "EMP001",
		Name:       "K. Patel",
		JoinDate:   &join,
		OpeningBalance: map[leave.Code]decimal.Decimal{
			leave.CodeEL: decimal.NewFromFloat(12.5),
		},
		JoiningAllocation: map[leave.Code]decimal.Decimal{
			leave.CodeCL: decimal.NewFromInt(2),
		},
	}))

	got, err := store.GetProfile(ctx, "EMP001")
	require.NoError(t, err)
	assert.Equal(t, "K. Patel", got.Name)
	require.NotNil(t, got.JoinDate)
	assert.True(t, got.JoinDate.Equal(join))
	assert.True(t, got.OpeningBalance[leave.CodeEL].Equal(decimal.NewFromFloat(12.5)),
		"half-day balances must round-trip exactly")
	assert.True(t, got.JoiningAllocation[leave.CodeCL].Equal(decimal.NewFromInt(2)))

	_, err = store.GetProfile(ctx, "EMP404")
	assert.True(t, leave.IsNotFound(err))
}

func TestProfiles_MissingJoinDateStaysNil(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProfile(ctx, leave.Profile{
		EmployeeID: "EMP001",
		Name:       "R. Deshmukh",
	}))

	got, err := store.GetProfile(ctx, "EMP001")
	require.NoError(t, err)
	assert.Nil(t, got.JoinDate, "veterans keep a nil join date")
	assert.Nil(t, got.LeftDate)
}

// =============================================================================
// ALLOCATIONS
// =============================================================================

func TestAllocations_UpsertByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	row := leave.Allocation{
		ID: "carry-p2-EMP001-EL", Code: "EL", PeriodID: "p2",
		EmployeeID: "EMP001", Quantity: decimal.NewFromInt(36), Carried: true,
	}
	require.NoError(t, store.UpsertAllocation(ctx, row))

	// Same id, new quantity: updates in place.
	row.Quantity = decimal.NewFromInt(34)
	require.NoError(t, store.UpsertAllocation(ctx, row))

	rows, err := store.AllocationsForPeriods(ctx, []string{"p2"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Quantity.Equal(decimal.NewFromInt(34)))
	assert.Equal(t, leave.EmployeeID("EMP001"), rows[0].EmployeeID)
	assert.True(t, rows[0].Carried, "the carry marker must survive the round trip")
}

func TestAllocations_FilterByPeriodSet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertAllocation(ctx, leave.Allocation{
		ID: "a1", Code: "EL", PeriodID: "p1", Quantity: decimal.NewFromInt(30),
	}))
	require.NoError(t, store.UpsertAllocation(ctx, leave.Allocation{
		ID: "a2", Code: "EL", PeriodID: "p2", Quantity: decimal.NewFromInt(30), Sandwich: true,
	}))

	rows, err := store.AllocationsForPeriods(ctx, []string{"p2"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a2", rows[0].ID)
	assert.True(t, rows[0].Sandwich)

	rows, err = store.AllocationsForPeriods(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// =============================================================================
// ENTRIES
// =============================================================================

func TestApprovedEntries_FiltersStatusAndRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	override := true
	require.NoError(t, store.SaveEntry(ctx, leave.Entry{
		ID: "e1", EmployeeID: "EMP001", TypeCode: "EL",
		Start: date("2025-08-04"), End: date("2025-08-08"),
		Status: leave.StatusApproved, Sandwich: &override,
	}))
	require.NoError(t, store.SaveEntry(ctx, leave.Entry{
		ID: "e2", EmployeeID: "EMP001", TypeCode: "CL",
		Start: date("2025-08-11"), End: date("2025-08-12"),
		Status: leave.StatusPending,
	}))
	require.NoError(t, store.SaveEntry(ctx, leave.Entry{
		ID: "e3", EmployeeID: "EMP001", TypeCode: "EL",
		Start: date("2024-01-02"), End: date("2024-01-03"),
		Status: leave.StatusApproved,
	}))

	entries, err := store.ApprovedEntries(ctx, date("2025-07-01"), date("2026-06-30"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "pending and out-of-range entries stay out")
	assert.Equal(t, "e1", entries[0].ID)
	require.NotNil(t, entries[0].Sandwich, "tri-state sandwich override must survive")
	assert.True(t, *entries[0].Sandwich)
}

func TestApprovedEntries_NilSandwichStaysNil(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveEntry(ctx, leave.Entry{
		ID: "e1", EmployeeID: "EMP001", TypeCode: "EL",
		Start: date("2025-08-04"), End: date("2025-08-08"),
		Status: leave.StatusApproved,
	}))

	entries, err := store.ApprovedEntries(ctx, date("2025-07-01"), date("2026-06-30"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Sandwich)
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func TestSnapshots_UpsertKeyedByEmployeeAndDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	snap := leave.BalanceSnapshot{
		ID:          "snap-1",
		EmployeeID:  "EMP001",
		BalanceDate: date("2025-06-30"),
		Starting:    map[leave.Code]decimal.Decimal{leave.CodeEL: decimal.NewFromInt(10)},
		Allocated:   map[leave.Code]decimal.Decimal{leave.CodeEL: decimal.NewFromInt(30)},
		Used:        map[leave.Code]decimal.Decimal{leave.CodeEL: decimal.NewFromInt(4)},
		Ending:      map[leave.Code]decimal.Decimal{leave.CodeEL: decimal.NewFromFloat(36.5)},
		Note:        "carry-forward seed for FY 2025-26",
	}
	require.NoError(t, store.UpsertSnapshot(ctx, snap))

	// Second write for the same (employee, date) updates, never duplicates.
	snap.ID = "snap-2"
	snap.Ending[leave.CodeEL] = decimal.NewFromInt(34)
	require.NoError(t, store.UpsertSnapshot(ctx, snap))

	got, err := store.GetSnapshot(ctx, "EMP001", date("2025-06-30"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "snap-1", got.ID, "the original row identity survives")
	assert.True(t, got.Ending[leave.CodeEL].Equal(decimal.NewFromInt(34)))
	assert.True(t, got.Used[leave.CodeEL].Equal(decimal.NewFromInt(4)))

	missing, err := store.GetSnapshot(ctx, "EMP001", date("2024-06-30"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestWithTx_RollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(s leave.Stores) error {
		if err := s.UpsertAllocation(ctx, leave.Allocation{
			ID: "a1", Code: "EL", PeriodID: "p1", Quantity: decimal.NewFromInt(30),
		}); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	rows, err := store.AllocationsForPeriods(ctx, []string{"p1"})
	require.NoError(t, err)
	assert.Empty(t, rows, "failed transactions must leave nothing behind")
}

func TestWithTx_CommitsAndSeesOwnWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(s leave.Stores) error {
		if err := s.UpsertAllocation(ctx, leave.Allocation{
			ID: "a1", Code: "EL", PeriodID: "p1", Quantity: decimal.NewFromInt(30),
		}); err != nil {
			return err
		}
		rows, err := s.AllocationsForPeriods(ctx, []string{"p1"})
		if err != nil {
			return err
		}
		require.Len(t, rows, 1, "reads inside the tx see its writes")
		return nil
	})
	require.NoError(t, err)

	rows, err := store.AllocationsForPeriods(ctx, []string{"p1"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
