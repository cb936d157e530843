/*
seed.go - Demo data loader for development and demonstrations

PURPOSE:

	Populates the store with a realistic university back-office dataset:
	leave types, fiscal periods, employees at different tenure stages,
	global and per-employee allocations, holidays, and approved entries.
	Useful for exercising the API without real payroll data.

WHAT GETS SEEDED:

	Types:     EL, CL, SL, VAC plus the HCL1 half-day code folding into CL
	Periods:   FY 2024-25 and FY 2025-26 (July-June fiscal years)
	Employees: A veteran (no recorded joining date), an established staff
	           member, and a mid-year joiner that triggers waiting and
	           proration rules
	Entries:   Approved leaves including a span that crosses a Sunday, to
	           demonstrate sandwich counting

USAGE:

	Run the server with -seed to load this data on startup. Seeding is
	idempotent: every row has a fixed ID and writes are upserts.

NOTE:

	Only use in development/demo environments.

SEE ALSO:
  - cmd/server/main.go: The -seed flag
  - store/sqlite: The savers this uses
*/
package api

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/HP189-pr/admindesk-sub000/leave"
)

// MasterDataWriter is the slice of the store a seeder needs. The SQLite
// store satisfies it.
type MasterDataWriter interface {
	SaveType(ctx context.Context, t leave.LeaveType) error
	SavePeriod(ctx context.Context, p leave.PeriodWindow) error
	SaveProfile(ctx context.Context, p leave.Profile) error
	SaveEntry(ctx context.Context, e leave.Entry) error
	SaveHoliday(ctx context.Context, d leave.Date, name string) error
	UpsertAllocation(ctx context.Context, a leave.Allocation) error
}

// SeedDemoData loads the demo dataset. Safe to run repeatedly.
func SeedDemoData(ctx context.Context, w MasterDataWriter) error {
	one := decimal.NewFromInt(1)
	half := decimal.NewFromFloat(0.5)

	types := []leave.LeaveType{
		{Code: "EL", Name: "Earned Leave", DayValue: one, Active: true},
		{Code: "CL", Name: "Casual Leave", DayValue: one, Active: true},
		{Code: "SL", Name: "Sick Leave", DayValue: one, Active: true},
		{Code: "VAC", Name: "Vacation", DayValue: one, Active: true},
		{Code: "HCL1", Name: "Half Casual Leave", DayValue: half, IsHalf: true, ParentCode: "CL", Active: true},
	}
	for _, t := range types {
		if err := w.SaveType(ctx, t); err != nil {
			return err
		}
	}

	periods := []leave.PeriodWindow{
		{
			ID:    "fy-2024-25",
			Name:  "FY 2024-25",
			Start: leave.MustParseDate("2024-07-01"),
			End:   leave.MustParseDate("2025-06-30"),
		},
		{
			ID:    "fy-2025-26",
			Name:  "FY 2025-26",
			Start: leave.MustParseDate("2025-07-01"),
			End:   leave.MustParseDate("2026-06-30"),
		},
	}
	for _, p := range periods {
		if err := w.SavePeriod(ctx, p); err != nil {
			return err
		}
	}

	joinEstablished := leave.MustParseDate("2018-03-12")
	joinRecent := leave.MustParseDate("2025-09-01")
	profiles := []leave.Profile{
		{
			EmployeeID: "EMP001",
			Name:       "R. Deshmukh",
			// Veteran with no recorded joining date: full allocations.
			OpeningBalance: map[leave.Code]decimal.Decimal{
				leave.CodeEL: decimal.NewFromInt(42),
				leave.CodeSL: decimal.NewFromInt(10),
			},
		},
		{
			EmployeeID: "EMP002",
			Name:       "S. Iyer",
			JoinDate:   &joinEstablished,
			OpeningBalance: map[leave.Code]decimal.Decimal{
				leave.CodeEL: decimal.NewFromInt(15),
			},
		},
		{
			EmployeeID: "EMP003",
			Name:       "K. Patel",
			JoinDate:   &joinRecent,
			JoiningAllocation: map[leave.Code]decimal.Decimal{
				leave.CodeCL: decimal.NewFromInt(2),
			},
		},
	}
	for _, p := range profiles {
		if err := w.SaveProfile(ctx, p); err != nil {
			return err
		}
	}

	// Global per-period grants. The CL row carries the sandwich flag so CL
	// spans count every calendar day, Sundays included.
	allocations := []leave.Allocation{
		{ID: "alloc-24-el", Code: "EL", PeriodID: "fy-2024-25", Quantity: decimal.NewFromInt(30)},
		{ID: "alloc-24-cl", Code: "CL", PeriodID: "fy-2024-25", Quantity: decimal.NewFromInt(12), Sandwich: true},
		{ID: "alloc-24-sl", Code: "SL", PeriodID: "fy-2024-25", Quantity: decimal.NewFromInt(10)},
		{ID: "alloc-25-el", Code: "EL", PeriodID: "fy-2025-26", Quantity: decimal.NewFromInt(30)},
		{ID: "alloc-25-cl", Code: "CL", PeriodID: "fy-2025-26", Quantity: decimal.NewFromInt(12), Sandwich: true},
		{ID: "alloc-25-sl", Code: "SL", PeriodID: "fy-2025-26", Quantity: decimal.NewFromInt(10)},
		{ID: "alloc-25-vac-emp2", Code: "VAC", PeriodID: "fy-2025-26", EmployeeID: "EMP002", Quantity: decimal.NewFromInt(5)},
	}
	for _, a := range allocations {
		if err := w.UpsertAllocation(ctx, a); err != nil {
			return err
		}
	}

	holidays := []struct {
		date leave.Date
		name string
	}{
		{leave.MustParseDate("2025-08-15"), "Independence Day"},
		{leave.MustParseDate("2025-10-02"), "Gandhi Jayanti"},
		{leave.MustParseDate("2025-12-25"), "Christmas"},
		{leave.MustParseDate("2026-01-26"), "Republic Day"},
	}
	for _, h := range holidays {
		if err := w.SaveHoliday(ctx, h.date, h.name); err != nil {
			return err
		}
	}

	entries := []leave.Entry{
		{
			ID:         "entry-001",
			EmployeeID: "EMP002",
			TypeCode:   "EL",
			Start:      leave.MustParseDate("2025-08-18"),
			End:        leave.MustParseDate("2025-08-22"),
			Status:     leave.StatusApproved,
		},
		{
			// Crosses Sunday 2025-09-07: sandwich CL charges all 6 days.
			ID:         "entry-002",
			EmployeeID: "EMP002",
			TypeCode:   "CL",
			Start:      leave.MustParseDate("2025-09-04"),
			End:        leave.MustParseDate("2025-09-09"),
			Status:     leave.StatusApproved,
		},
		{
			ID:         "entry-003",
			EmployeeID: "EMP003",
			TypeCode:   "HCL1",
			Start:      leave.MustParseDate("2025-10-10"),
			End:        leave.MustParseDate("2025-10-10"),
			Status:     leave.StatusApproved,
		},
		{
			// Pending entries never reach the engine.
			ID:         "entry-004",
			EmployeeID: "EMP001",
			TypeCode:   "EL",
			Start:      leave.MustParseDate("2025-11-03"),
			End:        leave.MustParseDate("2025-11-07"),
			Status:     leave.StatusPending,
		},
	}
	for _, e := range entries {
		if err := w.SaveEntry(ctx, e); err != nil {
			return err
		}
	}

	return nil
}
