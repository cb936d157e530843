package leave_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/HP189-pr/admindesk-sub000/leave"
)

func newSplitter(holidays ...leave.Date) *leave.Splitter {
	return &leave.Splitter{
		Calendar: leave.NewCalendar(leave.NewHolidaySet(holidays...)),
		Registry: testRegistry(),
	}
}

func emptyBook() *leave.AllocationBook {
	return leave.BuildAllocationBook(nil, testPeriods(), testRegistry(), leave.DefaultTrackedCodes())
}

// =============================================================================
// SPLITTING ACROSS PERIOD BOUNDARIES
// =============================================================================

func TestSplit_CrossBoundaryConservesDays(t *testing.T) {
	// GIVEN: A sandwiched entry Sat 2025-06-28 .. Wed 2025-07-02 crossing
	//        the June 30 fiscal boundary
	// WHEN: Splitting across both periods
	// THEN: 3 days land in FY 2024-25 and 2 in FY 2025-26; the sum equals
	//       the entry's full inclusive span

	sandwich := true
	entry := leave.Entry{
		ID:         "e1",
		EmployeeID: "EMP001",
		TypeCode:   "CL",
		Start:      leave.MustParseDate("2025-06-28"),
		End:        leave.MustParseDate("2025-07-02"),
		Status:     leave.StatusApproved,
		Sandwich:   &sandwich,
	}

	out := newSplitter().Split(entry, testPeriods(), emptyBook())

	if got := out["fy-2024-25"][leave.CodeCL]; !got.Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected 3 days in FY 2024-25, got %s", got)
	}
	if got := out["fy-2025-26"][leave.CodeCL]; !got.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected 2 days in FY 2025-26, got %s", got)
	}

	total := decimal.Zero
	for _, amounts := range out {
		for _, v := range amounts {
			total = total.Add(v)
		}
	}
	span := decimal.NewFromInt(int64(leave.DaysInclusive(entry.Start, entry.End)))
	if !total.Equal(span) {
		t.Errorf("split must conserve the span: %s vs %s", total, span)
	}
}

func TestSplit_WorkingDaysSkipSundayAtBoundary(t *testing.T) {
	// Same span without sandwich: Sun 2025-06-29 drops out, so
	// FY 2024-25 gets Sat 28 + Mon 30 = 2 days.
	entry := leave.Entry{
		ID:         "e1",
		EmployeeID: "EMP001",
		TypeCode:   "EL",
		Start:      leave.MustParseDate("2025-06-28"),
		End:        leave.MustParseDate("2025-07-02"),
		Status:     leave.StatusApproved,
	}

	out := newSplitter().Split(entry, testPeriods(), emptyBook())

	if got := out["fy-2024-25"][leave.CodeEL]; !got.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected 2 working days in FY 2024-25, got %s", got)
	}
	if got := out["fy-2025-26"][leave.CodeEL]; !got.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected 2 working days in FY 2025-26, got %s", got)
	}
}

// =============================================================================
// SANDWICH RESOLUTION
// =============================================================================

func TestSplit_EntryOverrideBeatsResolvedFlag(t *testing.T) {
	// GIVEN: The allocation book says sandwich applies for CL
	// WHEN: The entry itself carries an explicit false override
	// THEN: The override wins and only working days count

	rows := []leave.Allocation{
		{ID: "a1", Code: "CL", PeriodID: "fy-2025-26", Quantity: decimal.NewFromInt(12), Sandwich: true},
	}
	book := leave.BuildAllocationBook(rows, testPeriods(), testRegistry(), leave.DefaultTrackedCodes())

	noSandwich := false
	entry := leave.Entry{
		ID:         "e1",
		EmployeeID: "EMP001",
		TypeCode:   "CL",
		Start:      leave.MustParseDate("2025-08-04"), // Mon
		End:        leave.MustParseDate("2025-08-13"), // Wed, one Sunday inside
		Status:     leave.StatusApproved,
		Sandwich:   &noSandwich,
	}

	out := newSplitter().Split(entry, testPeriods(), book)

	if got := out["fy-2025-26"][leave.CodeCL]; !got.Equal(decimal.NewFromInt(9)) {
		t.Errorf("expected 9 working days under the override, got %s", got)
	}

	// Without the override the resolved flag applies: all 10 days.
	entry.Sandwich = nil
	out = newSplitter().Split(entry, testPeriods(), book)
	if got := out["fy-2025-26"][leave.CodeCL]; !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected 10 sandwiched days, got %s", got)
	}
}

// =============================================================================
// DAY VALUES AND GROUP FOLDING
// =============================================================================

func TestSplit_HalfDayCodeScalesAndFolds(t *testing.T) {
	// GIVEN: Two HCL1 (half-day, child of CL) working days
	// WHEN: Splitting
	// THEN: 1.0 day lands in the CL group

	entry := leave.Entry{
		ID:         "e1",
		EmployeeID: "EMP001",
		TypeCode:   "HCL1",
		Start:      leave.MustParseDate("2025-08-04"),
		End:        leave.MustParseDate("2025-08-05"),
		Status:     leave.StatusApproved,
	}

	out := newSplitter().Split(entry, testPeriods(), emptyBook())

	if got := out["fy-2025-26"][leave.CodeCL]; !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1.0 in the CL group, got %s", got)
	}
	if _, ok := out["fy-2025-26"][leave.Code("HCL1")]; ok {
		t.Error("child code must not appear as its own group")
	}
}

func TestSplit_InvalidEntriesProduceNothing(t *testing.T) {
	reversed := leave.Entry{
		ID:         "e1",
		EmployeeID: "EMP001",
		TypeCode:   "EL",
		Start:      leave.MustParseDate("2025-08-10"),
		End:        leave.MustParseDate("2025-08-04"),
		Status:     leave.StatusApproved,
	}
	if out := newSplitter().Split(reversed, testPeriods(), emptyBook()); out != nil {
		t.Errorf("reversed range should produce nothing, got %v", out)
	}

	outside := leave.Entry{
		ID:         "e2",
		EmployeeID: "EMP001",
		TypeCode:   "EL",
		Start:      leave.MustParseDate("2030-01-01"),
		End:        leave.MustParseDate("2030-01-05"),
		Status:     leave.StatusApproved,
	}
	if out := newSplitter().Split(outside, testPeriods(), emptyBook()); len(out) != 0 {
		t.Errorf("entry outside every period should produce nothing, got %v", out)
	}
}

// =============================================================================
// USAGE BOOK
// =============================================================================

func TestUsageBook_AccumulatesAcrossEntriesAndCodes(t *testing.T) {
	// Two entries from sibling codes of the same group sum into one bucket.
	entries := []leave.Entry{
		{
			ID: "e1", EmployeeID: "EMP001", TypeCode: "CL",
			Start:  leave.MustParseDate("2025-08-04"),
			End:    leave.MustParseDate("2025-08-05"),
			Status: leave.StatusApproved,
		},
		{
			ID: "e2", EmployeeID: "EMP001", TypeCode: "HCL1",
			Start:  leave.MustParseDate("2025-08-06"),
			End:    leave.MustParseDate("2025-08-06"),
			Status: leave.StatusApproved,
		},
		{
			// Pending entries are skipped even if they slip past the store.
			ID: "e3", EmployeeID: "EMP001", TypeCode: "CL",
			Start:  leave.MustParseDate("2025-08-07"),
			End:    leave.MustParseDate("2025-08-07"),
			Status: leave.StatusPending,
		},
	}

	usage := newSplitter().BuildUsageBook(entries, testPeriods(), emptyBook())

	want := decimal.NewFromFloat(2.5)
	if got := usage.Used("EMP001", "fy-2025-26", leave.CodeCL); !got.Equal(want) {
		t.Errorf("expected 2.5 CL used, got %s", got)
	}
	if got := usage.Used("EMP001", "fy-2025-26", leave.CodeEL); !got.IsZero() {
		t.Errorf("expected zero EL used, got %s", got)
	}
}
