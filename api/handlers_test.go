package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HP189-pr/admindesk-sub000/api"
	"github.com/HP189-pr/admindesk-sub000/leave"
	memstore "github.com/HP189-pr/admindesk-sub000/leave/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *memstore.Memory) {
	mem := memstore.NewMemory()

	one := decimal.NewFromInt(1)
	mem.AddType(leave.LeaveType{Code: "EL", Name: "Earned Leave", DayValue: one, Active: true})
	mem.AddType(leave.LeaveType{Code: "CL", Name: "Casual Leave", DayValue: one, Active: true})
	mem.AddType(leave.LeaveType{Code: "SL", Name: "Sick Leave", DayValue: one, Active: true})
	mem.AddType(leave.LeaveType{Code: "VAC", Name: "Vacation", DayValue: one, Active: true})

	mem.AddPeriod(leave.PeriodWindow{
		ID: "fy-2024-25", Name: "FY 2024-25",
		Start: leave.MustParseDate("2024-07-01"), End: leave.MustParseDate("2025-06-30"),
	})
	mem.AddPeriod(leave.PeriodWindow{
		ID: "fy-2025-26", Name: "FY 2025-26",
		Start: leave.MustParseDate("2025-07-01"), End: leave.MustParseDate("2026-06-30"),
	})

	mem.AddProfile(leave.Profile{
		EmployeeID: "EMP001",
		Name:       "R. Deshmukh",
		OpeningBalance: map[leave.Code]decimal.Decimal{
			leave.CodeEL: decimal.NewFromInt(10),
		},
	})
	mem.AddAllocation(leave.Allocation{
		ID: "a1", Code: "EL", PeriodID: "fy-2024-25", Quantity: decimal.NewFromInt(30),
	})
	mem.AddAllocation(leave.Allocation{
		ID: "a2", Code: "EL", PeriodID: "fy-2025-26", Quantity: decimal.NewFromInt(30),
	})
	mem.AddEntry(leave.Entry{
		ID: "e1", EmployeeID: "EMP001", TypeCode: "EL",
		Start:  leave.MustParseDate("2024-09-02"),
		End:    leave.MustParseDate("2024-09-05"),
		Status: leave.StatusApproved,
	})

	srv := httptest.NewServer(api.NewRouter(api.NewHandler(mem)))
	t.Cleanup(srv.Close)
	return srv, mem
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

func TestListEmployees(t *testing.T) {
	srv, _ := newTestServer(t)

	var employees []map[string]any
	code := getJSON(t, srv.URL+"/api/employees", &employees)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, employees, 1)
	assert.Equal(t, "EMP001", employees[0]["id"])
	assert.Equal(t, "R. Deshmukh", employees[0]["name"])
}

func TestGetEmployee_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	code := getJSON(t, srv.URL+"/api/employees/EMP404", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGetBalance_AmountsAreDecimalStrings(t *testing.T) {
	srv, _ := newTestServer(t)

	var balance struct {
		EmployeeID string `json:"employee_id"`
		Periods    []struct {
			PeriodID string            `json:"period_id"`
			Starting map[string]string `json:"starting"`
			Ending   map[string]string `json:"ending"`
		} `json:"periods"`
	}
	code := getJSON(t, srv.URL+"/api/employees/EMP001/balance", &balance)
	require.Equal(t, http.StatusOK, code)

	require.Len(t, balance.Periods, 2)
	// FY 2024-25: 10 opening + 30 - 4 used = 36.
	assert.Equal(t, "36", balance.Periods[0].Ending["EL"])
	// The ending carries into FY 2025-26 and earns the next grant.
	assert.Equal(t, "36", balance.Periods[1].Starting["EL"])
	assert.Equal(t, "66", balance.Periods[1].Ending["EL"])

	// Decimal strings survive a JSON round trip exactly.
	v, err := decimal.NewFromString(balance.Periods[1].Ending["EL"])
	require.NoError(t, err)
	assert.True(t, v.Equal(decimal.NewFromInt(66)))
}

func TestGetCurrentBalance_PicksContainingPeriod(t *testing.T) {
	srv, _ := newTestServer(t)

	var current struct {
		PeriodID string            `json:"period_id"`
		AsOf     string            `json:"as_of"`
		Balance  map[string]string `json:"balance"`
	}
	code := getJSON(t, srv.URL+"/api/employees/EMP001/balance/current?date=2024-10-15", &current)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "fy-2024-25", current.PeriodID)
	assert.Equal(t, "2024-10-15", current.AsOf)
	assert.Equal(t, "36", current.Balance["EL"])
}

func TestGetCurrentBalance_BadDate(t *testing.T) {
	srv, _ := newTestServer(t)

	code := getJSON(t, srv.URL+"/api/employees/EMP001/balance/current?date=15-10-2024", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

// =============================================================================
// PERIOD AND REPORT ENDPOINTS
// =============================================================================

func TestGetPeriodReport(t *testing.T) {
	srv, _ := newTestServer(t)

	var report struct {
		Period    struct{ ID string } `json:"period"`
		Employees []struct {
			EmployeeID string            `json:"employee_id"`
			Used       map[string]string `json:"used"`
		} `json:"employees"`
	}
	code := getJSON(t, srv.URL+"/api/periods/fy-2024-25/report", &report)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "fy-2024-25", report.Period.ID)
	require.Len(t, report.Employees, 1)
	assert.Equal(t, "4", report.Employees[0].Used["EL"])
}

func TestGetPeriodReport_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	code := getJSON(t, srv.URL+"/api/periods/fy-2099-00/report", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGetBulkBalances(t *testing.T) {
	srv, _ := newTestServer(t)

	var report struct {
		AsOf      string `json:"as_of"`
		Employees []struct {
			EmployeeID string            `json:"employee_id"`
			Balance    map[string]string `json:"balance"`
		} `json:"employees"`
		Errors []string `json:"errors"`
	}
	code := getJSON(t, srv.URL+"/api/reports/balances?date=2025-10-01", &report)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "2025-10-01", report.AsOf)
	require.Len(t, report.Employees, 1)
	assert.Equal(t, "66", report.Employees[0].Balance["EL"])
	assert.Empty(t, report.Errors)
}

// =============================================================================
// ADMIN ENDPOINTS
// =============================================================================

func TestTriggerActivation(t *testing.T) {
	srv, mem := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"period_id": "fy-2025-26"})
	resp, err := http.Post(srv.URL+"/api/admin/activate", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report struct {
		PeriodID  string `json:"period_id"`
		PriorID   string `json:"prior_id"`
		Processed int    `json:"processed"`
		Failed    int    `json:"failed"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "fy-2025-26", report.PeriodID)
	assert.Equal(t, "fy-2024-25", report.PriorID)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 0, report.Failed)

	p, err := mem.GetPeriod(context.Background(), "fy-2025-26")
	require.NoError(t, err)
	assert.True(t, p.Active)
}

func TestTriggerActivation_BalancesUnchangedAfterwards(t *testing.T) {
	// Activation seeds carry rows into the new period; the reporting
	// endpoints must show the same ledger before and after.
	srv, _ := newTestServer(t)

	var before struct {
		Periods []struct {
			Ending map[string]string `json:"ending"`
		} `json:"periods"`
	}
	code := getJSON(t, srv.URL+"/api/employees/EMP001/balance", &before)
	require.Equal(t, http.StatusOK, code)

	body, _ := json.Marshal(map[string]string{"period_id": "fy-2025-26"})
	resp, err := http.Post(srv.URL+"/api/admin/activate", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var after struct {
		Periods []struct {
			Ending map[string]string `json:"ending"`
		} `json:"periods"`
	}
	code = getJSON(t, srv.URL+"/api/employees/EMP001/balance", &after)
	require.Equal(t, http.StatusOK, code)

	require.Len(t, after.Periods, 2)
	assert.Equal(t, before.Periods[1].Ending["EL"], after.Periods[1].Ending["EL"])
	assert.Equal(t, "66", after.Periods[1].Ending["EL"])
}

func TestTriggerActivation_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/admin/activate", "application/json",
		bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, _ := json.Marshal(map[string]string{"period_id": "fy-2099-00"})
	resp, err = http.Post(srv.URL+"/api/admin/activate", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// MASTER DATA ENDPOINTS
// =============================================================================

func TestListTypesAndHolidays(t *testing.T) {
	srv, mem := newTestServer(t)
	mem.AddHoliday(leave.MustParseDate("2025-08-15"))
	mem.AddType(leave.LeaveType{Code: "ML", Name: "Maternity Leave", DayValue: decimal.NewFromInt(1)})

	var types []struct {
		Code     string `json:"code"`
		DayValue string `json:"day_value"`
	}
	code := getJSON(t, srv.URL+"/api/types", &types)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, types, 5, "the unfiltered listing includes inactive types")

	// ?active=true keeps only active types, sorted by code.
	types = nil
	code = getJSON(t, srv.URL+"/api/types?active=true", &types)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, types, 4)
	assert.Equal(t, "CL", types[0].Code)

	var holidays []struct {
		Date string `json:"date"`
	}
	code = getJSON(t, srv.URL+"/api/holidays", &holidays)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, holidays, 1)
	assert.Equal(t, "2025-08-15", holidays[0].Date)
}
