/*
handlers.go - HTTP API handlers for the leave balance engine

PURPOSE:
  Exposes the balance computation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                       List all employees
    GET    /api/employees/{id}                  Get employee profile
    GET    /api/employees/{id}/balance          Full multi-period ledger
    GET    /api/employees/{id}/balance/current  Point-in-time balance (?date=)

  Periods:
    GET    /api/periods                         List fiscal periods
    GET    /api/periods/{id}/report             All-employee report for one period

  Reports:
    GET    /api/reports/balances                Bulk current balances (?date=)

  Admin:
    POST   /api/admin/activate                  Run period activation job

  Master data:
    GET    /api/types                           Leave type registry (?active=)
    GET    /api/holidays                        Holiday calendar

REQUEST FLOW:
  1. Parse HTTP request
  2. Load engine inputs from the store (one batch of list calls, never
     per-cell queries)
  3. Call the engine
  4. Serialize response with presentation rounding applied at this boundary

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Unknown employee or period
  - 500: Internal errors
  Per-employee computation failures in bulk reports do not fail the
  request; they are collected into the response's errors list.

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - leave/engine.go: The computation this layer fronts
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/HP189-pr/admindesk-sub000/leave"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     leave.Stores
	Engine    *leave.Engine
	Activator *leave.Activator
}

// NewHandler creates a handler over the given store with default engine
// settings.
func NewHandler(store leave.Stores) *Handler {
	engine := leave.NewEngine()
	return &Handler{
		Store:     store,
		Engine:    engine,
		Activator: leave.NewActivator(engine, store),
	}
}

// loadInput gathers everything one compute run needs. Periods come back
// sorted; the entry window spans the full timeline so splitting sees
// every approved entry.
func (h *Handler) loadInput(ctx context.Context) (leave.ComputeInput, error) {
	var in leave.ComputeInput

	periods, err := h.Store.ListPeriods(ctx)
	if err != nil {
		return in, err
	}
	leave.SortPeriods(periods)

	types, err := h.Store.ListTypes(ctx)
	if err != nil {
		return in, err
	}
	holidays, err := h.Store.ListHolidays(ctx)
	if err != nil {
		return in, err
	}

	ids := make([]string, len(periods))
	for i, p := range periods {
		ids[i] = p.ID
	}
	allocations, err := h.Store.AllocationsForPeriods(ctx, ids)
	if err != nil {
		return in, err
	}

	var entries []leave.Entry
	if len(periods) > 0 {
		entries, err = h.Store.ApprovedEntries(ctx, periods[0].Start, periods[len(periods)-1].End)
		if err != nil {
			return in, err
		}
	}

	in.Periods = periods
	in.Types = types
	in.Holidays = holidays
	in.Allocations = allocations
	in.Entries = entries
	return in, nil
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employee profiles.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Store.ListProfiles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(profiles))
	for i, p := range profiles {
		dtos[i] = toEmployeeDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee profile.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := leave.EmployeeID(chi.URLParam(r, "id"))

	profile, err := h.Store.GetProfile(r.Context(), id)
	if err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*profile))
}

// GetBalance returns an employee's full multi-period ledger.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := leave.EmployeeID(chi.URLParam(r, "id"))

	profile, err := h.Store.GetProfile(ctx, id)
	if err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}

	in, err := h.loadInput(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load balance inputs", err)
		return
	}
	if asOf, ok, errMsg := parseAsOf(r); errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg, nil)
		return
	} else if ok {
		in.AsOf = &asOf
	}

	ledger, err := h.Engine.ComputeOne(*profile, in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Balance computation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(*ledger))
}

// GetCurrentBalance returns the balance in the period containing the query
// date (default today). If no period contains the date the most recently
// preceding period answers.
func (h *Handler) GetCurrentBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := leave.EmployeeID(chi.URLParam(r, "id"))

	profile, err := h.Store.GetProfile(ctx, id)
	if err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}

	in, err := h.loadInput(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load balance inputs", err)
		return
	}

	asOf := leave.Today()
	if d, ok, errMsg := parseAsOf(r); errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg, nil)
		return
	} else if ok {
		asOf = d
	}

	dto, err := h.currentBalance(*profile, in, asOf)
	if err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "No period covers the requested date", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Balance computation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) currentBalance(profile leave.Profile, in leave.ComputeInput, asOf leave.Date) (*CurrentBalanceDTO, error) {
	target := leave.PeriodFor(in.Periods, asOf)
	if target == nil {
		return nil, leave.ErrPeriodNotFound
	}

	ledger, err := h.Engine.ComputeOne(profile, in)
	if err != nil {
		return nil, err
	}

	for _, pl := range ledger.Periods {
		if pl.PeriodID != target.ID {
			continue
		}
		return &CurrentBalanceDTO{
			EmployeeID: string(profile.EmployeeID),
			Name:       profile.Name,
			AsOf:       asOf.String(),
			PeriodID:   pl.PeriodID,
			PeriodName: pl.PeriodName,
			Balance:    displayAmounts(pl.Ending),
			Used:       displayAmounts(pl.Used),
		}, nil
	}
	return nil, leave.ErrPeriodNotFound
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// ListPeriods returns the fiscal period timeline.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Store.ListPeriods(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list periods", err)
		return
	}
	leave.SortPeriods(periods)

	dtos := make([]PeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPeriodDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPeriodReport returns every employee's balances for one period.
func (h *Handler) GetPeriodReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	periodID := chi.URLParam(r, "id")

	period, err := h.Store.GetPeriod(ctx, periodID)
	if err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Period not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get period", err)
		return
	}

	in, err := h.loadInput(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load report inputs", err)
		return
	}
	in.Profiles, err = h.Store.ListProfiles(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	result, err := h.Engine.Compute(in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Report computation failed", err)
		return
	}

	report := PeriodReportDTO{
		Period:    toPeriodDTO(*period),
		Employees: make([]PeriodReportRow, 0, len(result.Employees)),
		Anomalies: anomalyStrings(result.Anomalies),
	}
	for _, el := range result.Employees {
		for _, pl := range el.Periods {
			if pl.PeriodID != period.ID {
				continue
			}
			report.Employees = append(report.Employees, PeriodReportRow{
				EmployeeID: string(el.EmployeeID),
				Name:       el.Name,
				Starting:   displayAmounts(pl.Starting),
				Allocation: displayAmounts(pl.Allocation),
				Used:       displayAmounts(pl.Used),
				Ending:     displayAmounts(pl.Ending),
			})
		}
	}
	writeJSON(w, http.StatusOK, report)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetBulkBalances returns current balances for every employee. A failure
// for one employee is reported and skipped, never fatal for the batch.
func (h *Handler) GetBulkBalances(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	in, err := h.loadInput(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load report inputs", err)
		return
	}
	profiles, err := h.Store.ListProfiles(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	asOf := leave.Today()
	if d, ok, errMsg := parseAsOf(r); errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg, nil)
		return
	} else if ok {
		asOf = d
	}

	report := BulkBalanceReportDTO{
		AsOf:      asOf.String(),
		Employees: make([]CurrentBalanceDTO, 0, len(profiles)),
	}
	for _, p := range profiles {
		dto, err := h.currentBalance(p, in, asOf)
		if err != nil {
			report.Errors = append(report.Errors,
				string(p.EmployeeID)+": "+err.Error())
			continue
		}
		report.Employees = append(report.Employees, *dto)
	}
	writeJSON(w, http.StatusOK, report)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// TriggerActivation runs the period activation job.
// POST /api/admin/activate
func (h *Handler) TriggerActivation(w http.ResponseWriter, r *http.Request) {
	var req ActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PeriodID == "" {
		writeError(w, http.StatusBadRequest, "period_id is required", nil)
		return
	}

	report, err := h.Activator.ActivatePeriod(r.Context(), req.PeriodID)
	if err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Period not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Activation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toActivationReportDTO(*report))
}

// =============================================================================
// MASTER DATA HANDLERS
// =============================================================================

// ListTypes returns the leave type registry. With ?active=true only the
// active types come back, sorted by code, for request-entry pickers.
func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.ListTypes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave types", err)
		return
	}
	if r.URL.Query().Get("active") == "true" {
		types = leave.NewTypeRegistry(types).ActiveTypes()
	}

	dtos := make([]LeaveTypeDTO, len(types))
	for i, t := range types {
		dtos[i] = LeaveTypeDTO{
			Code:       t.Code,
			Name:       t.Name,
			DayValue:   t.DayValue.String(),
			IsHalf:     t.IsHalf,
			ParentCode: t.ParentCode,
			Active:     t.Active,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListHolidays returns the holiday calendar.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, d := range holidays {
		dtos[i] = HolidayDTO{Date: d.String()}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

// parseAsOf reads the optional ?date= query parameter.
func parseAsOf(r *http.Request) (d leave.Date, ok bool, errMsg string) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return leave.Date{}, false, ""
	}
	d, err := leave.ParseDate(raw)
	if err != nil {
		return leave.Date{}, false, "Invalid date, expected YYYY-MM-DD"
	}
	return d, true, ""
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
