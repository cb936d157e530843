/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal ledger model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific rounding and formatting
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNT FORMATTING:
  All leave quantities cross the wire as decimal strings ("12", "4.5"),
  never as floats. Presentation rounding (whole days for EL, nearest
  half-day otherwise) happens HERE and only here - the engine's carried
  balances stay unrounded.

SEE ALSO:
  - handlers.go: Uses these types
  - leave/rounding.go: DisplayRound / FormatAmount
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/HP189-pr/admindesk-sub000/leave"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee profile in API responses.
type EmployeeDTO struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	JoiningDate *string           `json:"joining_date,omitempty"`
	LeftDate    *string           `json:"left_date,omitempty"`
	CalcDate    *string           `json:"calc_date,omitempty"`
	Opening     map[string]string `json:"opening_balance"`
}

// PeriodDTO represents a fiscal period window.
type PeriodDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Active bool   `json:"active"`
}

// LeaveTypeDTO represents a leave type master row.
type LeaveTypeDTO struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	DayValue   string `json:"day_value"`
	IsHalf     bool   `json:"is_half"`
	ParentCode string `json:"parent_code,omitempty"`
	Active     bool   `json:"active"`
}

// HolidayDTO represents one non-working date.
type HolidayDTO struct {
	Date string `json:"date"`
}

// AllocationMetaDTO explains how an allocation was reduced, if it was.
type AllocationMetaDTO struct {
	Original  string `json:"original"`
	Effective string `json:"effective"`
	Applied   bool   `json:"applied"`
	Reason    string `json:"reason,omitempty"`
}

// PeriodBalanceDTO is one period row of an employee's ledger. Amounts are
// display-rounded decimal strings keyed by leave code.
type PeriodBalanceDTO struct {
	PeriodID   string `json:"period_id"`
	PeriodName string `json:"period_name"`
	Start      string `json:"start"`
	End        string `json:"end"`

	Starting   map[string]string `json:"starting"`
	Allocation map[string]string `json:"allocation"`
	Used       map[string]string `json:"used"`
	Ending     map[string]string `json:"ending"`

	AllocationMeta map[string]AllocationMetaDTO `json:"allocation_meta,omitempty"`
}

// BalanceDTO is an employee's full multi-period ledger.
type BalanceDTO struct {
	EmployeeID  string             `json:"employee_id"`
	Name        string             `json:"name"`
	JoiningDate *string            `json:"joining_date,omitempty"`
	CalcDate    string             `json:"calc_date"`
	Periods     []PeriodBalanceDTO `json:"periods"`
}

// CurrentBalanceDTO is the single-period view for a point-in-time query.
type CurrentBalanceDTO struct {
	EmployeeID string            `json:"employee_id"`
	Name       string            `json:"name"`
	AsOf       string            `json:"as_of"`
	PeriodID   string            `json:"period_id"`
	PeriodName string            `json:"period_name"`
	Balance    map[string]string `json:"balance"`
	Used       map[string]string `json:"used"`
}

// PeriodReportDTO is the all-employee report for one period.
type PeriodReportDTO struct {
	Period    PeriodDTO         `json:"period"`
	Employees []PeriodReportRow `json:"employees"`
	Anomalies []string          `json:"anomalies,omitempty"`
}

// PeriodReportRow is one employee's line in a period report.
type PeriodReportRow struct {
	EmployeeID string            `json:"employee_id"`
	Name       string            `json:"name"`
	Starting   map[string]string `json:"starting"`
	Allocation map[string]string `json:"allocation"`
	Used       map[string]string `json:"used"`
	Ending     map[string]string `json:"ending"`
}

// BulkBalanceReportDTO is the bulk current-balance report.
type BulkBalanceReportDTO struct {
	AsOf      string              `json:"as_of"`
	Employees []CurrentBalanceDTO `json:"employees"`
	Errors    []string            `json:"errors,omitempty"`
}

// ActivateRequest triggers the period activation job.
type ActivateRequest struct {
	PeriodID string `json:"period_id"`
}

// ActivationItemDTO is the outcome for one employee/code pair.
type ActivationItemDTO struct {
	EmployeeID string `json:"employee_id"`
	Code       string `json:"code"`
	Carry      string `json:"carry"`
	Updated    bool   `json:"updated"`
	Error      string `json:"error,omitempty"`
}

// ActivationReportDTO is the full result of an activation run.
type ActivationReportDTO struct {
	RunID     string              `json:"run_id"`
	PeriodID  string              `json:"period_id"`
	PriorID   string              `json:"prior_id,omitempty"`
	Processed int                 `json:"processed"`
	Failed    int                 `json:"failed"`
	Items     []ActivationItemDTO `json:"items"`
	Anomalies []string            `json:"anomalies,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(p leave.Profile) EmployeeDTO {
	opening := make(map[string]string, len(p.OpeningBalance))
	for code, v := range p.OpeningBalance {
		opening[string(code)] = v.String()
	}
	return EmployeeDTO{
		ID:          string(p.EmployeeID),
		Name:        p.Name,
		JoiningDate: dateStr(p.JoinDate),
		LeftDate:    dateStr(p.LeftDate),
		CalcDate:    dateStr(p.CalcDate),
		Opening:     opening,
	}
}

func toPeriodDTO(p leave.PeriodWindow) PeriodDTO {
	return PeriodDTO{
		ID:     p.ID,
		Name:   p.Name,
		Start:  p.Start.String(),
		End:    p.End.String(),
		Active: p.Active,
	}
}

func toPeriodBalanceDTO(pl leave.PeriodLedger) PeriodBalanceDTO {
	dto := PeriodBalanceDTO{
		PeriodID:   pl.PeriodID,
		PeriodName: pl.PeriodName,
		Start:      pl.PeriodStart.String(),
		End:        pl.PeriodEnd.String(),
		Starting:   displayAmounts(pl.Starting),
		Allocation: displayAmounts(pl.Allocation),
		Used:       displayAmounts(pl.Used),
		Ending:     displayAmounts(pl.Ending),
	}
	if len(pl.AllocationMeta) > 0 {
		dto.AllocationMeta = make(map[string]AllocationMetaDTO, len(pl.AllocationMeta))
		for code, m := range pl.AllocationMeta {
			dto.AllocationMeta[string(code)] = AllocationMetaDTO{
				Original:  leave.FormatAmount(m.Original),
				Effective: leave.FormatAmount(m.Effective),
				Applied:   m.Applied,
				Reason:    m.Reason,
			}
		}
	}
	return dto
}

func toBalanceDTO(el leave.EmployeeLedger) BalanceDTO {
	periods := make([]PeriodBalanceDTO, len(el.Periods))
	for i, pl := range el.Periods {
		periods[i] = toPeriodBalanceDTO(pl)
	}
	return BalanceDTO{
		EmployeeID:  string(el.EmployeeID),
		Name:        el.Name,
		JoiningDate: dateStr(el.JoinDate),
		CalcDate:    el.CalcDate.String(),
		Periods:     periods,
	}
}

func toActivationReportDTO(r leave.ActivationReport) ActivationReportDTO {
	items := make([]ActivationItemDTO, len(r.Items))
	for i, it := range r.Items {
		items[i] = ActivationItemDTO{
			EmployeeID: string(it.EmployeeID),
			Code:       string(it.Code),
			Carry:      it.Carry.String(),
			Updated:    it.Updated,
			Error:      it.Err,
		}
	}
	return ActivationReportDTO{
		RunID:     r.RunID,
		PeriodID:  r.PeriodID,
		PriorID:   r.PriorID,
		Processed: r.Processed,
		Failed:    r.Failed,
		Items:     items,
		Anomalies: anomalyStrings(r.Anomalies),
	}
}

// displayAmounts rounds per-code amounts for presentation and renders
// them as decimal strings. Carried balances are never rounded; only this
// outward-facing copy is.
func displayAmounts(m map[leave.Code]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(m))
	for code, v := range m {
		out[string(code)] = leave.FormatAmount(leave.DisplayRound(code, v))
	}
	return out
}

func anomalyStrings(anomalies []leave.Anomaly) []string {
	if len(anomalies) == 0 {
		return nil
	}
	out := make([]string, len(anomalies))
	for i, a := range anomalies {
		out[i] = a.String()
	}
	return out
}

func dateStr(d *leave.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
