/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupled from the
  engine's decimal-based domain model. Monetary and hour fields convert
  decimal -> float at this boundary, rounded to two places; the engine
  itself never touches floats.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator tags; handlers run the
  validator before touching the engine.
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// PUNCHES
// =============================================================================

type PunchDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Timestamp  string `json:"timestamp"`
	IsEntry    bool   `json:"is_entry"`
}

type PunchResponse struct {
	Punch   PunchDTO `json:"punch"`
	Message string   `json:"message"`
}

// =============================================================================
// DAILY SUMMARIES
// =============================================================================

type DailySummaryDTO struct {
	EmployeeID           string  `json:"employee_id"`
	Date                 string  `json:"date"`
	TimeIn               *string `json:"time_in,omitempty"`
	TimeOut              *string `json:"time_out,omitempty"`
	TotalHours           float64 `json:"total_hours"`
	LateMinutes          int     `json:"late_minutes"`
	LateDeductionMinutes int     `json:"late_deduction_minutes"`
	UndertimeMinutes     int     `json:"undertime_minutes"`
	GrossPay             float64 `json:"gross_pay"`
	Deductions           float64 `json:"deductions"`
	NetPay               float64 `json:"net_pay"`
}

// =============================================================================
// PAYROLL PERIODS
// =============================================================================

type PayrollPeriodDTO struct {
	EmployeeID  string  `json:"employee_id"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	PeriodType  string  `json:"period_type"`
	TotalHours  float64 `json:"total_hours"`
	GrossPay    float64 `json:"gross_pay"`
	Deductions  float64 `json:"deductions"`
	Bonus       float64 `json:"bonus"`
	NetPay      float64 `json:"net_pay"`
	HourlyRate  float64 `json:"hourly_rate"`
	IsFinalized bool    `json:"is_finalized"`
}

// GeneratePayrollRequest asks for aggregation of an explicit range.
type GeneratePayrollRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Force     bool   `json:"force"`
}

// FinalizePayrollRequest flips the one-way finalization latch.
type FinalizePayrollRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// =============================================================================
// WORK CONFIGURATION
// =============================================================================

type WorkConfigurationDTO struct {
	EmployeeID     string  `json:"employee_id"`
	HoursPerDay    float64 `json:"hours_per_day"`
	HourlyRate     float64 `json:"hourly_rate"`
	CutoffSchedule string  `json:"cutoff_schedule"`
	Bonus          float64 `json:"bonus"`
}

// UpdateConfigurationRequest replaces an employee's settings.
type UpdateConfigurationRequest struct {
	HoursPerDay    float64 `json:"hours_per_day" validate:"required,gt=0,lte=24"`
	HourlyRate     float64 `json:"hourly_rate" validate:"gte=0"`
	CutoffSchedule string  `json:"cutoff_schedule" validate:"required,oneof=semi_monthly weekly daily"`
	Bonus          float64 `json:"bonus" validate:"gte=0"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func toPunchDTO(p payroll.PunchEvent) PunchDTO {
	return PunchDTO{
		ID:         p.ID,
		EmployeeID: p.EmployeeID,
		Timestamp:  p.At.Format(time.RFC3339),
		IsEntry:    p.IsEntry,
	}
}

func toDailySummaryDTO(s payroll.DailySummary) DailySummaryDTO {
	dto := DailySummaryDTO{
		EmployeeID:           s.EmployeeID,
		Date:                 s.Date.String(),
		TotalHours:           money(s.TotalHours),
		LateMinutes:          s.LateMinutes,
		LateDeductionMinutes: s.LateDeductionMinutes,
		UndertimeMinutes:     s.UndertimeMinutes,
		GrossPay:             money(s.GrossPay),
		Deductions:           money(s.Deductions),
		NetPay:               money(s.NetPay),
	}
	if s.TimeIn != nil {
		v := s.TimeIn.String()
		dto.TimeIn = &v
	}
	if s.TimeOut != nil {
		v := s.TimeOut.String()
		dto.TimeOut = &v
	}
	return dto
}

func toPayrollPeriodDTO(p payroll.PayrollPeriod, cfg payroll.WorkConfiguration) PayrollPeriodDTO {
	return PayrollPeriodDTO{
		EmployeeID:  p.EmployeeID,
		PeriodStart: p.Start.String(),
		PeriodEnd:   p.End.String(),
		PeriodType:  string(p.PeriodType),
		TotalHours:  money(p.TotalHours),
		GrossPay:    money(p.TotalGrossPay),
		Deductions:  money(p.TotalDeductions),
		Bonus:       money(p.Bonus),
		NetPay:      money(p.NetPay),
		HourlyRate:  money(cfg.HourlyRate),
		IsFinalized: p.Finalized,
	}
}

func toConfigurationDTO(cfg payroll.WorkConfiguration) WorkConfigurationDTO {
	return WorkConfigurationDTO{
		EmployeeID:     cfg.EmployeeID,
		HoursPerDay:    money(cfg.HoursPerDay),
		HourlyRate:     money(cfg.HourlyRate),
		CutoffSchedule: string(cfg.Cutoff),
		Bonus:          money(cfg.Bonus),
	}
}
