/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the attendance/payroll engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Punches:
    POST   /api/employees/{id}/punches       Record a punch (toggle in/out)
    GET    /api/employees/{id}/punches       Recent punch log

  Summaries:
    GET    /api/employees/{id}/summary       Daily summary (?date=YYYY-MM-DD)
    GET    /api/employees/{id}/summaries     Summaries in a range (?start=&end=)

  Payroll:
    GET    /api/employees/{id}/payroll           Current-period payroll
    POST   /api/employees/{id}/payroll           Generate payroll for a range
    GET    /api/employees/{id}/payrolls          All stored periods
    POST   /api/employees/{id}/payroll/finalize  Flip the finalization latch

  Configuration:
    GET    /api/employees/{id}/configuration  Resolve (auto-provisions defaults)
    PUT    /api/employees/{id}/configuration  Replace settings

  Admin:
    POST   /api/admin/refresh  Recompute recent summaries for all employees

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (go-playground/validator for bodies)
  3. Call domain logic (engine)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (finalized period)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - refresher.go: Background summary refresh
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

const defaultPunchLogLimit = 50

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  payroll.Store
	Engine *payroll.Engine

	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new handler around the given store and engine.
func NewHandler(store payroll.Store, engine *payroll.Engine, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:    store,
		Engine:   engine,
		validate: validator.New(),
		logger:   logger,
	}
}

// =============================================================================
// PUNCH HANDLERS
// =============================================================================

// RecordPunch records a punch for an employee. Whether it is an entry or an
// exit is decided by the alternation rule, not by the caller. The body is
// optional; when present it may carry an explicit timestamp for backfill.
func (h *Handler) RecordPunch(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	at := time.Now()
	var body struct {
		Timestamp string `json:"timestamp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, body.Timestamp)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid timestamp format (use RFC 3339)", err)
			return
		}
		at = parsed
	}

	punch, err := h.Engine.RecordPunch(r.Context(), employeeID, at)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record punch", err)
		return
	}

	message := "punched out"
	if punch.IsEntry {
		message = "punched in"
	}

	writeJSON(w, http.StatusCreated, PunchResponse{
		Punch:   toPunchDTO(punch),
		Message: message,
	})
}

// ListPunches returns the most recent punches for an employee, newest first.
func (h *Handler) ListPunches(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	limit := defaultPunchLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit (must be a positive integer)", err)
			return
		}
		limit = n
	}

	punches, err := h.Store.ListRecentPunches(r.Context(), employeeID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list punches", err)
		return
	}

	dtos := make([]PunchDTO, len(punches))
	for i, p := range punches {
		dtos[i] = toPunchDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SUMMARY HANDLERS
// =============================================================================

// GetDailySummary returns the stored summary for one day (today by default).
func (h *Handler) GetDailySummary(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	day := payroll.Today()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := payroll.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		day = parsed
	}

	summary, err := h.Store.GetSummary(r.Context(), employeeID, day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get summary", err)
		return
	}
	if summary == nil {
		writeError(w, http.StatusNotFound, "No summary for this date", nil)
		return
	}

	writeJSON(w, http.StatusOK, toDailySummaryDTO(*summary))
}

// ListSummaries returns stored summaries inside an explicit date range.
// Days without punches are absent from the result, not zero-filled.
func (h *Handler) ListSummaries(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	start, err := payroll.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date (use YYYY-MM-DD)", err)
		return
	}
	end, err := payroll.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date (use YYYY-MM-DD)", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "End date precedes start date", payroll.ErrInvalidRange)
		return
	}

	summaries, err := h.Store.QuerySummaries(r.Context(), employeeID, payroll.Period{Start: start, End: end})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to query summaries", err)
		return
	}

	dtos := make([]DailySummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = toDailySummaryDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// GetCurrentPayroll computes the payroll for the period containing today,
// per the employee's cutoff schedule.
func (h *Handler) GetCurrentPayroll(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	ctx := r.Context()

	period, err := h.Engine.CurrentPayroll(ctx, employeeID, payroll.Today())
	if err != nil {
		if errors.Is(err, payroll.ErrPeriodFinalized) {
			// The stored, frozen numbers are still the right answer here.
			writeJSON(w, http.StatusOK, h.periodDTO(r, *period))
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to compute payroll", err)
		return
	}

	writeJSON(w, http.StatusOK, h.periodDTO(r, *period))
}

// GeneratePayroll aggregates an explicit date range into a payroll period.
// Finalized periods are not recomputed unless force is set.
func (h *Handler) GeneratePayroll(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var req GeneratePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	start, _ := payroll.ParseDate(req.StartDate)
	end, _ := payroll.ParseDate(req.EndDate)

	ctx := r.Context()
	var (
		period *payroll.PayrollPeriod
		err    error
	)
	if req.Force {
		period, err = h.Engine.ComputePayrollPeriodForced(ctx, employeeID, start, end)
	} else {
		period, err = h.Engine.ComputePayrollPeriod(ctx, employeeID, start, end)
	}
	if err != nil {
		switch {
		case errors.Is(err, payroll.ErrInvalidRange):
			writeError(w, http.StatusBadRequest, "End date precedes start date", err)
		case errors.Is(err, payroll.ErrPeriodFinalized):
			writeError(w, http.StatusConflict, "Period is finalized; pass force to recompute", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to generate payroll", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, h.periodDTO(r, *period))
}

// ListPayrolls returns every stored payroll period, most recent first.
func (h *Handler) ListPayrolls(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	ctx := r.Context()

	periods, err := h.Store.ListPeriods(ctx, employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list payrolls", err)
		return
	}

	cfg, err := h.Engine.Configuration(ctx, employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve configuration", err)
		return
	}

	dtos := make([]PayrollPeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPayrollPeriodDTO(p, cfg)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// FinalizePayroll flips the one-way finalization latch on a stored period.
func (h *Handler) FinalizePayroll(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var req FinalizePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	start, _ := payroll.ParseDate(req.StartDate)
	end, _ := payroll.ParseDate(req.EndDate)

	ctx := r.Context()
	if err := h.Store.FinalizePeriod(ctx, employeeID, start, end); err != nil {
		if errors.Is(err, payroll.ErrPeriodNotFound) {
			writeError(w, http.StatusNotFound, "Payroll period not found; generate it first", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to finalize payroll", err)
		return
	}

	period, err := h.Store.GetPeriod(ctx, employeeID, start, end)
	if err != nil || period == nil {
		writeError(w, http.StatusInternalServerError, "Failed to load finalized payroll", err)
		return
	}

	writeJSON(w, http.StatusOK, h.periodDTO(r, *period))
}

// =============================================================================
// CONFIGURATION HANDLERS
// =============================================================================

// GetConfiguration resolves the employee's work configuration, provisioning
// defaults on first touch.
func (h *Handler) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	cfg, err := h.Engine.Configuration(r.Context(), employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve configuration", err)
		return
	}

	writeJSON(w, http.StatusOK, toConfigurationDTO(cfg))
}

// UpdateConfiguration replaces the employee's work settings. Existing daily
// summaries are not retroactively recomputed; the next recompute of a day
// picks up the new rate.
func (h *Handler) UpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	var req UpdateConfigurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	cfg := payroll.WorkConfiguration{
		EmployeeID:  employeeID,
		HoursPerDay: decimal.NewFromFloat(req.HoursPerDay).Round(2),
		HourlyRate:  decimal.NewFromFloat(req.HourlyRate).Round(2),
		Cutoff:      payroll.ParseCutoffSchedule(req.CutoffSchedule),
		Bonus:       decimal.NewFromFloat(req.Bonus).Round(2),
	}

	if err := h.Store.SaveConfiguration(r.Context(), cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save configuration", err)
		return
	}

	writeJSON(w, http.StatusOK, toConfigurationDTO(cfg))
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// RefreshSummaries recomputes recent daily summaries for every configured
// employee. The background refresher does the same on a timer; this endpoint
// exists for manual runs.
func (h *Handler) RefreshSummaries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	employees, err := h.Store.ListConfiguredEmployees(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	refreshed := 0
	for _, employeeID := range employees {
		if err := h.Engine.RefreshRecentSummaries(ctx, employeeID, payroll.DefaultRefreshWindowDays); err != nil {
			writeError(w, http.StatusInternalServerError, "Refresh interrupted", err)
			return
		}
		refreshed++
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"refreshed_employees": refreshed,
		"window_days":         payroll.DefaultRefreshWindowDays,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// periodDTO resolves the configuration needed to decorate a period response
// with the hourly rate. Resolution failures fall back to defaults rather than
// failing the whole response.
func (h *Handler) periodDTO(r *http.Request, p payroll.PayrollPeriod) PayrollPeriodDTO {
	cfg, err := h.Engine.Configuration(r.Context(), p.EmployeeID)
	if err != nil {
		h.logger.Warn("configuration resolution failed for period response",
			"employee_id", p.EmployeeID, "error", err)
		cfg = payroll.DefaultConfiguration(p.EmployeeID)
	}
	return toPayrollPeriodDTO(p, cfg)
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
