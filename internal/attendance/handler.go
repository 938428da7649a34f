package attendance

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/attendance-engine/internal/identity"
	"github.com/frahmantamala/attendance-engine/internal/transport"
	"github.com/frahmantamala/attendance-engine/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Verify(ctx context.Context, req identity.CredentialRequest) (*identity.VerifiedEmployee, error)
	ClockIn(ctx context.Context, dto ClockInDTO) (*Record, error)
	ClockOut(ctx context.Context, dto ClockOutDTO) (*Record, error)
	GetTodayAttendance(ctx context.Context) ([]*Record, error)
	GetCurrentlyPresent(ctx context.Context) ([]*Record, error)
	GetAttendanceByID(ctx context.Context, id string) (*Record, error)
	GetEmployeeAttendance(ctx context.Context, employeeID string, q RangeQuery) ([]*Record, error)
	GetAttendanceReport(ctx context.Context, q ReportQuery) (*Report, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// KioskRoutes are reachable without an admin token.
func (h *Handler) KioskRoutes(r chi.Router) {
	r.Post("/verify", h.Verify)
	r.Post("/clock-in", h.ClockIn)
	r.Post("/clock-out", h.ClockOut)
}

func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/today", h.Today)
	r.Get("/present", h.Present)
	r.Get("/report", h.Report)
	r.Get("/employee/{employeeId}", h.EmployeeAttendance)
	r.Get("/{id}", h.GetAttendance)
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req identity.CredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warn("Verify: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	emp, err := h.Service.Verify(r.Context(), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"verified": true,
		"employee": emp,
	})
}

func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	var dto ClockInDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Warn("ClockIn: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.ClockIn(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	var dto ClockOutDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Warn("ClockOut: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.ClockOut(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.GetTodayAttendance(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"attendances": records})
}

func (h *Handler) Present(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.GetCurrentlyPresent(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"attendances": records})
}

func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.GetAttendanceByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) EmployeeAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	q := RangeQuery{
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
	}

	records, err := h.Service.GetEmployeeAttendance(r.Context(), employeeID, q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"attendances": records})
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	q := ReportQuery{
		RangeQuery: RangeQuery{
			StartDate: r.URL.Query().Get("startDate"),
			EndDate:   r.URL.Query().Get("endDate"),
		},
		Department: r.URL.Query().Get("department"),
	}

	report, err := h.Service.GetAttendanceReport(r.Context(), q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}
