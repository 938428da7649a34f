package performance

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/attendance-engine/internal/transport"
	"github.com/frahmantamala/attendance-engine/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Leaderboard(ctx context.Context, q LeaderboardQuery) (*Leaderboard, error)
	EmployeePerformance(ctx context.Context, employeeID string, q LeaderboardQuery) (*EmployeePerformance, error)
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

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Leaderboard)
	r.Get("/employees/{employeeId}", h.Employee)
}

func queryFrom(r *http.Request) LeaderboardQuery {
	values := r.URL.Query()
	return LeaderboardQuery{
		Period:     PeriodTag(values.Get("period")),
		StartDate:  values.Get("startDate"),
		EndDate:    values.Get("endDate"),
		Department: values.Get("department"),
	}
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.Service.Leaderboard(r.Context(), queryFrom(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, board)
}

func (h *Handler) Employee(w http.ResponseWriter, r *http.Request) {
	perf, err := h.Service.EmployeePerformance(r.Context(), chi.URLParam(r, "employeeId"), queryFrom(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, perf)
}
