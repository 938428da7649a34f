package performance_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/internal/performance"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type MockService struct {
	lastQuery    performance.LeaderboardQuery
	lastEmployee string
	err          error
}

func (m *MockService) Leaderboard(_ context.Context, q performance.LeaderboardQuery) (*performance.Leaderboard, error) {
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	return &performance.Leaderboard{
		TopPerformers:    []*performance.EmployeePerformance{{EmployeeID: "EMP001", Rank: 1, Score: 95}},
		BottomPerformers: []*performance.EmployeePerformance{{EmployeeID: "EMP001", Rank: 1, Score: 95}},
		Statistics:       performance.Statistics{TotalEmployees: 1, ExcellentPerformers: 1},
	}, nil
}

func (m *MockService) EmployeePerformance(_ context.Context, employeeID string, q performance.LeaderboardQuery) (*performance.EmployeePerformance, error) {
	m.lastEmployee = employeeID
	m.lastQuery = q
	if employeeID != "EMP001" {
		return nil, internal.NewNotFoundError("Employee not found", internal.ErrCodeEmployeeNotFound)
	}
	return &performance.EmployeePerformance{EmployeeID: "EMP001", Score: 95}, nil
}

var _ = Describe("Performance Handler", func() {
	var (
		svc    *MockService
		router chi.Router
	)

	BeforeEach(func() {
		svc = &MockService{}
		router = chi.NewRouter()
		router.Route("/leaderboard", performance.NewHandler(svc).Routes)
	})

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("should return the leaderboard", func() {
		// When
		rec := get("/leaderboard?period=CUSTOM&startDate=2024-03-01&endDate=2024-03-31&department=Warehouse")

		// Then
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(svc.lastQuery.Period).To(Equal(performance.PeriodCustom))
		Expect(svc.lastQuery.StartDate).To(Equal("2024-03-01"))
		Expect(svc.lastQuery.Department).To(Equal("Warehouse"))

		var board performance.Leaderboard
		Expect(json.Unmarshal(rec.Body.Bytes(), &board)).To(Succeed())
		Expect(board.TopPerformers[0].EmployeeID).To(Equal("EMP001"))
		Expect(board.Statistics.ExcellentPerformers).To(Equal(1))
	})

	It("should map validation errors to 400", func() {
		svc.err = internal.NewValidationError("period must be one of WEEKLY, MONTHLY, YEARLY, CUSTOM", internal.ErrCodeInvalidPeriod)

		rec := get("/leaderboard?period=HOURLY")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeInvalidPeriod)))
	})

	It("should return a single employee's performance", func() {
		rec := get("/leaderboard/employees/EMP001?period=WEEKLY")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(svc.lastEmployee).To(Equal("EMP001"))
		Expect(svc.lastQuery.Period).To(Equal(performance.PeriodWeekly))
	})

	It("should return 404 for unknown employees", func() {
		rec := get("/leaderboard/employees/EMP404")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
})
