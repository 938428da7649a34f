package performance_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/internal/attendance"
	"github.com/frahmantamala/attendance-engine/internal/identity"
	"github.com/frahmantamala/attendance-engine/internal/performance"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type MockRecordSource struct {
	mu       sync.Mutex
	records  map[string][]*attendance.Record
	err      error
	delay    time.Duration
	inflight atomic.Int32
	peak     atomic.Int32
	lastEnd  time.Time
}

func (m *MockRecordSource) FindByEmployee(_ context.Context, employeeID string, _, end time.Time) ([]*attendance.Record, error) {
	n := m.inflight.Add(1)
	defer m.inflight.Add(-1)
	for {
		peak := m.peak.Load()
		if n <= peak || m.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastEnd = end
	if m.err != nil {
		return nil, m.err
	}
	return m.records[employeeID], nil
}

type MockEmployeeDirectory struct {
	employees      []*identity.Employee
	listErr        error
	lastDepartment string
	listCalls      int
}

func (m *MockEmployeeDirectory) ListActive(_ context.Context, department string) ([]*identity.Employee, error) {
	m.listCalls++
	m.lastDepartment = department
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*identity.Employee
	for _, e := range m.employees {
		if department == "" || e.Department == department {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *MockEmployeeDirectory) FindByEmployeeID(_ context.Context, employeeID string) (*identity.Employee, error) {
	for _, e := range m.employees {
		if e.EmployeeID == employeeID {
			return e, nil
		}
	}
	return nil, identity.ErrEmployeeNotFound
}

var _ = Describe("Performance Service", func() {
	var (
		records   *MockRecordSource
		directory *MockEmployeeDirectory
		service   *performance.Service
		ctx       context.Context
		logger    *slog.Logger
	)

	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	days := func(n int, status attendance.Status) []*attendance.Record {
		out := make([]*attendance.Record, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, closed(status, 480, 0, true))
		}
		return out
	}

	newService := func(cfg performance.Config) *performance.Service {
		return performance.NewService(records, directory, cfg, logger,
			performance.WithClock(func() time.Time { return now }),
			performance.WithLocation(time.UTC),
		)
	}

	BeforeEach(func() {
		ctx = context.Background()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		directory = &MockEmployeeDirectory{employees: []*identity.Employee{
			{ID: "e1", EmployeeID: "EMP001", FullName: "Ayu Lestari", Department: "Operations"},
			{ID: "e2", EmployeeID: "EMP002", FullName: "Budi Santoso", Department: "Warehouse"},
			{ID: "e3", EmployeeID: "EMP003", FullName: "Citra Dewi", Department: "Operations"},
		}}
		records = &MockRecordSource{records: map[string][]*attendance.Record{
			"e1": days(8, attendance.StatusOnTime),
			"e2": days(4, attendance.StatusLate),
			"e3": days(6, attendance.StatusOnTime),
		}}
		service = newService(performance.Config{Concurrency: 4, CohortSize: 10})
	})

	Describe("Leaderboard", func() {
		It("should rank every active employee over the week", func() {
			// When
			board, err := service.Leaderboard(ctx, performance.LeaderboardQuery{Period: performance.PeriodWeekly})

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(board.TopPerformers).To(HaveLen(3))
			Expect(board.TopPerformers[0].EmployeeID).To(Equal("EMP001"))
			Expect(board.TopPerformers[1].EmployeeID).To(Equal("EMP003"))
			Expect(board.TopPerformers[2].EmployeeID).To(Equal("EMP002"))
			Expect(board.BottomPerformers[0].EmployeeID).To(Equal("EMP002"))
			for i, p := range board.TopPerformers {
				Expect(p.Rank).To(Equal(i + 1))
				Expect(p.TotalDays).To(Equal(8))
			}
			Expect(board.Statistics.TotalEmployees).To(Equal(3))
			Expect(board.Period.StartDate).To(BeTemporally("==", time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC)))
		})

		It("should query the store with an exclusive end at the next midnight", func() {
			_, err := service.Leaderboard(ctx, performance.LeaderboardQuery{Period: performance.PeriodWeekly})

			Expect(err).NotTo(HaveOccurred())
			Expect(records.lastEnd).To(BeTemporally("==", time.Date(2024, time.March, 16, 0, 0, 0, 0, time.UTC)))
		})

		It("should filter by department", func() {
			board, err := service.Leaderboard(ctx, performance.LeaderboardQuery{Department: "Operations"})

			Expect(err).NotTo(HaveOccurred())
			Expect(directory.lastDepartment).To(Equal("Operations"))
			Expect(board.Statistics.TotalEmployees).To(Equal(2))
		})

		It("should cut the cohorts to the configured size", func() {
			directory.employees = nil
			records.records = map[string][]*attendance.Record{}
			for i := 0; i < 12; i++ {
				id := fmt.Sprintf("e%02d", i)
				directory.employees = append(directory.employees, &identity.Employee{ID: id, EmployeeID: fmt.Sprintf("EMP%02d", i)})
				records.records[id] = days(i, attendance.StatusOnTime)
			}

			board, err := service.Leaderboard(ctx, performance.LeaderboardQuery{Period: performance.PeriodWeekly})

			Expect(err).NotTo(HaveOccurred())
			Expect(board.TopPerformers).To(HaveLen(10))
			Expect(board.BottomPerformers).To(HaveLen(10))
			Expect(board.TopPerformers[0].Rank).To(Equal(1))
			Expect(board.BottomPerformers[0].Rank).To(Equal(12))
			Expect(board.BottomPerformers[0].AttendedDays).To(Equal(0))
			Expect(board.Statistics.TotalEmployees).To(Equal(12))
		})

		It("should keep directory order for equal scores", func() {
			records.records["e2"] = days(8, attendance.StatusOnTime)
			records.records["e3"] = days(8, attendance.StatusOnTime)

			board, err := service.Leaderboard(ctx, performance.LeaderboardQuery{Period: performance.PeriodWeekly})

			Expect(err).NotTo(HaveOccurred())
			Expect(board.TopPerformers[0].EmployeeID).To(Equal("EMP001"))
			Expect(board.TopPerformers[1].EmployeeID).To(Equal("EMP002"))
			Expect(board.TopPerformers[2].EmployeeID).To(Equal("EMP003"))
		})

		It("should bound concurrent record fetches", func() {
			directory.employees = nil
			for i := 0; i < 10; i++ {
				directory.employees = append(directory.employees, &identity.Employee{ID: fmt.Sprintf("x%d", i)})
			}
			records.delay = 5 * time.Millisecond
			service = newService(performance.Config{Concurrency: 2, CohortSize: 10})

			_, err := service.Leaderboard(ctx, performance.LeaderboardQuery{})

			Expect(err).NotTo(HaveOccurred())
			Expect(records.peak.Load()).To(BeNumerically("<=", 2))
		})

		It("should reject invalid periods before touching storage", func() {
			_, err := service.Leaderboard(ctx, performance.LeaderboardQuery{Period: "HOURLY"})

			Expect(internal.HasCode(err, internal.ErrCodeInvalidPeriod)).To(BeTrue())
			Expect(directory.listCalls).To(Equal(0))
		})

		It("should surface storage failures as internal errors", func() {
			records.err = errors.New("connection reset")

			_, err := service.Leaderboard(ctx, performance.LeaderboardQuery{})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})

		It("should surface directory failures as internal errors", func() {
			directory.listErr = errors.New("connection reset")

			_, err := service.Leaderboard(ctx, performance.LeaderboardQuery{})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})

	Describe("EmployeePerformance", func() {
		It("should score a single employee by business id", func() {
			perf, err := service.EmployeePerformance(ctx, "EMP003", performance.LeaderboardQuery{Period: performance.PeriodWeekly})

			Expect(err).NotTo(HaveOccurred())
			Expect(perf.EmployeeName).To(Equal("Citra Dewi"))
			Expect(perf.AttendedDays).To(Equal(6))
			Expect(perf.AbsentDays).To(Equal(2))
			Expect(perf.Rank).To(Equal(0))
		})

		It("should return not found for unknown employees", func() {
			_, err := service.EmployeePerformance(ctx, "EMP404", performance.LeaderboardQuery{})

			Expect(internal.HasCode(err, internal.ErrCodeEmployeeNotFound)).To(BeTrue())
		})
	})
})
