package performance_test

import (
	"time"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/internal/attendance"
	"github.com/frahmantamala/attendance-engine/internal/identity"
	"github.com/frahmantamala/attendance-engine/internal/performance"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func intPtr(i int) *int { return &i }

func closed(status attendance.Status, worked, overtime int, completed bool) *attendance.Record {
	out := time.Date(2024, time.March, 1, 17, 0, 0, 0, time.UTC)
	return &attendance.Record{
		Status:              status,
		ClockOutTime:        &out,
		WorkDurationMinutes: intPtr(worked),
		OvertimeMinutes:     overtime,
		ShiftCompleted:      completed,
	}
}

func open(status attendance.Status) *attendance.Record {
	return &attendance.Record{Status: status}
}

var _ = Describe("Performance", func() {
	march := func(day int) time.Time {
		return time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC)
	}
	endOf := func(day int) time.Time {
		return time.Date(2024, time.March, day, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	}

	emp := &identity.Employee{
		ID:         "e1",
		EmployeeID: "EMP001",
		FullName:   "Ayu Lestari",
		Department: "Operations",
		Position:   "Supervisor",
	}

	Describe("CountCalendarDays", func() {
		It("should count every day inclusively, weekends included", func() {
			Expect(performance.CountCalendarDays(march(1), endOf(7))).To(Equal(7))
		})

		It("should count a single day", func() {
			Expect(performance.CountCalendarDays(march(4), endOf(4))).To(Equal(1))
		})

		It("should return zero for an inverted range", func() {
			Expect(performance.CountCalendarDays(march(5), endOf(4))).To(Equal(0))
		})

		It("should count across month ends", func() {
			start := time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)
			Expect(performance.CountCalendarDays(start, endOf(1))).To(Equal(3))
		})
	})

	Describe("Score", func() {
		DescribeTable("weighted score",
			func(rates performance.Rates, overtimeHours, expected float64) {
				Expect(performance.Score(rates, overtimeHours)).To(BeNumerically("~", expected, 1e-9))
			},
			Entry("perfect rates without overtime", performance.Rates{AttendanceRate: 100, OnTimeRate: 100, CompletionRate: 100}, 0.0, 95.0),
			Entry("one overtime hour adds 2.5 points", performance.Rates{AttendanceRate: 100, OnTimeRate: 100, CompletionRate: 100}, 1.0, 97.5),
			Entry("clamped at 100", performance.Rates{AttendanceRate: 100, OnTimeRate: 100, CompletionRate: 100}, 4.0, 100.0),
			Entry("overtime bonus alone is capped", performance.Rates{}, 100.0, 25.0),
			Entry("mixed rates", performance.Rates{AttendanceRate: 50, OnTimeRate: 20, CompletionRate: 40}, 0.0, 36.0),
		)
	})

	Describe("Calculate", func() {
		It("should roll records into rates and a score", func() {
			records := []*attendance.Record{
				closed(attendance.StatusCompleted, 480, 0, true),
				closed(attendance.StatusOvertime, 540, 60, true),
				closed(attendance.StatusEarlyDeparture, 300, 0, false),
				open(attendance.StatusLate),
				open(attendance.StatusOnTime),
			}

			perf := performance.Calculate(emp, records, march(1), endOf(10))

			Expect(perf.EmployeeID).To(Equal("EMP001"))
			Expect(perf.EmployeeName).To(Equal("Ayu Lestari"))
			Expect(perf.TotalDays).To(Equal(10))
			Expect(perf.AttendedDays).To(Equal(5))
			Expect(perf.AbsentDays).To(Equal(5))
			Expect(perf.LateDays).To(Equal(1))
			Expect(perf.OnTimeDays).To(Equal(1))
			Expect(perf.CompletedShifts).To(Equal(2))
			Expect(perf.IncompleteShifts).To(Equal(3))
			Expect(perf.OvertimeHours).To(BeNumerically("~", 1.0, 1e-9))
			Expect(perf.TotalWorkMinutes).To(Equal(1320))
			Expect(perf.AverageWorkHours).To(BeNumerically("~", 4.4, 1e-9))
			Expect(perf.AttendanceRate).To(BeNumerically("~", 50.0, 1e-9))
			Expect(perf.OnTimeRate).To(BeNumerically("~", 20.0, 1e-9))
			Expect(perf.CompletionRate).To(BeNumerically("~", 40.0, 1e-9))
			Expect(perf.Score).To(BeNumerically("~", 38.5, 1e-9))
			Expect(perf.Rank).To(Equal(0))
			Expect(perf.Trend).To(Equal(performance.TrendStable))
		})

		It("should give full rates to a perfect month", func() {
			records := make([]*attendance.Record, 0, 20)
			for i := 0; i < 20; i++ {
				records = append(records, closed(attendance.StatusOnTime, 480, 0, true))
			}

			perf := performance.Calculate(emp, records, march(1), endOf(20))

			Expect(perf.AttendanceRate).To(Equal(100.0))
			Expect(perf.OnTimeRate).To(Equal(100.0))
			Expect(perf.CompletionRate).To(Equal(100.0))
			Expect(perf.Score).To(Equal(95.0))
		})

		It("should reach the cap with enough overtime", func() {
			records := make([]*attendance.Record, 0, 20)
			for i := 0; i < 20; i++ {
				records = append(records, closed(attendance.StatusOnTime, 600, 120, true))
			}

			perf := performance.Calculate(emp, records, march(1), endOf(20))

			Expect(perf.Score).To(Equal(100.0))
		})

		It("should round rates to one decimal", func() {
			records := []*attendance.Record{closed(attendance.StatusOnTime, 480, 0, true)}

			perf := performance.Calculate(emp, records, march(1), endOf(3))

			Expect(perf.AttendanceRate).To(BeNumerically("~", 33.3, 1e-9))
		})

		It("should handle an employee with no records", func() {
			perf := performance.Calculate(emp, nil, march(1), endOf(7))

			Expect(perf.AttendedDays).To(Equal(0))
			Expect(perf.AbsentDays).To(Equal(7))
			Expect(perf.OnTimeRate).To(Equal(0.0))
			Expect(perf.CompletionRate).To(Equal(0.0))
			Expect(perf.AverageWorkHours).To(Equal(0.0))
			Expect(perf.Score).To(Equal(0.0))
		})

		It("should keep negative absences raw but floor them for display", func() {
			records := []*attendance.Record{
				closed(attendance.StatusCompleted, 480, 0, true),
				closed(attendance.StatusCompleted, 480, 0, true),
			}

			perf := performance.Calculate(emp, records, march(1), endOf(1))

			Expect(perf.AbsentDays).To(Equal(-1))
			Expect(perf.DisplayAbsentDays()).To(Equal(0))
		})
	})

	Describe("Rank", func() {
		It("should order by score and number from one", func() {
			a := &performance.EmployeePerformance{EmployeeID: "A", TotalDays: 7, Score: 80}
			b := &performance.EmployeePerformance{EmployeeID: "B", TotalDays: 7, Score: 90}
			c := &performance.EmployeePerformance{EmployeeID: "C", TotalDays: 7, Score: 80}
			empty := &performance.EmployeePerformance{EmployeeID: "D", TotalDays: 0, Score: 99}

			ranked := performance.Rank([]*performance.EmployeePerformance{a, nil, b, empty, c})

			Expect(ranked).To(HaveLen(3))
			Expect(ranked[0].EmployeeID).To(Equal("B"))
			Expect(ranked[1].EmployeeID).To(Equal("A"))
			Expect(ranked[2].EmployeeID).To(Equal("C"))
			for i, p := range ranked {
				Expect(p.Rank).To(Equal(i + 1))
			}
		})
	})

	Describe("Cohorts", func() {
		build := func(n int) []*performance.EmployeePerformance {
			perfs := make([]*performance.EmployeePerformance, 0, n)
			for i := 0; i < n; i++ {
				perfs = append(perfs, &performance.EmployeePerformance{TotalDays: 30, Score: float64(100 - i)})
			}
			return performance.Rank(perfs)
		}

		It("should take the top ten and the bottom ten worst first", func() {
			top, bottom := performance.Cohorts(build(25), 10)

			Expect(top).To(HaveLen(10))
			Expect(top[0].Rank).To(Equal(1))
			Expect(top[9].Rank).To(Equal(10))
			Expect(bottom).To(HaveLen(10))
			Expect(bottom[0].Rank).To(Equal(25))
			Expect(bottom[9].Rank).To(Equal(16))
		})

		It("should overlap when the cohort is small", func() {
			top, bottom := performance.Cohorts(build(3), 10)

			Expect(top).To(HaveLen(3))
			Expect(bottom).To(HaveLen(3))
			Expect(bottom[0].Rank).To(Equal(3))
			Expect(bottom[2].Rank).To(Equal(1))
		})

		It("should return empty lists for an empty cohort", func() {
			top, bottom := performance.Cohorts(nil, 10)

			Expect(top).To(BeEmpty())
			Expect(bottom).To(BeEmpty())
		})
	})

	Describe("Summarize", func() {
		It("should bucket scores and average rates", func() {
			perfs := []*performance.EmployeePerformance{
				{Score: 95, AttendanceRate: 100, OnTimeRate: 90, CompletionRate: 100},
				{Score: 90, AttendanceRate: 90, OnTimeRate: 80, CompletionRate: 90},
				{Score: 89.9, AttendanceRate: 80, OnTimeRate: 70, CompletionRate: 80},
				{Score: 70, AttendanceRate: 70, OnTimeRate: 60, CompletionRate: 70},
				{Score: 69.9, AttendanceRate: 60, OnTimeRate: 50, CompletionRate: 60},
			}

			stats := performance.Summarize(perfs)

			Expect(stats.TotalEmployees).To(Equal(5))
			Expect(stats.ExcellentPerformers).To(Equal(2))
			Expect(stats.GoodPerformers).To(Equal(2))
			Expect(stats.PoorPerformers).To(Equal(1))
			Expect(stats.AverageAttendanceRate).To(BeNumerically("~", 80.0, 1e-9))
			Expect(stats.AverageOnTimeRate).To(BeNumerically("~", 70.0, 1e-9))
			Expect(stats.AverageCompletionRate).To(BeNumerically("~", 80.0, 1e-9))
		})

		It("should return zeros for an empty cohort", func() {
			Expect(performance.Summarize(nil)).To(Equal(performance.Statistics{}))
		})
	})

	Describe("ResolvePeriod", func() {
		wib := time.FixedZone("WIB", 7*3600)
		now := time.Date(2024, time.March, 15, 14, 30, 0, 0, wib)
		lastMillisecond := func(y int, m time.Month, d int) time.Time {
			return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), wib)
		}

		DescribeTable("rolling periods",
			func(tag performance.PeriodTag, expectedStart time.Time) {
				p, err := performance.ResolvePeriod(performance.LeaderboardQuery{Period: tag}, now)

				Expect(err).NotTo(HaveOccurred())
				Expect(p.StartDate).To(BeTemporally("==", expectedStart))
				Expect(p.EndDate).To(BeTemporally("==", lastMillisecond(2024, time.March, 15)))
				Expect(p.StartDate.Location()).To(Equal(wib))
			},
			Entry("weekly", performance.PeriodWeekly, time.Date(2024, time.March, 8, 0, 0, 0, 0, wib)),
			Entry("monthly", performance.PeriodMonthly, time.Date(2024, time.February, 14, 0, 0, 0, 0, wib)),
			Entry("yearly", performance.PeriodYearly, time.Date(2023, time.March, 16, 0, 0, 0, 0, wib)),
			Entry("empty defaults to monthly", performance.PeriodTag(""), time.Date(2024, time.February, 14, 0, 0, 0, 0, wib)),
			Entry("lower case tags", performance.PeriodTag("weekly"), time.Date(2024, time.March, 8, 0, 0, 0, 0, wib)),
		)

		It("should resolve a custom range with an inclusive end", func() {
			p, err := performance.ResolvePeriod(performance.LeaderboardQuery{
				Period:    performance.PeriodCustom,
				StartDate: "2024-03-01",
				EndDate:   "2024-03-10",
			}, now)

			Expect(err).NotTo(HaveOccurred())
			Expect(p.StartDate).To(BeTemporally("==", time.Date(2024, time.March, 1, 0, 0, 0, 0, wib)))
			Expect(p.EndDate).To(BeTemporally("==", lastMillisecond(2024, time.March, 10)))
			Expect(performance.CountCalendarDays(p.StartDate, p.EndDate)).To(Equal(10))
		})

		It("should require both dates for a custom range", func() {
			_, err := performance.ResolvePeriod(performance.LeaderboardQuery{
				Period:    performance.PeriodCustom,
				StartDate: "2024-03-01",
			}, now)

			Expect(internal.HasCode(err, internal.ErrCodeInvalidPeriod)).To(BeTrue())
		})

		It("should reject a start after the end", func() {
			_, err := performance.ResolvePeriod(performance.LeaderboardQuery{
				Period:    performance.PeriodCustom,
				StartDate: "2024-03-10",
				EndDate:   "2024-03-01",
			}, now)

			Expect(internal.HasCode(err, internal.ErrCodeInvalidPeriod)).To(BeTrue())
		})

		It("should reject unknown period tags", func() {
			_, err := performance.ResolvePeriod(performance.LeaderboardQuery{Period: "DAILY"}, now)

			Expect(internal.HasCode(err, internal.ErrCodeInvalidPeriod)).To(BeTrue())
		})

		It("should reject malformed dates", func() {
			_, err := performance.ResolvePeriod(performance.LeaderboardQuery{
				Period:    performance.PeriodCustom,
				StartDate: "03/01/2024",
				EndDate:   "2024-03-10",
			}, now)

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})
})
