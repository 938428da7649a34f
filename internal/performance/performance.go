package performance

import (
	"math"
	"sort"
	"time"

	"github.com/frahmantamala/attendance-engine/internal/attendance"
	"github.com/frahmantamala/attendance-engine/internal/identity"
)

// Score weights. The overtime weight applies to a bonus capped at
// MaxOvertimeBonus points before scaling.
const (
	AttendanceWeight = 0.40
	OnTimeWeight     = 0.30
	CompletionWeight = 0.25
	OvertimeWeight   = 0.05

	OvertimeBonusPerHour = 0.5
	MaxOvertimeBonus     = 5.0
	MaxScore             = 100.0

	ExcellentScore = 90.0
	GoodScore      = 70.0

	TrendStable = "stable"
)

type EmployeePerformance struct {
	EmployeeID       string  `json:"employee_id"`
	EmployeeName     string  `json:"employee_name"`
	Department       string  `json:"department"`
	Position         string  `json:"position"`
	PhotoURL         *string `json:"photo_url,omitempty"`
	TotalDays        int     `json:"total_days"`
	AttendedDays     int     `json:"attended_days"`
	AbsentDays       int     `json:"absent_days"`
	LateDays         int     `json:"late_days"`
	OnTimeDays       int     `json:"on_time_days"`
	OvertimeHours    float64 `json:"overtime_hours"`
	CompletedShifts  int     `json:"completed_shifts"`
	IncompleteShifts int     `json:"incomplete_shifts"`
	AttendanceRate   float64 `json:"attendance_rate"`
	OnTimeRate       float64 `json:"on_time_rate"`
	CompletionRate   float64 `json:"completion_rate"`
	AverageWorkHours float64 `json:"average_work_hours"`
	TotalWorkMinutes int     `json:"total_work_minutes"`
	Score            float64 `json:"score"`
	Rank             int     `json:"rank"`
	Trend            string  `json:"trend"`
}

// DisplayAbsentDays floors AbsentDays at zero. The raw value goes negative
// only when there are more records than calendar days in the range.
func (p *EmployeePerformance) DisplayAbsentDays() int {
	if p.AbsentDays < 0 {
		return 0
	}
	return p.AbsentDays
}

type Rates struct {
	AttendanceRate float64
	OnTimeRate     float64
	CompletionRate float64
}

// Score combines the rates with a capped overtime bonus. The result is
// clamped to MaxScore but not rounded.
func Score(r Rates, overtimeHours float64) float64 {
	score := r.AttendanceRate*AttendanceWeight +
		r.OnTimeRate*OnTimeWeight +
		r.CompletionRate*CompletionWeight

	bonus := math.Min(overtimeHours*OvertimeBonusPerHour, MaxOvertimeBonus)
	score += bonus * OvertimeWeight * 100

	return math.Min(score, MaxScore)
}

// CountCalendarDays counts every calendar day from start to end inclusive,
// weekends included. Dates are read in each time's own location.
func CountCalendarDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s)/(24*time.Hour)) + 1
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Calculate rolls an employee's records in [start, end] into a performance
// row. Rank is left at zero until the cohort is sorted.
func Calculate(emp *identity.Employee, records []*attendance.Record, start, end time.Time) *EmployeePerformance {
	totalDays := CountCalendarDays(start, end)
	attended := len(records)

	var late, onTime, completed, incomplete, overtimeMinutes, workMinutes int
	for _, r := range records {
		switch r.Status {
		case attendance.StatusLate:
			late++
		case attendance.StatusOnTime:
			onTime++
		}
		if r.ShiftCompleted {
			completed++
		}
		if r.ClockOutTime == nil || !r.ShiftCompleted {
			incomplete++
		}
		overtimeMinutes += r.OvertimeMinutes
		if r.WorkDurationMinutes != nil {
			workMinutes += *r.WorkDurationMinutes
		}
	}

	rates := Rates{
		AttendanceRate: percent(attended, totalDays),
		OnTimeRate:     percent(onTime, attended),
		CompletionRate: percent(completed, attended),
	}
	overtimeHours := float64(overtimeMinutes) / 60

	var avgWorkHours float64
	if attended > 0 {
		avgWorkHours = float64(workMinutes) / 60 / float64(attended)
	}

	return &EmployeePerformance{
		EmployeeID:       emp.EmployeeID,
		EmployeeName:     emp.FullName,
		Department:       emp.Department,
		Position:         emp.Position,
		PhotoURL:         emp.PhotoURL,
		TotalDays:        totalDays,
		AttendedDays:     attended,
		AbsentDays:       totalDays - attended,
		LateDays:         late,
		OnTimeDays:       onTime,
		OvertimeHours:    round1(overtimeHours),
		CompletedShifts:  completed,
		IncompleteShifts: incomplete,
		AttendanceRate:   round1(rates.AttendanceRate),
		OnTimeRate:       round1(rates.OnTimeRate),
		CompletionRate:   round1(rates.CompletionRate),
		AverageWorkHours: round1(avgWorkHours),
		TotalWorkMinutes: workMinutes,
		Score:            round1(Score(rates, overtimeHours)),
		Trend:            TrendStable,
	}
}

// Rank drops rows with no calendar days, sorts the rest by score descending
// and numbers them from 1. Equal scores keep their input order.
func Rank(perfs []*EmployeePerformance) []*EmployeePerformance {
	ranked := make([]*EmployeePerformance, 0, len(perfs))
	for _, p := range perfs {
		if p != nil && p.TotalDays > 0 {
			ranked = append(ranked, p)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i, p := range ranked {
		p.Rank = i + 1
	}
	return ranked
}

// Cohorts returns the first n ranked rows and the last n in reverse, so the
// bottom list starts with the lowest score.
func Cohorts(ranked []*EmployeePerformance, n int) (top, bottom []*EmployeePerformance) {
	if n > len(ranked) {
		n = len(ranked)
	}
	if n < 0 {
		n = 0
	}
	top = append([]*EmployeePerformance{}, ranked[:n]...)

	bottom = make([]*EmployeePerformance, 0, n)
	for i := len(ranked) - 1; i >= len(ranked)-n; i-- {
		bottom = append(bottom, ranked[i])
	}
	return top, bottom
}

type Statistics struct {
	AverageAttendanceRate float64 `json:"average_attendance_rate"`
	AverageOnTimeRate     float64 `json:"average_on_time_rate"`
	AverageCompletionRate float64 `json:"average_completion_rate"`
	TotalEmployees        int     `json:"total_employees"`
	ExcellentPerformers   int     `json:"excellent_performers"`
	GoodPerformers        int     `json:"good_performers"`
	PoorPerformers        int     `json:"poor_performers"`
}

// Summarize averages the already rounded rates of the scored cohort.
func Summarize(ranked []*EmployeePerformance) Statistics {
	stats := Statistics{TotalEmployees: len(ranked)}
	if len(ranked) == 0 {
		return stats
	}

	var attendanceSum, onTimeSum, completionSum float64
	for _, p := range ranked {
		attendanceSum += p.AttendanceRate
		onTimeSum += p.OnTimeRate
		completionSum += p.CompletionRate

		switch {
		case p.Score >= ExcellentScore:
			stats.ExcellentPerformers++
		case p.Score >= GoodScore:
			stats.GoodPerformers++
		default:
			stats.PoorPerformers++
		}
	}

	n := float64(len(ranked))
	stats.AverageAttendanceRate = round1(attendanceSum / n)
	stats.AverageOnTimeRate = round1(onTimeSum / n)
	stats.AverageCompletionRate = round1(completionSum / n)
	return stats
}

type Period struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type Leaderboard struct {
	TopPerformers    []*EmployeePerformance `json:"top_performers"`
	BottomPerformers []*EmployeePerformance `json:"bottom_performers"`
	Period           Period                 `json:"period"`
	Statistics       Statistics             `json:"statistics"`
}
