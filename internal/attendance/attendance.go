package attendance

import (
	"errors"
	"time"

	attendanceDatamodel "github.com/frahmantamala/attendance-engine/internal/core/datamodel/attendance"
	"github.com/frahmantamala/attendance-engine/internal/identity"
	"github.com/frahmantamala/attendance-engine/internal/shift"
)

type Status string

const (
	StatusOnTime         Status = "ON_TIME"
	StatusLate           Status = "LATE"
	StatusEarlyDeparture Status = "EARLY_DEPARTURE"
	StatusOvertime       Status = "OVERTIME"
	StatusCompleted      Status = "COMPLETED"
	StatusIncomplete     Status = "INCOMPLETE"
	StatusAbsent         Status = "ABSENT"
)

// Clock-out thresholds used when no configuration overrides them.
const (
	CompletionRatio       = 0.9
	OvertimeStatusMinutes = 30
)

var ErrAttendanceNotFound = errors.New("attendance not found")

// Record is one employee's attendance for one calendar day.
type Record struct {
	ID                  string           `json:"id"`
	EmployeeID          string           `json:"employee_id"`
	ClockInTime         time.Time        `json:"clock_in_time"`
	WorkDate            time.Time        `json:"-"`
	ClockOutTime        *time.Time       `json:"clock_out_time,omitempty"`
	ClockInMethod       identity.Method  `json:"clock_in_method"`
	ClockOutMethod      *identity.Method `json:"clock_out_method,omitempty"`
	ClockInPhoto        *string          `json:"clock_in_photo,omitempty"`
	ClockOutPhoto       *string          `json:"clock_out_photo,omitempty"`
	ClockInLocation     *string          `json:"clock_in_location,omitempty"`
	ClockOutLocation    *string          `json:"clock_out_location,omitempty"`
	Notes               *string          `json:"notes,omitempty"`
	WorkDurationMinutes *int             `json:"work_duration_minutes,omitempty"`
	OvertimeMinutes     int              `json:"overtime_minutes"`
	ShiftCompleted      bool             `json:"shift_completed"`
	Status              Status           `json:"status"`
	IsManualEntry       bool             `json:"is_manual_entry"`
	AdjustedBy          *string          `json:"adjusted_by,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// IsClockedIn reports whether the record is still open.
func (r *Record) IsClockedIn() bool {
	return r.ClockOutTime == nil
}

// Rules are the tunable clock-out thresholds.
type Rules struct {
	CompletionRatio       float64
	OvertimeStatusMinutes int
}

func DefaultRules() Rules {
	return Rules{CompletionRatio: CompletionRatio, OvertimeStatusMinutes: OvertimeStatusMinutes}
}

// DerivedFields are the values filled in at clock-out.
type DerivedFields struct {
	WorkDurationMinutes int
	OvertimeMinutes     int
	ShiftCompleted      bool
	Status              Status
}

// ComputeClockOutDerived works out duration, overtime, completion and the
// final status for a closed record. Overtime beyond the rule's threshold
// wins over completion when both hold.
func ComputeClockOutDerived(clockIn, clockOut time.Time, sh shift.Shift, rules Rules) DerivedFields {
	elapsed := clockOut.Sub(clockIn)
	if elapsed < 0 {
		elapsed = 0
	}
	worked := int(elapsed / time.Minute)

	expected := sh.ExpectedDurationMinutes()
	overtime := worked - expected
	if overtime < 0 {
		overtime = 0
	}
	completed := float64(worked) >= rules.CompletionRatio*float64(expected)

	status := StatusEarlyDeparture
	switch {
	case overtime > rules.OvertimeStatusMinutes:
		status = StatusOvertime
	case completed:
		status = StatusCompleted
	}

	return DerivedFields{
		WorkDurationMinutes: worked,
		OvertimeMinutes:     overtime,
		ShiftCompleted:      completed,
		Status:              status,
	}
}

// Apply writes the derived values onto the record.
func (d DerivedFields) Apply(r *Record) {
	worked := d.WorkDurationMinutes
	r.WorkDurationMinutes = &worked
	r.OvertimeMinutes = d.OvertimeMinutes
	r.ShiftCompleted = d.ShiftCompleted
	r.Status = d.Status
}

// DayBounds returns local midnight of t and the following midnight.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

func FromDataModel(m *attendanceDatamodel.Attendance) *Record {
	r := &Record{
		ID:                  m.ID,
		EmployeeID:          m.EmployeeID,
		ClockInTime:         m.ClockInTime,
		WorkDate:            m.WorkDate,
		ClockOutTime:        m.ClockOutTime,
		ClockInMethod:       identity.Method(m.ClockInMethod),
		ClockInPhoto:        m.ClockInPhoto,
		ClockOutPhoto:       m.ClockOutPhoto,
		ClockInLocation:     m.ClockInLocation,
		ClockOutLocation:    m.ClockOutLocation,
		Notes:               m.Notes,
		WorkDurationMinutes: m.WorkDurationMinutes,
		OvertimeMinutes:     m.OvertimeMinutes,
		ShiftCompleted:      m.ShiftCompleted,
		Status:              Status(m.Status),
		IsManualEntry:       m.IsManualEntry,
		AdjustedBy:          m.AdjustedBy,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.ClockOutMethod != nil {
		method := identity.Method(*m.ClockOutMethod)
		r.ClockOutMethod = &method
	}
	return r
}

func FromDataModelSlice(models []*attendanceDatamodel.Attendance) []*Record {
	result := make([]*Record, len(models))
	for i, m := range models {
		result[i] = FromDataModel(m)
	}
	return result
}

// ToDataModel maps r to its row. A record without a work date is dated by
// its clock-in time's own calendar day.
func ToDataModel(r *Record) *attendanceDatamodel.Attendance {
	workDate := r.WorkDate
	if workDate.IsZero() {
		workDate, _ = DayBounds(r.ClockInTime)
	}
	m := &attendanceDatamodel.Attendance{
		ID:                  r.ID,
		EmployeeID:          r.EmployeeID,
		ClockInTime:         r.ClockInTime,
		WorkDate:            workDate,
		ClockOutTime:        r.ClockOutTime,
		ClockInMethod:       string(r.ClockInMethod),
		ClockInPhoto:        r.ClockInPhoto,
		ClockOutPhoto:       r.ClockOutPhoto,
		ClockInLocation:     r.ClockInLocation,
		ClockOutLocation:    r.ClockOutLocation,
		Notes:               r.Notes,
		WorkDurationMinutes: r.WorkDurationMinutes,
		OvertimeMinutes:     r.OvertimeMinutes,
		ShiftCompleted:      r.ShiftCompleted,
		Status:              string(r.Status),
		IsManualEntry:       r.IsManualEntry,
		AdjustedBy:          r.AdjustedBy,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	if r.ClockOutMethod != nil {
		method := string(*r.ClockOutMethod)
		m.ClockOutMethod = &method
	}
	return m
}

// ReportStatistics summarises a report's records by status.
type ReportStatistics struct {
	TotalRecords     int     `json:"total_records"`
	OnTime           int     `json:"on_time"`
	Late             int     `json:"late"`
	EarlyDeparture   int     `json:"early_departure"`
	OnTimePercentage float64 `json:"on_time_percentage"`
}

type Report struct {
	Attendances []*Record        `json:"attendances"`
	Statistics  ReportStatistics `json:"statistics"`
}

func Summarize(records []*Record) ReportStatistics {
	stats := ReportStatistics{TotalRecords: len(records)}
	for _, r := range records {
		switch r.Status {
		case StatusOnTime:
			stats.OnTime++
		case StatusLate:
			stats.Late++
		case StatusEarlyDeparture:
			stats.EarlyDeparture++
		}
	}
	if stats.TotalRecords > 0 {
		stats.OnTimePercentage = float64(stats.OnTime) / float64(stats.TotalRecords) * 100
	}
	return stats
}
