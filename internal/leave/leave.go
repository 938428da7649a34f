package leave

import (
	"context"
	"time"

	leaveDatamodel "github.com/frahmantamala/attendance-engine/internal/core/datamodel/leave"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Checker is the only question the attendance engine asks about leave.
type Checker interface {
	IsEmployeeOnLeave(ctx context.Context, employeeID string, date time.Time) (bool, error)
}

type Leave struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	LeaveType  string    `json:"leave_type"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Status     Status    `json:"status"`
	Reason     *string   `json:"reason,omitempty"`
}

// Covers reports whether date falls on or between the leave's start and
// end dates, compared as calendar days.
func (l *Leave) Covers(date time.Time) bool {
	day := CalendarDate(date)
	return !day.Before(CalendarDate(l.StartDate)) && !day.After(CalendarDate(l.EndDate))
}

// CalendarDate drops the clock, keeping the date as seen in t's location.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func FromDataModel(m *leaveDatamodel.Leave) *Leave {
	return &Leave{
		ID:         m.ID,
		EmployeeID: m.EmployeeID,
		LeaveType:  m.LeaveType,
		StartDate:  m.StartDate,
		EndDate:    m.EndDate,
		Status:     Status(m.Status),
		Reason:     m.Reason,
	}
}
