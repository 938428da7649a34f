package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeClockedIn  = "attendance.clocked_in"
	EventTypeClockedOut = "attendance.clocked_out"
)

// AttendanceTypes lists every event type forwarded off-process.
var AttendanceTypes = []string{EventTypeClockedIn, EventTypeClockedOut}

type ClockedInEvent struct {
	BaseEvent
	AttendanceID string    `json:"attendance_id"`
	EmployeeID   string    `json:"employee_id"`
	Method       string    `json:"method"`
	Status       string    `json:"status"`
	ClockInTime  time.Time `json:"clock_in_time"`
}

func NewClockedInEvent(attendanceID, employeeID, method, status string, clockInTime time.Time) *ClockedInEvent {
	return &ClockedInEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeClockedIn,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"attendance_id": attendanceID,
				"employee_id":   employeeID,
				"method":        method,
				"status":        status,
				"clock_in_time": clockInTime,
			},
		},
		AttendanceID: attendanceID,
		EmployeeID:   employeeID,
		Method:       method,
		Status:       status,
		ClockInTime:  clockInTime,
	}
}

type ClockedOutEvent struct {
	BaseEvent
	AttendanceID        string    `json:"attendance_id"`
	EmployeeID          string    `json:"employee_id"`
	Method              string    `json:"method"`
	Status              string    `json:"status"`
	ClockOutTime        time.Time `json:"clock_out_time"`
	WorkDurationMinutes int       `json:"work_duration_minutes"`
	OvertimeMinutes     int       `json:"overtime_minutes"`
	ShiftCompleted      bool      `json:"shift_completed"`
}

func NewClockedOutEvent(attendanceID, employeeID, method, status string, clockOutTime time.Time, workMinutes, overtimeMinutes int, completed bool) *ClockedOutEvent {
	return &ClockedOutEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeClockedOut,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"attendance_id":         attendanceID,
				"employee_id":           employeeID,
				"method":                method,
				"status":                status,
				"clock_out_time":        clockOutTime,
				"work_duration_minutes": workMinutes,
				"overtime_minutes":      overtimeMinutes,
				"shift_completed":       completed,
			},
		},
		AttendanceID:        attendanceID,
		EmployeeID:          employeeID,
		Method:              method,
		Status:              status,
		ClockOutTime:        clockOutTime,
		WorkDurationMinutes: workMinutes,
		OvertimeMinutes:     overtimeMinutes,
		ShiftCompleted:      completed,
	}
}
