package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/attendance-engine/internal"
)

func (s *Service) GetTodayAttendance(ctx context.Context) ([]*Record, error) {
	start, end := DayBounds(s.clock())
	records, err := s.repo.FindInRange(ctx, start, end, false)
	if err != nil {
		s.logger.Error("failed to get today's attendance", "error", err)
		return nil, internal.NewInternalError("failed to get attendance", err)
	}
	return records, nil
}

// GetCurrentlyPresent lists today's records that have not been clocked out.
func (s *Service) GetCurrentlyPresent(ctx context.Context) ([]*Record, error) {
	start, end := DayBounds(s.clock())
	records, err := s.repo.FindInRange(ctx, start, end, true)
	if err != nil {
		s.logger.Error("failed to get present employees", "error", err)
		return nil, internal.NewInternalError("failed to get attendance", err)
	}
	return records, nil
}

func (s *Service) GetAttendanceByID(ctx context.Context, id string) (*Record, error) {
	record, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrAttendanceNotFound) {
		return nil, internal.NewNotFoundError(fmt.Sprintf("Attendance record with ID %q not found", id), internal.ErrCodeAttendanceNotFound)
	}
	if err != nil {
		s.logger.Error("failed to get attendance", "error", err, "attendance_id", id)
		return nil, internal.NewInternalError("failed to get attendance", err)
	}
	return record, nil
}

// GetEmployeeAttendance returns an employee's history, newest first. An
// empty range returns every record.
func (s *Service) GetEmployeeAttendance(ctx context.Context, employeeID string, q RangeQuery) ([]*Record, error) {
	start, end, err := q.Resolve(s.location, false)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.FindByEmployee(ctx, employeeID, start, end)
	if err != nil {
		s.logger.Error("failed to get employee attendance", "error", err, "employee_id", employeeID)
		return nil, internal.NewInternalError("failed to get attendance", err)
	}
	return records, nil
}

func (s *Service) GetAttendanceReport(ctx context.Context, q ReportQuery) (*Report, error) {
	start, end, err := q.Resolve(s.location, true)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.FindReport(ctx, start, end, q.Department)
	if err != nil {
		s.logger.Error("failed to build attendance report", "error", err,
			"start", start.Format(time.DateOnly), "department", q.Department)
		return nil, internal.NewInternalError("failed to build report", err)
	}
	return &Report{Attendances: records, Statistics: Summarize(records)}, nil
}
