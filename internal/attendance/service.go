package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/internal/core/events"
	"github.com/frahmantamala/attendance-engine/internal/identity"
	"github.com/frahmantamala/attendance-engine/pkg/logger"
	"github.com/google/uuid"
)

// DayStore is the view of attendance storage used while a day's
// check-then-write is in progress.
type DayStore interface {
	// LatestInWindow returns the most recent record clocked in within
	// [start, end), or ErrAttendanceNotFound.
	LatestInWindow(ctx context.Context, employeeID string, start, end time.Time) (*Record, error)
	OpenInWindow(ctx context.Context, employeeID string, start, end time.Time) (*Record, error)
	Create(ctx context.Context, record *Record) error
	Update(ctx context.Context, record *Record) error
}

// Repository persists attendance records. WithinDay runs fn atomically with
// respect to other WithinDay calls for the same employee.
type Repository interface {
	WithinDay(ctx context.Context, employeeID string, fn func(store DayStore) error) error
	GetByID(ctx context.Context, id string) (*Record, error)
	FindInRange(ctx context.Context, start, end time.Time, openOnly bool) ([]*Record, error)
	FindByEmployee(ctx context.Context, employeeID string, start, end time.Time) ([]*Record, error)
	FindReport(ctx context.Context, start, end time.Time, department string) ([]*Record, error)
}

type Verifier interface {
	Verify(ctx context.Context, cred identity.Credential) (*identity.VerifiedEmployee, error)
}

// LeaveChecker answers whether an employee is on approved leave on a date.
type LeaveChecker interface {
	IsEmployeeOnLeave(ctx context.Context, employeeID string, date time.Time) (bool, error)
}

type Service struct {
	repo      Repository
	verifier  Verifier
	leave     LeaveChecker
	publisher events.Publisher
	rules     Rules
	location  *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

type Option func(*Service)

// WithClock replaces time.Now as the source of clock-in and clock-out times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithRules(rules Rules) Option {
	return func(s *Service) { s.rules = rules }
}

func NewService(repo Repository, verifier Verifier, leave LeaveChecker, publisher events.Publisher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		verifier:  verifier,
		leave:     leave,
		publisher: publisher,
		rules:     DefaultRules(),
		location:  time.Local,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().In(s.location)
}

// Verify authenticates a kiosk credential without touching attendance.
func (s *Service) Verify(ctx context.Context, req identity.CredentialRequest) (*identity.VerifiedEmployee, error) {
	cred, err := req.Credential()
	if err != nil {
		return nil, err
	}
	return s.verifier.Verify(ctx, cred)
}

func (s *Service) ClockIn(ctx context.Context, dto ClockInDTO) (*Record, error) {
	cred, err := dto.Credential()
	if err != nil {
		return nil, err
	}
	emp, err := s.verifier.Verify(ctx, cred)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if err := s.checkLeave(ctx, emp, now, "clock in"); err != nil {
		return nil, err
	}
	if emp.Shift == nil {
		s.logger.Warn("clock in rejected: employee has no shift", "employee_id", emp.EmployeeID)
		return nil, internal.NewNotFoundError("No shift is assigned to this employee", internal.ErrCodeShiftNotFound)
	}

	dayStart, dayEnd := DayBounds(now)
	var record *Record
	err = s.repo.WithinDay(ctx, emp.ID, func(store DayStore) error {
		existing, err := store.LatestInWindow(ctx, emp.ID, dayStart, dayEnd)
		if err != nil && !errors.Is(err, ErrAttendanceNotFound) {
			return err
		}
		if existing != nil {
			if existing.IsClockedIn() {
				return internal.NewBusinessRuleError(
					"You have already clocked in today and have not clocked out yet. Please clock out before clocking in again.",
					internal.ErrCodeAlreadyClockedInToday)
			}
			return internal.NewBusinessRuleError(
				"You have already completed your attendance for today. You clocked in and out successfully.",
				internal.ErrCodeAlreadyCompletedToday)
		}

		status := StatusOnTime
		if emp.Shift.IsLateArrival(now) {
			status = StatusLate
		}

		record = &Record{
			ID:              uuid.New().String(),
			EmployeeID:      emp.ID,
			ClockInTime:     now,
			WorkDate:        dayStart,
			ClockInMethod:   cred.Method(),
			ClockInPhoto:    dto.PhotoURL,
			ClockInLocation: dto.Location,
			Status:          status,
			ShiftCompleted:  false,
			OvertimeMinutes: 0,
		}
		return store.Create(ctx, record)
	})
	if err != nil {
		return nil, s.transitionError("clock in", emp, err)
	}

	logger.Scoped(ctx, s.logger).Info("employee clocked in",
		"employee_id", emp.EmployeeID,
		"attendance_id", record.ID,
		"method", record.ClockInMethod,
		"status", record.Status,
		"kiosk_id", internal.KioskIDFromContext(ctx))

	s.publish(ctx, events.NewClockedInEvent(record.ID, emp.ID, string(record.ClockInMethod), string(record.Status), record.ClockInTime))
	return record, nil
}

func (s *Service) ClockOut(ctx context.Context, dto ClockOutDTO) (*Record, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	cred, err := dto.Credential()
	if err != nil {
		return nil, err
	}
	emp, err := s.verifier.Verify(ctx, cred)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if err := s.checkLeave(ctx, emp, now, "clock out"); err != nil {
		return nil, err
	}
	if emp.Shift == nil {
		s.logger.Warn("clock out rejected: employee has no shift", "employee_id", emp.EmployeeID)
		return nil, internal.NewNotFoundError("No shift is assigned to this employee", internal.ErrCodeShiftNotFound)
	}

	dayStart, dayEnd := DayBounds(now)
	var record *Record
	err = s.repo.WithinDay(ctx, emp.ID, func(store DayStore) error {
		latest, err := store.LatestInWindow(ctx, emp.ID, dayStart, dayEnd)
		if err != nil && !errors.Is(err, ErrAttendanceNotFound) {
			return err
		}
		if latest != nil && !latest.IsClockedIn() {
			at := latest.ClockOutTime.In(s.location).Format("03:04 PM")
			return internal.NewBusinessRuleError(
				fmt.Sprintf("You have already clocked out today at %s. You cannot clock out again.", at),
				internal.ErrCodeAlreadyClockedOutToday).
				WithDetails(map[string]string{"clocked_out_at": at})
		}

		open, err := store.OpenInWindow(ctx, emp.ID, dayStart, dayEnd)
		if errors.Is(err, ErrAttendanceNotFound) {
			return internal.NewBusinessRuleError(
				"No active clock-in record found for today. Please clock in first before clocking out.",
				internal.ErrCodeNoOpenClockIn)
		}
		if err != nil {
			return err
		}

		method := cred.Method()
		open.ClockOutTime = &now
		open.ClockOutMethod = &method
		open.ClockOutPhoto = dto.PhotoURL
		open.ClockOutLocation = dto.Location
		open.Notes = dto.Notes
		ComputeClockOutDerived(open.ClockInTime, now, *emp.Shift, s.rules).Apply(open)

		record = open
		return store.Update(ctx, open)
	})
	if err != nil {
		return nil, s.transitionError("clock out", emp, err)
	}

	logger.Scoped(ctx, s.logger).Info("employee clocked out",
		"employee_id", emp.EmployeeID,
		"attendance_id", record.ID,
		"work_minutes", *record.WorkDurationMinutes,
		"overtime_minutes", record.OvertimeMinutes,
		"status", record.Status,
		"kiosk_id", internal.KioskIDFromContext(ctx))

	s.publish(ctx, events.NewClockedOutEvent(record.ID, emp.ID, string(*record.ClockOutMethod), string(record.Status),
		*record.ClockOutTime, *record.WorkDurationMinutes, record.OvertimeMinutes, record.ShiftCompleted))
	return record, nil
}

func (s *Service) checkLeave(ctx context.Context, emp *identity.VerifiedEmployee, now time.Time, action string) error {
	onLeave, err := s.leave.IsEmployeeOnLeave(ctx, emp.ID, now)
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return err
		}
		logger.Scoped(ctx, s.logger).Error("failed to check leave", "error", err, "employee_id", emp.EmployeeID)
		return internal.NewInternalError("failed to check leave status", err)
	}
	if onLeave {
		s.logger.Info(action+" rejected: employee on approved leave", "employee_id", emp.EmployeeID)
		return internal.NewBusinessRuleError(
			fmt.Sprintf("You cannot %s today because you have an approved leave for this date. Please contact HR if this is incorrect.", action),
			internal.ErrCodeOnApprovedLeave)
	}
	return nil
}

// transitionError logs a failed day transition at a level matching its kind.
func (s *Service) transitionError(action string, emp *identity.VerifiedEmployee, err error) error {
	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.IsBusinessRule() {
			s.logger.Info(action+" rejected", "employee_id", emp.EmployeeID, "code", appErr.Code)
		}
		return appErr
	}
	if errors.Is(err, identity.ErrEmployeeNotFound) {
		return internal.NewNotFoundError("Employee not found", internal.ErrCodeEmployeeNotFound)
	}
	s.logger.Error("failed to "+action, "error", err, "employee_id", emp.EmployeeID)
	return internal.NewInternalError("failed to record attendance", err)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Scoped(ctx, s.logger).Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
