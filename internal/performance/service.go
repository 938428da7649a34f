package performance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-engine/internal"
	"github.com/frahmantamala/attendance-engine/internal/attendance"
	"github.com/frahmantamala/attendance-engine/internal/identity"
	"golang.org/x/sync/errgroup"
)

// RecordSource returns an employee's attendance records clocked in within
// [start, end).
type RecordSource interface {
	FindByEmployee(ctx context.Context, employeeID string, start, end time.Time) ([]*attendance.Record, error)
}

type EmployeeDirectory interface {
	ListActive(ctx context.Context, department string) ([]*identity.Employee, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*identity.Employee, error)
}

type Config struct {
	// Concurrency bounds how many employees are scored at once.
	Concurrency int
	CohortSize  int
}

type Service struct {
	records   RecordSource
	directory EmployeeDirectory
	cfg       Config
	location  *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

type Option func(*Service)

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

func NewService(records RecordSource, directory EmployeeDirectory, cfg Config, logger *slog.Logger, opts ...Option) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.CohortSize <= 0 {
		cfg.CohortSize = 10
	}
	s := &Service{
		records:   records,
		directory: directory,
		cfg:       cfg,
		location:  time.Local,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) period(q LeaderboardQuery) (Period, error) {
	return ResolvePeriod(q, s.now().In(s.location))
}

// fetch loads records for the inclusive period. The store takes a half-open
// range, so the end is pushed to the following instant.
func (s *Service) fetch(ctx context.Context, emp *identity.Employee, p Period) (*EmployeePerformance, error) {
	records, err := s.records.FindByEmployee(ctx, emp.ID, p.StartDate, p.EndDate.Add(time.Millisecond))
	if err != nil {
		return nil, fmt.Errorf("load attendance for %s: %w", emp.EmployeeID, err)
	}
	return Calculate(emp, records, p.StartDate, p.EndDate), nil
}

func (s *Service) Leaderboard(ctx context.Context, q LeaderboardQuery) (*Leaderboard, error) {
	p, err := s.period(q)
	if err != nil {
		return nil, err
	}

	employees, err := s.directory.ListActive(ctx, q.Department)
	if err != nil {
		s.logger.Error("failed to list active employees", "error", err, "department", q.Department)
		return nil, internal.NewInternalError("failed to build leaderboard", err)
	}

	perfs := make([]*EmployeePerformance, len(employees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, emp := range employees {
		g.Go(func() error {
			perf, err := s.fetch(gctx, emp, p)
			if err != nil {
				return err
			}
			perfs[i] = perf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to score employees", "error", err)
		return nil, internal.NewInternalError("failed to build leaderboard", err)
	}

	ranked := Rank(perfs)
	top, bottom := Cohorts(ranked, s.cfg.CohortSize)
	stats := Summarize(ranked)

	s.logger.Info("leaderboard computed",
		"period", string(q.Period),
		"start_date", p.StartDate,
		"end_date", p.EndDate,
		"department", q.Department,
		"scored", stats.TotalEmployees,
	)

	return &Leaderboard{
		TopPerformers:    top,
		BottomPerformers: bottom,
		Period:           p,
		Statistics:       stats,
	}, nil
}

// EmployeePerformance scores one employee by business id over the query's
// period. The result is unranked.
func (s *Service) EmployeePerformance(ctx context.Context, employeeID string, q LeaderboardQuery) (*EmployeePerformance, error) {
	p, err := s.period(q)
	if err != nil {
		return nil, err
	}

	emp, err := s.directory.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, identity.ErrEmployeeNotFound) {
			return nil, internal.NewNotFoundError(fmt.Sprintf("Employee with ID %q not found", employeeID), internal.ErrCodeEmployeeNotFound)
		}
		s.logger.Error("failed to load employee", "error", err, "employee_id", employeeID)
		return nil, internal.NewInternalError("failed to load employee performance", err)
	}

	perf, err := s.fetch(ctx, emp, p)
	if err != nil {
		s.logger.Error("failed to score employee", "error", err, "employee_id", employeeID)
		return nil, internal.NewInternalError("failed to load employee performance", err)
	}
	return perf, nil
}
