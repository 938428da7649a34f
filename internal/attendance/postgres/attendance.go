package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/attendance-engine/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/attendance-engine/internal/core/datamodel/attendance"
	employeeDatamodel "github.com/frahmantamala/attendance-engine/internal/core/datamodel/employee"
	"github.com/frahmantamala/attendance-engine/internal/identity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttendanceRepository implements attendance.Repository using GORM
type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// WithinDay locks the employee row for the length of a transaction so two
// kiosks cannot both pass the day checks for the same employee.
func (r *AttendanceRepository) WithinDay(ctx context.Context, employeeID string, fn func(store attendance.DayStore) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var emp employeeDatamodel.Employee
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", employeeID).
			First(&emp).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return identity.ErrEmployeeNotFound
			}
			return err
		}
		return fn(&AttendanceRepository{db: tx})
	})
}

func (r *AttendanceRepository) first(q *gorm.DB) (*attendance.Record, error) {
	var row attendanceDatamodel.Attendance
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attendance.ErrAttendanceNotFound
		}
		return nil, err
	}
	return attendance.FromDataModel(&row), nil
}

func (r *AttendanceRepository) window(ctx context.Context, start, end time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("clock_in_time >= ? AND clock_in_time < ?", start, end)
}

func (r *AttendanceRepository) LatestInWindow(ctx context.Context, employeeID string, start, end time.Time) (*attendance.Record, error) {
	return r.first(r.window(ctx, start, end).
		Where("employee_id = ?", employeeID).
		Order("clock_in_time DESC"))
}

func (r *AttendanceRepository) OpenInWindow(ctx context.Context, employeeID string, start, end time.Time) (*attendance.Record, error) {
	return r.first(r.window(ctx, start, end).
		Where("employee_id = ? AND clock_out_time IS NULL", employeeID).
		Order("clock_in_time DESC"))
}

func (r *AttendanceRepository) Create(ctx context.Context, record *attendance.Record) error {
	row := attendance.ToDataModel(record)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	record.CreatedAt = row.CreatedAt
	record.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *AttendanceRepository) Update(ctx context.Context, record *attendance.Record) error {
	row := attendance.ToDataModel(record)
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return err
	}
	record.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *AttendanceRepository) GetByID(ctx context.Context, id string) (*attendance.Record, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *AttendanceRepository) find(q *gorm.DB) ([]*attendance.Record, error) {
	var rows []*attendanceDatamodel.Attendance
	if err := q.Order("clock_in_time DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return attendance.FromDataModelSlice(rows), nil
}

func (r *AttendanceRepository) FindInRange(ctx context.Context, start, end time.Time, openOnly bool) ([]*attendance.Record, error) {
	q := r.window(ctx, start, end)
	if openOnly {
		q = q.Where("clock_out_time IS NULL")
	}
	return r.find(q)
}

// FindByEmployee returns the employee's records in [start, end). Zero
// bounds disable the range filter.
func (r *AttendanceRepository) FindByEmployee(ctx context.Context, employeeID string, start, end time.Time) ([]*attendance.Record, error) {
	q := r.db.WithContext(ctx).Where("employee_id = ?", employeeID)
	if !start.IsZero() && !end.IsZero() {
		q = q.Where("clock_in_time >= ? AND clock_in_time < ?", start, end)
	}
	return r.find(q)
}

func (r *AttendanceRepository) FindReport(ctx context.Context, start, end time.Time, department string) ([]*attendance.Record, error) {
	q := r.db.WithContext(ctx).
		Model(&attendanceDatamodel.Attendance{}).
		Where("attendances.clock_in_time >= ? AND attendances.clock_in_time < ?", start, end)
	if department != "" {
		q = q.Joins("JOIN employees ON employees.id = attendances.employee_id").
			Where("employees.department = ?", department)
	}

	var rows []*attendanceDatamodel.Attendance
	if err := q.Order("attendances.clock_in_time DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return attendance.FromDataModelSlice(rows), nil
}
