package postgres

import (
	"context"
	"time"

	leaveDatamodel "github.com/frahmantamala/attendance-engine/internal/core/datamodel/leave"
	"github.com/frahmantamala/attendance-engine/internal/leave"
	"gorm.io/gorm"
)

// LeaveRepository answers leave questions from the shared leaves table.
type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// ApprovedFor returns the employee's approved leaves overlapping date.
func (r *LeaveRepository) ApprovedFor(ctx context.Context, employeeID string, date time.Time) ([]*leave.Leave, error) {
	day := leave.CalendarDate(date)

	var rows []*leaveDatamodel.Leave
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND status = ?", employeeID, string(leave.StatusApproved)).
		Where("start_date <= ? AND end_date >= ?", day, day).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]*leave.Leave, 0, len(rows))
	for _, row := range rows {
		result = append(result, leave.FromDataModel(row))
	}
	return result, nil
}

func (r *LeaveRepository) IsEmployeeOnLeave(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	leaves, err := r.ApprovedFor(ctx, employeeID, date)
	if err != nil {
		return false, err
	}
	for _, l := range leaves {
		if l.Covers(date) {
			return true, nil
		}
	}
	return false, nil
}
