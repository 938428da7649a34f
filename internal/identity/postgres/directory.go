package postgres

import (
	"context"
	"errors"

	employeeDatamodel "github.com/frahmantamala/attendance-engine/internal/core/datamodel/employee"
	"github.com/frahmantamala/attendance-engine/internal/identity"
	"gorm.io/gorm"
)

// EmployeeDirectory implements identity.Directory using GORM
type EmployeeDirectory struct {
	db *gorm.DB
}

func NewEmployeeDirectory(db *gorm.DB) identity.Directory {
	return &EmployeeDirectory{db: db}
}

func (r *EmployeeDirectory) first(ctx context.Context, query string, arg interface{}) (*identity.Employee, error) {
	var emp employeeDatamodel.Employee
	err := r.db.WithContext(ctx).Preload("Shift").Where(query, arg).First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrEmployeeNotFound
		}
		return nil, err
	}
	return identity.FromDataModel(&emp), nil
}

func (r *EmployeeDirectory) FindByID(ctx context.Context, id string) (*identity.Employee, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *EmployeeDirectory) FindByEmployeeID(ctx context.Context, employeeID string) (*identity.Employee, error) {
	return r.first(ctx, "employee_id = ?", employeeID)
}

func (r *EmployeeDirectory) FindByRFIDCard(ctx context.Context, cardID string) (*identity.Employee, error) {
	return r.first(ctx, "rfid_card_id = ?", cardID)
}

func (r *EmployeeDirectory) activeQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Shift").
		Where("status = ?", string(identity.StatusActive)).
		Order("employee_id ASC")
}

func (r *EmployeeDirectory) ListActiveWithFaceEncoding(ctx context.Context) ([]*identity.Employee, error) {
	var rows []*employeeDatamodel.Employee
	err := r.activeQuery(ctx).
		Where("face_encoding IS NOT NULL").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return identity.FromDataModelSlice(rows), nil
}

func (r *EmployeeDirectory) ListActiveWithFingerprint(ctx context.Context) ([]*identity.Employee, error) {
	var rows []*employeeDatamodel.Employee
	err := r.activeQuery(ctx).
		Where("fingerprint_template IS NOT NULL AND fingerprint_template <> ''").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return identity.FromDataModelSlice(rows), nil
}

// ListActive returns active employees, optionally restricted to one department.
func (r *EmployeeDirectory) ListActive(ctx context.Context, department string) ([]*identity.Employee, error) {
	var rows []*employeeDatamodel.Employee
	q := r.activeQuery(ctx)
	if department != "" {
		q = q.Where("department = ?", department)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return identity.FromDataModelSlice(rows), nil
}
