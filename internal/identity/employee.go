package identity

import (
	"errors"

	employeeDatamodel "github.com/frahmantamala/attendance-engine/internal/core/datamodel/employee"
	"github.com/frahmantamala/attendance-engine/internal/shift"
)

type EmploymentStatus string

const (
	StatusActive     EmploymentStatus = "ACTIVE"
	StatusInactive   EmploymentStatus = "INACTIVE"
	StatusSuspended  EmploymentStatus = "SUSPENDED"
	StatusTerminated EmploymentStatus = "TERMINATED"
)

var ErrEmployeeNotFound = errors.New("employee not found")

// Employee is the read-only view of an employee record, including the
// enrolled credentials. It must never be serialized to clients.
type Employee struct {
	ID                  string           `json:"-"`
	EmployeeID          string           `json:"-"`
	FullName            string           `json:"-"`
	Department          string           `json:"-"`
	Position            string           `json:"-"`
	PhotoURL            *string          `json:"-"`
	Status              EmploymentStatus `json:"-"`
	Shift               *shift.Shift     `json:"-"`
	RFIDCardID          *string          `json:"-"`
	PINHash             *string          `json:"-"`
	FaceEncoding        []float64        `json:"-"`
	FingerprintTemplate *string          `json:"-"`
}

func (e *Employee) IsActive() bool {
	return e.Status == StatusActive
}

// VerifiedEmployee is what a successful verification hands back to callers.
type VerifiedEmployee struct {
	ID         string       `json:"id"`
	EmployeeID string       `json:"employee_id"`
	FullName   string       `json:"full_name"`
	Department string       `json:"department"`
	Position   string       `json:"position"`
	PhotoURL   *string      `json:"photo_url,omitempty"`
	Shift      *shift.Shift `json:"shift,omitempty"`
}

func (e *Employee) Verified() *VerifiedEmployee {
	return &VerifiedEmployee{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		FullName:   e.FullName,
		Department: e.Department,
		Position:   e.Position,
		PhotoURL:   e.PhotoURL,
		Shift:      e.Shift,
	}
}

func FromDataModel(m *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:                  m.ID,
		EmployeeID:          m.EmployeeID,
		FullName:            m.FullName,
		Department:          m.Department,
		Position:            m.Position,
		PhotoURL:            m.PhotoURL,
		Status:              EmploymentStatus(m.Status),
		Shift:               shift.FromDataModel(m.Shift),
		RFIDCardID:          m.RFIDCardID,
		PINHash:             m.PINHash,
		FaceEncoding:        m.FaceEncoding,
		FingerprintTemplate: m.FingerprintTemplate,
	}
}

func FromDataModelSlice(models []*employeeDatamodel.Employee) []*Employee {
	result := make([]*Employee, len(models))
	for i, m := range models {
		result[i] = FromDataModel(m)
	}
	return result
}
