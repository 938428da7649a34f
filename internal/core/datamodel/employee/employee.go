package employee

import (
	"time"

	shiftDatamodel "github.com/frahmantamala/attendance-engine/internal/core/datamodel/shift"
)

type Employee struct {
	ID                  string                `gorm:"primaryKey;column:id"`
	EmployeeID          string                `gorm:"column:employee_id;uniqueIndex;not null"`
	FullName            string                `gorm:"column:full_name;not null"`
	Email               *string               `gorm:"column:email"`
	Department          string                `gorm:"column:department"`
	Position            string                `gorm:"column:position"`
	PhotoURL            *string               `gorm:"column:photo_url"`
	Status              string                `gorm:"column:status;default:ACTIVE"`
	ShiftID             *string               `gorm:"column:shift_id"`
	Shift               *shiftDatamodel.Shift `gorm:"foreignKey:ShiftID"`
	RFIDCardID          *string               `gorm:"column:rfid_card_id;uniqueIndex"`
	PINHash             *string               `gorm:"column:pin_hash"`
	FaceEncoding        []float64             `gorm:"column:face_encoding;serializer:json"`
	FingerprintTemplate *string               `gorm:"column:fingerprint_template"`
	CreatedAt           time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}
