package leave

import "time"

type Leave struct {
	ID         string    `gorm:"primaryKey;column:id"`
	EmployeeID string    `gorm:"column:employee_id;index;not null"`
	LeaveType  string    `gorm:"column:leave_type;not null"`
	StartDate  time.Time `gorm:"column:start_date;type:date;not null"`
	EndDate    time.Time `gorm:"column:end_date;type:date;not null"`
	Status     string    `gorm:"column:status;default:PENDING"`
	Reason     *string   `gorm:"column:reason"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Leave) TableName() string {
	return "leaves"
}
