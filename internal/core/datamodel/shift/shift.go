package shift

import "time"

type Shift struct {
	ID                 string    `gorm:"primaryKey;column:id"`
	Name               string    `gorm:"column:name;not null"`
	StartTime          string    `gorm:"column:start_time;not null"`
	EndTime            string    `gorm:"column:end_time;not null"`
	GracePeriodMinutes int       `gorm:"column:grace_period_minutes;default:15"`
	IsActive           bool      `gorm:"column:is_active;default:true"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Shift) TableName() string {
	return "shifts"
}
