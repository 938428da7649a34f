package attendance

import "time"

type Attendance struct {
	ID                  string     `gorm:"primaryKey;column:id"`
	EmployeeID          string     `gorm:"column:employee_id;index;not null"`
	ClockInTime         time.Time  `gorm:"column:clock_in_time;not null"`
	WorkDate            time.Time  `gorm:"column:work_date;type:date;not null"`
	ClockOutTime        *time.Time `gorm:"column:clock_out_time"`
	ClockInMethod       string     `gorm:"column:clock_in_method;not null"`
	ClockOutMethod      *string    `gorm:"column:clock_out_method"`
	ClockInPhoto        *string    `gorm:"column:clock_in_photo"`
	ClockOutPhoto       *string    `gorm:"column:clock_out_photo"`
	ClockInLocation     *string    `gorm:"column:clock_in_location"`
	ClockOutLocation    *string    `gorm:"column:clock_out_location"`
	Notes               *string    `gorm:"column:notes"`
	WorkDurationMinutes *int       `gorm:"column:work_duration_minutes"`
	OvertimeMinutes     int        `gorm:"column:overtime_minutes;default:0"`
	ShiftCompleted      bool       `gorm:"column:shift_completed;default:false"`
	Status              string     `gorm:"column:status;not null"`
	IsManualEntry       bool       `gorm:"column:is_manual_entry;default:false"`
	AdjustedBy          *string    `gorm:"column:adjusted_by"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Attendance) TableName() string {
	return "attendances"
}
