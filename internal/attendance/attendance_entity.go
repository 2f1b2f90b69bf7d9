package attendance

import (
	"time"

	"github.com/google/uuid"
)

type Attendance struct {
	ID             uuid.UUID    `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID     uuid.UUID    `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_attendance_employee_date,priority:1"`
	AttendanceDate time.Time    `gorm:"column:attendance_date;type:date;not null;uniqueIndex:uq_attendance_employee_date,priority:2;index"`
	CheckIn        *time.Time   `gorm:"column:check_in;type:timestamptz"`
	CheckOut       *time.Time   `gorm:"column:check_out;type:timestamptz"`
	HoursWorked    *float64     `gorm:"column:hours_worked;type:numeric(5,2)"`
	Status         Status       `gorm:"column:status;type:varchar(20);not null;default:'present';index"`
	Notes          *string      `gorm:"column:notes;type:text"`
	CreatedAt      time.Time    `gorm:"column:created_at"`
	UpdatedAt      time.Time    `gorm:"column:updated_at"`
	Employee       *EmployeeRef `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (Attendance) TableName() string {
	return "attendances"
}

type EmployeeRef struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeNumber string    `gorm:"column:employee_number"`
	FullName       string    `gorm:"column:full_name"`
}

func (EmployeeRef) TableName() string {
	return "employees"
}
