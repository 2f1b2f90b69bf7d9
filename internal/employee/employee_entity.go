package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive     = "active"
	StatusInactive   = "inactive"
	StatusTerminated = "terminated"

	SalaryTypeMonthly = "monthly"
	SalaryTypeHourly  = "hourly"
)

type Employee struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeNumber string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_employee_number"`
	FullName       string    `gorm:"type:varchar(150);not null"`
	Email          string    `gorm:"type:varchar(150);not null;uniqueIndex:uq_employee_email"`
	Phone          string    `gorm:"type:varchar(30)"`
	Department     string    `gorm:"type:varchar(100)"`
	Position       string    `gorm:"type:varchar(100)"`
	HireDate       time.Time `gorm:"type:date;not null"`

	// Base amount: per month for monthly employees, per hour for hourly ones.
	Salary     float64 `gorm:"type:numeric(12,2);not null;default:0"`
	SalaryType string  `gorm:"type:varchar(10);not null;default:'monthly'"`
	Status     string  `gorm:"type:varchar(20);not null;default:'active';index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
