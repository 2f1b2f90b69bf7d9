package payroll

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusOverdue = "overdue"
)

// Salary is one employee's payroll row for one month. The (employee_id,
// month) pair is unique and every recalculation upserts into it.
type Salary struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:uq_salary_employee_month,priority:1"`
	Employee   *EmployeeRef `gorm:"foreignKey:EmployeeID"`
	Month      string       `gorm:"type:varchar(7);not null;uniqueIndex:uq_salary_employee_month,priority:2;index:idx_salaries_month"`

	BaseSalary    float64 `gorm:"type:numeric(12,2);not null;default:0"`
	BasicSalary   float64 `gorm:"type:numeric(12,2);not null;default:0"`
	OvertimeHours float64 `gorm:"type:numeric(7,2);not null;default:0"`
	OvertimePay   float64 `gorm:"type:numeric(12,2);not null;default:0"`
	Bonus         float64 `gorm:"type:numeric(12,2);not null;default:0"`
	Deductions    float64 `gorm:"type:numeric(12,2);not null;default:0"`
	NetSalary     float64 `gorm:"type:numeric(12,2);not null;default:0"`
	WorkingDays   float64 `gorm:"type:numeric(5,1);not null;default:0"`

	Status   string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_salaries_status"`
	PaidDate *time.Time `gorm:"type:date"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Salary) TableName() string {
	return "salaries"
}

type EmployeeRef struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeNumber string
	FullName       string
	Department     string
	Position       string
}

func (EmployeeRef) TableName() string {
	return "employees"
}
