package leave

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeAnnual = "annual"
	TypeSick   = "sick"
	TypeUnpaid = "unpaid"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

type Leave struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID    `gorm:"type:uuid;not null;index:idx_leaves_employee_dates"`
	Employee   *EmployeeRef `gorm:"foreignKey:EmployeeID"`

	LeaveType string    `gorm:"type:varchar(20);not null;default:'annual'"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	TotalDays int       `gorm:"type:int;not null;default:1"`
	Reason    string    `gorm:"type:text"`

	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_leaves_status"`
	RequestedBy     *uuid.UUID `gorm:"type:uuid"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectionReason *string    `gorm:"type:text"`

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ApprovedAt *time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index:idx_leaves_deleted_at"`
}

// EmployeeRef is the read-only slice of an employee shown next to a leave.
type EmployeeRef struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeNumber string
	FullName       string
}

func (EmployeeRef) TableName() string { return "employees" }
