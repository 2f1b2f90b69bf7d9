package payroll

import (
	"context"
	"database/sql"

	"go-payroll/internal/shared/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Columns a recalculation overwrites on an existing row. Status and
// paid_date are left alone.
var recalculatedColumns = []string{
	"base_salary",
	"basic_salary",
	"overtime_hours",
	"overtime_pay",
	"bonus",
	"deductions",
	"net_salary",
	"working_days",
	"updated_at",
}

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Upsert(ctx context.Context, s *Salary) error
	FindAll(ctx context.Context, filter SalaryQueryFilter) ([]Salary, int64, error)
	FindAllByMonth(ctx context.Context, month string) ([]Salary, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]Salary, error)
	FindByEmployeeAndMonth(ctx context.Context, employeeID, month string) (*Salary, error)
	FindByID(ctx context.Context, id string) (*Salary, error)
	Update(ctx context.Context, s *Salary) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, r.db, r.tx)
}

// Upsert inserts s or, when a row for the same employee and month exists,
// overwrites its computed columns in the same statement.
func (r *repository) Upsert(ctx context.Context, s *Salary) error {
	return r.conn(ctx).
		Omit("Employee").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "month"}},
			DoUpdates: clause.AssignmentColumns(recalculatedColumns),
		}).
		Create(s).Error
}

func (r *repository) FindAll(ctx context.Context, filter SalaryQueryFilter) ([]Salary, int64, error) {
	db := r.conn(ctx).Model(&Salary{})
	if filter.Month != "" {
		db = db.Where("month = ?", filter.Month)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		db = db.Limit(filter.Limit).Offset((filter.Page - 1) * filter.Limit)
	}

	var rows []Salary
	err := db.Preload("Employee").
		Order("month DESC, created_at DESC").
		Find(&rows).Error
	return rows, total, err
}

func (r *repository) FindAllByMonth(ctx context.Context, month string) ([]Salary, error) {
	var rows []Salary
	err := r.conn(ctx).
		Preload("Employee").
		Joins("LEFT JOIN employees ON employees.id = salaries.employee_id").
		Where("salaries.month = ?", month).
		Order("employees.employee_number ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]Salary, error) {
	var rows []Salary
	err := r.conn(ctx).
		Preload("Employee").
		Where("employee_id = ?", employeeID).
		Order("month DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByEmployeeAndMonth(ctx context.Context, employeeID, month string) (*Salary, error) {
	var s Salary
	err := r.conn(ctx).
		Preload("Employee").
		Where("employee_id = ? AND month = ?", employeeID, month).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Salary, error) {
	var s Salary
	if err := r.conn(ctx).Preload("Employee").First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) Update(ctx context.Context, s *Salary) error {
	return r.conn(ctx).Omit("Employee").Save(s).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.conn(ctx).Delete(&Salary{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
