package employee

import (
	"context"
	"database/sql"
	"strings"

	"go-payroll/internal/shared/database"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	FindAll(ctx context.Context, filter EmployeeQueryFilter) ([]Employee, int64, error)
	FindOptions(ctx context.Context) ([]Employee, error)
	FindAllByStatus(ctx context.Context, status string) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	Update(ctx context.Context, empl *Employee) error
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
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, r.db, r.tx)
}

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.conn(ctx).Create(empl).Error
}

func (r *repository) FindAll(ctx context.Context, filter EmployeeQueryFilter) ([]Employee, int64, error) {
	db := r.conn(ctx).Model(&Employee{})

	if q := strings.TrimSpace(filter.Q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where(
			"LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(employee_number) LIKE ?",
			like, like, like,
		)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var employees []Employee
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit).Offset((filter.Page - 1) * filter.Limit)
	}
	err := db.Order("full_name ASC").Find(&employees).Error
	return employees, total, err
}

func (r *repository) FindOptions(ctx context.Context) ([]Employee, error) {
	var employees []Employee
	err := r.conn(ctx).
		Select("id", "employee_number", "full_name").
		Where("status = ?", StatusActive).
		Order("full_name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindAllByStatus(ctx context.Context, status string) ([]Employee, error) {
	var employees []Employee
	err := r.conn(ctx).
		Where("status = ?", status).
		Order("employee_number ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var empl Employee
	err := r.conn(ctx).First(&empl, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	return r.conn(ctx).Save(empl).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.conn(ctx).Delete(&Employee{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
