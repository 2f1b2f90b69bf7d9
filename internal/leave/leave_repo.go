package leave

import (
	"context"
	"database/sql"
	"time"

	"go-payroll/internal/shared/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindAll(ctx context.Context, filter LeaveQueryFilter) ([]Leave, int64, error)
	FindByID(ctx context.Context, id string) (*Leave, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Leave, error)
	Update(ctx context.Context, l *Leave) error
	Delete(ctx context.Context, id string) error
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error)
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

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.conn(ctx).Omit("Employee").Create(l).Error
}

func (r *repository) FindAll(ctx context.Context, filter LeaveQueryFilter) ([]Leave, int64, error) {
	db := r.conn(ctx).Model(&Leave{})
	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		db = db.Limit(filter.Limit).Offset((filter.Page - 1) * filter.Limit)
	}

	var leaves []Leave
	err := db.Preload("Employee").
		Order("start_date DESC, created_at DESC").
		Find(&leaves).Error
	return leaves, total, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	if err := r.conn(ctx).Preload("Employee").First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) Update(ctx context.Context, l *Leave) error {
	return r.conn(ctx).Omit("Employee").Save(l).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.conn(ctx).Delete(&Leave{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

// HasOverlappingPeriod only considers requests that are still pending or
// approved.
func (r *repository) HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error) {
	db := r.conn(ctx).
		Model(&Leave{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate)

	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}
