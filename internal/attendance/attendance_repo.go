package attendance

import (
	"context"
	"database/sql"
	"time"

	"go-payroll/internal/shared/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Attendance) error
	FindByID(ctx context.Context, id string) (*Attendance, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)
	FindAll(ctx context.Context, filter AttendanceQueryFilter) ([]Attendance, int64, error)
	FindByEmployeeAndMonth(ctx context.Context, employeeID, month string) ([]Attendance, error)
	Update(ctx context.Context, a *Attendance) error
	Delete(ctx context.Context, id string) error
	UpsertLeaveDays(ctx context.Context, employeeID uuid.UUID, dates []time.Time, notes string) error
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
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

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return r.conn(ctx).Omit("Employee").Create(a).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Attendance, error) {
	var a Attendance
	err := r.conn(ctx).Preload("Employee").First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error) {
	var a Attendance
	err := r.conn(ctx).
		Where("employee_id = ?", employeeID).
		Where("attendance_date = ?", date.Format("2006-01-02")).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindAll(ctx context.Context, filter AttendanceQueryFilter) ([]Attendance, int64, error) {
	db := r.conn(ctx).Model(&Attendance{})

	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Date != "" {
		db = db.Where("attendance_date = ?", filter.Date)
	}
	if filter.Month != "" {
		db = db.Where("CAST(attendance_date AS TEXT) LIKE ?", filter.Month+"%")
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

	var rows []Attendance
	err := db.Preload("Employee").
		Order("attendance_date DESC, check_in DESC").
		Find(&rows).Error
	return rows, total, err
}

// FindByEmployeeAndMonth matches the date text against "YYYY-MM%", so month
// must already be in that form.
func (r *repository) FindByEmployeeAndMonth(ctx context.Context, employeeID, month string) ([]Attendance, error) {
	var rows []Attendance
	err := r.conn(ctx).
		Where("employee_id = ?", employeeID).
		Where("CAST(attendance_date AS TEXT) LIKE ?", month+"%").
		Order("attendance_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, a *Attendance) error {
	return r.conn(ctx).Omit("Employee").Save(a).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.conn(ctx).Delete(&Attendance{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertLeaveDays writes one leave row per date, overwriting whatever was
// recorded for those dates.
func (r *repository) UpsertLeaveDays(ctx context.Context, employeeID uuid.UUID, dates []time.Time, notes string) error {
	if len(dates) == 0 {
		return nil
	}

	rows := make([]Attendance, len(dates))
	for i, d := range dates {
		n := notes
		rows[i] = Attendance{
			ID:             uuid.New(),
			EmployeeID:     employeeID,
			AttendanceDate: d,
			Status:         StatusLeave,
			Notes:          &n,
		}
	}

	return r.conn(ctx).
		Omit("Employee").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "employee_id"}, {Name: "attendance_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "notes", "check_in", "check_out", "hours_worked", "updated_at",
			}),
		}).
		Create(&rows).Error
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
