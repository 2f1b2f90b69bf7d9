package counter

import (
	"context"

	"gorm.io/gorm"
)

// Counter rows live in sequence_counters keyed by name. The table is created
// by AutoMigrate through the Counter entity.
type Counter struct {
	Name      string `gorm:"type:varchar(60);primaryKey"`
	LastValue int64  `gorm:"type:bigint;not null;default:0"`
}

func (Counter) TableName() string {
	return "sequence_counters"
}

//go:generate mockgen -destination=mock/counter_repo_mock.go -package=mock . Repository
type Repository interface {
	GetNextValue(ctx context.Context, counterType string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	var nextValue int64

	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO sequence_counters (name, last_value)
		VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE
		SET last_value = sequence_counters.last_value + 1
		RETURNING last_value
	`, counterType).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}
