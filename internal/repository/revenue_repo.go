package repository

import (
	"context"

	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RevenueRepository interface {
	FindByDate(ctx context.Context, date string) (*model.DailyRevenue, error)
	// FindByDateForUpdate locks the aggregate row for the surrounding
	// transaction so concurrent writers serialize on it.
	FindByDateForUpdate(ctx context.Context, date string) (*model.DailyRevenue, error)
	// Create inserts the aggregate row for a new date. Returns false when a
	// concurrent writer already inserted the date; the caller re-locks the
	// existing row and updates it instead.
	Create(ctx context.Context, revenue *model.DailyRevenue) (bool, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.DailyRevenue, error)
	ListByDateRange(ctx context.Context, startDate, endDate string) ([]model.DailyRevenue, error)
}

type revenueRepository struct {
	db *gorm.DB
}

func NewRevenueRepository(db *gorm.DB) RevenueRepository {
	return &revenueRepository{db: db}
}

func (r *revenueRepository) FindByDate(ctx context.Context, date string) (*model.DailyRevenue, error) {
	var revenue model.DailyRevenue
	if err := GetDB(ctx, r.db).First(&revenue, "date = ?", date).Error; err != nil {
		return nil, err
	}
	return &revenue, nil
}

func (r *revenueRepository) FindByDateForUpdate(ctx context.Context, date string) (*model.DailyRevenue, error) {
	var revenue model.DailyRevenue
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&revenue, "date = ?", date).Error; err != nil {
		return nil, err
	}
	return &revenue, nil
}

func (r *revenueRepository) Create(ctx context.Context, revenue *model.DailyRevenue) (bool, error) {
	// ON CONFLICT DO NOTHING instead of a plain insert: a unique violation
	// would abort the whole transaction on Postgres, making the caller's
	// re-fetch fail too.
	result := GetDB(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoNothing: true,
		}).
		Create(revenue)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *revenueRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return GetDB(ctx, r.db).
		Model(&model.DailyRevenue{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *revenueRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DailyRevenue, error) {
	var revenue model.DailyRevenue
	if err := GetDB(ctx, r.db).First(&revenue, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &revenue, nil
}

func (r *revenueRepository) ListByDateRange(ctx context.Context, startDate, endDate string) ([]model.DailyRevenue, error) {
	var revenues []model.DailyRevenue
	if err := GetDB(ctx, r.db).
		Where("date >= ? AND date <= ?", startDate, endDate).
		Order("date desc").
		Find(&revenues).Error; err != nil {
		return nil, err
	}
	return revenues, nil
}
