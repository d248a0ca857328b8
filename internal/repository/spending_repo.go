package repository

import (
	"context"

	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SpendingRepository interface {
	Create(ctx context.Context, spending *model.Spending) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Spending, error)
	Update(ctx context.Context, spending *model.Spending) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page, limit int) ([]model.Spending, int64, error)
	ListByDateRange(ctx context.Context, startDate, endDate string) ([]model.Spending, error)
	SumByDate(ctx context.Context, date string) (decimal.Decimal, error)
}

type spendingRepository struct {
	db *gorm.DB
}

func NewSpendingRepository(db *gorm.DB) SpendingRepository {
	return &spendingRepository{db: db}
}

func (r *spendingRepository) Create(ctx context.Context, spending *model.Spending) error {
	return GetDB(ctx, r.db).Create(spending).Error
}

func (r *spendingRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Spending, error) {
	var spending model.Spending
	if err := GetDB(ctx, r.db).First(&spending, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &spending, nil
}

func (r *spendingRepository) Update(ctx context.Context, spending *model.Spending) error {
	return GetDB(ctx, r.db).Save(spending).Error
}

func (r *spendingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Spending{}, "id = ?", id).Error
}

func (r *spendingRepository) List(ctx context.Context, page, limit int) ([]model.Spending, int64, error) {
	var spendings []model.Spending
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Spending{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("spending_date desc").Offset(offset).Limit(limit).Find(&spendings).Error; err != nil {
		return nil, 0, err
	}

	return spendings, total, nil
}

func (r *spendingRepository) ListByDateRange(ctx context.Context, startDate, endDate string) ([]model.Spending, error) {
	var spendings []model.Spending
	if err := GetDB(ctx, r.db).
		Where("spending_date >= ? AND spending_date <= ?", startDate, endDate).
		Order("spending_date desc").
		Find(&spendings).Error; err != nil {
		return nil, err
	}
	return spendings, nil
}

// SumByDate recomputes the full spending total for one date from its source
// rows. Used by the reconciler instead of incremental adjustment.
func (r *spendingRepository) SumByDate(ctx context.Context, date string) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	err := GetDB(ctx, r.db).
		Model(&model.Spending{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("spending_date = ?", date).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
