package repository

import (
	"context"
	"errors"

	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// FindByIDForUpdate locks the order row (and its credit info) for the
	// duration of the surrounding transaction. Must be called inside RunInTx.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, page, limit int) ([]model.Order, int64, error)
	ListRecent(ctx context.Context, limit int) ([]model.Order, error)
	ListByPaymentMethod(ctx context.Context, method string) ([]model.Order, error)
	UpdateCreditInfo(ctx context.Context, creditInfoID uuid.UUID, fields map[string]interface{}) error
	CreatePaymentRecord(ctx context.Context, record *model.PaymentRecord) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	// Items and CreditInfo (with its initial payment record) are inserted
	// through GORM associations in the same statement batch.
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("CreditInfo").
		Preload("CreditInfo.PaymentHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date ASC")
		}).
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}

	// Lock the ledger row too; a concurrent payment must not read stale totals.
	var creditInfo model.CreditInfo
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&creditInfo, "order_id = ?", id).Error
	if err == nil {
		order.CreditInfo = &creditInfo
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, page, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.
		Preload("Items").
		Preload("CreditInfo").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	var orders []model.Order
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("CreditInfo").
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByPaymentMethod filters on the payment method only. Settlement-status
// filtering and ordering of the result happen in the service layer.
func (r *orderRepository) ListByPaymentMethod(ctx context.Context, method string) ([]model.Order, error) {
	var orders []model.Order
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("CreditInfo").
		Preload("CreditInfo.PaymentHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date ASC")
		}).
		Where("payment_method = ?", method).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateCreditInfo(ctx context.Context, creditInfoID uuid.UUID, fields map[string]interface{}) error {
	return GetDB(ctx, r.db).
		Model(&model.CreditInfo{}).
		Where("id = ?", creditInfoID).
		Updates(fields).Error
}

func (r *orderRepository) CreatePaymentRecord(ctx context.Context, record *model.PaymentRecord) error {
	return GetDB(ctx, r.db).Create(record).Error
}
