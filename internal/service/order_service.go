package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/model"
	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/repository"
	ws "github.com/ahmad-fahrudin/point-of-sales-backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- DTOs ---

type OrderItemRequest struct {
	ProductID   string `json:"product_id" binding:"required"`
	ProductName string `json:"product_name" binding:"required"`
	Price       string `json:"price" binding:"required"` // decimal string
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string             `json:"payment_method" binding:"required,oneof=cash card qris credit"`
	PaymentAmount string             `json:"payment_amount" binding:"required"` // amount tendered, decimal string
	CustomerName  string             `json:"customer_name"`                     // required when payment_method=credit
}

type AddPaymentRequest struct {
	Amount        string `json:"amount" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=cash card qris"`
	Note          string `json:"note"`
}

type PaymentRecordResponse struct {
	ID            string `json:"id"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	Note          string `json:"note"`
	PaymentDate   string `json:"payment_date"`
}

type CreditInfoResponse struct {
	TotalPaid       string                  `json:"total_paid"`
	RemainingDebt   string                  `json:"remaining_debt"`
	IsPaid          bool                    `json:"is_paid"`
	LastPaymentDate *string                 `json:"last_payment_date,omitempty"`
	PaymentHistory  []PaymentRecordResponse `json:"payment_history"`
}

type OrderItemResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	Items         []OrderItemResponse `json:"items"`
	TotalAmount   string              `json:"total_amount"`
	PaymentMethod string              `json:"payment_method"`
	PaymentAmount string              `json:"payment_amount"`
	Change        string              `json:"change"`
	CustomerName  string              `json:"customer_name,omitempty"`
	CreditInfo    *CreditInfoResponse `json:"credit_info,omitempty"`
	CreatedAt     string              `json:"created_at"`
}

// --- Interface ---

type OrderService interface {
	Create(ctx context.Context, req CreateOrderRequest) (OrderResponse, error)
	// AddPayment records one installment against a credit order's debt. The
	// read-modify-write runs inside a transaction holding a row lock on the
	// order, so concurrent payments against the same order serialize and
	// cannot jointly overpay the debt.
	AddPayment(ctx context.Context, orderID string, req AddPaymentRequest) (OrderResponse, error)
	GetByID(ctx context.Context, orderID string) (OrderResponse, error)
	GetAll(ctx context.Context, page, limit int) ([]OrderResponse, int64, error)
	GetRecent(ctx context.Context, limit int) ([]OrderResponse, error)
	// GetCreditOrders returns credit orders, newest first. The store query
	// filters on payment method only; settlement filtering and ordering are
	// applied here over the fetched set.
	GetCreditOrders(ctx context.Context, includeFullyPaid bool) ([]OrderResponse, error)
}

type orderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	txManager     repository.TransactionManager
	reportService ReportService
	hub           *ws.Hub
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	txManager repository.TransactionManager,
	reportService ReportService,
	hub *ws.Hub,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		txManager:     txManager,
		reportService: reportService,
		hub:           hub,
	}
}

// --- Implementation ---

func (s *orderService) Create(ctx context.Context, req CreateOrderRequest) (OrderResponse, error) {
	if len(req.Items) == 0 {
		return OrderResponse{}, fmt.Errorf("order must contain at least one item")
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	totalAmount := decimal.Zero
	for i, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return OrderResponse{}, fmt.Errorf("invalid product_id at item %d: %w", i, err)
		}
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return OrderResponse{}, fmt.Errorf("invalid price at item %d: %w", i, err)
		}
		if price.IsNegative() {
			return OrderResponse{}, fmt.Errorf("price must not be negative at item %d", i)
		}
		if item.Quantity <= 0 {
			return OrderResponse{}, fmt.Errorf("quantity must be positive at item %d", i)
		}

		subtotal := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, model.OrderItem{
			ProductID:   productID,
			ProductName: item.ProductName,
			Price:       price,
			Quantity:    item.Quantity,
			Subtotal:    subtotal,
		})
		totalAmount = totalAmount.Add(subtotal)
	}

	paymentAmount, err := decimal.NewFromString(req.PaymentAmount)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("invalid payment_amount: %w", err)
	}
	if paymentAmount.IsNegative() {
		return OrderResponse{}, fmt.Errorf("payment_amount must not be negative")
	}

	change := decimal.Zero
	switch req.PaymentMethod {
	case model.PaymentMethodCredit:
		if req.CustomerName == "" {
			return OrderResponse{}, fmt.Errorf("customer_name is required for credit orders")
		}
	case model.PaymentMethodCash, model.PaymentMethodCard, model.PaymentMethodQRIS:
		if paymentAmount.LessThan(totalAmount) {
			return OrderResponse{}, fmt.Errorf("payment_amount is less than the order total %s", totalAmount.StringFixed(2))
		}
		change = paymentAmount.Sub(totalAmount)
	default:
		return OrderResponse{}, fmt.Errorf("unsupported payment method %q", req.PaymentMethod)
	}

	order := &model.Order{
		Items:         items,
		TotalAmount:   totalAmount,
		PaymentMethod: req.PaymentMethod,
		PaymentAmount: paymentAmount,
		Change:        change,
		CustomerName:  req.CustomerName,
	}

	if req.PaymentMethod == model.PaymentMethodCredit {
		remainingDebt := totalAmount.Sub(paymentAmount)
		creditInfo := &model.CreditInfo{
			TotalPaid:     paymentAmount,
			RemainingDebt: remainingDebt,
			IsPaid:        remainingDebt.LessThanOrEqual(decimal.Zero),
		}
		if paymentAmount.IsPositive() {
			now := time.Now()
			creditInfo.LastPaymentDate = &now
			creditInfo.PaymentHistory = []model.PaymentRecord{{
				Amount:        paymentAmount,
				PaymentMethod: model.PaymentMethodCash, // first installment is taken in cash at the counter
				Note:          "Initial payment",
				PaymentDate:   now,
			}}
		}
		order.CreditInfo = creditInfo
	}

	// Order, items, and ledger persist atomically. If this fails nothing
	// else runs.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.orderRepo.Create(txCtx, order)
	})
	if err != nil {
		return OrderResponse{}, fmt.Errorf("failed to create order: %w", err)
	}

	// Stock sync and revenue aggregation are denormalized side effects; a
	// failure here must not fail the already-persisted order.
	s.syncProductStock(ctx, order.Items)

	revenueAmount := totalAmount
	if req.PaymentMethod == model.PaymentMethodCredit {
		revenueAmount = paymentAmount
	}
	if revenueAmount.IsPositive() {
		logBestEffort("daily revenue update", s.reportService.AddRevenue(ctx, Today(), revenueAmount))
	}

	if s.hub != nil {
		s.hub.NotifyChange(ws.CollectionOrders, ws.ActionCreated, order.ID.String())
	}

	return toOrderResponse(*order), nil
}

func (s *orderService) AddPayment(ctx context.Context, orderID string, req AddPaymentRequest) (OrderResponse, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("invalid order id: %w", ErrInvalidID)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("invalid amount: %w", err)
	}
	if !amount.IsPositive() {
		return OrderResponse{}, fmt.Errorf("amount must be greater than zero")
	}

	switch req.PaymentMethod {
	case model.PaymentMethodCash, model.PaymentMethodCard, model.PaymentMethodQRIS:
	default:
		return OrderResponse{}, fmt.Errorf("unsupported payment method %q for debt payment", req.PaymentMethod)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, findErr := s.orderRepo.FindByIDForUpdate(txCtx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return findErr
		}

		if order.PaymentMethod != model.PaymentMethodCredit {
			return ErrNotCreditOrder
		}
		if order.CreditInfo == nil {
			return ErrCreditInfoMissing
		}
		if order.CreditInfo.IsPaid {
			return ErrCreditSettled
		}
		if amount.GreaterThan(order.CreditInfo.RemainingDebt) {
			return fmt.Errorf("%w (remaining: %s)", ErrPaymentExceedsDebt, order.CreditInfo.RemainingDebt.StringFixed(2))
		}

		now := time.Now()
		record := &model.PaymentRecord{
			CreditInfoID:  order.CreditInfo.ID,
			Amount:        amount,
			PaymentMethod: req.PaymentMethod,
			Note:          req.Note,
			PaymentDate:   now,
		}
		if createErr := s.orderRepo.CreatePaymentRecord(txCtx, record); createErr != nil {
			return createErr
		}

		newTotalPaid := order.CreditInfo.TotalPaid.Add(amount)
		newRemainingDebt := order.TotalAmount.Sub(newTotalPaid)
		return s.orderRepo.UpdateCreditInfo(txCtx, order.CreditInfo.ID, map[string]interface{}{
			"total_paid":        newTotalPaid,
			"remaining_debt":    newRemainingDebt,
			"is_paid":           newRemainingDebt.LessThanOrEqual(decimal.Zero),
			"last_payment_date": now,
		})
	})
	if err != nil {
		return OrderResponse{}, err
	}

	// Revenue is attributed to the payment's own date, not the order's.
	logBestEffort("daily revenue update", s.reportService.AddRevenue(ctx, Today(), amount))

	if s.hub != nil {
		s.hub.NotifyChange(ws.CollectionOrders, ws.ActionUpdated, orderID)
	}

	return s.GetByID(ctx, orderID)
}

func (s *orderService) GetByID(ctx context.Context, orderID string) (OrderResponse, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("invalid order id: %w", ErrInvalidID)
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderResponse{}, ErrOrderNotFound
		}
		return OrderResponse{}, fmt.Errorf("failed to fetch order: %w", err)
	}

	return toOrderResponse(*order), nil
}

func (s *orderService) GetAll(ctx context.Context, page, limit int) ([]OrderResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	orders, total, err := s.orderRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	result := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, toOrderResponse(o))
	}
	return result, total, nil
}

func (s *orderService) GetRecent(ctx context.Context, limit int) ([]OrderResponse, error) {
	if limit <= 0 {
		limit = 10
	}

	orders, err := s.orderRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent orders: %w", err)
	}

	result := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, toOrderResponse(o))
	}
	return result, nil
}

func (s *orderService) GetCreditOrders(ctx context.Context, includeFullyPaid bool) ([]OrderResponse, error) {
	orders, err := s.orderRepo.ListByPaymentMethod(ctx, model.PaymentMethodCredit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch credit orders: %w", err)
	}

	filtered := orders[:0]
	for _, o := range orders {
		if !includeFullyPaid && o.CreditInfo != nil && o.CreditInfo.IsPaid {
			continue
		}
		filtered = append(filtered, o)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	result := make([]OrderResponse, 0, len(filtered))
	for _, o := range filtered {
		result = append(result, toOrderResponse(o))
	}
	return result, nil
}

// --- Helpers ---

// syncProductStock decrements stock for each sold item, clamped at zero.
// Failures are logged; the order itself has already been persisted.
func (s *orderService) syncProductStock(ctx context.Context, items []model.OrderItem) {
	for _, item := range items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			logrus.WithError(err).WithField("product_id", item.ProductID).Warn("stock sync: product lookup failed")
			continue
		}

		newStock := product.Stock - item.Quantity
		if newStock < 0 {
			newStock = 0
		}
		if err := s.productRepo.UpdateStock(ctx, item.ProductID, newStock); err != nil {
			logrus.WithError(err).WithField("product_id", item.ProductID).Warn("stock sync: update failed")
		}
	}
}

func toOrderResponse(o model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Price:       item.Price.StringFixed(2),
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal.StringFixed(2),
		})
	}

	resp := OrderResponse{
		ID:            o.ID.String(),
		Items:         items,
		TotalAmount:   o.TotalAmount.StringFixed(2),
		PaymentMethod: o.PaymentMethod,
		PaymentAmount: o.PaymentAmount.StringFixed(2),
		Change:        o.Change.StringFixed(2),
		CustomerName:  o.CustomerName,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}

	if o.CreditInfo != nil {
		history := make([]PaymentRecordResponse, 0, len(o.CreditInfo.PaymentHistory))
		for _, p := range o.CreditInfo.PaymentHistory {
			history = append(history, PaymentRecordResponse{
				ID:            p.ID.String(),
				Amount:        p.Amount.StringFixed(2),
				PaymentMethod: p.PaymentMethod,
				Note:          p.Note,
				PaymentDate:   p.PaymentDate.Format(time.RFC3339),
			})
		}

		creditResp := &CreditInfoResponse{
			TotalPaid:      o.CreditInfo.TotalPaid.StringFixed(2),
			RemainingDebt:  o.CreditInfo.RemainingDebt.StringFixed(2),
			IsPaid:         o.CreditInfo.IsPaid,
			PaymentHistory: history,
		}
		if o.CreditInfo.LastPaymentDate != nil {
			formatted := o.CreditInfo.LastPaymentDate.Format(time.RFC3339)
			creditResp.LastPaymentDate = &formatted
		}
		resp.CreditInfo = creditResp
	}

	return resp
}
