package service

import (
	"context"
	"sort"
	"time"

	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory fakes for the repository interfaces. Single-goroutine use only.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- revenue repo ---

type fakeRevenueRepo struct {
	byDate map[string]*model.DailyRevenue
}

func newFakeRevenueRepo() *fakeRevenueRepo {
	return &fakeRevenueRepo{byDate: make(map[string]*model.DailyRevenue)}
}

func (r *fakeRevenueRepo) FindByDate(_ context.Context, date string) (*model.DailyRevenue, error) {
	if rev, ok := r.byDate[date]; ok {
		return rev, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRevenueRepo) FindByDateForUpdate(ctx context.Context, date string) (*model.DailyRevenue, error) {
	return r.FindByDate(ctx, date)
}

func (r *fakeRevenueRepo) Create(_ context.Context, revenue *model.DailyRevenue) (bool, error) {
	if _, ok := r.byDate[revenue.Date]; ok {
		return false, nil
	}
	revenue.ID = uuid.New()
	revenue.CreatedAt = time.Now()
	r.byDate[revenue.Date] = revenue
	return true, nil
}

func (r *fakeRevenueRepo) UpdateFields(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	for _, rev := range r.byDate {
		if rev.ID != id {
			continue
		}
		if v, ok := fields["total_revenue"]; ok {
			rev.TotalRevenue = v.(decimal.Decimal)
		}
		if v, ok := fields["total_orders"]; ok {
			rev.TotalOrders = v.(int)
		}
		if v, ok := fields["total_spending"]; ok {
			rev.TotalSpending = v.(decimal.Decimal)
		}
		if v, ok := fields["net_revenue"]; ok {
			rev.NetRevenue = v.(decimal.Decimal)
		}
		rev.UpdatedAt = time.Now()
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRevenueRepo) FindByID(_ context.Context, id uuid.UUID) (*model.DailyRevenue, error) {
	for _, rev := range r.byDate {
		if rev.ID == id {
			return rev, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRevenueRepo) ListByDateRange(_ context.Context, startDate, endDate string) ([]model.DailyRevenue, error) {
	var result []model.DailyRevenue
	for _, rev := range r.byDate {
		if rev.Date >= startDate && rev.Date <= endDate {
			result = append(result, *rev)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date > result[j].Date })
	return result, nil
}

// --- spending repo ---

type fakeSpendingRepo struct {
	byID map[uuid.UUID]*model.Spending
}

func newFakeSpendingRepo() *fakeSpendingRepo {
	return &fakeSpendingRepo{byID: make(map[uuid.UUID]*model.Spending)}
}

func (r *fakeSpendingRepo) Create(_ context.Context, spending *model.Spending) error {
	spending.ID = uuid.New()
	spending.CreatedAt = time.Now()
	spending.UpdatedAt = spending.CreatedAt
	r.byID[spending.ID] = spending
	return nil
}

func (r *fakeSpendingRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Spending, error) {
	if sp, ok := r.byID[id]; ok {
		clone := *sp
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSpendingRepo) Update(_ context.Context, spending *model.Spending) error {
	if _, ok := r.byID[spending.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	spending.UpdatedAt = time.Now()
	clone := *spending
	r.byID[spending.ID] = &clone
	return nil
}

func (r *fakeSpendingRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *fakeSpendingRepo) List(_ context.Context, page, limit int) ([]model.Spending, int64, error) {
	var all []model.Spending
	for _, sp := range r.byID {
		all = append(all, *sp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SpendingDate > all[j].SpendingDate })

	total := int64(len(all))
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeSpendingRepo) ListByDateRange(_ context.Context, startDate, endDate string) ([]model.Spending, error) {
	var result []model.Spending
	for _, sp := range r.byID {
		if sp.SpendingDate >= startDate && sp.SpendingDate <= endDate {
			result = append(result, *sp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SpendingDate > result[j].SpendingDate })
	return result, nil
}

func (r *fakeSpendingRepo) SumByDate(_ context.Context, date string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, sp := range r.byID {
		if sp.SpendingDate == date {
			sum = sum.Add(sp.TotalAmount)
		}
	}
	return sum, nil
}

// --- order repo ---

type fakeOrderRepo struct {
	byID map[uuid.UUID]*model.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{byID: make(map[uuid.UUID]*model.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *model.Order) error {
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	if order.CreditInfo != nil {
		order.CreditInfo.ID = uuid.New()
		order.CreditInfo.OrderID = order.ID
		for i := range order.CreditInfo.PaymentHistory {
			order.CreditInfo.PaymentHistory[i].ID = uuid.New()
			order.CreditInfo.PaymentHistory[i].CreditInfoID = order.CreditInfo.ID
		}
	}
	r.byID[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	if o, ok := r.byID[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeOrderRepo) List(_ context.Context, page, limit int) ([]model.Order, int64, error) {
	all := r.sorted()
	total := int64(len(all))
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeOrderRepo) ListRecent(_ context.Context, limit int) ([]model.Order, error) {
	all := r.sorted()
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeOrderRepo) ListByPaymentMethod(_ context.Context, method string) ([]model.Order, error) {
	var result []model.Order
	for _, o := range r.byID {
		if o.PaymentMethod == method {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (r *fakeOrderRepo) UpdateCreditInfo(_ context.Context, creditInfoID uuid.UUID, fields map[string]interface{}) error {
	for _, o := range r.byID {
		if o.CreditInfo == nil || o.CreditInfo.ID != creditInfoID {
			continue
		}
		if v, ok := fields["total_paid"]; ok {
			o.CreditInfo.TotalPaid = v.(decimal.Decimal)
		}
		if v, ok := fields["remaining_debt"]; ok {
			o.CreditInfo.RemainingDebt = v.(decimal.Decimal)
		}
		if v, ok := fields["is_paid"]; ok {
			o.CreditInfo.IsPaid = v.(bool)
		}
		if v, ok := fields["last_payment_date"]; ok {
			t := v.(time.Time)
			o.CreditInfo.LastPaymentDate = &t
		}
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) CreatePaymentRecord(_ context.Context, record *model.PaymentRecord) error {
	record.ID = uuid.New()
	for _, o := range r.byID {
		if o.CreditInfo != nil && o.CreditInfo.ID == record.CreditInfoID {
			o.CreditInfo.PaymentHistory = append(o.CreditInfo.PaymentHistory, *record)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) sorted() []model.Order {
	var all []model.Order
	for _, o := range r.byID {
		all = append(all, *o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all
}

// --- category repo ---

type fakeCategoryRepo struct {
	byID map[uuid.UUID]*model.Category
	// products per category, used for the delete guard
	productCount map[uuid.UUID]int64
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{
		byID:         make(map[uuid.UUID]*model.Category),
		productCount: make(map[uuid.UUID]int64),
	}
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *model.Category) error {
	category.ID = uuid.New()
	category.CreatedAt = time.Now()
	r.byID[category.ID] = category
	return nil
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	if c, ok := r.byID[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *model.Category) error {
	if _, ok := r.byID[category.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *category
	r.byID[category.ID] = &clone
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	var all []model.Category
	for _, c := range r.byID {
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func (r *fakeCategoryRepo) CountProducts(_ context.Context, categoryID uuid.UUID) (int64, error) {
	return r.productCount[categoryID], nil
}

// --- product repo ---

type fakeProductRepo struct {
	byID map[uuid.UUID]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{byID: make(map[uuid.UUID]*model.Product)}
}

func (r *fakeProductRepo) Create(_ context.Context, product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = time.Now()
	r.byID[product.ID] = product
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	if p, ok := r.byID[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) Update(_ context.Context, product *model.Product) error {
	if _, ok := r.byID[product.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *product
	r.byID[product.ID] = &clone
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *fakeProductRepo) List(_ context.Context, page, limit int) ([]model.Product, int64, error) {
	var all []model.Product
	for _, p := range r.byID {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, int64(len(all)), nil
}

func (r *fakeProductRepo) UpdateStock(_ context.Context, id uuid.UUID, stock int) error {
	if p, ok := r.byID[id]; ok {
		p.Stock = stock
		return nil
	}
	return gorm.ErrRecordNotFound
}
