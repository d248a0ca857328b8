package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newOrderTestEnv() (OrderService, *fakeOrderRepo, *fakeProductRepo, *fakeRevenueRepo) {
	orderRepo := newFakeOrderRepo()
	productRepo := newFakeProductRepo()
	revenueRepo := newFakeRevenueRepo()
	spendingRepo := newFakeSpendingRepo()

	reportSvc := NewReportService(revenueRepo, spendingRepo, fakeTxManager{}, nil)
	orderSvc := NewOrderService(orderRepo, productRepo, fakeTxManager{}, reportSvc, nil)
	return orderSvc, orderRepo, productRepo, revenueRepo
}

func seedProduct(t *testing.T, productRepo *fakeProductRepo, name string, price string, stock int) uuid.UUID {
	t.Helper()
	product := &model.Product{
		Name:  name,
		Price: mustDecimal(t, price),
		Stock: stock,
	}
	if err := productRepo.Create(context.Background(), product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product.ID
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func createCreditOrder(t *testing.T, svc OrderService, productRepo *fakeProductRepo, total, upfront string) OrderResponse {
	t.Helper()
	productID := seedProduct(t, productRepo, "Kopi Susu", total, 100)
	resp, err := svc.Create(context.Background(), CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: productID.String(), ProductName: "Kopi Susu", Price: total, Quantity: 1},
		},
		PaymentMethod: model.PaymentMethodCredit,
		PaymentAmount: upfront,
		CustomerName:  "Budi",
	})
	if err != nil {
		t.Fatalf("create credit order: %v", err)
	}
	return resp
}

func TestCreateCashOrderComputesChangeAndRevenue(t *testing.T) {
	svc, _, productRepo, revenueRepo := newOrderTestEnv()
	productID := seedProduct(t, productRepo, "Nasi Goreng", "25000", 10)

	resp, err := svc.Create(context.Background(), CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: productID.String(), ProductName: "Nasi Goreng", Price: "25000", Quantity: 2},
		},
		PaymentMethod: model.PaymentMethodCash,
		PaymentAmount: "60000",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if resp.TotalAmount != "50000.00" {
		t.Errorf("total = %s, want 50000.00", resp.TotalAmount)
	}
	if resp.Change != "10000.00" {
		t.Errorf("change = %s, want 10000.00", resp.Change)
	}
	if resp.CreditInfo != nil {
		t.Errorf("cash order must not carry credit info")
	}

	// Stock decremented by sold quantity.
	product, err := productRepo.FindByID(context.Background(), productID)
	if err != nil {
		t.Fatalf("fetch product: %v", err)
	}
	if product.Stock != 8 {
		t.Errorf("stock = %d, want 8", product.Stock)
	}

	// Full order total lands in today's aggregate.
	agg, ok := revenueRepo.byDate[Today()]
	if !ok {
		t.Fatalf("no aggregate created for %s", Today())
	}
	if !agg.TotalRevenue.Equal(mustDecimal(t, "50000")) {
		t.Errorf("total revenue = %s, want 50000", agg.TotalRevenue)
	}
	if agg.TotalOrders != 1 {
		t.Errorf("total orders = %d, want 1", agg.TotalOrders)
	}
	if !agg.NetRevenue.Equal(mustDecimal(t, "50000")) {
		t.Errorf("net revenue = %s, want 50000", agg.NetRevenue)
	}
}

func TestCreateCashOrderRejectsInsufficientPayment(t *testing.T) {
	svc, _, productRepo, _ := newOrderTestEnv()
	productID := seedProduct(t, productRepo, "Es Teh", "5000", 10)

	_, err := svc.Create(context.Background(), CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: productID.String(), ProductName: "Es Teh", Price: "5000", Quantity: 2},
		},
		PaymentMethod: model.PaymentMethodCash,
		PaymentAmount: "8000",
	})
	if err == nil {
		t.Fatal("expected error for tendered amount below total")
	}
}

func TestCreateCreditOrderWithPartialUpfront(t *testing.T) {
	svc, _, productRepo, revenueRepo := newOrderTestEnv()

	resp := createCreditOrder(t, svc, productRepo, "100000", "30000")

	if resp.CreditInfo == nil {
		t.Fatal("credit order must carry credit info")
	}
	if resp.CreditInfo.TotalPaid != "30000.00" {
		t.Errorf("total paid = %s, want 30000.00", resp.CreditInfo.TotalPaid)
	}
	if resp.CreditInfo.RemainingDebt != "70000.00" {
		t.Errorf("remaining debt = %s, want 70000.00", resp.CreditInfo.RemainingDebt)
	}
	if resp.CreditInfo.IsPaid {
		t.Error("order with remaining debt must not be settled")
	}
	if len(resp.CreditInfo.PaymentHistory) != 1 {
		t.Fatalf("payment history length = %d, want 1", len(resp.CreditInfo.PaymentHistory))
	}
	if resp.CreditInfo.PaymentHistory[0].Amount != "30000.00" {
		t.Errorf("initial payment = %s, want 30000.00", resp.CreditInfo.PaymentHistory[0].Amount)
	}

	// Only the tendered part counts as revenue, not the full total.
	agg, ok := revenueRepo.byDate[Today()]
	if !ok {
		t.Fatalf("no aggregate created for %s", Today())
	}
	if !agg.TotalRevenue.Equal(mustDecimal(t, "30000")) {
		t.Errorf("total revenue = %s, want 30000", agg.TotalRevenue)
	}
}

func TestCreateCreditOrderWithoutUpfrontRecordsNoRevenue(t *testing.T) {
	svc, _, productRepo, revenueRepo := newOrderTestEnv()

	resp := createCreditOrder(t, svc, productRepo, "100000", "0")

	if resp.CreditInfo == nil {
		t.Fatal("credit order must carry credit info")
	}
	if len(resp.CreditInfo.PaymentHistory) != 0 {
		t.Errorf("payment history length = %d, want 0", len(resp.CreditInfo.PaymentHistory))
	}
	if resp.CreditInfo.LastPaymentDate != nil {
		t.Error("last payment date must be unset before any payment")
	}
	if len(revenueRepo.byDate) != 0 {
		t.Error("zero-upfront credit order must not create an aggregate")
	}
}

func TestCreateCreditOrderRequiresCustomerName(t *testing.T) {
	svc, _, productRepo, _ := newOrderTestEnv()
	productID := seedProduct(t, productRepo, "Kopi", "10000", 10)

	_, err := svc.Create(context.Background(), CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: productID.String(), ProductName: "Kopi", Price: "10000", Quantity: 1},
		},
		PaymentMethod: model.PaymentMethodCredit,
		PaymentAmount: "0",
	})
	if err == nil {
		t.Fatal("expected error for credit order without customer name")
	}
}

func TestAddPaymentReducesDebt(t *testing.T) {
	svc, _, productRepo, revenueRepo := newOrderTestEnv()
	order := createCreditOrder(t, svc, productRepo, "100000", "0")

	resp, err := svc.AddPayment(context.Background(), order.ID, AddPaymentRequest{
		Amount:        "40000",
		PaymentMethod: model.PaymentMethodCash,
		Note:          "first installment",
	})
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}

	ci := resp.CreditInfo
	if ci.TotalPaid != "40000.00" {
		t.Errorf("total paid = %s, want 40000.00", ci.TotalPaid)
	}
	if ci.RemainingDebt != "60000.00" {
		t.Errorf("remaining debt = %s, want 60000.00", ci.RemainingDebt)
	}
	if ci.IsPaid {
		t.Error("order must not be settled with debt remaining")
	}
	if len(ci.PaymentHistory) != 1 {
		t.Fatalf("payment history length = %d, want 1", len(ci.PaymentHistory))
	}
	if ci.LastPaymentDate == nil {
		t.Error("last payment date must be set after a payment")
	}

	// paid + remaining always equals the order total
	paid := mustDecimal(t, ci.TotalPaid)
	remaining := mustDecimal(t, ci.RemainingDebt)
	if !paid.Add(remaining).Equal(mustDecimal(t, order.TotalAmount)) {
		t.Errorf("paid %s + remaining %s != total %s", ci.TotalPaid, ci.RemainingDebt, order.TotalAmount)
	}

	agg, ok := revenueRepo.byDate[Today()]
	if !ok {
		t.Fatalf("no aggregate created for %s", Today())
	}
	if !agg.TotalRevenue.Equal(mustDecimal(t, "40000")) {
		t.Errorf("total revenue = %s, want 40000", agg.TotalRevenue)
	}
}

func TestAddPaymentSettlesDebt(t *testing.T) {
	svc, _, productRepo, _ := newOrderTestEnv()
	order := createCreditOrder(t, svc, productRepo, "100000", "0")

	if _, err := svc.AddPayment(context.Background(), order.ID, AddPaymentRequest{
		Amount:        "60000",
		PaymentMethod: model.PaymentMethodCash,
	}); err != nil {
		t.Fatalf("first payment: %v", err)
	}

	resp, err := svc.AddPayment(context.Background(), order.ID, AddPaymentRequest{
		Amount:        "40000",
		PaymentMethod: model.PaymentMethodQRIS,
	})
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}

	ci := resp.CreditInfo
	if !ci.IsPaid {
		t.Error("fully paid order must be settled")
	}
	if ci.RemainingDebt != "0.00" {
		t.Errorf("remaining debt = %s, want 0.00", ci.RemainingDebt)
	}
	if len(ci.PaymentHistory) != 2 {
		t.Errorf("payment history length = %d, want 2", len(ci.PaymentHistory))
	}
}

func TestAddPaymentRejectsOverpayment(t *testing.T) {
	svc, orderRepo, productRepo, revenueRepo := newOrderTestEnv()
	order := createCreditOrder(t, svc, productRepo, "100000", "0")

	_, err := svc.AddPayment(context.Background(), order.ID, AddPaymentRequest{
		Amount:        "150000",
		PaymentMethod: model.PaymentMethodCash,
	})
	if !errors.Is(err, ErrPaymentExceedsDebt) {
		t.Fatalf("err = %v, want ErrPaymentExceedsDebt", err)
	}

	// The rejected payment leaves the ledger untouched.
	id, _ := uuid.Parse(order.ID)
	stored := orderRepo.byID[id]
	if !stored.CreditInfo.TotalPaid.Equal(decimal.Zero) {
		t.Errorf("total paid = %s, want 0", stored.CreditInfo.TotalPaid)
	}
	if !stored.CreditInfo.RemainingDebt.Equal(mustDecimal(t, "100000")) {
		t.Errorf("remaining debt = %s, want 100000", stored.CreditInfo.RemainingDebt)
	}
	if len(stored.CreditInfo.PaymentHistory) != 0 {
		t.Errorf("payment history length = %d, want 0", len(stored.CreditInfo.PaymentHistory))
	}
	if len(revenueRepo.byDate) != 0 {
		t.Error("rejected payment must not touch the revenue aggregate")
	}
}

func TestAddPaymentRejectsSettledOrder(t *testing.T) {
	svc, _, productRepo, _ := newOrderTestEnv()
	order := createCreditOrder(t, svc, productRepo, "50000", "0")

	if _, err := svc.AddPayment(context.Background(), order.ID, AddPaymentRequest{
		Amount:        "50000",
		PaymentMethod: model.PaymentMethodCash,
	}); err != nil {
		t.Fatalf("settle order: %v", err)
	}

	_, err := svc.AddPayment(context.Background(), order.ID, AddPaymentRequest{
		Amount:        "1000",
		PaymentMethod: model.PaymentMethodCash,
	})
	if !errors.Is(err, ErrCreditSettled) {
		t.Fatalf("err = %v, want ErrCreditSettled", err)
	}
}

func TestAddPaymentRejectsNonCreditOrder(t *testing.T) {
	svc, _, productRepo, _ := newOrderTestEnv()
	productID := seedProduct(t, productRepo, "Teh", "5000", 10)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: productID.String(), ProductName: "Teh", Price: "5000", Quantity: 1},
		},
		PaymentMethod: model.PaymentMethodCash,
		PaymentAmount: "5000",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	_, err = svc.AddPayment(context.Background(), order.ID, AddPaymentRequest{
		Amount:        "1000",
		PaymentMethod: model.PaymentMethodCash,
	})
	if !errors.Is(err, ErrNotCreditOrder) {
		t.Fatalf("err = %v, want ErrNotCreditOrder", err)
	}
}

func TestAddPaymentUnknownOrder(t *testing.T) {
	svc, _, _, _ := newOrderTestEnv()

	_, err := svc.AddPayment(context.Background(), uuid.NewString(), AddPaymentRequest{
		Amount:        "1000",
		PaymentMethod: model.PaymentMethodCash,
	})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestGetOrderByMalformedID(t *testing.T) {
	svc, _, _, _ := newOrderTestEnv()

	_, err := svc.GetByID(context.Background(), "not-a-uuid")
	if !errors.Is(err, ErrInvalidID) {
		t.Fatalf("err = %v, want ErrInvalidID", err)
	}
}

func TestAddPaymentRejectsNonPositiveAmount(t *testing.T) {
	svc, _, productRepo, _ := newOrderTestEnv()
	order := createCreditOrder(t, svc, productRepo, "50000", "0")

	for _, amount := range []string{"0", "-100"} {
		_, err := svc.AddPayment(context.Background(), order.ID, AddPaymentRequest{
			Amount:        amount,
			PaymentMethod: model.PaymentMethodCash,
		})
		if err == nil {
			t.Errorf("amount %s: expected error", amount)
		}
	}
}

func TestGetCreditOrdersFiltersSettled(t *testing.T) {
	svc, orderRepo, productRepo, _ := newOrderTestEnv()

	open := createCreditOrder(t, svc, productRepo, "100000", "0")
	settled := createCreditOrder(t, svc, productRepo, "50000", "0")
	if _, err := svc.AddPayment(context.Background(), settled.ID, AddPaymentRequest{
		Amount:        "50000",
		PaymentMethod: model.PaymentMethodCash,
	}); err != nil {
		t.Fatalf("settle order: %v", err)
	}

	// Distinct creation times so the newest-first ordering is deterministic.
	openID, _ := uuid.Parse(open.ID)
	settledID, _ := uuid.Parse(settled.ID)
	orderRepo.byID[openID].CreatedAt = time.Now().Add(-time.Hour)
	orderRepo.byID[settledID].CreatedAt = time.Now()

	outstanding, err := svc.GetCreditOrders(context.Background(), false)
	if err != nil {
		t.Fatalf("get credit orders: %v", err)
	}
	if len(outstanding) != 1 {
		t.Fatalf("outstanding orders = %d, want 1", len(outstanding))
	}
	if outstanding[0].ID != open.ID {
		t.Errorf("got order %s, want %s", outstanding[0].ID, open.ID)
	}

	all, err := svc.GetCreditOrders(context.Background(), true)
	if err != nil {
		t.Fatalf("get credit orders: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all credit orders = %d, want 2", len(all))
	}
	if all[0].ID != settled.ID {
		t.Errorf("first order = %s, want newest %s", all[0].ID, settled.ID)
	}
}
