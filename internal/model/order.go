package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod enum constants
const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodQRIS   = "qris"
	PaymentMethodCredit = "credit"
)

// Order represents a completed checkout transaction.
type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"` // sum of item subtotals
	PaymentMethod string          `gorm:"type:varchar(20);not null;index" json:"payment_method"`
	PaymentAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"payment_amount"` // amount tendered at checkout
	Change        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"change"`
	CustomerName  string          `gorm:"type:varchar(255)" json:"customer_name"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreditInfo    *CreditInfo     `gorm:"foreignKey:OrderID" json:"credit_info,omitempty"` // present only for credit orders
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderItem represents a line item within an Order
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	Quantity    int             `gorm:"type:int;not null" json:"quantity"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"subtotal"` // price * quantity
}

// CreditInfo is the debt ledger attached to a credit-method order.
// Invariants: RemainingDebt = order total - TotalPaid, IsPaid iff
// RemainingDebt <= 0, and TotalPaid equals the sum of payment amounts.
type CreditInfo struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	TotalPaid       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_paid"`
	RemainingDebt   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"remaining_debt"`
	IsPaid          bool            `gorm:"not null;default:false" json:"is_paid"`
	LastPaymentDate *time.Time      `json:"last_payment_date,omitempty"`
	PaymentHistory  []PaymentRecord `gorm:"foreignKey:CreditInfoID" json:"payment_history"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PaymentRecord is one installment against a credit order's debt
type PaymentRecord struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreditInfoID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"credit_info_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	PaymentMethod string          `gorm:"type:varchar(20);not null" json:"payment_method"` // cash, card, qris
	Note          string          `gorm:"type:text" json:"note"`
	PaymentDate   time.Time       `gorm:"not null" json:"payment_date"`
}
