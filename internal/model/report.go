package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyRevenue is the denormalized per-date summary of revenue and spending.
// Exactly one row exists per date; it is created lazily by the first
// revenue-affecting event and never deleted.
type DailyRevenue struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Date          string          `gorm:"type:varchar(10);not null;uniqueIndex" json:"date"` // YYYY-MM-DD
	TotalRevenue  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_revenue"`
	TotalOrders   int             `gorm:"type:int;not null;default:0" json:"total_orders"`
	TotalSpending decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_spending"`
	NetRevenue    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"net_revenue"` // TotalRevenue - TotalSpending
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
