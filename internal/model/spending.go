package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Spending represents a single expense entry attributed to a calendar date.
// SpendingDate is the date the expense belongs to, not when it was recorded.
type Spending struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Description  string          `gorm:"type:text;not null" json:"description"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	SpendingDate string          `gorm:"type:varchar(10);not null;index" json:"spending_date"` // YYYY-MM-DD
	ImagePath    string          `gorm:"type:text" json:"image_path"`                          // receipt photo, optional
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
