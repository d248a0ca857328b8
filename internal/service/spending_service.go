package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/model"
	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/repository"
	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/storage"
	ws "github.com/ahmad-fahrudin/point-of-sales-backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateSpendingRequest struct {
	Description  string `json:"description" binding:"required"`
	TotalAmount  string `json:"total_amount" binding:"required"` // decimal string
	SpendingDate string `json:"spending_date" binding:"required"`
	ImagePath    string `json:"image_path"`
}

type UpdateSpendingRequest struct {
	Description  string `json:"description" binding:"required"`
	TotalAmount  string `json:"total_amount" binding:"required"`
	SpendingDate string `json:"spending_date" binding:"required"`
	ImagePath    string `json:"image_path"`
}

type SpendingResponse struct {
	ID           string `json:"id"`
	Description  string `json:"description"`
	TotalAmount  string `json:"total_amount"`
	SpendingDate string `json:"spending_date"`
	ImagePath    string `json:"image_path,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// --- Interface ---

// SpendingService owns expense entries. Every mutation triggers a spending
// resync of the affected date's revenue aggregate; on a date move, both the
// old and the new date are resynced.
type SpendingService interface {
	Create(ctx context.Context, req CreateSpendingRequest) (SpendingResponse, error)
	Update(ctx context.Context, id string, req UpdateSpendingRequest) (SpendingResponse, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (SpendingResponse, error)
	GetAll(ctx context.Context, page, limit int) ([]SpendingResponse, int64, error)
	GetByDateRange(ctx context.Context, startDate, endDate string) ([]SpendingResponse, error)
}

type spendingService struct {
	spendingRepo  repository.SpendingRepository
	reportService ReportService
	receiptStore  storage.ReceiptStore
	hub           *ws.Hub
}

func NewSpendingService(
	spendingRepo repository.SpendingRepository,
	reportService ReportService,
	receiptStore storage.ReceiptStore,
	hub *ws.Hub,
) SpendingService {
	return &spendingService{
		spendingRepo:  spendingRepo,
		reportService: reportService,
		receiptStore:  receiptStore,
		hub:           hub,
	}
}

// --- Implementation ---

func (s *spendingService) Create(ctx context.Context, req CreateSpendingRequest) (SpendingResponse, error) {
	amount, date, err := parseSpendingFields(req.TotalAmount, req.SpendingDate)
	if err != nil {
		return SpendingResponse{}, err
	}

	spending := &model.Spending{
		Description:  strings.TrimSpace(req.Description),
		TotalAmount:  amount,
		SpendingDate: date,
		ImagePath:    req.ImagePath,
	}
	if spending.Description == "" {
		return SpendingResponse{}, fmt.Errorf("description must not be empty")
	}

	if err := s.spendingRepo.Create(ctx, spending); err != nil {
		return SpendingResponse{}, fmt.Errorf("failed to create spending: %w", err)
	}

	logBestEffort("spending resync", s.reportService.ResyncSpending(ctx, date))
	s.notify(ws.ActionCreated, spending.ID.String())

	return toSpendingResponse(*spending), nil
}

func (s *spendingService) Update(ctx context.Context, id string, req UpdateSpendingRequest) (SpendingResponse, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return SpendingResponse{}, fmt.Errorf("invalid spending id: %w", ErrInvalidID)
	}

	amount, date, err := parseSpendingFields(req.TotalAmount, req.SpendingDate)
	if err != nil {
		return SpendingResponse{}, err
	}

	// The previous record carries the previous attributed date; if the edit
	// moves the entry, that date's aggregate needs a resync too.
	spending, err := s.spendingRepo.FindByID(ctx, parsed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SpendingResponse{}, ErrSpendingNotFound
		}
		return SpendingResponse{}, fmt.Errorf("failed to fetch spending: %w", err)
	}
	previousDate := spending.SpendingDate

	spending.Description = strings.TrimSpace(req.Description)
	spending.TotalAmount = amount
	spending.SpendingDate = date
	spending.ImagePath = req.ImagePath
	if spending.Description == "" {
		return SpendingResponse{}, fmt.Errorf("description must not be empty")
	}

	if err := s.spendingRepo.Update(ctx, spending); err != nil {
		return SpendingResponse{}, fmt.Errorf("failed to update spending: %w", err)
	}

	if previousDate != date {
		logBestEffort("spending resync", s.reportService.ResyncSpending(ctx, previousDate))
	}
	logBestEffort("spending resync", s.reportService.ResyncSpending(ctx, date))
	s.notify(ws.ActionUpdated, id)

	return toSpendingResponse(*spending), nil
}

func (s *spendingService) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid spending id: %w", ErrInvalidID)
	}

	spending, err := s.spendingRepo.FindByID(ctx, parsed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSpendingNotFound
		}
		return fmt.Errorf("failed to fetch spending: %w", err)
	}

	// Receipt asset cleanup is best-effort; a dangling file never blocks the
	// record deletion.
	if spending.ImagePath != "" && s.receiptStore != nil {
		if removeErr := s.receiptStore.Remove(spending.ImagePath); removeErr != nil {
			logrus.WithError(removeErr).WithField("path", spending.ImagePath).Warn("receipt image removal failed")
		}
	}

	if err := s.spendingRepo.Delete(ctx, parsed); err != nil {
		return fmt.Errorf("failed to delete spending: %w", err)
	}

	logBestEffort("spending resync", s.reportService.ResyncSpending(ctx, spending.SpendingDate))
	s.notify(ws.ActionDeleted, id)

	return nil
}

func (s *spendingService) GetByID(ctx context.Context, id string) (SpendingResponse, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return SpendingResponse{}, fmt.Errorf("invalid spending id: %w", ErrInvalidID)
	}

	spending, err := s.spendingRepo.FindByID(ctx, parsed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SpendingResponse{}, ErrSpendingNotFound
		}
		return SpendingResponse{}, fmt.Errorf("failed to fetch spending: %w", err)
	}

	return toSpendingResponse(*spending), nil
}

func (s *spendingService) GetAll(ctx context.Context, page, limit int) ([]SpendingResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	spendings, total, err := s.spendingRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch spendings: %w", err)
	}

	result := make([]SpendingResponse, 0, len(spendings))
	for _, sp := range spendings {
		result = append(result, toSpendingResponse(sp))
	}
	return result, total, nil
}

func (s *spendingService) GetByDateRange(ctx context.Context, startDate, endDate string) ([]SpendingResponse, error) {
	if err := validateFilter(ReportFilter{StartDate: startDate, EndDate: endDate}); err != nil {
		return nil, err
	}

	spendings, err := s.spendingRepo.ListByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spendings: %w", err)
	}

	result := make([]SpendingResponse, 0, len(spendings))
	for _, sp := range spendings {
		result = append(result, toSpendingResponse(sp))
	}
	return result, nil
}

// --- Helpers ---

func (s *spendingService) notify(action, id string) {
	if s.hub != nil {
		s.hub.NotifyChange(ws.CollectionSpendings, action, id)
	}
}

func parseSpendingFields(totalAmount, spendingDate string) (decimal.Decimal, string, error) {
	amount, err := decimal.NewFromString(totalAmount)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("invalid total_amount: %w", err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, "", fmt.Errorf("total_amount must be greater than zero")
	}

	if _, err := time.Parse(DateLayout, spendingDate); err != nil {
		return decimal.Zero, "", fmt.Errorf("invalid spending_date %q, expected YYYY-MM-DD: %w", spendingDate, err)
	}

	return amount, spendingDate, nil
}

func toSpendingResponse(sp model.Spending) SpendingResponse {
	return SpendingResponse{
		ID:           sp.ID.String(),
		Description:  sp.Description,
		TotalAmount:  sp.TotalAmount.StringFixed(2),
		SpendingDate: sp.SpendingDate,
		ImagePath:    sp.ImagePath,
		CreatedAt:    sp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    sp.UpdatedAt.Format(time.RFC3339),
	}
}
