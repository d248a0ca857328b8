package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/model"
	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/repository"
	ws "github.com/ahmad-fahrudin/point-of-sales-backend/internal/websocket"
	"github.com/ahmad-fahrudin/point-of-sales-backend/pkg/pdfexport"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DateLayout is the calendar-date key format for daily revenue records.
const DateLayout = "2006-01-02"

// Today returns the current calendar date key.
func Today() string {
	return time.Now().Format(DateLayout)
}

// --- DTOs ---

type DailyRevenueResponse struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	TotalRevenue  string `json:"total_revenue"`
	TotalOrders   int    `json:"total_orders"`
	TotalSpending string `json:"total_spending"`
	NetRevenue    string `json:"net_revenue"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type ReportSummary struct {
	TotalRevenue      string `json:"total_revenue"`
	TotalSpending     string `json:"total_spending"`
	NetRevenue        string `json:"net_revenue"`
	TotalOrders       int    `json:"total_orders"`
	AverageOrderValue string `json:"average_order_value"`
}

type ReportFilter struct {
	StartDate string // YYYY-MM-DD inclusive
	EndDate   string // YYYY-MM-DD inclusive
}

type ReportData struct {
	DailyRevenues []DailyRevenueResponse `json:"daily_revenues"`
	Summary       ReportSummary          `json:"summary"`
	CurrentPage   int                    `json:"current_page"`
	TotalPages    int                    `json:"total_pages"`
	TotalRecords  int                    `json:"total_records"`
}

// --- Interface ---

// ReportService maintains the per-date revenue aggregates and serves the
// revenue reports built from them.
//
// The aggregate for a date is created lazily by the first revenue-affecting
// event; spending resyncs never create one. Both mutation paths serialize on
// the aggregate row inside a transaction, so two concurrent writers cannot
// overwrite each other's totals.
type ReportService interface {
	// AddRevenue records a revenue contribution for date and counts one order
	// event. Net revenue is recomputed from the stored totals, not drifted.
	AddRevenue(ctx context.Context, date string, amount decimal.Decimal) error
	// ResyncSpending recomputes the full spending total for date from the
	// spending rows and folds it into the aggregate. No-op when no aggregate
	// exists for the date.
	ResyncSpending(ctx context.Context, date string) error
	GetReports(ctx context.Context, filter ReportFilter, page, pageSize int) (ReportData, error)
	GetByID(ctx context.Context, id string) (DailyRevenueResponse, error)
	// GetByDate returns the aggregate for a single calendar date, the
	// dashboard's today tile. Absent aggregate answers not-found.
	GetByDate(ctx context.Context, date string) (DailyRevenueResponse, error)
	ExportPDF(ctx context.Context, filter ReportFilter) ([]byte, error)
}

type reportService struct {
	revenueRepo  repository.RevenueRepository
	spendingRepo repository.SpendingRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewReportService(
	revenueRepo repository.RevenueRepository,
	spendingRepo repository.SpendingRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) ReportService {
	return &reportService{
		revenueRepo:  revenueRepo,
		spendingRepo: spendingRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Implementation ---

func (s *reportService) AddRevenue(ctx context.Context, date string, amount decimal.Decimal) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		revenue, findErr := s.revenueRepo.FindByDateForUpdate(txCtx, date)
		if findErr != nil {
			if !errors.Is(findErr, gorm.ErrRecordNotFound) {
				return findErr
			}
			// First revenue event for this date creates the aggregate. A
			// concurrent writer can insert the date between the not-found
			// read and the insert; the conflict-tolerant Create reports that
			// and the loser re-locks the winner's row and updates it.
			created := &model.DailyRevenue{
				Date:          date,
				TotalRevenue:  amount,
				TotalOrders:   1,
				TotalSpending: decimal.Zero,
				NetRevenue:    amount,
			}
			inserted, createErr := s.revenueRepo.Create(txCtx, created)
			if createErr != nil {
				return createErr
			}
			if inserted {
				return nil
			}
			revenue, findErr = s.revenueRepo.FindByDateForUpdate(txCtx, date)
			if findErr != nil {
				return findErr
			}
		}

		newTotalRevenue := revenue.TotalRevenue.Add(amount)
		newNetRevenue := newTotalRevenue.Sub(revenue.TotalSpending)
		return s.revenueRepo.UpdateFields(txCtx, revenue.ID, map[string]interface{}{
			"total_revenue": newTotalRevenue,
			"total_orders":  revenue.TotalOrders + 1,
			"net_revenue":   newNetRevenue,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to update daily revenue for %s: %w", date, err)
	}

	s.notifyChanged(date)
	return nil
}

func (s *reportService) ResyncSpending(ctx context.Context, date string) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		revenue, findErr := s.revenueRepo.FindByDateForUpdate(txCtx, date)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				// A spending change alone never creates an aggregate.
				return nil
			}
			return findErr
		}

		totalSpending, sumErr := s.spendingRepo.SumByDate(txCtx, date)
		if sumErr != nil {
			return sumErr
		}

		return s.revenueRepo.UpdateFields(txCtx, revenue.ID, map[string]interface{}{
			"total_spending": totalSpending,
			"net_revenue":    revenue.TotalRevenue.Sub(totalSpending),
		})
	})
	if err != nil {
		return fmt.Errorf("failed to resync spending for %s: %w", date, err)
	}

	s.notifyChanged(date)
	return nil
}

func (s *reportService) GetReports(ctx context.Context, filter ReportFilter, page, pageSize int) (ReportData, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	if err := validateFilter(filter); err != nil {
		return ReportData{}, err
	}

	revenues, err := s.revenueRepo.ListByDateRange(ctx, filter.StartDate, filter.EndDate)
	if err != nil {
		return ReportData{}, fmt.Errorf("failed to fetch reports: %w", err)
	}

	summary := summarize(revenues)

	// The full range is needed for the summary anyway, so pagination is a
	// slice over the fetched set.
	totalRecords := len(revenues)
	totalPages := (totalRecords + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start > totalRecords {
		start = totalRecords
	}
	end := start + pageSize
	if end > totalRecords {
		end = totalRecords
	}

	pageRows := make([]DailyRevenueResponse, 0, end-start)
	for _, r := range revenues[start:end] {
		pageRows = append(pageRows, toDailyRevenueResponse(r))
	}

	return ReportData{
		DailyRevenues: pageRows,
		Summary:       summary,
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalRecords:  totalRecords,
	}, nil
}

func (s *reportService) GetByID(ctx context.Context, id string) (DailyRevenueResponse, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return DailyRevenueResponse{}, fmt.Errorf("invalid report id: %w", ErrInvalidID)
	}

	revenue, err := s.revenueRepo.FindByID(ctx, parsed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DailyRevenueResponse{}, ErrReportNotFound
		}
		return DailyRevenueResponse{}, fmt.Errorf("failed to fetch report: %w", err)
	}

	return toDailyRevenueResponse(*revenue), nil
}

func (s *reportService) GetByDate(ctx context.Context, date string) (DailyRevenueResponse, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return DailyRevenueResponse{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	revenue, err := s.revenueRepo.FindByDate(ctx, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DailyRevenueResponse{}, ErrReportNotFound
		}
		return DailyRevenueResponse{}, fmt.Errorf("failed to fetch report: %w", err)
	}

	return toDailyRevenueResponse(*revenue), nil
}

func (s *reportService) ExportPDF(ctx context.Context, filter ReportFilter) ([]byte, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	revenues, err := s.revenueRepo.ListByDateRange(ctx, filter.StartDate, filter.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}

	summary := summarize(revenues)

	rows := make([]pdfexport.RevenueRow, 0, len(revenues))
	for _, r := range revenues {
		rows = append(rows, pdfexport.RevenueRow{
			Date:          r.Date,
			TotalRevenue:  r.TotalRevenue.StringFixed(2),
			TotalOrders:   r.TotalOrders,
			TotalSpending: r.TotalSpending.StringFixed(2),
			NetRevenue:    r.NetRevenue.StringFixed(2),
		})
	}

	return pdfexport.BuildRevenueReport(pdfexport.RevenueReport{
		StartDate:         filter.StartDate,
		EndDate:           filter.EndDate,
		Rows:              rows,
		TotalRevenue:      summary.TotalRevenue,
		TotalSpending:     summary.TotalSpending,
		NetRevenue:        summary.NetRevenue,
		TotalOrders:       summary.TotalOrders,
		AverageOrderValue: summary.AverageOrderValue,
	})
}

// --- Helpers ---

func (s *reportService) notifyChanged(date string) {
	if s.hub != nil {
		s.hub.NotifyChange(ws.CollectionDailyRevenues, ws.ActionUpdated, date)
	}
}

func validateFilter(filter ReportFilter) error {
	if _, err := time.Parse(DateLayout, filter.StartDate); err != nil {
		return fmt.Errorf("invalid start_date %q: %w", filter.StartDate, err)
	}
	if _, err := time.Parse(DateLayout, filter.EndDate); err != nil {
		return fmt.Errorf("invalid end_date %q: %w", filter.EndDate, err)
	}
	if filter.StartDate > filter.EndDate {
		return fmt.Errorf("start_date %s is after end_date %s", filter.StartDate, filter.EndDate)
	}
	return nil
}

func summarize(revenues []model.DailyRevenue) ReportSummary {
	totalRevenue := decimal.Zero
	totalSpending := decimal.Zero
	netRevenue := decimal.Zero
	totalOrders := 0
	for _, r := range revenues {
		totalRevenue = totalRevenue.Add(r.TotalRevenue)
		totalSpending = totalSpending.Add(r.TotalSpending)
		netRevenue = netRevenue.Add(r.NetRevenue)
		totalOrders += r.TotalOrders
	}

	averageOrderValue := decimal.Zero
	if totalOrders > 0 {
		averageOrderValue = totalRevenue.Div(decimal.NewFromInt(int64(totalOrders))).Round(2)
	}

	return ReportSummary{
		TotalRevenue:      totalRevenue.StringFixed(2),
		TotalSpending:     totalSpending.StringFixed(2),
		NetRevenue:        netRevenue.StringFixed(2),
		TotalOrders:       totalOrders,
		AverageOrderValue: averageOrderValue.StringFixed(2),
	}
}

func toDailyRevenueResponse(r model.DailyRevenue) DailyRevenueResponse {
	return DailyRevenueResponse{
		ID:            r.ID.String(),
		Date:          r.Date,
		TotalRevenue:  r.TotalRevenue.StringFixed(2),
		TotalOrders:   r.TotalOrders,
		TotalSpending: r.TotalSpending.StringFixed(2),
		NetRevenue:    r.NetRevenue.StringFixed(2),
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     r.UpdatedAt.Format(time.RFC3339),
	}
}

// logBestEffort records a non-fatal reconciliation failure. The primary write
// has already succeeded, so the error is logged and swallowed.
func logBestEffort(op string, err error) {
	if err != nil {
		logrus.WithError(err).Warnf("%s failed (non-fatal)", op)
	}
}
