package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/middleware"
	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/service"
	"github.com/ahmad-fahrudin/point-of-sales-backend/pkg/pagination"
	"github.com/ahmad-fahrudin/point-of-sales-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports", middleware.RequireAuth())
	{
		reports.GET("", h.GetReports)
		reports.GET("/export/pdf", h.ExportPDF)
		reports.GET("/daily/:date", h.GetReportByDate)
		reports.GET("/:id", h.GetReportByID)
	}
}

// GetReports returns daily revenue rows with a range summary
// @Summary      Revenue report
// @Description  Daily revenue aggregates for a date range plus a summary with average order value. Defaults to the last 7 days.
// @Tags         reports
// @Produce      json
// @Param        start_date  query     string  false  "YYYY-MM-DD"
// @Param        end_date    query     string  false  "YYYY-MM-DD"
// @Param        page        query     int     false  "Page"
// @Param        limit       query     int     false  "Page size"
// @Success      200         {object}  response.Response{data=service.ReportData}
// @Failure      400         {object}  response.Response
// @Router       /api/reports [get]
func (h *ReportHandler) GetReports(c *gin.Context) {
	filter := parseReportFilter(c)
	params := pagination.Parse(c)

	data, err := h.reportService.GetReports(c.Request.Context(), filter, params.Page, params.Limit)
	if err != nil {
		fail(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, data))
}

// ExportPDF renders the revenue report for a date range as a PDF document
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	filter := parseReportFilter(c)

	pdfBytes, err := h.reportService.ExportPDF(c.Request.Context(), filter)
	if err != nil {
		fail(c, err, http.StatusBadRequest)
		return
	}

	filename := fmt.Sprintf("revenue-report-%s-%s.pdf", filter.StartDate, filter.EndDate)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// GetReportByDate returns the daily revenue record for one calendar date
// @Summary      Daily revenue by date
// @Tags         reports
// @Produce      json
// @Param        date  path      string  true  "YYYY-MM-DD"
// @Success      200   {object}  response.Response{data=service.DailyRevenueResponse}
// @Failure      404   {object}  response.Response
// @Router       /api/reports/daily/{date} [get]
func (h *ReportHandler) GetReportByDate(c *gin.Context) {
	report, err := h.reportService.GetByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		fail(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// GetReportByID returns a single daily revenue record
func (h *ReportHandler) GetReportByID(c *gin.Context) {
	report, err := h.reportService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// parseReportFilter reads the date range, defaulting to the last 7 days.
func parseReportFilter(c *gin.Context) service.ReportFilter {
	now := time.Now()
	filter := service.ReportFilter{
		StartDate: now.AddDate(0, 0, -6).Format(service.DateLayout),
		EndDate:   now.Format(service.DateLayout),
	}
	if v := c.Query("start_date"); v != "" {
		filter.StartDate = v
	}
	if v := c.Query("end_date"); v != "" {
		filter.EndDate = v
	}
	return filter
}
