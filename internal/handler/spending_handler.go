package handler

import (
	"net/http"

	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/middleware"
	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/service"
	"github.com/ahmad-fahrudin/point-of-sales-backend/pkg/pagination"
	"github.com/ahmad-fahrudin/point-of-sales-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type SpendingHandler struct {
	spendingService service.SpendingService
}

func NewSpendingHandler(spendingService service.SpendingService) *SpendingHandler {
	return &SpendingHandler{spendingService: spendingService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *SpendingHandler) RegisterRoutes(router *gin.RouterGroup) {
	spendings := router.Group("/api/spendings", middleware.RequireAuth())
	{
		spendings.POST("", h.CreateSpending)
		spendings.GET("", h.GetSpendings)
		spendings.GET("/:id", h.GetSpendingByID)
		spendings.PUT("/:id", h.UpdateSpending)
		spendings.DELETE("/:id", h.DeleteSpending)
	}
}

// CreateSpending records a new expense entry
// @Summary      Create spending
// @Tags         spendings
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateSpendingRequest  true  "Spending payload"
// @Success      201      {object}  response.Response{data=service.SpendingResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/spendings [post]
func (h *SpendingHandler) CreateSpending(c *gin.Context) {
	var req service.CreateSpendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	spending, err := h.spendingService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, spending))
}

// UpdateSpending edits an expense entry; moving its date resyncs both dates
func (h *SpendingHandler) UpdateSpending(c *gin.Context) {
	var req service.UpdateSpendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	spending, err := h.spendingService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, spending))
}

// DeleteSpending removes an expense entry and its receipt image
func (h *SpendingHandler) DeleteSpending(c *gin.Context) {
	if err := h.spendingService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, nil))
}

// GetSpendings returns expense entries, newest attributed date first. With
// start_date and end_date query params it returns the entries in that range.
func (h *SpendingHandler) GetSpendings(c *gin.Context) {
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")

	if startDate != "" || endDate != "" {
		spendings, err := h.spendingService.GetByDateRange(c.Request.Context(), startDate, endDate)
		if err != nil {
			fail(c, err, http.StatusBadRequest)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, spendings))
		return
	}

	params := pagination.Parse(c)
	spendings, total, err := h.spendingService.GetAll(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		fail(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, spendings, params.Page, params.Limit, total))
}

// GetSpendingByID returns a single expense entry
func (h *SpendingHandler) GetSpendingByID(c *gin.Context) {
	spending, err := h.spendingService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, spending))
}
