package handler

import (
	"net/http"
	"strconv"

	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/middleware"
	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/service"
	"github.com/ahmad-fahrudin/point-of-sales-backend/pkg/pagination"
	"github.com/ahmad-fahrudin/point-of-sales-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/api/orders", middleware.RequireAuth())
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.GetOrders)
		orders.GET("/recent", h.GetRecentOrders)
		orders.GET("/credit", h.GetCreditOrders)
		orders.GET("/:id", h.GetOrderByID)
		orders.POST("/:id/payments", h.AddPayment)
	}
}

// CreateOrder completes a checkout
// @Summary      Create order
// @Description  Persists a checkout transaction. Credit orders get a debt ledger; only the tendered amount counts toward today's revenue.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateOrderRequest  true  "Checkout payload"
// @Success      201      {object}  response.Response{data=service.OrderResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// AddPayment records an installment against a credit order
// @Summary      Add debt payment
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Order ID"
// @Param        payload  body      service.AddPaymentRequest  true  "Payment payload"
// @Success      200      {object}  response.Response{data=service.OrderResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/orders/{id}/payments [post]
func (h *OrderHandler) AddPayment(c *gin.Context) {
	var req service.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.AddPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// GetOrders returns all orders, newest first
func (h *OrderHandler) GetOrders(c *gin.Context) {
	params := pagination.Parse(c)

	orders, total, err := h.orderService.GetAll(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		fail(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, orders, params.Page, params.Limit, total))
}

// GetRecentOrders returns the most recent orders
func (h *OrderHandler) GetRecentOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	orders, err := h.orderService.GetRecent(c.Request.Context(), limit)
	if err != nil {
		fail(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, orders))
}

// GetCreditOrders returns credit orders, optionally including settled ones
// @Summary      List credit orders
// @Description  Credit orders newest first. Pass include_paid=true to include settled debts.
// @Tags         orders
// @Produce      json
// @Param        include_paid  query     bool  false  "Include settled orders"
// @Success      200           {object}  response.Response{data=[]service.OrderResponse}
// @Router       /api/orders/credit [get]
func (h *OrderHandler) GetCreditOrders(c *gin.Context) {
	includePaid := c.DefaultQuery("include_paid", "false") == "true"

	orders, err := h.orderService.GetCreditOrders(c.Request.Context(), includePaid)
	if err != nil {
		fail(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, orders))
}

// GetOrderByID returns a single order with its items and ledger
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	order, err := h.orderService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}
