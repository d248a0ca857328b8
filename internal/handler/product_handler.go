package handler

import (
	"net/http"

	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/middleware"
	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/service"
	"github.com/ahmad-fahrudin/point-of-sales-backend/pkg/pagination"
	"github.com/ahmad-fahrudin/point-of-sales-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/api/products", middleware.RequireAuth())
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.GetProducts)
		products.GET("/:id", h.GetProductByID)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

// CreateProduct adds a catalog item
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// GetProducts lists catalog items
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := pagination.Parse(c)

	products, total, err := h.productService.GetAll(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		fail(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, products, params.Page, params.Limit, total))
}

// GetProductByID returns a single catalog item
func (h *ProductHandler) GetProductByID(c *gin.Context) {
	product, err := h.productService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// UpdateProduct edits a catalog item
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.productService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// DeleteProduct removes a catalog item
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err, http.StatusBadRequest)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, nil))
}
