package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/model"
	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/repository"
	ws "github.com/ahmad-fahrudin/point-of-sales-backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	CategoryID  string `json:"category_id"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
	Stock       int    `json:"stock" binding:"min=0"`
	ImagePath   string `json:"image_path"`
}

type UpdateProductRequest = CreateProductRequest

type ProductResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CategoryID   string `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	Description  string `json:"description,omitempty"`
	Price        string `json:"price"`
	Stock        int    `json:"stock"`
	ImagePath    string `json:"image_path,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// --- Interface ---

type ProductService interface {
	Create(ctx context.Context, req CreateProductRequest) (ProductResponse, error)
	Update(ctx context.Context, id string, req UpdateProductRequest) (ProductResponse, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (ProductResponse, error)
	GetAll(ctx context.Context, page, limit int) ([]ProductResponse, int64, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	hub          *ws.Hub
}

func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository, hub *ws.Hub) ProductService {
	return &productService{productRepo: productRepo, categoryRepo: categoryRepo, hub: hub}
}

// --- Implementation ---

func (s *productService) Create(ctx context.Context, req CreateProductRequest) (ProductResponse, error) {
	product, err := s.buildProduct(ctx, req)
	if err != nil {
		return ProductResponse{}, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return ProductResponse{}, fmt.Errorf("failed to create product: %w", err)
	}

	s.notify(ws.ActionCreated, product.ID.String())
	return toProductResponse(*product), nil
}

func (s *productService) Update(ctx context.Context, id string, req UpdateProductRequest) (ProductResponse, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, fmt.Errorf("invalid product id: %w", ErrInvalidID)
	}

	existing, err := s.productRepo.FindByID(ctx, parsed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, ErrProductNotFound
		}
		return ProductResponse{}, fmt.Errorf("failed to fetch product: %w", err)
	}

	updated, err := s.buildProduct(ctx, req)
	if err != nil {
		return ProductResponse{}, err
	}

	existing.Name = updated.Name
	existing.CategoryID = updated.CategoryID
	existing.Category = nil
	existing.Description = updated.Description
	existing.Price = updated.Price
	existing.Stock = updated.Stock
	existing.ImagePath = updated.ImagePath

	if err := s.productRepo.Update(ctx, existing); err != nil {
		return ProductResponse{}, fmt.Errorf("failed to update product: %w", err)
	}

	s.notify(ws.ActionUpdated, id)
	return toProductResponse(*existing), nil
}

func (s *productService) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid product id: %w", ErrInvalidID)
	}

	if _, err := s.productRepo.FindByID(ctx, parsed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to fetch product: %w", err)
	}

	if err := s.productRepo.Delete(ctx, parsed); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.notify(ws.ActionDeleted, id)
	return nil
}

func (s *productService) GetByID(ctx context.Context, id string) (ProductResponse, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, fmt.Errorf("invalid product id: %w", ErrInvalidID)
	}

	product, err := s.productRepo.FindByID(ctx, parsed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, ErrProductNotFound
		}
		return ProductResponse{}, fmt.Errorf("failed to fetch product: %w", err)
	}

	return toProductResponse(*product), nil
}

func (s *productService) GetAll(ctx context.Context, page, limit int) ([]ProductResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	products, total, err := s.productRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	result := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		result = append(result, toProductResponse(p))
	}
	return result, total, nil
}

// --- Helpers ---

func (s *productService) buildProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("stock must not be negative")
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		ImagePath:   req.ImagePath,
	}

	if req.CategoryID != "" {
		categoryID, parseErr := uuid.Parse(req.CategoryID)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid category_id: %w", parseErr)
		}
		if _, findErr := s.categoryRepo.FindByID(ctx, categoryID); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to fetch category: %w", findErr)
		}
		product.CategoryID = &categoryID
	}

	return product, nil
}

func (s *productService) notify(action, id string) {
	if s.hub != nil {
		s.hub.NotifyChange(ws.CollectionProducts, action, id)
	}
}

func toProductResponse(p model.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		ImagePath:   p.ImagePath,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if p.CategoryID != nil {
		resp.CategoryID = p.CategoryID.String()
	}
	if p.Category != nil {
		resp.CategoryName = p.Category.Name
	}
	return resp
}
