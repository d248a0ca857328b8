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
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateCategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID string `json:"parent_id"`
}

type UpdateCategoryRequest = CreateCategoryRequest

type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ParentID  string `json:"parent_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

type CategoryService interface {
	Create(ctx context.Context, req CreateCategoryRequest) (CategoryResponse, error)
	Update(ctx context.Context, id string, req UpdateCategoryRequest) (CategoryResponse, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (CategoryResponse, error)
	GetAll(ctx context.Context) ([]CategoryResponse, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	hub          *ws.Hub
}

func NewCategoryService(categoryRepo repository.CategoryRepository, hub *ws.Hub) CategoryService {
	return &categoryService{categoryRepo: categoryRepo, hub: hub}
}

// --- Implementation ---

func (s *categoryService) Create(ctx context.Context, req CreateCategoryRequest) (CategoryResponse, error) {
	category := &model.Category{Name: req.Name}

	if req.ParentID != "" {
		parentID, err := uuid.Parse(req.ParentID)
		if err != nil {
			return CategoryResponse{}, fmt.Errorf("invalid parent_id: %w", err)
		}
		if _, err := s.categoryRepo.FindByID(ctx, parentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return CategoryResponse{}, ErrCategoryNotFound
			}
			return CategoryResponse{}, fmt.Errorf("failed to fetch parent category: %w", err)
		}
		category.ParentID = &parentID
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return CategoryResponse{}, fmt.Errorf("failed to create category: %w", err)
	}

	s.notify(ws.ActionCreated, category.ID.String())
	return toCategoryResponse(*category), nil
}

func (s *categoryService) Update(ctx context.Context, id string, req UpdateCategoryRequest) (CategoryResponse, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return CategoryResponse{}, fmt.Errorf("invalid category id: %w", ErrInvalidID)
	}

	category, err := s.categoryRepo.FindByID(ctx, parsed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CategoryResponse{}, ErrCategoryNotFound
		}
		return CategoryResponse{}, fmt.Errorf("failed to fetch category: %w", err)
	}

	category.Name = req.Name
	category.ParentID = nil
	if req.ParentID != "" {
		parentID, parseErr := uuid.Parse(req.ParentID)
		if parseErr != nil {
			return CategoryResponse{}, fmt.Errorf("invalid parent_id: %w", parseErr)
		}
		if parentID == parsed {
			return CategoryResponse{}, fmt.Errorf("category cannot be its own parent")
		}
		category.ParentID = &parentID
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return CategoryResponse{}, fmt.Errorf("failed to update category: %w", err)
	}

	s.notify(ws.ActionUpdated, id)
	return toCategoryResponse(*category), nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid category id: %w", ErrInvalidID)
	}

	if _, err := s.categoryRepo.FindByID(ctx, parsed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to fetch category: %w", err)
	}

	count, err := s.categoryRepo.CountProducts(ctx, parsed)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("category still has %d product(s)", count)
	}

	if err := s.categoryRepo.Delete(ctx, parsed); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.notify(ws.ActionDeleted, id)
	return nil
}

func (s *categoryService) GetByID(ctx context.Context, id string) (CategoryResponse, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return CategoryResponse{}, fmt.Errorf("invalid category id: %w", ErrInvalidID)
	}

	category, err := s.categoryRepo.FindByID(ctx, parsed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CategoryResponse{}, ErrCategoryNotFound
		}
		return CategoryResponse{}, fmt.Errorf("failed to fetch category: %w", err)
	}

	return toCategoryResponse(*category), nil
}

func (s *categoryService) GetAll(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	result := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		result = append(result, toCategoryResponse(c))
	}
	return result, nil
}

// --- Helpers ---

func (s *categoryService) notify(action, id string) {
	if s.hub != nil {
		s.hub.NotifyChange(ws.CollectionCategories, action, id)
	}
}

func toCategoryResponse(c model.Category) CategoryResponse {
	resp := CategoryResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	if c.ParentID != nil {
		resp.ParentID = c.ParentID.String()
	}
	return resp
}
