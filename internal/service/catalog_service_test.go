package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestCreateProductWithCategory(t *testing.T) {
	productRepo := newFakeProductRepo()
	categoryRepo := newFakeCategoryRepo()
	categorySvc := NewCategoryService(categoryRepo, nil)
	productSvc := NewProductService(productRepo, categoryRepo, nil)
	ctx := context.Background()

	category, err := categorySvc.Create(ctx, CreateCategoryRequest{Name: "Drinks"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	product, err := productSvc.Create(ctx, CreateProductRequest{
		Name:       "Es Jeruk",
		CategoryID: category.ID,
		Price:      "8000",
		Stock:      25,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if product.Price != "8000.00" {
		t.Errorf("price = %s, want 8000.00", product.Price)
	}
	if product.CategoryID != category.ID {
		t.Errorf("category id = %s, want %s", product.CategoryID, category.ID)
	}
}

func TestCreateProductRejectsUnknownCategory(t *testing.T) {
	productSvc := NewProductService(newFakeProductRepo(), newFakeCategoryRepo(), nil)

	_, err := productSvc.Create(context.Background(), CreateProductRequest{
		Name:       "Es Jeruk",
		CategoryID: uuid.NewString(),
		Price:      "8000",
	})
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("err = %v, want ErrCategoryNotFound", err)
	}
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	productSvc := NewProductService(newFakeProductRepo(), newFakeCategoryRepo(), nil)

	_, err := productSvc.Create(context.Background(), CreateProductRequest{
		Name:  "Es Jeruk",
		Price: "-100",
	})
	if err == nil {
		t.Fatal("expected error for negative price")
	}
}

func TestDeleteCategoryBlockedWhileProductsRemain(t *testing.T) {
	categoryRepo := newFakeCategoryRepo()
	categorySvc := NewCategoryService(categoryRepo, nil)
	ctx := context.Background()

	category, err := categorySvc.Create(ctx, CreateCategoryRequest{Name: "Food"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	id, _ := uuid.Parse(category.ID)
	categoryRepo.productCount[id] = 2

	if err := categorySvc.Delete(ctx, category.ID); err == nil {
		t.Fatal("expected error deleting a category with products")
	}

	categoryRepo.productCount[id] = 0
	if err := categorySvc.Delete(ctx, category.ID); err != nil {
		t.Fatalf("delete empty category: %v", err)
	}
}

func TestUpdateCategoryRejectsSelfParent(t *testing.T) {
	categorySvc := NewCategoryService(newFakeCategoryRepo(), nil)
	ctx := context.Background()

	category, err := categorySvc.Create(ctx, CreateCategoryRequest{Name: "Snacks"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	_, err = categorySvc.Update(ctx, category.ID, UpdateCategoryRequest{
		Name:     "Snacks",
		ParentID: category.ID,
	})
	if err == nil {
		t.Fatal("expected error for self-parent")
	}
}
