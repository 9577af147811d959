package services

import (
	"context"
	"strings"

	"petshop/internal/apperrors"
	"petshop/internal/models"
	"petshop/internal/repositories"
)

// ProductService handles business logic related to the product catalog.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductsByCategory lists the products of one category.
func (s *ProductService) GetProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.repo.ListByCategory(ctx, strings.TrimSpace(category))
}

// SearchProducts finds products whose name contains name, ignoring case.
func (s *ProductService) SearchProducts(ctx context.Context, name string) ([]models.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidInput("search name is required")
	}
	return s.repo.SearchByName(ctx, name)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "product %d not found", id)
	}
	return product, nil
}

func validateProduct(product *models.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return apperrors.InvalidInput("product name is required")
	}
	if product.Price.IsNegative() {
		return apperrors.InvalidInput("product price cannot be negative")
	}
	if product.Stock < 0 {
		return apperrors.InvalidInput("product stock cannot be negative")
	}
	return nil
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.repo.Create(ctx, product)
}

// UpdateProduct updates an existing product. Orders already placed keep the
// price they were bought at.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return notFoundAs(err, "product %d not found", product.ID)
	}
	return nil
}

// DeleteProduct deletes a product by its ID. Cart lines holding it go
// with it; past orders keep their copies.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		err = notFoundAs(err, "product %d not found", id)
		return conflictIfInUse(err, "product %d is still referenced", id)
	}
	return nil
}
