package repositories

import (
	"context"

	"petshop/internal/models"
)

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, category string) ([]models.Product, error)
	// SearchByName matches name substrings case-insensitively.
	SearchByName(ctx context.Context, name string) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	// Delete removes the product and any cart lines holding it.
	Delete(ctx context.Context, id uint) error
}
