package repositories

import (
	"context"
	"errors"
	"fmt"

	"petshop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository defines the interface for cart and cart item data access.
type CartRepository interface {
	// FindByUserID returns the user's cart without items. With forUpdate the
	// row stays locked until the surrounding transaction ends.
	FindByUserID(ctx context.Context, userID uint, forUpdate bool) (*models.Cart, error)
	// GetOrCreate returns the user's cart, inserting an empty one if absent.
	// A concurrent insert for the same user is resolved by re-reading.
	GetOrCreate(ctx context.Context, userID uint) (*models.Cart, error)

	ListItems(ctx context.Context, cartID uint) ([]models.CartItem, error)
	FindItem(ctx context.Context, cartID, productID uint) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error
	DeleteItem(ctx context.Context, cartID, productID uint) (int64, error)
	ClearItems(ctx context.Context, cartID uint) (int64, error)
}

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) FindByUserID(ctx context.Context, userID uint, forUpdate bool) (*models.Cart, error) {
	q := r.db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var cart models.Cart
	if err := q.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart of user %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart of user %d: %w", userID, err)
	}
	return &cart, nil
}

func (r *GORMCartRepository) GetOrCreate(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := r.FindByUserID(ctx, userID, true)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	created := models.Cart{UserID: userID}
	// Nested Transaction runs under a savepoint, so a lost insert race does
	// not abort the caller's transaction.
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(&created).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return r.FindByUserID(ctx, userID, true)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create cart for user %d: %w", userID, err)
	}
	return &created, nil
}

// ListItems returns the cart's items with their products, ordered by item id.
func (r *GORMCartRepository) ListItems(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list items of cart %d: %w", cartID, err)
	}
	return items, nil
}

func (r *GORMCartRepository) FindItem(ctx context.Context, cartID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d in cart %d: %w", productID, cartID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item of cart %d: %w", cartID, err)
	}
	return &item, nil
}

func (r *GORMCartRepository) CreateItem(ctx context.Context, item *models.CartItem) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item %d: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
	}
	return nil
}

func (r *GORMCartRepository) DeleteItem(ctx context.Context, cartID, productID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete product %d from cart %d: %w", productID, cartID, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GORMCartRepository) ClearItems(ctx context.Context, cartID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear cart %d: %w", cartID, res.Error)
	}
	return res.RowsAffected, nil
}
