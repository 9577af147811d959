package services

import (
	"context"
	"errors"
	"sort"

	"petshop/internal/apperrors"
	"petshop/internal/dto"
	"petshop/internal/models"
	"petshop/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartSummary holds a cart's lines in id order with their totals.
type CartSummary struct {
	Items      []models.CartItem
	TotalItems int
	TotalPrice decimal.Decimal
}

// ComputeSummary totals the cart at the products' current prices. Items are
// expected to carry their Product.
func ComputeSummary(items []models.CartItem) CartSummary {
	sorted := make([]models.CartItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	sum := CartSummary{Items: sorted, TotalPrice: decimal.Zero}
	for _, it := range sorted {
		sum.TotalItems += it.Quantity
		sum.TotalPrice = sum.TotalPrice.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// CartService handles the per-user shopping cart.
type CartService struct {
	store  repositories.Store
	locks  *KeyLocker
	logger *zap.Logger
}

// NewCartService creates a new CartService. Pass the same locker to the
// OrderService so checkout and cart edits of one user never interleave.
func NewCartService(store repositories.Store, locks *KeyLocker, logger *zap.Logger) *CartService {
	if locks == nil {
		locks = NewKeyLocker()
	}
	return &CartService{store: store, locks: locks, logger: logger}
}

// getOrCreateCart loads the user's cart, creating it on first use.
func getOrCreateCart(ctx context.Context, r repositories.Repositories, userID uint) (*models.Cart, error) {
	cart, err := r.Carts().FindByUserID(ctx, userID, true)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if _, err := r.Users().GetByID(ctx, userID); err != nil {
		return nil, notFoundAs(err, "user %d not found", userID)
	}
	return r.Carts().GetOrCreate(ctx, userID)
}

// withCart runs fn on the locked cart and returns the resulting view.
func (s *CartService) withCart(ctx context.Context, userID uint, fn func(r repositories.Repositories, cart *models.Cart) error) (*dto.CartResponse, error) {
	unlock := s.locks.Lock(lockKeyCart(userID))
	defer unlock()

	var resp dto.CartResponse
	err := s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		cart, err := getOrCreateCart(ctx, r, userID)
		if err != nil {
			return err
		}
		if fn != nil {
			if err := fn(r, cart); err != nil {
				return err
			}
		}
		items, err := r.Carts().ListItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		sum := ComputeSummary(items)
		resp = dto.NewCartResponse(*cart, sum.Items, sum.TotalItems, sum.TotalPrice)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetCart returns the user's cart, creating an empty one if needed.
func (s *CartService) GetCart(ctx context.Context, userID uint) (*dto.CartResponse, error) {
	return s.withCart(ctx, userID, nil)
}

// AddItem adds quantity of a product, merging with an existing line.
// Stock is checked against the requested quantity only.
func (s *CartService) AddItem(ctx context.Context, userID, productID uint, quantity int) (*dto.CartResponse, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be positive")
	}
	resp, err := s.withCart(ctx, userID, func(r repositories.Repositories, cart *models.Cart) error {
		product, err := r.Products().GetByID(ctx, productID)
		if err != nil {
			return notFoundAs(err, "product %d not found", productID)
		}
		if product.Stock < quantity {
			return apperrors.InsufficientStock("not enough stock for %s: requested %d, available %d", product.Name, quantity, product.Stock)
		}

		item, err := r.Carts().FindItem(ctx, cart.ID, productID)
		switch {
		case err == nil:
			return r.Carts().UpdateItemQuantity(ctx, item.ID, item.Quantity+quantity)
		case errors.Is(err, repositories.ErrNotFound):
			return r.Carts().CreateItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity})
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("cart item added", zap.Uint("user_id", userID), zap.Uint("product_id", productID), zap.Int("quantity", quantity))
	return resp, nil
}

// UpdateQuantity sets a line's quantity. A quantity of zero or less removes
// the line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) (*dto.CartResponse, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}
	return s.withCart(ctx, userID, func(r repositories.Repositories, cart *models.Cart) error {
		item, err := r.Carts().FindItem(ctx, cart.ID, productID)
		if err != nil {
			return notFoundAs(err, "product %d is not in the cart", productID)
		}
		product, err := r.Products().GetByID(ctx, productID)
		if err != nil {
			return notFoundAs(err, "product %d not found", productID)
		}
		if product.Stock < quantity {
			return apperrors.InsufficientStock("not enough stock for %s: requested %d, available %d", product.Name, quantity, product.Stock)
		}
		return r.Carts().UpdateItemQuantity(ctx, item.ID, quantity)
	})
}

// RemoveItem deletes the line for productID. Removing an absent product is
// not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uint) (*dto.CartResponse, error) {
	return s.withCart(ctx, userID, func(r repositories.Repositories, cart *models.Cart) error {
		_, err := r.Carts().DeleteItem(ctx, cart.ID, productID)
		return err
	})
}

// Clear empties the user's cart.
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	_, err := s.withCart(ctx, userID, func(r repositories.Repositories, cart *models.Cart) error {
		_, err := r.Carts().ClearItems(ctx, cart.ID)
		return err
	})
	return err
}
