package dto

import (
	"petshop/internal/models"

	"github.com/shopspring/decimal"
)

// ProductResponse is the product snapshot shown inside a cart line.
type ProductResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
}

type CartItemResponse struct {
	ID       uint            `json:"id"`
	Product  ProductResponse `json:"product"`
	Quantity int             `json:"quantity"`
}

type CartResponse struct {
	ID         uint               `json:"id"`
	UserID     uint               `json:"user_id"`
	Items      []CartItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	TotalPrice decimal.Decimal    `json:"total_price"`
}

func NewProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Stock:       p.Stock,
		Description: p.Description,
		Brand:       p.Brand,
	}
}

// NewCartResponse maps a cart and its already ordered items with the totals
// computed by the cart engine.
func NewCartResponse(cart models.Cart, items []models.CartItem, totalItems int, totalPrice decimal.Decimal) CartResponse {
	out := make([]CartItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, CartItemResponse{
			ID:       it.ID,
			Product:  NewProductResponse(it.Product),
			Quantity: it.Quantity,
		})
	}
	return CartResponse{
		ID:         cart.ID,
		UserID:     cart.UserID,
		Items:      out,
		TotalItems: totalItems,
		TotalPrice: totalPrice,
	}
}
