package models

import "github.com/shopspring/decimal"

// Product represents a product in the store.
type Product struct {
	Base
	Name        string          `json:"name" gorm:"type:varchar(255);not null" validate:"required,min=2,max=255"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	ImageURL    string          `json:"image_url" gorm:"type:varchar(512)"`
	Category    string          `json:"category" gorm:"type:varchar(64);not null" validate:"required,max=64"`
	Stock       int             `json:"stock" gorm:"not null;default:0" validate:"gte=0"`
	Description string          `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Brand       string          `json:"brand" gorm:"type:varchar(128)"`
}
