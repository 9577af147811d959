package models

import "github.com/shopspring/decimal"

// CareService is a bookable service such as grooming or a health check.
type CareService struct {
	Base
	Title       string          `json:"title" gorm:"type:varchar(255);not null"`
	Description string          `json:"description" gorm:"type:text"`
	ImageURL    string          `json:"image_url" gorm:"type:varchar(512)"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Duration    int             `json:"duration"` // minutes
	Category    string          `json:"category" gorm:"type:varchar(64);not null"`
}
