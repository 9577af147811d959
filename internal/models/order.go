package models

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Order is a snapshot of a cart taken at checkout.
type Order struct {
	Base
	UserID          uint            `json:"user_id" gorm:"not null;index"`
	OrderNumber     string          `json:"order_number" gorm:"type:varchar(64);not null;uniqueIndex"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:decimal(14,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(16);not null"`
	ShippingAddress string          `json:"shipping_address" gorm:"type:varchar(512);not null"`
	PaymentMethod   string          `json:"payment_method" gorm:"type:varchar(32);not null"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"type:varchar(16);not null"`
	Notes           string          `json:"notes" gorm:"type:text"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem keeps copies of the product fields, never a live reference.
type OrderItem struct {
	Base
	OrderID         uint            `json:"order_id" gorm:"not null;index"`
	ProductID       uint            `json:"product_id" gorm:"not null"`
	ProductName     string          `json:"product_name" gorm:"type:varchar(255);not null"`
	ProductImageURL string          `json:"product_image_url" gorm:"type:varchar(512)"`
	Quantity        int             `json:"quantity" gorm:"not null"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"` // at purchase time
}
