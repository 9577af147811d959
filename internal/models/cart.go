package models

// Cart is the single active cart of a user.
type Cart struct {
	Base
	UserID uint       `json:"user_id" gorm:"not null;uniqueIndex"`
	Items  []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// CartItem is unique per (cart, product).
type CartItem struct {
	Base
	CartID    uint    `json:"cart_id" gorm:"not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID uint    `json:"product_id" gorm:"not null;uniqueIndex:idx_cart_items_cart_product"`
	Product   Product `json:"product" gorm:"foreignKey:ProductID"`
	Quantity  int     `json:"quantity" gorm:"not null"`
}
