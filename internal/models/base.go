package models

import "time"

// Base holds the fields every persisted entity shares. Embed it, don't extend it.
type Base struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
