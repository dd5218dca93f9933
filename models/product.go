package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. The catalog is managed elsewhere; order code
// only reads it to price and snapshot line items.
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	Category  string          `gorm:"not null;default:''" json:"category"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"` // current catalog price
	Active    bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
