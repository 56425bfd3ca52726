package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog.
// CategoryID is an advisory reference: deleting a category leaves its products in place.
type Product struct {
	ID         string          `gorm:"primaryKey;size:64" json:"id"`
	Title      string          `gorm:"not null" json:"title"`
	CategoryID string          `gorm:"column:category;not null;index" json:"category"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Image      *string         `json:"image,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (p *Product) TableName() string {
	return "products"
}

// ProductUpdate holds the fields of a partial product update.
// Only non-nil fields are written.
type ProductUpdate struct {
	Title      *string
	CategoryID *string
	Price      *decimal.Decimal
	Image      *string
}

func (u ProductUpdate) columns() map[string]any {
	cols := map[string]any{}
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.CategoryID != nil {
		cols["category"] = *u.CategoryID
	}
	if u.Price != nil {
		cols["price"] = *u.Price
	}
	if u.Image != nil {
		cols["image"] = *u.Image
	}
	return cols
}
