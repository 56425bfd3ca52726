package models

import "time"

// Category groups products on the order screen.
// Its name is unique; the icon is an optional tag the UI maps to an image.
type Category struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Icon      *string   `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Category) TableName() string {
	return "categories"
}

// CategoryUpdate holds the fields of a partial category update.
// Nil fields are left untouched.
type CategoryUpdate struct {
	Name *string
	Icon *string
}

func (u CategoryUpdate) columns() map[string]any {
	cols := map[string]any{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Icon != nil {
		cols["icon"] = *u.Icon
	}
	return cols
}
