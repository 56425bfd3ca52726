package models

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed seed.yaml
var defaultCatalogYAML []byte

type seedCategory struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type seedProduct struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
	Price    string `yaml:"price"`
	Image    string `yaml:"image"`
}

// SeedData is the catalog inserted into an empty store.
type SeedData struct {
	Categories []Category
	Products   []Product
}

// DefaultCatalog parses the embedded default catalog.
func DefaultCatalog() (SeedData, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// ParseCatalog reads a YAML catalog with top-level categories and products lists.
func ParseCatalog(data []byte) (SeedData, error) {
	var raw struct {
		Categories []seedCategory `yaml:"categories"`
		Products   []seedProduct  `yaml:"products"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return SeedData{}, fmt.Errorf("parse catalog: %w", err)
	}

	out := SeedData{
		Categories: make([]Category, 0, len(raw.Categories)),
		Products:   make([]Product, 0, len(raw.Products)),
	}
	for _, c := range raw.Categories {
		cat := Category{ID: c.ID, Name: c.Name}
		if c.Icon != "" {
			icon := c.Icon
			cat.Icon = &icon
		}
		out.Categories = append(out.Categories, cat)
	}
	for _, p := range raw.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return SeedData{}, fmt.Errorf("parse catalog: product %q price: %w", p.ID, err)
		}
		prod := Product{ID: p.ID, Title: p.Title, CategoryID: p.Category, Price: price}
		if p.Image != "" {
			image := p.Image
			prod.Image = &image
		}
		out.Products = append(out.Products, prod)
	}
	return out, nil
}

// SeedCatalog inserts data when the products table is empty.
// It reports whether anything was inserted.
func SeedCatalog(ctx context.Context, db *gorm.DB, data SeedData) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&Product{}).Count(&count).Error; err != nil {
		return false, storageErr("count products", err)
	}
	if count > 0 {
		return false, nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertCatalog(tx, data)
	})
	if err != nil {
		return false, storageErr("seed catalog", err)
	}
	return true, nil
}

func insertCatalog(tx *gorm.DB, data SeedData) error {
	for i := range data.Categories {
		var existing int64
		if err := tx.Model(&Category{}).Where("id = ?", data.Categories[i].ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			continue
		}
		if err := tx.Create(&data.Categories[i]).Error; err != nil {
			return err
		}
	}
	if len(data.Products) == 0 {
		return nil
	}
	return tx.Create(&data.Products).Error
}
