package models

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductsRepository struct {
	db *gorm.DB
}

type ProductFilters struct {
	CategoryID    string
	PriceLessThan *float64
	Search        string
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func (r *ProductsRepository) GetAllProducts(ctx context.Context) ([]Product, error) {
	products := []Product{}
	if err := r.db.WithContext(ctx).
		Order("category, title").
		Find(&products).Error; err != nil {
		return nil, storageErr("list products", err)
	}
	return products, nil
}

func (r *ProductsRepository) GetFilteredProducts(ctx context.Context, offset, limit int, filters ProductFilters) ([]Product, int64, error) {
	products := []Product{}
	var total int64

	query := r.db.WithContext(ctx).Model(&Product{})

	// Filter
	if filters.CategoryID != "" {
		query = query.Where("category = ?", filters.CategoryID)
	}
	if filters.PriceLessThan != nil {
		query = query.Where("price < ?", *filters.PriceLessThan)
	}
	if s := strings.TrimSpace(filters.Search); s != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	// Count total after filtering
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageErr("count products", err)
	}

	if err := query.Order("category, title").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, storageErr("list products", err)
	}

	return products, total, nil
}

// GetProductByID returns nil without an error when the product does not exist.
func (r *ProductsRepository) GetProductByID(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageErr("get product", err)
	}
	return &product, nil
}

// CreateProduct inserts p, generating an id when none is set.
func (r *ProductsRepository) CreateProduct(ctx context.Context, p *Product) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" || p.CategoryID == "" || p.Price.IsNegative() {
		return ErrInvalidProduct
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateProduct
		}
		return storageErr("create product", err)
	}
	return nil
}

// UpdateProduct writes only the fields set in u and returns the stored row.
func (r *ProductsRepository) UpdateProduct(ctx context.Context, id string, u ProductUpdate) (*Product, error) {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return nil, ErrInvalidProduct
	}
	if u.CategoryID != nil && *u.CategoryID == "" {
		return nil, ErrInvalidProduct
	}
	if u.Price != nil && u.Price.IsNegative() {
		return nil, ErrInvalidProduct
	}

	var product Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&product).Error; err != nil {
			return err
		}
		cols := u.columns()
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(&product).Updates(cols).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&product).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, storageErr("update product", err)
	}
	return &product, nil
}

// DeleteProduct clears the product reference on historical order items and
// then removes the product. Item name and price snapshots are untouched.
func (r *ProductsRepository) DeleteProduct(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&OrderItem{}).
			Where("product_id = ?", id).
			Update("product_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return err
		}
		return storageErr("delete product", err)
	}
	return nil
}
