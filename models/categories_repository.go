package models

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

func (r *CategoriesRepository) GetAllCategories(ctx context.Context) ([]Category, error) {
	categories := []Category{}
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, storageErr("list categories", err)
	}
	return categories, nil
}

// GetCategoryByID returns nil without an error when the category does not exist.
func (r *CategoriesRepository) GetCategoryByID(ctx context.Context, id string) (*Category, error) {
	var category Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageErr("get category", err)
	}
	return &category, nil
}

func (r *CategoriesRepository) CreateCategory(ctx context.Context, c *Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return ErrInvalidCategory
	}
	if c.ID == "" {
		c.ID = slugOrUUID(c.Name)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&Category{}).
			Where("name = ? OR id = ?", c.Name, c.ID).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrDuplicateCategory
		}
		return tx.Create(c).Error
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateCategory) || isUniqueViolation(err) {
			return ErrDuplicateCategory
		}
		return storageErr("create category", err)
	}
	return nil
}

func (r *CategoriesRepository) UpdateCategory(ctx context.Context, id string, u CategoryUpdate) (*Category, error) {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, ErrInvalidCategory
		}
		u.Name = &name
	}

	var category Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&category).Error; err != nil {
			return err
		}
		cols := u.columns()
		if len(cols) == 0 {
			return nil
		}
		if u.Name != nil {
			var taken int64
			if err := tx.Model(&Category{}).
				Where("name = ? AND id <> ?", *u.Name, id).
				Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return ErrDuplicateCategory
			}
		}
		if err := tx.Model(&category).Updates(cols).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&category).Error
	})
	switch {
	case err == nil:
		return &category, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrCategoryNotFound
	case errors.Is(err, ErrDuplicateCategory) || isUniqueViolation(err):
		return nil, ErrDuplicateCategory
	default:
		return nil, storageErr("update category", err)
	}
}

// DeleteCategory removes the category only. Products keep their category id.
func (r *CategoriesRepository) DeleteCategory(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Category{})
	if res.Error != nil {
		return storageErr("delete category", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// slugOrUUID turns "Cold Press" into "cold-press", falling back to a UUID
// when the name has no ASCII letters or digits.
func slugOrUUID(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return uuid.NewString()
	}
	return slug
}
