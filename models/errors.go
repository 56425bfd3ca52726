package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrProductNotFound is returned when a product targeted by a write is not found.
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrAdminNotFound    = errors.New("admin not found")

	ErrInvalidPaymentMethod = errors.New("payment method must be cash or card")
	ErrEmptyOrder           = errors.New("order has no items")
	ErrInvalidOrderItem     = errors.New("order item must have a name, a positive quantity and a non-negative price")
	ErrInvalidAmount        = errors.New("order amounts must not be negative")
	ErrInconsistentTotal    = errors.New("order total must equal max(0, subtotal - discount + tax)")
	ErrInvalidProduct       = errors.New("product must have a title, a category and a non-negative price")
	ErrInvalidCategory      = errors.New("category must have a name")

	ErrDuplicateProduct   = errors.New("product id already exists")
	ErrDuplicateCategory  = errors.New("category name already exists")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrLastAdmin          = errors.New("cannot delete the last admin account")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrPersistence marks failures of the backing store itself.
	ErrPersistence = errors.New("storage failure")
)

// IsValidation reports whether err was caused by bad input rather than storage.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidPaymentMethod) ||
		errors.Is(err, ErrEmptyOrder) ||
		errors.Is(err, ErrInvalidOrderItem) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInconsistentTotal) ||
		errors.Is(err, ErrInvalidProduct) ||
		errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrInvalidCredentials)
}

// IsConflict reports whether err is a referential or uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateProduct) ||
		errors.Is(err, ErrDuplicateCategory) ||
		errors.Is(err, ErrDuplicateUsername) ||
		errors.Is(err, ErrLastAdmin)
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrAdminNotFound)
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
