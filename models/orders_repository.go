package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultOrdersLimit = 50

type OrdersRepository struct {
	db    *gorm.DB
	clock Clock
}

func NewOrdersRepository(db *gorm.DB, clock Clock) *OrdersRepository {
	return &OrdersRepository{db: db, clock: clock}
}

func validateNewOrder(in NewOrder) error {
	if !in.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	if len(in.Items) == 0 {
		return ErrEmptyOrder
	}
	if in.Subtotal.IsNegative() || in.Discount.IsNegative() || in.Tax.IsNegative() || in.Total.IsNegative() {
		return ErrInvalidAmount
	}
	if !in.Total.Equal(decimal.Max(decimal.Zero, in.Subtotal.Sub(in.Discount).Add(in.Tax))) {
		return ErrInconsistentTotal
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.ProductName) == "" || it.Quantity < 1 || it.Price.IsNegative() {
			return ErrInvalidOrderItem
		}
	}
	return nil
}

// CommitOrder stores the order and its items in one transaction and returns
// the order with its generated id and items. Nothing is written when any
// insert fails. Amounts are stored exactly as given.
func (r *OrdersRepository) CommitOrder(ctx context.Context, in NewOrder) (*Order, error) {
	if err := validateNewOrder(in); err != nil {
		return nil, err
	}

	createdAt := r.clock.now().UTC().Truncate(time.Microsecond)
	order := Order{
		Subtotal:      in.Subtotal,
		Discount:      in.Discount,
		Tax:           in.Tax,
		Total:         in.Total,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     createdAt,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		known, err := knownProductIDs(tx, in.Items)
		if err != nil {
			return err
		}

		items := make([]OrderItem, len(in.Items))
		for i, it := range in.Items {
			items[i] = OrderItem{
				OrderID:     order.ID,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				Price:       it.Price,
				CreatedAt:   createdAt,
			}
			// Products deleted after being added to the cart keep only their snapshot.
			if known[it.ProductID] {
				id := it.ProductID
				items[i].ProductID = &id
			}
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, storageErr("commit order", err)
	}
	return &order, nil
}

func knownProductIDs(tx *gorm.DB, items []NewOrderItem) (map[string]bool, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it.ProductID != "" {
			ids = append(ids, it.ProductID)
		}
	}
	known := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return known, nil
	}
	var found []string
	if err := tx.Model(&Product{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		known[id] = true
	}
	return known, nil
}

// GetOrders lists orders inside w, newest first. limit below 1 means 50.
func (r *OrdersRepository) GetOrders(ctx context.Context, limit int, w Window) ([]Order, error) {
	if limit < 1 {
		limit = defaultOrdersLimit
	}
	query := r.db.WithContext(ctx).Model(&Order{})
	if since, ok := r.clock.since(w); ok {
		query = query.Where("created_at >= ?", since)
	}

	orders := []Order{}
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, storageErr("list orders", err)
	}
	return orders, nil
}

// GetOrderByID returns the order with its items, or nil when it does not exist.
func (r *OrdersRepository) GetOrderByID(ctx context.Context, id uint) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageErr("get order", err)
	}
	return &order, nil
}

// GetOrderItems returns the items of an order in insertion order; empty when none.
func (r *OrdersRepository) GetOrderItems(ctx context.Context, orderID uint) ([]OrderItem, error) {
	items := []OrderItem{}
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id").
		Find(&items).Error; err != nil {
		return nil, storageErr("list order items", err)
	}
	return items, nil
}
