package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how an order was settled.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard
}

// Order is an immutable committed sale.
// Total is the value computed by the cart at checkout; it is never derived from Items again.
type Order struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Discount      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	Tax           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	PaymentMethod PaymentMethod   `gorm:"size:16;not null;default:cash" json:"payment_method"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (o *Order) TableName() string {
	return "orders"
}

// OrderItem is a line of a committed order.
// ProductName and Price are snapshots taken at sale time. ProductID is cleared
// when the product is deleted.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   *string         `gorm:"size:64;index" json:"product_id"`
	ProductName string          `gorm:"not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
}

func (i *OrderItem) TableName() string {
	return "order_items"
}

// LineTotal is price times quantity for the item.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrder is the checkout payload handed to CommitOrder.
// All amounts are already resolved by the cart.
type NewOrder struct {
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	Items         []NewOrderItem
}

type NewOrderItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       decimal.Decimal
}
