// Package cart is the in-memory order being built at the till.
//
// Every mutation normalises out-of-range input instead of failing, and
// ComputeTotals is pure: it reads the cart and performs no I/O.
package cart

import (
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountFixed   DiscountType = "fixed"
	DiscountPercent DiscountType = "percent"
)

var hundred = decimal.NewFromInt(100)

// Product is the catalog data captured when a line is added.
type Product struct {
	ID    string
	Title string
	Price decimal.Decimal
}

// LineItem is one product in the cart. ProductName and UnitPrice are fixed
// at the moment the product was first added.
type LineItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

func (l LineItem) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Discount struct {
	Type  DiscountType    `json:"type"`
	Value decimal.Decimal `json:"value"`
}

type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
}

// Cart is not safe for concurrent use.
type Cart struct {
	lines    []LineItem
	discount Discount
	tax      decimal.Decimal
}

func New() *Cart {
	return &Cart{
		discount: Discount{Type: DiscountFixed, Value: decimal.Zero},
		tax:      decimal.Zero,
	}
}

func (c *Cart) find(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem adds qty of p, merging into an existing line for the same product.
// qty below 1 is treated as 1.
func (c *Cart) AddItem(p Product, qty int) {
	if qty < 1 {
		qty = 1
	}
	if i := c.find(p.ID); i >= 0 {
		c.lines[i].Quantity += qty
		return
	}
	price := p.Price
	if price.IsNegative() {
		price = decimal.Zero
	}
	c.lines = append(c.lines, LineItem{
		ProductID:   p.ID,
		ProductName: p.Title,
		UnitPrice:   price,
		Quantity:    qty,
	})
}

// ChangeQuantity adds delta to the line's quantity, flooring at zero.
// Zero-quantity lines stay in the cart until removed or purged.
func (c *Cart) ChangeQuantity(lineID string, delta int) {
	i := c.find(lineID)
	if i < 0 {
		return
	}
	c.lines[i].Quantity = max(0, c.lines[i].Quantity+delta)
}

func (c *Cart) RemoveItem(lineID string) {
	if i := c.find(lineID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Purge drops every zero-quantity line.
func (c *Cart) Purge() {
	kept := c.lines[:0]
	for _, l := range c.lines {
		if l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	c.lines = kept
}

// SetDiscount stores the discount clamped to its range: [0,100] for
// percent, [0, current subtotal] for fixed. Unknown types are fixed.
func (c *Cart) SetDiscount(t DiscountType, value decimal.Decimal) {
	if value.IsNegative() {
		value = decimal.Zero
	}
	switch t {
	case DiscountPercent:
		value = decimal.Min(value, hundred)
	default:
		t = DiscountFixed
		value = decimal.Min(value, c.subtotal())
	}
	c.discount = Discount{Type: t, Value: value}
}

func (c *Cart) ClearDiscount() {
	c.discount = Discount{Type: DiscountFixed, Value: decimal.Zero}
}

// SetTax stores a flat tax amount, negative values become zero.
func (c *Cart) SetTax(value decimal.Decimal) {
	c.tax = decimal.Max(decimal.Zero, value)
}

func (c *Cart) ClearTax() {
	c.tax = decimal.Zero
}

func (c *Cart) Discount() Discount {
	return c.discount
}

func (c *Cart) Tax() decimal.Decimal {
	return c.tax
}

// Lines returns a copy of the lines in display order.
func (c *Cart) Lines() []LineItem {
	out := make([]LineItem, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty reports whether no line has a positive quantity.
func (c *Cart) IsEmpty() bool {
	for _, l := range c.lines {
		if l.Quantity > 0 {
			return false
		}
	}
	return true
}

// Clear empties the cart and resets discount and tax.
func (c *Cart) Clear() {
	c.lines = nil
	c.ClearDiscount()
	c.ClearTax()
}

func (c *Cart) subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// ComputeTotals evaluates subtotal, then discount, then tax:
//
//	total = max(0, subtotal - discount + tax)
//
// A fixed discount is capped at the subtotal in effect now.
func (c *Cart) ComputeTotals() Totals {
	subtotal := c.subtotal()

	var discount decimal.Decimal
	if c.discount.Type == DiscountPercent {
		discount = subtotal.Mul(c.discount.Value).Div(hundred)
	} else {
		discount = decimal.Min(c.discount.Value, subtotal)
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Tax:            c.tax,
		Total:          decimal.Max(decimal.Zero, subtotal.Sub(discount).Add(c.tax)),
	}
}

// Checkout is the frozen cart handed to order persistence.
type Checkout struct {
	Totals
	Lines []LineItem
}

// Snapshot freezes the cart for commit. Zero-quantity lines are left out.
func (c *Cart) Snapshot() Checkout {
	lines := make([]LineItem, 0, len(c.lines))
	for _, l := range c.lines {
		if l.Quantity > 0 {
			lines = append(lines, l)
		}
	}
	return Checkout{Totals: c.ComputeTotals(), Lines: lines}
}
