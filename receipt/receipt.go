// Package receipt turns a committed order into the flat payload handed to
// the receipt printer. It does no HTML formatting and talks to no device.
package receipt

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/juicebar/pos-backend/models"
)

const dateLayout = "2006-01-02 15:04"

type Item struct {
	Title string          `json:"title"`
	Qty   int             `json:"qty"`
	Price decimal.Decimal `json:"price"`
	Total decimal.Decimal `json:"total"`
}

type Payload struct {
	ShopName      string          `json:"shopName"`
	Address       string          `json:"address,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	OrderNumber   string          `json:"orderNumber"`
	Date          string          `json:"date"`
	PaymentMethod string          `json:"paymentMethod"`
	Items         []Item          `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
}

// Printer is implemented by whatever renders and prints receipts.
type Printer interface {
	Print(ctx context.Context, p Payload) error
}

// Build assembles the payload from stored values only; nothing is recomputed
// except the per-line total. The date is shown in loc, time.Local when nil.
func Build(settings models.ShopSettings, order *models.Order, items []models.OrderItem, loc *time.Location) Payload {
	if loc == nil {
		loc = time.Local
	}
	shopName := settings.Name
	if shopName == "" {
		shopName = models.DefaultShopName
	}

	out := Payload{
		ShopName:      shopName,
		Address:       settings.Address,
		Phone:         settings.Phone,
		OrderNumber:   OrderNumber(order.ID),
		Date:          order.CreatedAt.In(loc).Format(dateLayout),
		PaymentMethod: PaymentLabel(order.PaymentMethod),
		Items:         make([]Item, len(items)),
		Subtotal:      order.Subtotal,
		Discount:      order.Discount,
		Tax:           order.Tax,
		Total:         order.Total,
	}
	for i, it := range items {
		out.Items[i] = Item{
			Title: it.ProductName,
			Qty:   it.Quantity,
			Price: it.Price,
			Total: it.LineTotal(),
		}
	}
	return out
}

// OrderNumber formats an order id for display, e.g. 42 -> "#000042".
func OrderNumber(id uint) string {
	return fmt.Sprintf("#%06d", id)
}

func PaymentLabel(m models.PaymentMethod) string {
	switch m {
	case models.PaymentCard:
		return "Card"
	case models.PaymentCash:
		return "Cash"
	default:
		return string(m)
	}
}

// FormatMoney rounds for display only.
func FormatMoney(v decimal.Decimal) string {
	return v.StringFixed(2)
}

// LogPrinter writes receipts to the log. It stands in when no printer is attached.
type LogPrinter struct {
	logger *zap.Logger
}

func NewLogPrinter(logger *zap.Logger) *LogPrinter {
	return &LogPrinter{logger: logger}
}

func (p *LogPrinter) Print(_ context.Context, r Payload) error {
	lines := make([]string, len(r.Items))
	for i, it := range r.Items {
		lines[i] = fmt.Sprintf("%d x %s @ %s = %s", it.Qty, it.Title, FormatMoney(it.Price), FormatMoney(it.Total))
	}
	p.logger.Info("receipt",
		zap.String("shop", r.ShopName),
		zap.String("order", r.OrderNumber),
		zap.String("date", r.Date),
		zap.String("payment", r.PaymentMethod),
		zap.Strings("items", lines),
		zap.String("subtotal", FormatMoney(r.Subtotal)),
		zap.String("discount", FormatMoney(r.Discount)),
		zap.String("tax", FormatMoney(r.Tax)),
		zap.String("total", FormatMoney(r.Total)),
	)
	return nil
}
