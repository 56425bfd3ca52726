// Package checkout serves the single active cart of the terminal and commits
// it as an order.
package checkout

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/juicebar/pos-backend/app/api"
	"github.com/juicebar/pos-backend/cart"
	"github.com/juicebar/pos-backend/models"
	"github.com/juicebar/pos-backend/receipt"
)

type ProductLookup interface {
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
}

type OrderCommitter interface {
	CommitOrder(ctx context.Context, in models.NewOrder) (*models.Order, error)
}

type SettingsProvider interface {
	GetShopSettings(ctx context.Context) (models.ShopSettings, error)
}

type CartResponse struct {
	Lines    []cart.LineItem `json:"lines"`
	Discount cart.Discount   `json:"discount"`
	Totals   cart.Totals     `json:"totals"`
}

type CheckoutResponse struct {
	Order   *models.Order   `json:"order"`
	Receipt receipt.Payload `json:"receipt"`
}

// CheckoutHandler owns the terminal's cart. Every request holds mu for its
// whole duration, so a checkout never races an edit.
type CheckoutHandler struct {
	mu   sync.Mutex
	cart *cart.Cart

	products ProductLookup
	orders   OrderCommitter
	settings SettingsProvider
	printer  receipt.Printer
	loc      *time.Location
	logger   *zap.Logger
}

func NewCheckoutHandler(products ProductLookup, orders OrderCommitter, settings SettingsProvider, printer receipt.Printer, loc *time.Location, logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{
		cart:     cart.New(),
		products: products,
		orders:   orders,
		settings: settings,
		printer:  printer,
		loc:      loc,
		logger:   logger,
	}
}

// writeCart must be called with mu held.
func (h *CheckoutHandler) writeCart(w http.ResponseWriter, status int) {
	api.OKResponse(w, status, CartResponse{
		Lines:    h.cart.Lines(),
		Discount: h.cart.Discount(),
		Totals:   h.cart.ComputeTotals(),
	})
}

func (h *CheckoutHandler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writeCart(w, http.StatusOK)
}

func (h *CheckoutHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ProductID string `json:"product_id"`
		Quantity  *int   `json:"quantity"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if input.ProductID == "" {
		api.ErrorResponse(w, http.StatusBadRequest, "Missing product_id")
		return
	}
	qty := 1
	if input.Quantity != nil {
		qty = *input.Quantity
	}

	product, err := h.products.GetProductByID(r.Context(), input.ProductID)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	if product == nil {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.cart.AddItem(cart.Product{ID: product.ID, Title: product.Title, Price: product.Price}, qty)
	h.writeCart(w, http.StatusOK)
}

func (h *CheckoutHandler) HandleChangeQuantity(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Delta int `json:"delta"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.cart.ChangeQuantity(r.PathValue("id"), input.Delta)
	h.writeCart(w, http.StatusOK)
}

func (h *CheckoutHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cart.RemoveItem(r.PathValue("id"))
	h.writeCart(w, http.StatusOK)
}

func (h *CheckoutHandler) HandlePurge(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cart.Purge()
	h.writeCart(w, http.StatusOK)
}

func (h *CheckoutHandler) HandleSetDiscount(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Type  cart.DiscountType `json:"type"`
		Value decimal.Decimal   `json:"value"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.cart.SetDiscount(input.Type, input.Value)
	h.writeCart(w, http.StatusOK)
}

func (h *CheckoutHandler) HandleClearDiscount(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cart.ClearDiscount()
	h.writeCart(w, http.StatusOK)
}

func (h *CheckoutHandler) HandleSetTax(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Value decimal.Decimal `json:"value"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.cart.SetTax(input.Value)
	h.writeCart(w, http.StatusOK)
}

func (h *CheckoutHandler) HandleClearTax(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cart.ClearTax()
	h.writeCart(w, http.StatusOK)
}

func (h *CheckoutHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cart.Clear()
	h.writeCart(w, http.StatusOK)
}

// HandleCheckout commits the cart. The cart is cleared only after the order
// is stored; a failed commit leaves it untouched for a retry. Printing is
// best effort and never undoes a committed order.
func (h *CheckoutHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	var input struct {
		PaymentMethod models.PaymentMethod `json:"payment_method"`
	}
	if err := api.DecodeJSON(r, &input); err != nil && !errors.Is(err, io.EOF) {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = models.PaymentCash
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cart.IsEmpty() {
		api.Fail(w, h.logger, models.ErrEmptyOrder)
		return
	}

	snap := h.cart.Snapshot()
	order, err := h.orders.CommitOrder(r.Context(), newOrder(snap, input.PaymentMethod))
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	h.cart.Clear()

	h.logger.Info("order committed",
		zap.Uint("order_id", order.ID),
		zap.String("total", order.Total.String()),
		zap.String("payment", string(order.PaymentMethod)),
		zap.Int("items", len(order.Items)))

	settings, err := h.settings.GetShopSettings(r.Context())
	if err != nil {
		h.logger.Warn("shop settings unavailable for receipt", zap.Error(err))
		settings = models.ShopSettings{Name: models.DefaultShopName}
	}
	payload := receipt.Build(settings, order, order.Items, h.loc)
	if h.printer != nil {
		if err := h.printer.Print(r.Context(), payload); err != nil {
			h.logger.Warn("receipt not printed", zap.Uint("order_id", order.ID), zap.Error(err))
		}
	}

	api.OKResponse(w, http.StatusCreated, CheckoutResponse{Order: order, Receipt: payload})
}

func newOrder(snap cart.Checkout, method models.PaymentMethod) models.NewOrder {
	items := make([]models.NewOrderItem, len(snap.Lines))
	for i, l := range snap.Lines {
		items[i] = models.NewOrderItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.UnitPrice,
		}
	}
	return models.NewOrder{
		Subtotal:      snap.Subtotal,
		Discount:      snap.DiscountAmount,
		Tax:           snap.Tax,
		Total:         snap.Total,
		PaymentMethod: method,
		Items:         items,
	}
}
