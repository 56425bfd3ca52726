package orders

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/juicebar/pos-backend/app/api"
	"github.com/juicebar/pos-backend/models"
	"github.com/juicebar/pos-backend/receipt"
)

const (
	defaultLimit = 50
	// History lists every order unless days narrows it.
	defaultListDays = -1
)

type OrderProvider interface {
	GetOrders(ctx context.Context, limit int, w models.Window) ([]models.Order, error)
	GetOrderByID(ctx context.Context, id uint) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID uint) ([]models.OrderItem, error)
}

type SettingsProvider interface {
	GetShopSettings(ctx context.Context) (models.ShopSettings, error)
}

type Response struct {
	Window string         `json:"window"`
	Orders []models.Order `json:"orders"`
}

type OrdersHandler struct {
	repo     OrderProvider
	settings SettingsProvider
	printer  receipt.Printer
	loc      *time.Location
	logger   *zap.Logger
}

func NewOrdersHandler(repo OrderProvider, settings SettingsProvider, printer receipt.Printer, loc *time.Location, logger *zap.Logger) *OrdersHandler {
	return &OrdersHandler{repo: repo, settings: settings, printer: printer, loc: loc, logger: logger}
}

func (h *OrdersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	window := api.WindowParam(r, defaultListDays)
	orders, err := h.repo.GetOrders(r.Context(), api.IntParam(r, "limit", defaultLimit), window)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OKResponse(w, http.StatusOK, Response{Window: window.String(), Orders: orders})
}

// orderID parses the {id} path value; ok is false when a 404 was written.
func orderID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		api.ErrorResponse(w, http.StatusNotFound, "Order not found")
		return 0, false
	}
	return uint(id), true
}

func (h *OrdersHandler) loadOrder(w http.ResponseWriter, r *http.Request) *models.Order {
	id, ok := orderID(w, r)
	if !ok {
		return nil
	}
	order, err := h.repo.GetOrderByID(r.Context(), id)
	if err != nil {
		api.Fail(w, h.logger, err)
		return nil
	}
	if order == nil {
		api.ErrorResponse(w, http.StatusNotFound, "Order not found")
		return nil
	}
	return order
}

func (h *OrdersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if order := h.loadOrder(w, r); order != nil {
		api.OKResponse(w, http.StatusOK, order)
	}
}

// HandleGetItems returns an empty list for unknown orders.
func (h *OrdersHandler) HandleGetItems(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	items, err := h.repo.GetOrderItems(r.Context(), id)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OKResponse(w, http.StatusOK, items)
}

// HandleReceipt rebuilds the receipt of a stored order. With ?print=true it
// is also sent to the printer.
func (h *OrdersHandler) HandleReceipt(w http.ResponseWriter, r *http.Request) {
	order := h.loadOrder(w, r)
	if order == nil {
		return
	}
	settings, err := h.settings.GetShopSettings(r.Context())
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}

	payload := receipt.Build(settings, order, order.Items, h.loc)
	if r.URL.Query().Get("print") == "true" && h.printer != nil {
		if err := h.printer.Print(r.Context(), payload); err != nil {
			api.ErrorResponse(w, http.StatusBadGateway, "Receipt printer unavailable")
			return
		}
	}
	api.OKResponse(w, http.StatusOK, payload)
}
