package reports

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/juicebar/pos-backend/app/api"
	"github.com/juicebar/pos-backend/models"
)

// Default windows when days is omitted.
const (
	summaryDays     = 0
	salesDays       = 7
	topProductsDays = 30
)

type ReportProvider interface {
	Summary(ctx context.Context, w models.Window) (models.Summary, error)
	SalesReport(ctx context.Context, w models.Window) ([]models.SalesRow, error)
	TopProducts(ctx context.Context, limit int, w models.Window) ([]models.ProductSales, error)
}

type SummaryResponse struct {
	Window string `json:"window"`
	models.Summary
}

type SalesResponse struct {
	Window string            `json:"window"`
	Rows   []models.SalesRow `json:"rows"`
}

type TopProductsResponse struct {
	Window   string                `json:"window"`
	Products []models.ProductSales `json:"products"`
}

type ReportsHandler struct {
	repo   ReportProvider
	logger *zap.Logger
}

func NewReportsHandler(repo ReportProvider, logger *zap.Logger) *ReportsHandler {
	return &ReportsHandler{repo: repo, logger: logger}
}

func (h *ReportsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	window := api.WindowParam(r, summaryDays)
	summary, err := h.repo.Summary(r.Context(), window)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OKResponse(w, http.StatusOK, SummaryResponse{Window: window.String(), Summary: summary})
}

func (h *ReportsHandler) HandleSales(w http.ResponseWriter, r *http.Request) {
	window := api.WindowParam(r, salesDays)
	rows, err := h.repo.SalesReport(r.Context(), window)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OKResponse(w, http.StatusOK, SalesResponse{Window: window.String(), Rows: rows})
}

func (h *ReportsHandler) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	window := api.WindowParam(r, topProductsDays)
	products, err := h.repo.TopProducts(r.Context(), api.IntParam(r, "limit", 5), window)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OKResponse(w, http.StatusOK, TopProductsResponse{Window: window.String(), Products: products})
}
