package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/juicebar/pos-backend/app/api"
	"github.com/juicebar/pos-backend/models"
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Product struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Image    *string         `json:"image,omitempty"`
}

type ProductProvider interface {
	GetAllProducts(ctx context.Context) ([]models.Product, error)
	GetFilteredProducts(ctx context.Context, offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error)
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, id string, u models.ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type CatalogHandler struct {
	repo   ProductProvider
	logger *zap.Logger
}

func NewCatalogHandler(r ProductProvider, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		repo:   r,
		logger: logger,
	}
}

func toProduct(p models.Product) Product {
	return Product{
		ID:       p.ID,
		Title:    p.Title,
		Category: p.CategoryID,
		Price:    p.Price,
		Image:    p.Image,
	}
}

func toProducts(res []models.Product) []Product {
	products := make([]Product, len(res))
	for i, p := range res {
		products[i] = toProduct(p)
	}
	return products
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	// The order screen loads the whole catalog at once.
	if r.URL.Query().Get("all") == "true" {
		res, err := h.repo.GetAllProducts(r.Context())
		if err != nil {
			api.Fail(w, h.logger, err)
			return
		}
		api.OKResponse(w, http.StatusOK, Response{Total: len(res), Products: toProducts(res)})
		return
	}

	// Parse pagination query params
	offset := 0
	limit := 10

	if oStr := r.URL.Query().Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > 100 {
				limit = 100
			} else {
				limit = l
			}
		}
	}

	// Parse filters
	var priceFilter *float64
	if priceStr := r.URL.Query().Get("price_lt"); priceStr != "" {
		if val, err := strconv.ParseFloat(priceStr, 64); err == nil {
			priceFilter = &val
		}
	}

	filters := models.ProductFilters{
		CategoryID:    r.URL.Query().Get("category"),
		PriceLessThan: priceFilter,
		Search:        r.URL.Query().Get("q"),
	}

	res, total, err := h.repo.GetFilteredProducts(r.Context(), offset, limit, filters)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}

	api.OKResponse(w, http.StatusOK, Response{
		Total:    int(total),
		Products: toProducts(res),
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	product, err := h.repo.GetProductByID(r.Context(), id)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	if product == nil {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}

	api.OKResponse(w, http.StatusOK, toProduct(*product))
}

type productInput struct {
	ID       string           `json:"id"`
	Title    *string          `json:"title"`
	Category *string          `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Image    *string          `json:"image"`
}

func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input productInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if input.Title == nil || input.Category == nil || input.Price == nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Missing title, category or price")
		return
	}

	product := &models.Product{
		ID:         input.ID,
		Title:      *input.Title,
		CategoryID: *input.Category,
		Price:      *input.Price,
		Image:      input.Image,
	}
	if err := h.repo.CreateProduct(r.Context(), product); err != nil {
		api.Fail(w, h.logger, err)
		return
	}

	api.OKResponse(w, http.StatusCreated, toProduct(*product))
}

func (h *CatalogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var input productInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	product, err := h.repo.UpdateProduct(r.Context(), r.PathValue("id"), models.ProductUpdate{
		Title:      input.Title,
		CategoryID: input.Category,
		Price:      input.Price,
		Image:      input.Image,
	})
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}

	api.OKResponse(w, http.StatusOK, toProduct(*product))
}

func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.repo.DeleteProduct(r.Context(), r.PathValue("id"))
	if errors.Is(err, models.ErrProductNotFound) {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
