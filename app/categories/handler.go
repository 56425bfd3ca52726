package categories

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/juicebar/pos-backend/app/api"
	"github.com/juicebar/pos-backend/models"
)

type CategoryResponse struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Icon *string `json:"icon,omitempty"`
}

type CategoryProvider interface {
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, id string, u models.CategoryUpdate) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type CategoryHandler struct {
	repo   CategoryProvider
	logger *zap.Logger
}

func NewCategoryHandler(r CategoryProvider, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{repo: r, logger: logger}
}

func toResponse(c models.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Icon: c.Icon}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories(r.Context())
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = toResponse(c)
	}

	api.OKResponse(w, http.StatusOK, response)
}

type categoryInput struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
	Icon *string `json:"icon"`
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input categoryInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if input.Name == nil || *input.Name == "" {
		api.ErrorResponse(w, http.StatusBadRequest, "Missing name")
		return
	}

	category := &models.Category{
		ID:   input.ID,
		Name: *input.Name,
		Icon: input.Icon,
	}

	if err := h.repo.CreateCategory(r.Context(), category); err != nil {
		api.Fail(w, h.logger, err)
		return
	}

	api.OKResponse(w, http.StatusCreated, toResponse(*category))
}

func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var input categoryInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	category, err := h.repo.UpdateCategory(r.Context(), r.PathValue("id"), models.CategoryUpdate{
		Name: input.Name,
		Icon: input.Icon,
	})
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}

	api.OKResponse(w, http.StatusOK, toResponse(*category))
}

// HandleDelete removes a category. Its products stay in the catalog.
func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
