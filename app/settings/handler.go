package settings

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/juicebar/pos-backend/app/api"
	"github.com/juicebar/pos-backend/models"
)

type SettingsStore interface {
	GetShopSettings(ctx context.Context) (models.ShopSettings, error)
	SaveShopSettings(ctx context.Context, u models.ShopSettingsUpdate) (models.ShopSettings, error)
	GetAllAdmins(ctx context.Context) ([]models.Admin, error)
	CreateAdmin(ctx context.Context, username, password string) (*models.Admin, error)
	DeleteAdmin(ctx context.Context, id string) error
	VerifyAdmin(ctx context.Context, username, password string) (bool, error)
	ChangePassword(ctx context.Context, username, current, next string) error
	ClearAllData(ctx context.Context) error
	ResetToDefaults(ctx context.Context, data models.SeedData) error
}

// CatalogSource supplies the catalog written by a reset.
type CatalogSource func() (models.SeedData, error)

type SettingsHandler struct {
	store   SettingsStore
	catalog CatalogSource
	logger  *zap.Logger
}

func NewSettingsHandler(store SettingsStore, catalog CatalogSource, logger *zap.Logger) *SettingsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsHandler{store: store, catalog: catalog, logger: logger}
}

func (h *SettingsHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.GetShopSettings(r.Context())
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OKResponse(w, http.StatusOK, s)
}

func (h *SettingsHandler) HandleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name    *string `json:"name"`
		Logo    *string `json:"logo"`
		Address *string `json:"address"`
		Phone   *string `json:"phone"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	s, err := h.store.SaveShopSettings(r.Context(), models.ShopSettingsUpdate{
		Name:    input.Name,
		Logo:    input.Logo,
		Address: input.Address,
		Phone:   input.Phone,
	})
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OKResponse(w, http.StatusOK, s)
}

func (h *SettingsHandler) HandleListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.store.GetAllAdmins(r.Context())
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.OKResponse(w, http.StatusOK, admins)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *SettingsHandler) HandleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var input credentials
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	admin, err := h.store.CreateAdmin(r.Context(), input.Username, input.Password)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	h.logger.Info("admin created", zap.String("username", admin.Username))
	api.OKResponse(w, http.StatusCreated, admin)
}

func (h *SettingsHandler) HandleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteAdmin(r.Context(), r.PathValue("id")); err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SettingsHandler) HandleVerifyAdmin(w http.ResponseWriter, r *http.Request) {
	var input credentials
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	ok, err := h.store.VerifyAdmin(r.Context(), input.Username, input.Password)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	if !ok {
		api.ErrorResponse(w, http.StatusUnauthorized, models.ErrInvalidCredentials.Error())
		return
	}
	api.OKResponse(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *SettingsHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username        string `json:"username"`
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := h.store.ChangePassword(r.Context(), input.Username, input.CurrentPassword, input.NewPassword); err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleClearData deletes orders, the catalog and shop settings. Admin
// accounts survive.
func (h *SettingsHandler) HandleClearData(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearAllData(r.Context()); err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	h.logger.Warn("all shop data cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (h *SettingsHandler) HandleResetDefaults(w http.ResponseWriter, r *http.Request) {
	data, err := h.catalog()
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	if err := h.store.ResetToDefaults(r.Context(), data); err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	h.logger.Warn("shop data reset to defaults", zap.Int("products", len(data.Products)))
	w.WriteHeader(http.StatusNoContent)
}
