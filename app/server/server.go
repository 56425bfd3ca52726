// Package server wires repositories and handlers into the HTTP surface and
// runs it until the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/juicebar/pos-backend/app/api"
	"github.com/juicebar/pos-backend/app/catalog"
	"github.com/juicebar/pos-backend/app/categories"
	"github.com/juicebar/pos-backend/app/checkout"
	"github.com/juicebar/pos-backend/app/orders"
	"github.com/juicebar/pos-backend/app/reports"
	"github.com/juicebar/pos-backend/app/settings"
	"github.com/juicebar/pos-backend/config"
	"github.com/juicebar/pos-backend/database"
	"github.com/juicebar/pos-backend/models"
	"github.com/juicebar/pos-backend/receipt"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	db     *gorm.DB
	addr   string
	logger *zap.Logger
	mux    *http.ServeMux
}

// Options tune collaborators that tests replace.
type Options struct {
	Clock       models.Clock
	Printer     receipt.Printer
	BcryptCost  int
	CatalogFunc settings.CatalogSource
}

func New(cfg *config.Config, db *gorm.DB, logger *zap.Logger, opts Options) *Server {
	if opts.Clock.Now == nil {
		opts.Clock = models.SystemClock(cfg.Location)
	}
	if opts.Printer == nil {
		opts.Printer = receipt.NewLogPrinter(logger.Named("receipt"))
	}
	if opts.CatalogFunc == nil {
		opts.CatalogFunc = models.DefaultCatalog
	}

	productRepo := models.NewProductsRepository(db)
	categoryRepo := models.NewCategoriesRepository(db)
	orderRepo := models.NewOrdersRepository(db, opts.Clock)
	reportRepo := models.NewReportsRepository(db, opts.Clock)
	settingsRepo := models.NewSettingsRepository(db)
	if opts.BcryptCost > 0 {
		settingsRepo.WithBcryptCost(opts.BcryptCost)
	}

	s := &Server{db: db, addr: cfg.HTTPAddr, logger: logger, mux: http.NewServeMux()}

	cat := catalog.NewCatalogHandler(productRepo, logger)
	s.mux.HandleFunc("GET /products", cat.HandleGet)
	s.mux.HandleFunc("GET /products/{id}", cat.HandleGetProduct)
	s.mux.HandleFunc("POST /products", cat.HandleCreate)
	s.mux.HandleFunc("PATCH /products/{id}", cat.HandleUpdate)
	s.mux.HandleFunc("DELETE /products/{id}", cat.HandleDelete)

	cats := categories.NewCategoryHandler(categoryRepo, logger)
	s.mux.HandleFunc("GET /categories", cats.HandleGetAll)
	s.mux.HandleFunc("POST /categories", cats.HandleCreate)
	s.mux.HandleFunc("PATCH /categories/{id}", cats.HandleUpdate)
	s.mux.HandleFunc("DELETE /categories/{id}", cats.HandleDelete)

	co := checkout.NewCheckoutHandler(productRepo, orderRepo, settingsRepo, opts.Printer, opts.Clock.Location, logger)
	s.mux.HandleFunc("GET /cart", co.HandleGetCart)
	s.mux.HandleFunc("POST /cart/items", co.HandleAddItem)
	s.mux.HandleFunc("PATCH /cart/items/{id}", co.HandleChangeQuantity)
	s.mux.HandleFunc("DELETE /cart/items/{id}", co.HandleRemoveItem)
	s.mux.HandleFunc("POST /cart/purge", co.HandlePurge)
	s.mux.HandleFunc("PUT /cart/discount", co.HandleSetDiscount)
	s.mux.HandleFunc("DELETE /cart/discount", co.HandleClearDiscount)
	s.mux.HandleFunc("PUT /cart/tax", co.HandleSetTax)
	s.mux.HandleFunc("DELETE /cart/tax", co.HandleClearTax)
	s.mux.HandleFunc("DELETE /cart", co.HandleClear)
	s.mux.HandleFunc("POST /cart/checkout", co.HandleCheckout)

	ord := orders.NewOrdersHandler(orderRepo, settingsRepo, opts.Printer, opts.Clock.Location, logger)
	s.mux.HandleFunc("GET /orders", ord.HandleList)
	s.mux.HandleFunc("GET /orders/{id}", ord.HandleGet)
	s.mux.HandleFunc("GET /orders/{id}/items", ord.HandleGetItems)
	s.mux.HandleFunc("GET /orders/{id}/receipt", ord.HandleReceipt)

	rep := reports.NewReportsHandler(reportRepo, logger)
	s.mux.HandleFunc("GET /reports/summary", rep.HandleSummary)
	s.mux.HandleFunc("GET /reports/sales", rep.HandleSales)
	s.mux.HandleFunc("GET /reports/top-products", rep.HandleTopProducts)

	set := settings.NewSettingsHandler(settingsRepo, opts.CatalogFunc, logger)
	s.mux.HandleFunc("GET /settings", set.HandleGetSettings)
	s.mux.HandleFunc("PUT /settings", set.HandleSaveSettings)
	s.mux.HandleFunc("GET /admins", set.HandleListAdmins)
	s.mux.HandleFunc("POST /admins", set.HandleCreateAdmin)
	s.mux.HandleFunc("DELETE /admins/{id}", set.HandleDeleteAdmin)
	s.mux.HandleFunc("POST /admins/password", set.HandleChangePassword)
	s.mux.HandleFunc("POST /admins/verify", set.HandleVerifyAdmin)
	s.mux.HandleFunc("POST /maintenance/clear", set.HandleClearData)
	s.mux.HandleFunc("POST /maintenance/reset", set.HandleResetDefaults)

	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	return s
}

func (s *Server) Handler() http.Handler {
	return logRequests(s.logger, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := database.Ping(r.Context(), s.db); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		api.ErrorResponse(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	api.OKResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Bootstrap brings the store to the current schema, seeds an empty catalog
// when enabled and makes sure an admin account exists.
func Bootstrap(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *zap.Logger) error {
	applied, err := models.Migrate(ctx, db)
	if err != nil {
		return err
	}
	version, err := models.SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	logger.Info("schema ready", zap.Int("applied", applied), zap.Int("version", version))

	if cfg.SeedCatalog {
		data, err := models.DefaultCatalog()
		if err != nil {
			return err
		}
		seeded, err := models.SeedCatalog(ctx, db, data)
		if err != nil {
			return err
		}
		if seeded {
			logger.Info("default catalog seeded", zap.Int("products", len(data.Products)))
		}
	}

	created, err := models.NewSettingsRepository(db).EnsureDefaultAdmin(ctx, cfg.DefaultAdmin.Username, cfg.DefaultAdmin.Password)
	if err != nil {
		return fmt.Errorf("default admin: %w", err)
	}
	if created {
		logger.Warn("default admin account created, change its password", zap.String("username", cfg.DefaultAdmin.Username))
	}
	return nil
}
