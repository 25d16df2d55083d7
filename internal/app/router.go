package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ezzystore/ezzystore/internal/auth"
	"github.com/ezzystore/ezzystore/internal/catalog"
	"github.com/ezzystore/ezzystore/internal/reports"
	"github.com/ezzystore/ezzystore/internal/sales"
	"github.com/ezzystore/ezzystore/internal/shared"
	"github.com/ezzystore/ezzystore/internal/shops"
	"github.com/ezzystore/ezzystore/internal/stock"
	"github.com/ezzystore/ezzystore/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthService *auth.Service

	AuthHandler    *auth.Handler
	ShopsHandler   *shops.Handler
	CatalogHandler *catalog.Handler
	StockHandler   *stock.Handler
	SalesHandler   *sales.Handler
	ReportsHandler *reports.Handler
	JobHandler     *jobs.Handler
}

// NewRouter constructs the chi.Router. Admin routes manage shops and
// assignments; everything under /api belongs to the acting manager's shop.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/admin", func(r chi.Router) {
		r.Use(params.AuthService.RequireRole(auth.RoleAdmin))
		r.Route("/shops", params.ShopsHandler.MountAdminRoutes)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(params.AuthService.RequireRole(auth.RoleManager))
		params.ShopsHandler.MountManagerRoutes(r)
		params.CatalogHandler.MountRoutes(r)
		params.StockHandler.MountRoutes(r)
		params.SalesHandler.MountRoutes(r)
		params.ReportsHandler.MountRoutes(r)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", func(r chi.Router) {
			r.Use(params.AuthService.RequireRole(auth.RoleAdmin))
			params.JobHandler.MountRoutes(r)
		})
	}

	return r
}
