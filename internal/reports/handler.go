package reports

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ezzystore/ezzystore/internal/auth"
	"github.com/ezzystore/ezzystore/internal/platform/httpx"
	"github.com/ezzystore/ezzystore/internal/shared"
	"github.com/ezzystore/ezzystore/internal/shops"
)

// Handler exposes the report endpoints for the acting manager's shop.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	resolver *shops.Resolver
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, resolver *shops.Resolver) *Handler {
	return &Handler{logger: logger, service: service, resolver: resolver}
}

// MountRoutes registers report endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/reports/daily", h.handleDaily)
	r.Get("/reports/purchases", h.handlePurchases)
	r.Get("/reports/latest-rates", h.handleLatestRates)
	r.Get("/reports/batch-date", h.handleBatchDate)
	r.Get("/reports/customers", h.handleCustomerInsights)
}

func (h *Handler) shopID(r *http.Request) (int64, error) {
	actor := auth.UserFromContext(r.Context())
	shop, err := h.resolver.ShopForManager(r.Context(), actor.ID)
	if err != nil {
		return 0, err
	}
	return shop.ID, nil
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	d, err := h.service.Dashboard(r.Context(), shopID)
	if err != nil {
		h.logger.Error("dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) handleDaily(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	start, err := shared.ParseDate(q.Get("start"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	end, err := shared.ParseDate(q.Get("end"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if end.Before(start.Time) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "end date before start date")
		return
	}
	days, err := h.service.DailySummary(r.Context(), shopID, start, end)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, days)
}

func (h *Handler) handlePurchases(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.PurchaseSummary(r.Context(), shopID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleLatestRates(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rates, err := h.service.LatestRatesPerProduct(r.Context(), shopID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rates)
}

func (h *Handler) handleBatchDate(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	date, err := shared.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.BatchDateSummary(r.Context(), shopID, date)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleCustomerInsights(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	insights, err := h.service.CustomerInsights(r.Context(), shopID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, insights)
}
