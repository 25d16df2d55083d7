package stock

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ezzystore/ezzystore/internal/auth"
	"github.com/ezzystore/ezzystore/internal/platform/httpx"
	"github.com/ezzystore/ezzystore/internal/shared"
	"github.com/ezzystore/ezzystore/internal/shops"
)

// Handler exposes the restock ledger for the acting manager's shop.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	resolver *shops.Resolver
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, resolver *shops.Resolver) *Handler {
	return &Handler{logger: logger, service: service, resolver: resolver}
}

// MountRoutes registers stock ledger endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/restock", h.handleRestock)
	r.Get("/batches", h.handleListBatches)
	r.Get("/products/{productID}/batches", h.handleListByProduct)
}

func (h *Handler) shopID(r *http.Request) (int64, error) {
	actor := auth.UserFromContext(r.Context())
	shop, err := h.resolver.ShopForManager(r.Context(), actor.ID)
	if err != nil {
		return 0, err
	}
	return shop.ID, nil
}

func (h *Handler) handleRestock(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var form Form
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	in, err := form.Normalize()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	batches, err := h.service.Restock(r.Context(), shopID, in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, batches)
}

// handleListBatches lists the shop's batches, optionally filtered by date.
func (h *Handler) handleListBatches(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	var batches []Batch
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := shared.ParseDate(raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		batches, err = h.service.ListByDate(r.Context(), shopID, date)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
	} else {
		batches, err = h.service.ListByShop(r.Context(), shopID)
		if err != nil {
			h.logger.Error("list batches", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, batches)
}

func (h *Handler) handleListByProduct(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	batches, err := h.service.ListByProduct(r.Context(), shopID, productID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, batches)
}
