package shops

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ezzystore/ezzystore/internal/auth"
	"github.com/ezzystore/ezzystore/internal/platform/httpx"
)

// Handler exposes admin shop management plus manager-facing settings.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	resolver  *Resolver
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, resolver *Resolver) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		resolver:  resolver,
		validator: validator.New(),
	}
}

// MountAdminRoutes registers shop administration endpoints.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Delete("/{shopID}", h.handleDelete)
	r.Post("/{shopID}/manager", h.handleAssignManager)
	r.Delete("/{shopID}/manager", h.handleUnassignManager)
}

// MountManagerRoutes registers the settings endpoints for the acting manager.
func (h *Handler) MountManagerRoutes(r chi.Router) {
	r.Get("/settings", h.handleGetSettings)
	r.Put("/settings", h.handleSaveSettings)
}

type createShopForm struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var form createShopForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := auth.UserFromContext(r.Context())
	shop, err := h.service.Create(r.Context(), form.Name, actor.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, shop)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	shops, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list shops", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shops)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "shopID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid shop id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type assignManagerForm struct {
	ManagerUserID int64 `json:"manager_user_id" validate:"required,gt=0"`
}

func (h *Handler) handleAssignManager(w http.ResponseWriter, r *http.Request) {
	shopID, err := strconv.ParseInt(chi.URLParam(r, "shopID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid shop id")
		return
	}
	var form assignManagerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := auth.UserFromContext(r.Context())
	if err := h.service.AssignManager(r.Context(), shopID, form.ManagerUserID, actor.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

func (h *Handler) handleUnassignManager(w http.ResponseWriter, r *http.Request) {
	shopID, err := strconv.ParseInt(chi.URLParam(r, "shopID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid shop id")
		return
	}
	if err := h.service.UnassignManager(r.Context(), shopID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "unassigned"})
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r.Context())
	shop, err := h.resolver.ShopForManager(r.Context(), actor.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	settings, err := h.service.GetSettings(r.Context(), shop)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

type saveSettingsForm struct {
	ExpensePercent float64 `json:"expense_percent" validate:"gte=0,lte=100"`
}

func (h *Handler) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	actor := auth.UserFromContext(r.Context())
	shop, err := h.resolver.ShopForManager(r.Context(), actor.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var form saveSettingsForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.SaveSettings(r.Context(), shop, form.ExpensePercent); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
