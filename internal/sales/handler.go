package sales

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ezzystore/ezzystore/internal/auth"
	"github.com/ezzystore/ezzystore/internal/platform/httpx"
	"github.com/ezzystore/ezzystore/internal/shared"
	"github.com/ezzystore/ezzystore/internal/shops"
)

// Handler exposes the transaction ledger and customer registry for the
// acting manager's shop.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	resolver  *shops.Resolver
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, resolver *shops.Resolver) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		resolver:  resolver,
		validator: validator.New(),
	}
}

// MountRoutes registers ledger endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sales", h.handleRecordSale)
	r.Get("/sales", h.handleListSales)
	r.Get("/sales/{saleID}", h.handleGetSale)
	r.Post("/sales/{saleID}/returns", h.handleReturnAgainstSale)
	r.Post("/returns", h.handleStandaloneReturn)

	r.Get("/customers", h.handleListCustomers)
	r.Post("/customers", h.handleCreateCustomer)
	r.Put("/customers/{customerID}", h.handleUpdateCustomer)
	r.Delete("/customers/{customerID}", h.handleDeleteCustomer)
}

func (h *Handler) shopID(r *http.Request) (int64, error) {
	actor := auth.UserFromContext(r.Context())
	shop, err := h.resolver.ShopForManager(r.Context(), actor.ID)
	if err != nil {
		return 0, err
	}
	return shop.ID, nil
}

type recordForm struct {
	Lines      []LineInput `json:"lines" validate:"required,min=1,dive"`
	CustomerID *int64      `json:"customer_id" validate:"omitempty,gt=0"`
}

func (h *Handler) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var form recordForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sale, err := h.service.RecordSale(r.Context(), shopID, form.Lines, form.CustomerID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) handleStandaloneReturn(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var form recordForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sale, err := h.service.RecordStandaloneReturn(r.Context(), shopID, form.Lines, form.CustomerID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

type returnForm struct {
	Lines []ReturnLineInput `json:"lines" validate:"required,min=1,dive"`
}

func (h *Handler) handleReturnAgainstSale(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	saleID, err := strconv.ParseInt(chi.URLParam(r, "saleID"), 10, 64)
	if err != nil || saleID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	var form returnForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	ret, err := h.service.RecordReturnAgainstSale(r.Context(), shopID, saleID, form.Lines)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ret)
}

// handleListSales lists recent transactions, or a date range when start and
// end query parameters are given.
func (h *Handler) handleListSales(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	q := r.URL.Query()
	var out []SaleWithItems
	if q.Get("start") != "" || q.Get("end") != "" {
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
		out, err = h.service.ByDateRangeWithItems(r.Context(), shopID, start, end)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
	} else {
		limit, _ := strconv.Atoi(q.Get("limit"))
		out, err = h.service.RecentWithItems(r.Context(), shopID, limit)
		if err != nil {
			h.logger.Error("list sales", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetSale(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	saleID, err := strconv.ParseInt(chi.URLParam(r, "saleID"), 10, 64)
	if err != nil || saleID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	sale, err := h.service.GetWithItems(r.Context(), shopID, saleID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

type customerForm struct {
	Name  string  `json:"name" validate:"required"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
}

func (h *Handler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var form customerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	c, err := h.service.CreateCustomer(r.Context(), shopID, form.Name, form.Phone)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	customerID, err := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil || customerID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid customer id")
		return
	}
	var form customerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	c, err := h.service.UpdateCustomer(r.Context(), shopID, customerID, form.Name, form.Phone)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	customerID, err := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil || customerID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid customer id")
		return
	}
	if err := h.service.DeleteCustomer(r.Context(), shopID, customerID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	customers, err := h.service.ListCustomers(r.Context(), shopID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customers)
}
