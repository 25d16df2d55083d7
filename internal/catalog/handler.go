package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ezzystore/ezzystore/internal/auth"
	"github.com/ezzystore/ezzystore/internal/platform/httpx"
	"github.com/ezzystore/ezzystore/internal/shops"
)

// Handler exposes catalog management for the acting manager's shop.
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

// MountRoutes registers catalog endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.handleListProducts)
	r.Post("/products", h.handleCreateProduct)
	r.Get("/products/low-stock", h.handleLowStock)
	r.Get("/products/{productID}", h.handleGetProduct)
	r.Put("/products/{productID}", h.handleUpdateProduct)
	r.Delete("/products/{productID}", h.handleDeleteProduct)

	r.Get("/brands", h.handleListBrands)
	r.Post("/brands", h.handleCreateBrand)
	r.Put("/brands/{brandID}", h.handleRenameBrand)

	r.Get("/categories", h.handleListCategories)
	r.Post("/categories", h.handleCreateCategory)
	r.Put("/categories/{categoryID}", h.handleRenameCategory)
}

func (h *Handler) shopID(r *http.Request) (int64, error) {
	actor := auth.UserFromContext(r.Context())
	shop, err := h.resolver.ShopForManager(r.Context(), actor.ID)
	if err != nil {
		return 0, err
	}
	return shop.ID, nil
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

type productForm struct {
	Name         string `json:"name" validate:"required"`
	BrandID      *int64 `json:"brand_id" validate:"omitempty,gt=0"`
	CategoryID   *int64 `json:"category_id" validate:"omitempty,gt=0"`
	ReorderLevel int    `json:"reorder_level" validate:"gte=0"`
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var form productForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p, err := h.service.RegisterProduct(r.Context(), shopID, ProductInput{
		Name:         form.Name,
		BrandID:      form.BrandID,
		CategoryID:   form.CategoryID,
		ReorderLevel: form.ReorderLevel,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	productID, ok := pathID(r, "productID")
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	var form productForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), shopID, productID, ProductInput{
		Name:         form.Name,
		BrandID:      form.BrandID,
		CategoryID:   form.CategoryID,
		ReorderLevel: form.ReorderLevel,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	productID, ok := pathID(r, "productID")
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	if err := h.service.RemoveProduct(r.Context(), shopID, productID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	products, err := h.service.ListProducts(r.Context(), shopID)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	productID, ok := pathID(r, "productID")
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	p, err := h.service.GetProduct(r.Context(), shopID, productID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	products, err := h.service.LowStockProducts(r.Context(), shopID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

type nameForm struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) handleCreateBrand(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var form nameForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	b, err := h.service.CreateBrand(r.Context(), shopID, form.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

func (h *Handler) handleRenameBrand(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	brandID, ok := pathID(r, "brandID")
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid brand id")
		return
	}
	var form nameForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	b, err := h.service.RenameBrand(r.Context(), shopID, brandID, form.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) handleListBrands(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	brands, err := h.service.ListBrands(r.Context(), shopID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, brands)
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	categories, err := h.service.ListCategories(r.Context(), shopID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, categories)
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var form nameForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	c, err := h.service.CreateCategory(r.Context(), shopID, form.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	shopID, err := h.shopID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	categoryID, ok := pathID(r, "categoryID")
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid category id")
		return
	}
	var form nameForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	c, err := h.service.RenameCategory(r.Context(), shopID, categoryID, form.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}
