package product

import (
	"net/http"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController serves the catalog REST API.
type HTTPController struct {
	catalog Catalog
	config  HTTPConfig
}

// HTTPConfig configures the HTTP controller.
type HTTPConfig struct {
	// PathPrefix for routes (default: "/api/product")
	PathPrefix string

	// Guard protects every route; typically the scope gate. Optional so the
	// API can run open in local development.
	Guard router.MiddlewareFunc
}

// NewHTTPController creates a catalog REST controller.
func NewHTTPController(catalog Catalog, cfg HTTPConfig) *HTTPController {
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = "/api/product"
	}

	return &HTTPController{
		catalog: catalog,
		config:  cfg,
	}
}

// RegisterRoutes registers the catalog routes on the group.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	var mw []router.MiddlewareFunc
	if c.config.Guard != nil {
		mw = append(mw, c.config.Guard)
	}

	prefix := c.config.PathPrefix
	group.Get(prefix, c.Index, mw...)
	group.Get(prefix+"/:id", c.Show, mw...)
	group.Post(prefix, c.Create, mw...)
	group.Put(prefix+"/:id", c.Update, mw...)
	group.Delete(prefix+"/:id", c.Destroy, mw...)
}

type apiError struct {
	Error string `json:"error"`
}

// Index lists the catalog, optionally filtered by ?category=.
func (c *HTTPController) Index(ctx router.Context) error {
	records, err := c.catalog.FindAll(ctx.Context(), ctx.Query("category"))
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, apiError{Error: "failed to list products"})
	}

	return ctx.JSON(router.StatusOK, records)
}

// Show returns one product by id.
func (c *HTTPController) Show(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, apiError{Error: "invalid product id"})
	}

	record, err := c.catalog.FindByID(ctx.Context(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ctx.JSON(http.StatusNotFound, apiError{Error: "product not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, apiError{Error: "failed to load product"})
	}

	return ctx.JSON(router.StatusOK, record)
}

// Create adds a catalog entry.
func (c *HTTPController) Create(ctx router.Context) error {
	payload := new(Product)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, apiError{Error: "malformed product payload"})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, apiError{Error: err.Error()})
	}

	record, err := c.catalog.Save(ctx.Context(), payload)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, apiError{Error: "failed to create product"})
	}

	return ctx.JSON(http.StatusCreated, record)
}

// Update replaces a catalog entry. The path id and body id must agree.
func (c *HTTPController) Update(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, apiError{Error: "invalid product id"})
	}

	payload := new(Product)
	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, apiError{Error: "malformed product payload"})
	}

	if payload.ID == uuid.Nil {
		payload.ID = id
	} else if payload.ID != id {
		return ctx.JSON(router.StatusBadRequest, apiError{Error: "body id and url id must match"})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, apiError{Error: err.Error()})
	}

	record, err := c.catalog.Replace(ctx.Context(), payload)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ctx.JSON(http.StatusNotFound, apiError{Error: "product not found"})
		}
		return ctx.JSON(http.StatusInternalServerError, apiError{Error: "failed to update product"})
	}

	return ctx.JSON(router.StatusOK, record)
}

// Destroy removes a catalog entry.
func (c *HTTPController) Destroy(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(router.StatusBadRequest, apiError{Error: "invalid product id"})
	}

	removed, err := c.catalog.Remove(ctx.Context(), id)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, apiError{Error: "failed to delete product"})
	}

	if !removed {
		return ctx.JSON(http.StatusNotFound, apiError{Error: "product not found"})
	}

	return ctx.Status(http.StatusNoContent).SendString("")
}
