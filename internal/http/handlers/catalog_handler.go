// Package handlers implements the HTTP endpoints consumed by the storefront
// web view.
//
// This file exposes the storefront catalog endpoints:
//   - GET /api/products     (full list, optional category filter)
//   - GET /api/categories   (category names with the "all" entries prepended)
//
// Handlers are transport-thin: they validate input, call the catalog cache,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akbarovs/go-storefront-bot/internal/catalog"
	"github.com/akbarovs/go-storefront-bot/internal/i18n"
)

// CatalogProvider defines the catalog read operations consumed by HTTP
// handlers. Implemented by *catalog.Cache.
type CatalogProvider interface {
	// Products returns the cached product list, refreshing it when stale.
	Products(ctx context.Context) ([]catalog.Product, error)
	// Categories returns the category names with allNames prepended when
	// absent.
	Categories(ctx context.Context, allNames []string) ([]string, error)
}

// ListProducts handles GET /api/products.
//
// The optional `category` query parameter filters the list; either of the
// localized "all" category names (or an empty value) disables filtering.
// Responds with a JSON array of products, or 500 when the upstream fetch
// fails.
func (h *Handlers) ListProducts(c *gin.Context) {
	products, err := h.catalog.Products(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCatalogFailed, "could not load products")
		return
	}

	category := c.Query("category")
	if category == "" || isAllCategory(category) {
		ok(c, http.StatusOK, products)
		return
	}

	filtered := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if p.InCategory(category) {
			filtered = append(filtered, p)
		}
	}
	ok(c, http.StatusOK, filtered)
}

// ListCategories handles GET /api/categories.
//
// Responds with a JSON array of category names, or 500 when the upstream
// fetch fails.
func (h *Handlers) ListCategories(c *gin.Context) {
	cats, err := h.catalog.Categories(c.Request.Context(), i18n.AllCategoryNames)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCatalogFailed, "could not load categories")
		return
	}
	ok(c, http.StatusOK, cats)
}

// isAllCategory reports whether name is one of the localized "all" entries
// that bypass filtering.
func isAllCategory(name string) bool {
	for _, all := range i18n.AllCategoryNames {
		if name == all {
			return true
		}
	}
	return false
}
