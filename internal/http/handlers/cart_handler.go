// Package handlers implements the HTTP endpoints consumed by the storefront
// web view.
//
// This file exposes the persisted-cart endpoints used by the storefront web
// view:
//   - POST /save-cart   (full overwrite of the cart snapshot)
//   - GET  /get-car     (read the snapshot back)
//
// The /get-car path is kept verbatim for compatibility with the deployed
// web app.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/akbarovs/go-storefront-bot/internal/domain"
	"github.com/akbarovs/go-storefront-bot/internal/services"
)

// CartStore defines the cart persistence operations consumed by HTTP
// handlers. Implemented by *services.CartService.
type CartStore interface {
	Save(ctx context.Context, chatID int64, items domain.CartItems) error
	Get(ctx context.Context, chatID int64) (domain.CartItems, error)
}

// OrderPlacer defines the order operations consumed by HTTP handlers.
// Implemented by *services.OrderService.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, in services.PlaceOrderInput) (*services.PlaceOrderResult, error)
	ListOrders(ctx context.Context, chatID int64) ([]services.OrderView, error)
	ClearOrders(ctx context.Context, chatID int64) (before, after int64, err error)
}

// Handlers groups the storefront HTTP endpoints. It depends on abstract
// interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	catalog CatalogProvider
	carts   CartStore
	orders  OrderPlacer
}

// New constructs a Handlers instance bound to the given services.
func New(catalog CatalogProvider, carts CartStore, orders OrderPlacer) *Handlers {
	return &Handlers{catalog: catalog, carts: carts, orders: orders}
}

// SaveCartRequest is the JSON payload for POST /save-cart.
type SaveCartRequest struct {
	ChatID int64            `json:"chat_id"`
	Cart   domain.CartItems `json:"cart"`
}

// SaveCart handles POST /save-cart.
//
// The payload replaces the persisted cart snapshot wholesale; an empty cart
// array is a valid overwrite (it clears the cart). Responds
// `{"success":true}` on success, 400 on a missing chat_id or cart field, and
// 500 on a storage error.
func (h *Handlers) SaveCart(c *gin.Context) {
	var req SaveCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.ChatID == 0 || req.Cart == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chat_id and cart are required")
		return
	}

	if err := h.carts.Save(c.Request.Context(), req.ChatID, req.Cart); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCartFailed, "could not save cart")
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true})
}

// GetCart handles GET /get-car.
//
// Responds `{"success":true,"cart":[…]}`; an unknown chat yields an empty
// cart, not an error. 400 when chat_id is missing or not numeric.
func (h *Handlers) GetCart(c *gin.Context) {
	chatID, valid := chatIDQuery(c)
	if !valid {
		return
	}

	items, err := h.carts.Get(c.Request.Context(), chatID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCartFailed, "could not load cart")
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true, "cart": items})
}

// chatIDQuery parses the chat_id query parameter, writing the 400 response
// itself when the value is absent or malformed.
func chatIDQuery(c *gin.Context) (int64, bool) {
	raw := c.Query("chat_id")
	if raw == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chat_id is required")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chat_id must be a non-zero integer")
		return 0, false
	}
	return id, true
}
