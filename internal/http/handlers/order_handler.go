// Package handlers implements the HTTP endpoints consumed by the storefront
// web view.
//
// This file exposes the order endpoints used by the storefront web view:
//   - GET  /get-orders          (list with localized status labels)
//   - POST /clear-orders        (delete the chat's order history)
//   - POST /create-click-order  (checkout via Click)
//   - POST /create-payme-order  (checkout via Payme)
//
// The two checkout endpoints share one pipeline and differ only in the
// gateway name and the key carrying the payment link back to the web app.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akbarovs/go-storefront-bot/internal/domain"
	"github.com/akbarovs/go-storefront-bot/internal/services"
)

// CreateOrderRequest is the JSON payload shared by both checkout endpoints.
type CreateOrderRequest struct {
	ChatID      int64            `json:"chat_id"`
	Cart        domain.CartItems `json:"cart"`
	PhoneNumber string           `json:"phone_number"`
	Name        string           `json:"name"`
	Lang        string           `json:"lang"`
}

// ListOrders handles GET /get-orders.
//
// Responds `{"success":true,"orders":[…]}` where each order carries its
// localized status label. 400 when chat_id is missing or not numeric.
func (h *Handlers) ListOrders(c *gin.Context) {
	chatID, valid := chatIDQuery(c)
	if !valid {
		return
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), chatID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeOrdersFailed, "could not load orders")
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true, "orders": orders})
}

// ClearOrdersRequest is the JSON payload for POST /clear-orders.
type ClearOrdersRequest struct {
	ChatID int64 `json:"chat_id"`
}

// ClearOrders handles POST /clear-orders.
//
// Deletes every order for the chat; clearing an empty history succeeds.
// Responds `{"success":true,"message":…}`.
func (h *Handlers) ClearOrders(c *gin.Context) {
	var req ClearOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ChatID == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chat_id is required")
		return
	}

	if _, _, err := h.orders.ClearOrders(c.Request.Context(), req.ChatID); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeOrdersFailed, "could not clear orders")
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true, "message": "order history cleared"})
}

// CreateClickOrder handles POST /create-click-order.
//
// Responds `{"success":true,"clickLink":…}` with the payment URL.
func (h *Handlers) CreateClickOrder(c *gin.Context) {
	h.createOrder(c, domain.GatewayClick, "clickLink")
}

// CreatePaymeOrder handles POST /create-payme-order.
//
// Responds `{"success":true,"paymeLink":…}` with the payment URL.
func (h *Handlers) CreatePaymeOrder(c *gin.Context) {
	h.createOrder(c, domain.GatewayPayme, "paymeLink")
}

// createOrder runs the checkout pipeline for one gateway and maps pipeline
// errors to HTTP statuses: invalid input and an order with nothing
// resolvable → 400, a backend failure → 500.
func (h *Handlers) createOrder(c *gin.Context, gateway, linkKey string) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.ChatID == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chat_id is required")
		return
	}

	res, err := h.orders.PlaceOrder(c.Request.Context(), services.PlaceOrderInput{
		ChatID:  req.ChatID,
		Cart:    req.Cart,
		Phone:   req.PhoneNumber,
		Name:    req.Name,
		Lang:    req.Lang,
		Gateway: gateway,
	})
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cart and phone_number are required")
		return
	case errors.Is(err, services.ErrNoResolvableItems):
		fail(c, http.StatusBadRequest, ErrCodeEmptyOrder, "no cart item could be matched to the catalog")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCheckoutFailed, "order creation failed")
		return
	}

	ok(c, http.StatusOK, gin.H{"success": true, linkKey: res.PaymentURL})
}
