// Package services – OrderService
//
// This file implements the checkout pipeline: resolving cart line items
// against the order backend by SKU, computing the total over resolved items
// only, submitting the draft order, persisting the order record, and
// notifying the buyer's chat with the payment link. It also provides order
// listing with localized status labels, bulk clearing, and the forward-only
// status update used when a gateway confirms or cancels payment.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/akbarovs/go-storefront-bot/internal/commerce"
	"github.com/akbarovs/go-storefront-bot/internal/domain"
	"github.com/akbarovs/go-storefront-bot/internal/i18n"
	"github.com/akbarovs/go-storefront-bot/internal/utils"
)

// OrderRepo defines the repository contract required by OrderService.
type OrderRepo interface {
	CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error
	ListOrders(ctx context.Context, db *gorm.DB, chatID int64) ([]domain.Order, error)
	ClearOrders(ctx context.Context, db *gorm.DB, chatID int64) (before, after int64, err error)
	UpdateOrderStatus(ctx context.Context, db *gorm.DB, transID, status string) error
}

// Backend is the slice of the WooCommerce client the checkout pipeline uses.
type Backend interface {
	FindProductBySKU(ctx context.Context, sku string) (*commerce.ProductRef, error)
	CreateOrder(ctx context.Context, req commerce.OrderRequest) (*commerce.OrderResult, error)
	PaymentURL(orderID int64, orderKey string) string
}

// Notifier delivers a message to the originating chat. Implemented by the
// bot layer; failures are logged by the service and never affect the order.
type Notifier interface {
	Notify(chatID int64, text string) error
}

// transIDSource hands out strictly increasing millisecond values so that
// merchant transaction ids generated by concurrent checkouts never collide.
type transIDSource struct {
	mu   sync.Mutex
	last int64
}

func (g *transIDSource) next(now time.Time) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := now.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return ms
}

// PlaceOrderInput carries one checkout request.
type PlaceOrderInput struct {
	ChatID  int64
	Cart    domain.CartItems
	Phone   string
	Name    string // optional; billing falls back to a generic name
	Lang    string
	Gateway string // domain.GatewayClick or domain.GatewayPayme
}

// PlaceOrderResult is the successful outcome of a checkout.
type PlaceOrderResult struct {
	PaymentURL string
	Order      *domain.Order
	// Dropped lists the names of line items that failed SKU resolution and
	// were excluded from the order and its total.
	Dropped []string
}

// OrderService coordinates checkout, order listing, and clearing.
type OrderService struct {
	DB       *gorm.DB
	Repo     OrderRepo
	Backend  Backend
	Notifier Notifier
	Log      zerolog.Logger

	transIDs transIDSource
	now      func() time.Time
}

// NewOrderService constructs an OrderService.
func NewOrderService(db *gorm.DB, r OrderRepo, backend Backend, n Notifier, log zerolog.Logger) *OrderService {
	return &OrderService{
		DB:       db,
		Repo:     r,
		Backend:  backend,
		Notifier: n,
		Log:      log.With().Str("component", "orders").Logger(),
		now:      time.Now,
	}
}

// PlaceOrder runs the checkout pipeline and returns the payment URL.
//
// Line items without a SKU or without a backend match are dropped (logged,
// not fatal); the order and its total cover resolved items only. Backend
// submission failures surface as ErrOrderBackend with no retry and no
// compensation. The chat notification is sent asynchronously and its
// failure does not roll anything back.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	if len(in.Cart) == 0 || strings.TrimSpace(in.Phone) == "" {
		return nil, ErrInvalidInput
	}

	method, title, err := gatewayMethod(in.Gateway)
	if err != nil {
		return nil, err
	}
	lang := i18n.Normalize(in.Lang)

	var (
		lineItems []commerce.LineItem
		resolved  domain.CartItems
		dropped   []string
		total     float64
	)
	for _, item := range in.Cart {
		if item.SKU == "" {
			s.Log.Warn().Str("name", item.Name).Msg("cart item without sku dropped")
			dropped = append(dropped, item.Name)
			continue
		}
		ref, err := s.Backend.FindProductBySKU(ctx, item.SKU)
		if err != nil {
			s.Log.Warn().Err(err).Str("sku", item.SKU).Msg("sku lookup failed, item dropped")
			dropped = append(dropped, item.Name)
			continue
		}
		if ref == nil {
			dropped = append(dropped, item.Name)
			continue
		}
		lineItems = append(lineItems, commerce.LineItem{ProductID: ref.ID, Quantity: item.Quantity})
		resolved = append(resolved, item)
		total += item.Price * float64(item.Quantity)
	}
	if len(lineItems) == 0 {
		return nil, ErrNoResolvableItems
	}

	wcOrder, err := s.Backend.CreateOrder(ctx, commerce.OrderRequest{
		PaymentMethod:      method,
		PaymentMethodTitle: title,
		SetPaid:            false,
		Billing:            s.billing(in),
		LineItems:          lineItems,
	})
	if err != nil {
		s.Log.Error().Err(err).Int64("chat_id", in.ChatID).Msg("backend order creation failed")
		return nil, fmt.Errorf("%w: %v", ErrOrderBackend, err)
	}

	transID := fmt.Sprintf("%s_%d", in.Gateway, s.transIDs.next(s.now()))
	payURL := s.Backend.PaymentURL(wcOrder.ID, wcOrder.OrderKey)

	order := &domain.Order{
		MerchantTransID: transID,
		ChatID:          in.ChatID,
		Items:           resolved,
		TotalAmount:     total,
		Status:          domain.StatusCreated,
		Lang:            lang,
		WCOrderID:       wcOrder.ID,
		WCOrderKey:      wcOrder.OrderKey,
	}
	if err := s.Repo.CreateOrder(ctx, s.DB, order); err != nil {
		s.Log.Error().Err(err).Str("merchant_trans_id", transID).Msg("order persist failed")
		return nil, fmt.Errorf("%w: %v", ErrOrderBackend, err)
	}

	go s.notifyCreated(order, payURL, dropped)

	return &PlaceOrderResult{PaymentURL: payURL, Order: order, Dropped: dropped}, nil
}

// notifyCreated sends the localized payment prompt to the chat, including
// the names of any items that were dropped before payment.
func (s *OrderService) notifyCreated(order *domain.Order, payURL string, dropped []string) {
	if s.Notifier == nil {
		return
	}
	text := i18n.Render(order.Lang, i18n.KeyOrderCreated, map[string]string{
		"merchant_trans_id": order.MerchantTransID,
		"amount":            utils.FormatAmount(order.TotalAmount),
		"url":               payURL,
	})
	if len(dropped) > 0 {
		text += "\n" + i18n.Render(order.Lang, i18n.KeyOrderDropped, map[string]string{
			"items": strings.Join(dropped, ", "),
		})
	}
	if err := s.Notifier.Notify(order.ChatID, text); err != nil {
		s.Log.Error().Err(err).Int64("chat_id", order.ChatID).
			Str("merchant_trans_id", order.MerchantTransID).
			Msg("order notification failed")
	}
}

// billing synthesizes WooCommerce billing details from the available
// profile data.
func (s *OrderService) billing(in PlaceOrderInput) commerce.Billing {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Пользователь"
	}
	return commerce.Billing{
		FirstName: name,
		LastName:  " ",
		Email:     "client@example.com",
		Phone:     in.Phone,
		Address1:  "Адрес",
		City:      "Tashkent",
		State:     "Tashkent",
		Postcode:  "100000",
		Country:   "UZ",
	}
}

// OrderView is an order annotated with its localized status label for
// rendering in the bot and the storefront web view.
type OrderView struct {
	domain.Order
	StatusText string `json:"statusText"`
}

// ListOrders returns the chat's orders annotated with status labels in the
// language each order was placed in. Unknown statuses pass through verbatim.
func (s *OrderService) ListOrders(ctx context.Context, chatID int64) ([]OrderView, error) {
	orders, err := s.Repo.ListOrders(ctx, s.DB, chatID)
	if err != nil {
		return nil, err
	}
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderView{Order: o, StatusText: i18n.StatusLabel(o.Lang, o.Status)})
	}
	return out, nil
}

// ClearOrders deletes all orders for the chat. It is idempotent and returns
// the global order counts before and after the delete.
func (s *OrderService) ClearOrders(ctx context.Context, chatID int64) (before, after int64, err error) {
	return s.Repo.ClearOrders(ctx, s.DB, chatID)
}

// UpdateStatus moves an order forward to PAID or CANCELED. Gateways confirm
// or cancel payment through this path.
func (s *OrderService) UpdateStatus(ctx context.Context, transID, status string) error {
	return s.Repo.UpdateOrderStatus(ctx, s.DB, transID, status)
}

// gatewayMethod maps a gateway name to the backend payment method fields.
func gatewayMethod(gateway string) (method, title string, err error) {
	switch gateway {
	case domain.GatewayClick:
		return "clickuz", "CLICK", nil
	case domain.GatewayPayme:
		return "payme", "Payme", nil
	default:
		return "", "", ErrUnknownGateway
	}
}
