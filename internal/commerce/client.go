// Package commerce talks to the WooCommerce order backend. It resolves
// products by SKU, submits draft (unpaid) orders, and builds the payment
// page URL that the payment gateways redirect buyers to.
package commerce

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/akbarovs/go-storefront-bot/internal/config"
)

// ProductRef is a backend product matched by SKU.
type ProductRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	SKU  string `json:"sku"`
}

// LineItem references a backend product in an order payload.
type LineItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Billing carries the buyer details WooCommerce requires on an order.
type Billing struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
}

// OrderRequest is the draft order submitted to the backend. SetPaid is
// always false: payment happens later on the gateway's payment page.
type OrderRequest struct {
	PaymentMethod      string     `json:"payment_method"`
	PaymentMethodTitle string     `json:"payment_method_title"`
	SetPaid            bool       `json:"set_paid"`
	Billing            Billing    `json:"billing"`
	LineItems          []LineItem `json:"line_items"`
}

// OrderResult is the backend's reply to a created order.
type OrderResult struct {
	ID       int64  `json:"id"`
	OrderKey string `json:"order_key"`
	Total    string `json:"total"`
}

// Client is a thin WooCommerce REST client authenticated with the store's
// consumer key/secret (HTTP basic auth).
type Client struct {
	http *resty.Client
	cfg  config.WooConfig
	log  zerolog.Logger
}

// NewClient constructs a WooCommerce client with a bounded request timeout.
func NewClient(cfg config.WooConfig, log zerolog.Logger) *Client {
	return &Client{
		http: resty.New().SetTimeout(30 * time.Second),
		cfg:  cfg,
		log:  log.With().Str("component", "woocommerce").Logger(),
	}
}

// FindProductBySKU looks up a backend product by its SKU. A SKU with no
// match returns (nil, nil): absence is expected and handled by the caller,
// only transport/API failures are errors.
func (c *Client) FindProductBySKU(ctx context.Context, sku string) (*ProductRef, error) {
	var out []ProductRef
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret).
		SetQueryParam("sku", sku).
		SetResult(&out).
		ForceContentType("application/json").
		Get(c.cfg.APIURL + "/products")
	if err != nil {
		return nil, fmt.Errorf("wc find product: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("wc find product: status %d", resp.StatusCode())
	}
	if len(out) == 0 {
		c.log.Warn().Str("sku", sku).Msg("sku not found in backend")
		return nil, nil
	}
	return &out[0], nil
}

// CreateOrder submits a draft order and returns the backend order id, the
// payment-page key, and the backend-computed total.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	var out OrderResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret).
		SetBody(req).
		SetResult(&out).
		ForceContentType("application/json").
		Post(c.cfg.APIURL + "/orders")
	if err != nil {
		return nil, fmt.Errorf("wc create order: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("wc create order: status %d", resp.StatusCode())
	}
	c.log.Info().Int64("order_id", out.ID).Str("total", out.Total).Msg("backend order created")
	return &out, nil
}

// PaymentURL builds the externally visible payment page link for a backend
// order: <site>/checkout/order-pay/<id>/?key=<key>&order_pay=<id>.
func (c *Client) PaymentURL(orderID int64, orderKey string) string {
	return fmt.Sprintf("%s/checkout/order-pay/%d/?key=%s&order_pay=%d",
		c.cfg.SiteURL, orderID, orderKey, orderID)
}
