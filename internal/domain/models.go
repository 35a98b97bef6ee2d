// Package domain defines the persistence models for carts, orders, and user
// profiles. These types are mapped with GORM and form the core data layer of
// the storefront bot.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Order statuses. An order only ever moves forward: CREATED may become PAID
// or CANCELED, and neither of those changes again.
const (
	StatusCreated  = "CREATED"
	StatusPaid     = "PAID"
	StatusCanceled = "CANCELED"
)

// Payment gateways supported at checkout. The gateway name prefixes the
// merchant transaction id (e.g. "click_1712345678901").
const (
	GatewayClick = "click"
	GatewayPayme = "payme"
)

// CartItem is one product-quantity pair inside a cart or a frozen order
// snapshot. ProductID is the Billz product identifier (a UUID string); Stock
// mirrors the shop's available quantity at the time the item was added.
type CartItem struct {
	ProductID string  `json:"id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Stock     float64 `json:"qty,omitempty"`
}

// CartItems is a JSON-serialized list of line items stored in a single text
// column. Line items for the same ProductID are unique within one cart.
type CartItems []CartItem

// Value implements driver.Valuer so GORM can store the items as JSON text.
func (ci CartItems) Value() (driver.Value, error) {
	if ci == nil {
		ci = CartItems{}
	}
	b, err := json.Marshal(ci)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for reading the JSON text column back.
func (ci *CartItems) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*ci = CartItems{}
		return nil
	case string:
		return json.Unmarshal([]byte(v), ci)
	case []byte:
		return json.Unmarshal(v, ci)
	default:
		return errors.New("cart items: unsupported scan source")
	}
}

// Total returns the sum of price times quantity over all line items.
func (ci CartItems) Total() float64 {
	var sum float64
	for _, it := range ci {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

// Cart is the authoritative persisted snapshot of a user's working cart,
// keyed by chat id. Each save fully replaces the previous snapshot.
type Cart struct {
	ChatID    int64     `json:"chat_id" gorm:"primaryKey;autoIncrement:false"`
	Items     CartItems `json:"cart"    gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Cart.
func (Cart) TableName() string { return "carts" }

// Order is a checkout attempt recorded with status CREATED and later
// confirmed or canceled by the payment gateways.
//
// Fields:
//   - MerchantTransID: gateway-prefixed primary key, immutable once created.
//   - ChatID: originating chat; indexed for per-user listings.
//   - Items: frozen cart snapshot (only backend-resolved items).
//   - TotalAmount: Σ(price × quantity) over resolved items, fixed at creation.
//   - WCOrderID / WCOrderKey: WooCommerce order reference and payment key.
type Order struct {
	MerchantTransID string    `json:"merchant_trans_id" gorm:"type:varchar(64);primaryKey"`
	ChatID          int64     `json:"chat_id"           gorm:"not null;index:idx_chat_orders"`
	Items           CartItems `json:"cart"              gorm:"type:text;not null"`
	TotalAmount     float64   `json:"totalAmount"       gorm:"not null"`
	Status          string    `json:"status"            gorm:"type:varchar(16);not null;default:'CREATED'"`
	Lang            string    `json:"lang"              gorm:"type:varchar(8);not null;default:'ru'"`
	WCOrderID       int64     `json:"wc_order_id"`
	WCOrderKey      string    `json:"wc_order_key"      gorm:"type:varchar(128)"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// CanTransition reports whether an order in status from may move to status
// to. Transitions only go forward; PAID and CANCELED are terminal.
func CanTransition(from, to string) bool {
	if from != StatusCreated {
		return false
	}
	return to == StatusPaid || to == StatusCanceled
}

// User is the durable profile captured during onboarding, distinct from the
// ephemeral conversational session. LastActivityAt is refreshed at most once
// per debounce window on inbound bot events.
type User struct {
	ChatID         int64     `json:"chat_id" gorm:"primaryKey;autoIncrement:false"`
	Name           string    `json:"name"    gorm:"type:varchar(255);not null"`
	Phone          string    `json:"phone"   gorm:"type:varchar(32);not null"`
	Lang           string    `json:"lang"    gorm:"type:varchar(8);not null;default:'ru'"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }
