package bot

import (
	"encoding/json"

	"github.com/akbarovs/go-storefront-bot/internal/domain"
)

// Event is one inbound occurrence the reducer interprets against the
// current session state. Events are built at the transport edge (bot.go)
// so the reducer never touches Telegram types or translated text.
type Event interface{ event() }

// StartEvent is the /start command. Profile is the durable profile when one
// exists; nil sends the user through onboarding (including after a lookup
// failure, which fails open into onboarding).
type StartEvent struct {
	Profile *domain.User
}

// LanguageCommandEvent is the /language command: re-enter language
// selection from any state.
type LanguageCommandEvent struct{}

// LanguageChosenEvent carries the language picked via inline button.
type LanguageChosenEvent struct {
	Lang string
}

// TextEvent is a plain text message that did not match a menu label.
type TextEvent struct {
	Text string
}

// MenuActionEvent is a reply-keyboard press resolved to its stable action
// id (i18n.ActionMenu*).
type MenuActionEvent struct {
	Action string
}

// CallbackEvent is an inline-button callback (i18n.ActionEdit*,
// ActionClearOrders, ActionBackToMenu).
type CallbackEvent struct {
	Action string
}

// ContactEvent is a contact share; Phone is empty when the share carried no
// usable number.
type ContactEvent struct {
	Phone string
}

// Cart actions accepted in web-app payloads.
const (
	CartActionReplace = "updateCart"
	CartActionAdd     = "add"
	CartActionRemove  = "remove"
)

// CartEvent is a structured cart mutation from the storefront web view.
// Malformed is set when the payload failed to parse; the reducer then
// replies with a localized error and leaves everything unchanged.
type CartEvent struct {
	Action    string
	Items     domain.CartItems // replace
	Product   *domain.CartItem // add/remove
	Quantity  int              // add (defaults to 1)
	Malformed bool
}

func (StartEvent) event()           {}
func (LanguageCommandEvent) event() {}
func (LanguageChosenEvent) event()  {}
func (TextEvent) event()            {}
func (MenuActionEvent) event()      {}
func (CallbackEvent) event()        {}
func (ContactEvent) event()         {}
func (CartEvent) event()            {}

// webAppPayload is the raw JSON shape the web view sends.
type webAppPayload struct {
	Action   string           `json:"action"`
	Cart     domain.CartItems `json:"cart"`
	Product  *domain.CartItem `json:"product"`
	Quantity int              `json:"quantity"`
}

// ParseCartEvent decodes a web-app data payload into a CartEvent. Parse
// failures yield a Malformed event rather than an error so the reducer owns
// the user-facing reply.
func ParseCartEvent(raw string) CartEvent {
	var p webAppPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return CartEvent{Malformed: true}
	}
	return CartEvent{
		Action:   p.Action,
		Items:    p.Cart,
		Product:  p.Product,
		Quantity: p.Quantity,
	}
}
