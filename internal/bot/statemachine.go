package bot

import (
	"strings"

	"github.com/akbarovs/go-storefront-bot/internal/domain"
	"github.com/akbarovs/go-storefront-bot/internal/i18n"
)

// Effect is one outbound action the runner performs after a transition:
// a message to send, a menu to render, or a durable write to make. The
// reducer only describes effects; it never performs I/O itself.
type Effect interface{ effect() }

// Say sends one localized message built from a catalog key and variables.
type Say struct {
	Key  string
	Vars map[string]string
}

// ShowLanguageMenu renders the inline language picker.
type ShowLanguageMenu struct{}

// ShowMainMenu renders the welcome text with the main reply keyboard.
type ShowMainMenu struct{}

// ShowMyData renders the profile summary with its inline edit actions.
type ShowMyData struct{}

// RequestContact asks for a contact share with the contact-request keyboard.
type RequestContact struct{ Name string }

// OpenCatalog sends the inline web-app button embedding the session
// identity in the storefront URL.
type OpenCatalog struct{}

// ShowCart fetches the persisted cart and renders it (or the empty notice).
type ShowCart struct{}

// ShowOrders fetches the chat's orders and renders them with status labels.
type ShowOrders struct{}

// ClearOrders deletes all orders for the chat and acknowledges.
type ClearOrders struct{}

// SaveCart durably overwrites the cart snapshot with the session's working
// copy.
type SaveCart struct{ Items domain.CartItems }

// PersistProfile upserts the durable profile from the session (onboarding
// completion).
type PersistProfile struct{}

// PersistName durably updates the profile name after an edit.
type PersistName struct{ Name string }

// PersistPhone durably updates the profile phone after an edit.
type PersistPhone struct{ Phone string }

// PersistLang durably updates the profile language preference.
type PersistLang struct{ Lang string }

func (Say) effect()              {}
func (ShowLanguageMenu) effect() {}
func (ShowMainMenu) effect()     {}
func (ShowMyData) effect()       {}
func (RequestContact) effect()   {}
func (OpenCatalog) effect()      {}
func (ShowCart) effect()         {}
func (ShowOrders) effect()       {}
func (ClearOrders) effect()      {}
func (SaveCart) effect()         {}
func (PersistProfile) effect()   {}
func (PersistName) effect()      {}
func (PersistPhone) effect()     {}
func (PersistLang) effect()      {}

// Transition interprets ev against the session and returns the next session
// plus the effects to perform. It is a pure function: same inputs, same
// outputs, no I/O. Events that make no sense in the current state produce
// the state's fallback prompt instead of being silently dropped.
func Transition(s Session, ev Event) (Session, []Effect) {
	switch e := ev.(type) {
	case StartEvent:
		if e.Profile != nil {
			s.Name = e.Profile.Name
			s.Phone = e.Profile.Phone
			s.Lang = i18n.Normalize(e.Profile.Lang)
			s.State = StateMenu
			return s, []Effect{ShowMainMenu{}}
		}
		s.Name = ""
		s.Phone = ""
		s.Cart = domain.CartItems{}
		s.State = StateSelectLanguage
		return s, []Effect{ShowLanguageMenu{}}

	case LanguageCommandEvent:
		s.State = StateSelectLanguage
		return s, []Effect{ShowLanguageMenu{}}

	case LanguageChosenEvent:
		s.Lang = i18n.Normalize(e.Lang)
		if s.Name != "" {
			s.State = StateMenu
			return s, []Effect{PersistLang{Lang: s.Lang}, ShowMainMenu{}}
		}
		s.State = StateInputName
		return s, []Effect{Say{Key: i18n.KeyStart}, Say{Key: i18n.KeyPleaseEnterName}}

	case TextEvent:
		return transitionText(s, e.Text)

	case MenuActionEvent:
		if s.State != StateMenu {
			return s, []Effect{fallback(s.State)}
		}
		switch e.Action {
		case i18n.ActionMenuCatalog:
			return s, []Effect{OpenCatalog{}}
		case i18n.ActionMenuCart:
			return s, []Effect{ShowCart{}}
		case i18n.ActionMenuOrders:
			return s, []Effect{ShowOrders{}}
		case i18n.ActionMenuMyData:
			s.State = StateMyData
			return s, []Effect{ShowMyData{}}
		case i18n.ActionMenuSwitchLang:
			s.Lang = i18n.Toggle(s.Lang)
			return s, []Effect{Say{Key: i18n.KeyLanguageChanged}, PersistLang{Lang: s.Lang}, ShowMainMenu{}}
		}
		return s, []Effect{Say{Key: i18n.KeyUnknownCommand}}

	case ContactEvent:
		if s.State != StateAwaitContact {
			return s, []Effect{fallback(s.State)}
		}
		if strings.TrimSpace(e.Phone) == "" {
			return s, []Effect{Say{Key: i18n.KeyContactError}}
		}
		s.Phone = e.Phone
		s.State = StateMenu
		return s, []Effect{PersistProfile{}, ShowMainMenu{}}

	case CallbackEvent:
		return transitionCallback(s, e.Action)

	case CartEvent:
		return transitionCart(s, e)
	}
	return s, []Effect{fallback(s.State)}
}

// transitionText handles free-form text, whose meaning depends entirely on
// the current state.
func transitionText(s Session, text string) (Session, []Effect) {
	text = strings.TrimSpace(text)
	switch s.State {
	case StateInputName:
		if text == "" {
			return s, []Effect{Say{Key: i18n.KeyPleaseEnterName}}
		}
		s.Name = text
		s.State = StateAwaitContact
		return s, []Effect{RequestContact{Name: text}}

	case StateEditName:
		if text == "" {
			return s, []Effect{Say{Key: i18n.KeyEnterNewName}}
		}
		s.Name = text
		s.State = StateMyData
		return s, []Effect{
			Say{Key: i18n.KeyNameChanged, Vars: map[string]string{"name": text}},
			PersistName{Name: text},
			ShowMyData{},
		}

	case StateEditPhone:
		if text == "" {
			return s, []Effect{Say{Key: i18n.KeyEnterNewPhone}}
		}
		s.Phone = text
		s.State = StateMyData
		return s, []Effect{
			Say{Key: i18n.KeyPhoneChanged, Vars: map[string]string{"phone": text}},
			PersistPhone{Phone: text},
			ShowMyData{},
		}

	case StateMenu:
		return s, []Effect{Say{Key: i18n.KeyUnknownCommand}}

	default:
		return s, []Effect{fallback(s.State)}
	}
}

// transitionCallback handles inline-button callbacks from the "my data"
// screen. Edit actions only make sense there; stale callbacks from other
// states get the state's fallback prompt.
func transitionCallback(s Session, action string) (Session, []Effect) {
	switch action {
	case i18n.ActionEditName:
		if s.State != StateMyData {
			return s, []Effect{fallback(s.State)}
		}
		s.State = StateEditName
		return s, []Effect{Say{Key: i18n.KeyEnterNewName}}

	case i18n.ActionEditPhone:
		if s.State != StateMyData {
			return s, []Effect{fallback(s.State)}
		}
		s.State = StateEditPhone
		return s, []Effect{Say{Key: i18n.KeyEnterNewPhone}}

	case i18n.ActionClearOrders:
		if s.State != StateMyData {
			return s, []Effect{fallback(s.State)}
		}
		return s, []Effect{ClearOrders{}}

	case i18n.ActionBackToMenu:
		s.State = StateMenu
		return s, []Effect{ShowMainMenu{}}
	}
	return s, []Effect{fallback(s.State)}
}

// transitionCart applies a structured cart mutation. Cart events are valid
// in any state and never change the conversational state.
func transitionCart(s Session, e CartEvent) (Session, []Effect) {
	if e.Malformed {
		return s, []Effect{Say{Key: i18n.KeyPayloadError}}
	}
	switch e.Action {
	case CartActionReplace:
		s.Cart = s.Cart.WithReplaced(e.Items)
		return s, []Effect{Say{Key: i18n.KeyCartUpdated}, SaveCart{Items: s.Cart}}

	case CartActionAdd:
		if e.Product == nil {
			return s, []Effect{Say{Key: i18n.KeyInvalidData}}
		}
		s.Cart = s.Cart.WithAdded(*e.Product, e.Quantity)
		return s, []Effect{
			Say{Key: i18n.KeyAddedToCart, Vars: map[string]string{"name": e.Product.Name}},
			SaveCart{Items: s.Cart},
		}

	case CartActionRemove:
		if e.Product == nil {
			return s, []Effect{Say{Key: i18n.KeyInvalidData}}
		}
		next, removed := s.Cart.WithRemoved(e.Product.ProductID)
		if !removed {
			return s, nil
		}
		s.Cart = next
		return s, []Effect{
			Say{Key: i18n.KeyRemovedFromCart, Vars: map[string]string{"name": e.Product.Name}},
			SaveCart{Items: s.Cart},
		}
	}
	return s, []Effect{Say{Key: i18n.KeyInvalidData}}
}

// fallback returns the re-prompt appropriate for a state when an event is
// not recognized there.
func fallback(st State) Effect {
	switch st {
	case StateSelectLanguage:
		return ShowLanguageMenu{}
	case StateInputName:
		return Say{Key: i18n.KeyPleaseEnterName}
	case StateAwaitContact:
		return Say{Key: i18n.KeyContactError}
	case StateMyData:
		return ShowMyData{}
	case StateEditName:
		return Say{Key: i18n.KeyEnterNewName}
	case StateEditPhone:
		return Say{Key: i18n.KeyEnterNewPhone}
	default:
		return Say{Key: i18n.KeyUnknownCommand}
	}
}
