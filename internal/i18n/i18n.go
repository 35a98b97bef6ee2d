// Package i18n holds the Russian and Uzbek message catalog for the bot,
// template rendering for {{placeholder}} substitution, and the mapping from
// localized keyboard labels back to stable action identifiers.
//
// Business logic never branches on translated text: reply-keyboard presses
// arrive as plain strings, so ActionForLabel resolves them to the action
// constants once, at the transport edge, for every supported language.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Supported language codes.
const (
	LangRU = "ru"
	LangUZ = "uz"
)

// Stable action identifiers carried by buttons and callbacks.
const (
	ActionLangRU      = "lang_ru"
	ActionLangUZ      = "lang_uz"
	ActionEditName    = "edit_name"
	ActionEditPhone   = "edit_phone"
	ActionClearOrders = "clear_orders"
	ActionBackToMenu  = "back_to_menu"

	ActionMenuCatalog    = "menu_catalog"
	ActionMenuCart       = "menu_cart"
	ActionMenuOrders     = "menu_orders"
	ActionMenuMyData     = "menu_my_data"
	ActionMenuSwitchLang = "menu_switch_lang"
)

// Message keys.
const (
	KeySelectLanguage  = "select_language"
	KeyStart           = "start"
	KeyAskContact      = "ask_contact"
	KeyContactError    = "contact_error"
	KeyPleaseEnterName = "please_enter_name"
	KeyCatalog         = "catalog"
	KeyCart            = "cart"
	KeyOrders          = "orders"
	KeyMyData          = "my_data"
	KeyOpenCatalog     = "open_catalog"
	KeyCartEmpty       = "cart_empty"
	KeyCartHeader      = "cart_header"
	KeyCartUpdated     = "cart_updated"
	KeyAddedToCart     = "added_to_cart"
	KeyRemovedFromCart = "removed_from_cart"
	KeyInvalidData     = "invalid_data"
	KeyPayloadError    = "payload_error"
	KeyLanguageChanged = "language_changed"
	KeyOrderCreated    = "order_created"
	KeyOrderDropped    = "order_dropped"
	KeyOrderEmpty      = "order_empty"
	KeyOrdersHeader    = "orders_header"
	KeySwitchLanguage  = "switch_language"
	KeyWelcome         = "welcome"
	KeyMyDataText      = "my_data_text"
	KeyChangeName      = "change_name"
	KeyChangePhone     = "change_phone"
	KeyClearOrders     = "clear_orders"
	KeyBack            = "back"
	KeyEnterNewName    = "enter_new_name"
	KeyEnterNewPhone   = "enter_new_phone"
	KeyNameChanged     = "name_changed"
	KeyPhoneChanged    = "phone_changed"
	KeyOrdersCleared   = "orders_cleared"
	KeyUnknownCommand  = "unknown_command"
	KeyStatusCreated   = "status_created"
	KeyStatusPaid      = "status_paid"
	KeyStatusCanceled  = "status_canceled"
)

// AllCategoryNames are the synthetic "all products" category entries, one
// per supported language, prepended to the derived category list.
var AllCategoryNames = []string{"Все", "Hammasi"}

var messages = map[string]map[string]string{
	LangRU: {
		KeySelectLanguage:  "Выберите язык:",
		KeyStart:           "Привет! Как вас зовут? 😊",
		KeyAskContact:      "Приятно познакомиться, {{name}}! Отправьте, пожалуйста, свой контакт для продолжения.",
		KeyContactError:    "Пожалуйста, отправьте свой контакт.",
		KeyPleaseEnterName: "Пожалуйста, введите ваше имя. ✍️",
		KeyCatalog:         "📚 Каталог",
		KeyCart:            "🛒 Корзина",
		KeyOrders:          "📦 Заказы",
		KeyMyData:          "📝 Мои данные",
		KeyOpenCatalog:     "Открыть каталог",
		KeyCartEmpty:       "Корзина пуста.",
		KeyCartHeader:      "🛒 <b>Ваша корзина:</b>",
		KeyCartUpdated:     "📝 Корзина обновлена.",
		KeyAddedToCart:     "✅ Товар \"{{name}}\" добавлен в корзину.",
		KeyRemovedFromCart: "❌ Товар \"{{name}}\" удалён из корзины.",
		KeyInvalidData:     "❌ Неверные данные.",
		KeyPayloadError:    "Произошла ошибка при обработке данных.",
		KeyLanguageChanged: "Язык изменён на Русский.",
		KeyOrderCreated:    "📦 Заказ №{{merchant_trans_id}}\n💰 Сумма: {{amount}} UZS\n🔗 Оплатите по ссылке:\n{{url}}",
		KeyOrderDropped:    "⚠️ Не вошли в заказ: {{items}}",
		KeyOrderEmpty:      "Нет заказов.",
		KeyOrdersHeader:    "📦 <b>Ваши заказы:</b>",
		KeySwitchLanguage:  "Сменить язык",
		KeyWelcome:         "Добро пожаловать, {{name}}! 👋\nЧем мы можем вам помочь? Выберите нужное действие:",
		KeyMyDataText:      "Вот ваши данные:\nИмя: {{name}}\nТелефон: {{phone}}",
		KeyChangeName:      "Изменить имя",
		KeyChangePhone:     "Изменить номер",
		KeyClearOrders:     "Очистить заказы",
		KeyBack:            "Назад",
		KeyEnterNewName:    "Введите новое имя:",
		KeyEnterNewPhone:   "Введите новый номер телефона:",
		KeyNameChanged:     "Имя изменено на {{name}}.",
		KeyPhoneChanged:    "Номер телефона изменён на {{phone}}.",
		KeyOrdersCleared:   "Заказы очищены.",
		KeyUnknownCommand:  "Неизвестная команда. Пожалуйста, используйте кнопки.",
		KeyStatusCreated:   "В очереди",
		KeyStatusPaid:      "Оплачен",
		KeyStatusCanceled:  "Отменён",
	},
	LangUZ: {
		KeySelectLanguage:  "Tilni tanlang:",
		KeyStart:           "Salom! Ismingiz nima? 😊",
		KeyAskContact:      "Siz bilan tanishganimdan xursandman, {{name}}! Iltimos, kontakt raqamingizni yuboring.",
		KeyContactError:    "Iltimos, kontakt yuboring.",
		KeyPleaseEnterName: "Iltimos, ismingizni kiriting. ✍️",
		KeyCatalog:         "📚 Katalog",
		KeyCart:            "🛒 Savat",
		KeyOrders:          "📦 Buyurtmalar",
		KeyMyData:          "📝 Mening ma’lumotlarim",
		KeyOpenCatalog:     "Katalogni ochish",
		KeyCartEmpty:       "Savat bo'sh.",
		KeyCartHeader:      "🛒 <b>Mening savatim:</b>",
		KeyCartUpdated:     "📝 Savat yangilandi.",
		KeyAddedToCart:     "✅ Mahsulot \"{{name}}\" savatga qo'shildi.",
		KeyRemovedFromCart: "❌ Mahsulot \"{{name}}\" savatdan olib tashlandi.",
		KeyInvalidData:     "❌ Noto'g'ri ma'lumotlar.",
		KeyPayloadError:    "Ma'lumotlarni qayta ishlashda xatolik yuz berdi.",
		KeyLanguageChanged: "Til o'zbek tiliga o'zgartirildi.",
		KeyOrderCreated:    "📦 Buyurtma №{{merchant_trans_id}}\n💰 Jami: {{amount}} UZS\n🔗 Iltimos, to'lang:\n{{url}}",
		KeyOrderDropped:    "⚠️ Buyurtmaga kirmadi: {{items}}",
		KeyOrderEmpty:      "Buyurtmalar yo'q.",
		KeyOrdersHeader:    "📦 <b>Mening buyurtmalarim:</b>",
		KeySwitchLanguage:  "Tilni o'zgartirish",
		KeyWelcome:         "Xush kelibsiz, {{name}}! 👋\nSizga qanday yordam bera olamiz? Kerakli bo'limni tanlang:",
		KeyMyDataText:      "Sizning ma'lumotlaringiz:\nIsm: {{name}}\nTelefon: {{phone}}",
		KeyChangeName:      "Ismni o'zgartirish",
		KeyChangePhone:     "Telefon raqamini o'zgartirish",
		KeyClearOrders:     "Buyurtmalarni tozalash",
		KeyBack:            "Orqaga",
		KeyEnterNewName:    "Yangi ismni kiriting:",
		KeyEnterNewPhone:   "Yangi telefon raqamini kiriting:",
		KeyNameChanged:     "Ism {{name}} ga o'zgartirildi.",
		KeyPhoneChanged:    "Telefon raqami {{phone}} ga o'zgartirildi.",
		KeyOrdersCleared:   "Buyurtmalar tozalandi.",
		KeyUnknownCommand:  "Noma'lum buyruq. Iltimos, tugmalarni ishlating.",
		KeyStatusCreated:   "Navbatda",
		KeyStatusPaid:      "To'langan",
		KeyStatusCanceled:  "Bekor qilingan",
	},
}

// matcher resolves arbitrary BCP 47 hints (e.g. Telegram's language_code)
// to one of the two supported languages, defaulting to Russian.
var matcher = language.NewMatcher([]language.Tag{
	language.Russian, // ru (default)
	language.Uzbek,   // uz
})

// Match normalizes a language hint to a supported code. Unknown or empty
// hints resolve to Russian.
func Match(code string) string {
	if code == "" {
		return LangRU
	}
	tag, err := language.Parse(code)
	if err != nil {
		return LangRU
	}
	// The matcher pairs unrelated Latin-script hints (en, tr, de) with
	// Uzbek on script alone, so switching off the Russian default takes a
	// confident match, not a script-level guess.
	_, idx, conf := matcher.Match(tag)
	if idx == 1 && conf >= language.High {
		return LangUZ
	}
	return LangRU
}

// Normalize coerces a stored language code to a supported one.
func Normalize(lang string) string {
	if lang == LangUZ {
		return LangUZ
	}
	return LangRU
}

// Toggle flips between the two supported languages.
func Toggle(lang string) string {
	if Normalize(lang) == LangRU {
		return LangUZ
	}
	return LangRU
}

// T returns the message for key in lang, falling back to Russian and then
// to the key itself so a missing entry is visible rather than silent.
func T(lang, key string) string {
	if m, ok := messages[Normalize(lang)]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := messages[LangRU][key]; ok {
		return s
	}
	return key
}

// Render substitutes {{placeholder}} variables into the message for key.
func Render(lang, key string, vars map[string]string) string {
	s := T(lang, key)
	for k, v := range vars {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	return s
}

// labelActions maps every localized main-menu label (both languages) to its
// stable action id. Built once at init from the catalog itself so labels and
// actions cannot drift apart.
var labelActions = map[string]string{}

func init() {
	for _, lang := range []string{LangRU, LangUZ} {
		labelActions[T(lang, KeyCatalog)] = ActionMenuCatalog
		labelActions[T(lang, KeyCart)] = ActionMenuCart
		labelActions[T(lang, KeyOrders)] = ActionMenuOrders
		labelActions[T(lang, KeyMyData)] = ActionMenuMyData
		labelActions["🔄 "+T(lang, KeySwitchLanguage)] = ActionMenuSwitchLang
	}
}

// ActionForLabel resolves a reply-keyboard label to its stable action id.
// Labels from either language are accepted, so a user who switched languages
// mid-session can still press a stale keyboard.
func ActionForLabel(label string) (string, bool) {
	a, ok := labelActions[strings.TrimSpace(label)]
	return a, ok
}

// StatusLabel localizes an order status for display. Unknown statuses pass
// through verbatim.
func StatusLabel(lang, status string) string {
	switch status {
	case "CREATED":
		return T(lang, KeyStatusCreated)
	case "PAID":
		return T(lang, KeyStatusPaid)
	case "CANCELED":
		return T(lang, KeyStatusCanceled)
	default:
		return status
	}
}
