package i18n

import "testing"

func TestT_FallbackChain(t *testing.T) {
	if got := T(LangUZ, KeyCartEmpty); got != "Savat bo'sh." {
		t.Fatalf("uz lookup: got %q", got)
	}
	// Unsupported language falls back to Russian.
	if got := T("de", KeyCartEmpty); got != "Корзина пуста." {
		t.Fatalf("fallback lookup: got %q", got)
	}
	// Missing key surfaces the key itself.
	if got := T(LangRU, "no_such_key"); got != "no_such_key" {
		t.Fatalf("missing key: got %q", got)
	}
}

func TestRender_SubstitutesPlaceholders(t *testing.T) {
	got := Render(LangRU, KeyAskContact, map[string]string{"name": "Anna"})
	want := "Приятно познакомиться, Anna! Отправьте, пожалуйста, свой контакт для продолжения."
	if got != want {
		t.Fatalf("got %q", got)
	}
}

func TestMatch(t *testing.T) {
	cases := map[string]string{
		"":      LangRU,
		"ru":    LangRU,
		"ru-RU": LangRU,
		"uz":    LangUZ,
		"uz-UZ": LangUZ,
		"en":    LangRU,
		"en-US": LangRU,
		"tr":    LangRU,
		"de":    LangRU,
		"???":   LangRU,
	}
	for hint, want := range cases {
		if got := Match(hint); got != want {
			t.Errorf("Match(%q) = %q, want %q", hint, got, want)
		}
	}
}

func TestToggle(t *testing.T) {
	if Toggle(LangRU) != LangUZ || Toggle(LangUZ) != LangRU {
		t.Fatal("toggle must flip between the two languages")
	}
	// Unknown codes normalize to Russian before toggling.
	if Toggle("en") != LangUZ {
		t.Fatal("unknown code must toggle from the Russian default")
	}
}

func TestActionForLabel_BothLanguages(t *testing.T) {
	cases := map[string]string{
		"📚 Каталог":            ActionMenuCatalog,
		"📚 Katalog":            ActionMenuCatalog,
		"🛒 Корзина":            ActionMenuCart,
		"🛒 Savat":              ActionMenuCart,
		"📦 Заказы":             ActionMenuOrders,
		"📦 Buyurtmalar":        ActionMenuOrders,
		"🔄 Сменить язык":       ActionMenuSwitchLang,
		"🔄 Tilni o'zgartirish": ActionMenuSwitchLang,
	}
	for label, want := range cases {
		got, ok := ActionForLabel(label)
		if !ok || got != want {
			t.Errorf("ActionForLabel(%q) = (%q, %v), want %q", label, got, ok, want)
		}
	}

	if _, ok := ActionForLabel("free text"); ok {
		t.Error("free text must not resolve to an action")
	}
}

func TestStatusLabel(t *testing.T) {
	if got := StatusLabel(LangRU, "CREATED"); got != "В очереди" {
		t.Fatalf("ru CREATED: got %q", got)
	}
	if got := StatusLabel(LangUZ, "CANCELED"); got != "Bekor qilingan" {
		t.Fatalf("uz CANCELED: got %q", got)
	}
	// Unknown statuses pass through verbatim.
	if got := StatusLabel(LangRU, "REFUNDED"); got != "REFUNDED" {
		t.Fatalf("unknown status: got %q", got)
	}
}
