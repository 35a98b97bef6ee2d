package bot

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/akbarovs/go-storefront-bot/internal/i18n"
	"github.com/akbarovs/go-storefront-bot/internal/services"
	"github.com/akbarovs/go-storefront-bot/internal/utils"
)

// telegramChunk keeps rendered order listings under the Telegram message
// size limit.
const telegramChunk = 4000

// Bot wires the Telegram update stream to the state-machine reducer and
// renders the resulting effects. It also implements services.Notifier so
// the order service can push payment links back into chats.
type Bot struct {
	tg        *bot.Bot
	sessions  *SessionStore
	profiles  *services.ProfileService
	carts     *services.CartService
	orders    *services.OrderService
	webAppURL string
	log       zerolog.Logger

	// chatLocks serializes handling per chat while distinct chats proceed
	// concurrently.
	chatLocks sync.Map // chatID -> *sync.Mutex
}

// New constructs the bot runner around a Telegram token.
func New(token string, sessions *SessionStore, profiles *services.ProfileService,
	carts *services.CartService, orders *services.OrderService, webAppURL string, log zerolog.Logger) (*Bot, error) {
	b := &Bot{
		sessions:  sessions,
		profiles:  profiles,
		carts:     carts,
		orders:    orders,
		webAppURL: webAppURL,
		log:       log.With().Str("component", "bot").Logger(),
	}
	tg, err := bot.New(token, bot.WithDefaultHandler(b.handleUpdate))
	if err != nil {
		return nil, err
	}
	b.tg = tg
	return b, nil
}

// Run consumes the long-polling update stream until ctx is canceled.
func (b *Bot) Run(ctx context.Context) {
	b.log.Info().Msg("telegram bot started")
	b.tg.Start(ctx)
}

// Notify implements services.Notifier.
func (b *Bot) Notify(chatID int64, text string) error {
	_, err := b.tg.SendMessage(context.Background(), &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return err
}

// handleUpdate turns one Telegram update into an Event, runs the reducer
// under the chat's lock, and renders the effects.
func (b *Bot) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	chatID, ev := b.buildEvent(ctx, update)
	if ev == nil {
		return
	}

	mu := b.lockChat(chatID)
	defer mu.Unlock()

	// Debounced activity refresh; failures never block the conversation.
	if _, err := b.profiles.Touch(ctx, chatID); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("activity touch failed")
	}

	sess, ok := b.sessions.Load(chatID)
	if !ok {
		sess = Session{ChatID: chatID, Lang: b.languageHint(update), State: StateSelectLanguage}
	}

	next, effects := Transition(sess, ev)
	b.sessions.Save(next)

	for _, eff := range effects {
		b.render(ctx, next, eff)
	}
}

// lockChat returns the chat's mutex, locked.
func (b *Bot) lockChat(chatID int64) *sync.Mutex {
	v, _ := b.chatLocks.LoadOrStore(chatID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu
}

// languageHint seeds a fresh session's language from Telegram's client hint.
func (b *Bot) languageHint(update *models.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return i18n.Match(update.Message.From.LanguageCode)
	}
	if update.CallbackQuery != nil {
		return i18n.Match(update.CallbackQuery.From.LanguageCode)
	}
	return i18n.LangRU
}

// buildEvent maps a Telegram update to a reducer event. Reply-keyboard
// labels are resolved to stable action ids here so the reducer never sees
// translated text.
func (b *Bot) buildEvent(ctx context.Context, update *models.Update) (int64, Event) {
	if cb := update.CallbackQuery; cb != nil {
		if cb.Message.Message == nil {
			return 0, nil
		}
		chatID := cb.Message.Message.Chat.ID
		b.answerCallback(ctx, cb.ID)
		if lang, ok := strings.CutPrefix(cb.Data, "lang_"); ok {
			return chatID, LanguageChosenEvent{Lang: lang}
		}
		return chatID, CallbackEvent{Action: cb.Data}
	}

	msg := update.Message
	if msg == nil {
		return 0, nil
	}
	chatID := msg.Chat.ID

	switch {
	case strings.HasPrefix(msg.Text, "/"):
		switch command(msg.Text) {
		case "start":
			profile, err := b.profiles.Lookup(ctx, chatID)
			if err != nil {
				// Fail open: a storage hiccup sends the user through
				// onboarding instead of blocking the conversation.
				b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("profile lookup failed")
				profile = nil
			}
			return chatID, StartEvent{Profile: profile}
		case "language":
			return chatID, LanguageCommandEvent{}
		default:
			return chatID, TextEvent{Text: msg.Text}
		}

	case msg.Contact != nil:
		return chatID, ContactEvent{Phone: msg.Contact.PhoneNumber}

	case msg.WebAppData != nil:
		return chatID, ParseCartEvent(msg.WebAppData.Data)

	case msg.Text != "":
		if action, ok := i18n.ActionForLabel(msg.Text); ok {
			return chatID, MenuActionEvent{Action: action}
		}
		return chatID, TextEvent{Text: msg.Text}
	}

	b.log.Debug().Int64("chat_id", chatID).Msg("unhandled update type")
	return 0, nil
}

// command extracts the bare command name from "/name@botname args".
func command(text string) string {
	text = strings.TrimPrefix(text, "/")
	if i := strings.IndexAny(text, " @"); i >= 0 {
		text = text[:i]
	}
	return text
}

// render executes one effect against Telegram and the services.
func (b *Bot) render(ctx context.Context, s Session, eff Effect) {
	switch e := eff.(type) {
	case Say:
		b.send(ctx, s.ChatID, i18n.Render(s.Lang, e.Key, e.Vars), nil, false)

	case ShowLanguageMenu:
		kb := &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{{
				{Text: "Русский 🇷🇺", CallbackData: i18n.ActionLangRU},
				{Text: "O'zbek 🇺🇿", CallbackData: i18n.ActionLangUZ},
			}},
		}
		b.send(ctx, s.ChatID, i18n.T(s.Lang, i18n.KeySelectLanguage), kb, false)

	case ShowMainMenu:
		kb := &models.ReplyKeyboardMarkup{
			Keyboard: [][]models.KeyboardButton{
				{
					{Text: i18n.T(s.Lang, i18n.KeyCatalog)},
					{Text: i18n.T(s.Lang, i18n.KeyCart)},
				},
				{
					{Text: i18n.T(s.Lang, i18n.KeyOrders)},
					{Text: i18n.T(s.Lang, i18n.KeyMyData)},
				},
				{
					{Text: "🔄 " + i18n.T(s.Lang, i18n.KeySwitchLanguage)},
				},
			},
			ResizeKeyboard: true,
		}
		text := i18n.Render(s.Lang, i18n.KeyWelcome, map[string]string{"name": s.Name})
		b.send(ctx, s.ChatID, text, kb, false)

	case ShowMyData:
		kb := &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{
				{{Text: i18n.T(s.Lang, i18n.KeyChangeName), CallbackData: i18n.ActionEditName}},
				{{Text: i18n.T(s.Lang, i18n.KeyChangePhone), CallbackData: i18n.ActionEditPhone}},
				{{Text: i18n.T(s.Lang, i18n.KeyClearOrders), CallbackData: i18n.ActionClearOrders}},
				{{Text: i18n.T(s.Lang, i18n.KeyBack), CallbackData: i18n.ActionBackToMenu}},
			},
		}
		text := i18n.Render(s.Lang, i18n.KeyMyDataText, map[string]string{
			"name":  orDash(s.Name),
			"phone": orDash(s.Phone),
		})
		b.send(ctx, s.ChatID, text, kb, false)

	case RequestContact:
		kb := &models.ReplyKeyboardMarkup{
			Keyboard: [][]models.KeyboardButton{
				{{Text: "📱 Отправить контакт", RequestContact: true}},
			},
			ResizeKeyboard: true,
		}
		text := i18n.Render(s.Lang, i18n.KeyAskContact, map[string]string{"name": e.Name})
		b.send(ctx, s.ChatID, text, kb, false)

	case OpenCatalog:
		q := url.Values{}
		q.Set("lang", s.Lang)
		q.Set("chat_id", fmt.Sprintf("%d", s.ChatID))
		q.Set("phone", s.Phone)
		webURL := b.webAppURL + "?" + q.Encode()
		label := i18n.T(s.Lang, i18n.KeyOpenCatalog)
		kb := &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{{
				{Text: label, WebApp: &models.WebAppInfo{URL: webURL}},
			}},
		}
		b.send(ctx, s.ChatID, label, kb, false)

	case ShowCart:
		items, err := b.carts.Get(ctx, s.ChatID)
		if err != nil {
			b.log.Error().Err(err).Int64("chat_id", s.ChatID).Msg("cart fetch failed")
			b.send(ctx, s.ChatID, i18n.T(s.Lang, i18n.KeyCartEmpty), nil, false)
			return
		}
		if len(items) == 0 {
			b.send(ctx, s.ChatID, i18n.T(s.Lang, i18n.KeyCartEmpty), nil, false)
			return
		}
		var sb strings.Builder
		sb.WriteString(i18n.T(s.Lang, i18n.KeyCartHeader) + "\n\n")
		for i, it := range items {
			fmt.Fprintf(&sb, "📌 <b>%d. %s</b>\nКол-во: %d\nЦена: %s UZS\n-----------------\n",
				i+1, it.Name, it.Quantity, utils.FormatAmount(it.Price))
		}
		b.send(ctx, s.ChatID, sb.String(), nil, true)

	case ShowOrders:
		views, err := b.orders.ListOrders(ctx, s.ChatID)
		if err != nil {
			b.log.Error().Err(err).Int64("chat_id", s.ChatID).Msg("orders fetch failed")
			b.send(ctx, s.ChatID, i18n.T(s.Lang, i18n.KeyOrderEmpty), nil, false)
			return
		}
		if len(views) == 0 {
			b.send(ctx, s.ChatID, i18n.T(s.Lang, i18n.KeyOrderEmpty), nil, false)
			return
		}
		var sb strings.Builder
		sb.WriteString(i18n.T(s.Lang, i18n.KeyOrdersHeader) + "\n\n")
		for _, v := range views {
			fmt.Fprintf(&sb, "✅ <b>Заказ №%s</b>\n💰 Сумма: %s UZS\n📌 Статус: %s\n🛍️ Товары:\n",
				v.MerchantTransID, utils.FormatAmount(v.TotalAmount), v.StatusText)
			for i, it := range v.Items {
				fmt.Fprintf(&sb, "   %d. %s x %d шт. - %s UZS\n",
					i+1, it.Name, it.Quantity, utils.FormatAmount(it.Price*float64(it.Quantity)))
			}
			sb.WriteString("\n-----------------------\n")
		}
		for _, part := range utils.ChunkText(sb.String(), telegramChunk) {
			b.send(ctx, s.ChatID, part, nil, true)
		}

	case ClearOrders:
		before, after, err := b.orders.ClearOrders(ctx, s.ChatID)
		if err != nil {
			b.log.Error().Err(err).Int64("chat_id", s.ChatID).Msg("clear orders failed")
			return
		}
		b.log.Info().Int64("chat_id", s.ChatID).Int64("before", before).Int64("after", after).Msg("orders cleared")
		b.send(ctx, s.ChatID, i18n.T(s.Lang, i18n.KeyOrdersCleared), nil, false)

	case SaveCart:
		if err := b.carts.Save(ctx, s.ChatID, e.Items); err != nil {
			b.log.Error().Err(err).Int64("chat_id", s.ChatID).Msg("cart save failed")
		}

	case PersistProfile:
		if err := b.profiles.Upsert(ctx, s.ChatID, s.Name, s.Phone, s.Lang); err != nil {
			b.log.Error().Err(err).Int64("chat_id", s.ChatID).Msg("profile upsert failed")
		}

	case PersistName:
		if err := b.profiles.UpdateName(ctx, s.ChatID, e.Name); err != nil {
			b.log.Error().Err(err).Int64("chat_id", s.ChatID).Msg("profile name update failed")
		}

	case PersistPhone:
		if err := b.profiles.UpdatePhone(ctx, s.ChatID, e.Phone); err != nil {
			b.log.Error().Err(err).Int64("chat_id", s.ChatID).Msg("profile phone update failed")
		}

	case PersistLang:
		if err := b.profiles.UpdateLang(ctx, s.ChatID, e.Lang); err != nil {
			b.log.Error().Err(err).Int64("chat_id", s.ChatID).Msg("profile lang update failed")
		}
	}
}

// send delivers one message, optionally with a keyboard and HTML parsing.
func (b *Bot) send(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup, html bool) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if html {
		params.ParseMode = models.ParseModeHTML
	}
	if _, err := b.tg.SendMessage(ctx, params); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
	}
}

// answerCallback stops the Telegram client's loading spinner.
func (b *Bot) answerCallback(ctx context.Context, id string) {
	if _, err := b.tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: id}); err != nil {
		b.log.Warn().Err(err).Msg("callback answer failed")
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
