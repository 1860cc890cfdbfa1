package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"crazyones/internal/applecore"
	"crazyones/internal/fuzzy"
	"crazyones/internal/store"
	"crazyones/internal/translate"
)

// maxTagLength bounds /updates and fuzzy-matched tag arguments (spec §4.6).
const maxTagLength = 32

// recentLimit is how many entries /updates and /language return (spec §4.6).
const recentLimit = 10

// osTokens are the canonical tokens the fuzzy tag matcher recognizes by
// scanning locale-store names for word-boundary occurrences (spec §4.7).
var osTokens = []string{"ios", "ipados", "macos", "watchos", "tvos", "visionos"}

// verbs are the commands the dispatcher recognizes; unrecognized input is
// routed through the fuzzy matcher against this set (spec §4.7).
var verbs = []string{"/start", "/stop", "/updates", "/language", "/about", "/help"}

// Dispatcher implements the command surface of spec §4.6: subscription
// management, locale selection, on-demand queries, and static help text.
// It never mutates any file the monitor owns.
type Dispatcher struct {
	subscribers  *store.SubscriberStore
	catalog      *store.CatalogStore
	localeStore  *store.LocaleStore
	translations *translate.Catalog
	transport    Transport
	logger       *slog.Logger
}

// NewDispatcher constructs a Dispatcher over the given stores and transport.
func NewDispatcher(subscribers *store.SubscriberStore, catalog *store.CatalogStore, localeStore *store.LocaleStore, translations *translate.Catalog, transport Transport, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		subscribers:  subscribers,
		catalog:      catalog,
		localeStore:  localeStore,
		translations: translations,
		transport:    transport,
		logger:       logger,
	}
}

// Handle routes one transport Update to the matching command handler.
func (d *Dispatcher) Handle(ctx context.Context, upd Update) {
	if upd.MembershipLost {
		if err := d.subscribers.Deactivate(upd.ChatID); err != nil {
			d.logger.Error("deactivate on membership loss failed", "chat_id", upd.ChatID, "error", err)
		}
		return
	}
	if upd.IsCallback() {
		d.handleCallback(ctx, upd)
		return
	}

	verb, arg := splitCommand(upd.Text)
	if verb == "" {
		return
	}

	switch verb {
	case "/start":
		d.handleStart(ctx, upd.ChatID)
	case "/stop":
		d.handleStop(ctx, upd.ChatID)
	case "/updates":
		d.handleUpdates(ctx, upd.ChatID, arg)
	case "/language":
		d.handleLanguage(ctx, upd.ChatID, arg)
	case "/about":
		d.send(ctx, upd.ChatID, d.uiLang(upd.ChatID), "about")
	case "/help":
		d.send(ctx, upd.ChatID, d.uiLang(upd.ChatID), "help")
	default:
		d.handleUnknownVerb(ctx, upd.ChatID, verb, arg)
	}
}

// splitCommand splits "/verb argument" into its lowercased verb and the
// argument, whose words are re-joined by single spaces (empty when absent).
func splitCommand(text string) (verb, arg string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", ""
	}
	verb = strings.ToLower(fields[0])
	if idx := strings.Index(verb, "@"); idx >= 0 {
		verb = verb[:idx] // strip "@botname" suffix group chats append
	}
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}
	return verb, arg
}

// uiLang resolves chatID's UI language, defaulting to translate.DefaultLanguage
// when the subscriber doesn't exist yet.
func (d *Dispatcher) uiLang(chatID int64) string {
	sub, ok, err := d.subscribers.ByChatID(chatID)
	if err != nil || !ok {
		return translate.DefaultLanguage
	}
	return sub.UILang
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, lang, key string, args ...any) {
	text := d.translations.Render(lang, key, args...)
	if _, err := d.transport.Send(ctx, chatID, text, nil); err != nil {
		d.logger.Error("send failed", "chat_id", chatID, "key", key, "error", err)
	}
}

func (d *Dispatcher) handleStart(ctx context.Context, chatID int64) {
	locales, err := d.catalog.Locales()
	if err != nil {
		d.logger.Error("load locale catalog failed", "error", err)
		return
	}

	lang := d.uiLang(chatID)
	if len(locales) == 0 {
		d.send(ctx, chatID, lang, "no_languages")
		return
	}

	keyboard := localeKeyboard(locales)
	text := d.translations.Render(lang, "language_list_header")
	if _, err := d.transport.Send(ctx, chatID, text, keyboard); err != nil {
		d.logger.Error("send locale menu failed", "chat_id", chatID, "error", err)
	}
}

// localeKeyboard lays out one button per locale, one locale per row to keep
// display names readable regardless of length.
func localeKeyboard(locales []applecore.Locale) Keyboard {
	rows := make(Keyboard, 0, len(locales))
	for _, loc := range locales {
		rows = append(rows, []Button{{Text: loc.DisplayName, Data: "setlocale:" + loc.Code}})
	}
	return rows
}

func (d *Dispatcher) handleCallback(ctx context.Context, upd Update) {
	if err := d.transport.AnswerCallback(ctx, upd.CallbackID, ""); err != nil {
		d.logger.Warn("answer callback failed", "error", err)
	}

	code, ok := strings.CutPrefix(upd.CallbackData, "setlocale:")
	if !ok {
		return
	}

	locales, err := d.catalog.Locales()
	if err != nil {
		d.logger.Error("load locale catalog failed", "error", err)
		return
	}
	if !localeExists(locales, code) {
		return
	}

	now := time.Now().UTC()
	sub, existed, err := d.subscribers.ByChatID(upd.ChatID)
	if err != nil {
		d.logger.Error("load subscriber failed", "chat_id", upd.ChatID, "error", err)
		return
	}
	uiLang := resolveUILang(code, d.translations)
	if existed {
		sub.Locale = code
		sub.UILang = uiLang
		sub.Active = true
	} else {
		sub = &applecore.Subscriber{ChatID: upd.ChatID, Locale: code, UILang: uiLang, Active: true, Since: now}
	}
	if err := d.subscribers.Upsert(sub); err != nil {
		d.logger.Error("upsert subscriber failed", "chat_id", upd.ChatID, "error", err)
		return
	}

	if upd.MessageID != 0 {
		if err := d.transport.EditKeyboard(ctx, upd.ChatID, upd.MessageID, nil); err != nil {
			d.logger.Warn("clear locale menu keyboard failed", "chat_id", upd.ChatID, "error", err)
		}
	}

	displayName := code
	for _, loc := range locales {
		if loc.Code == code {
			displayName = loc.DisplayName
		}
	}
	d.send(ctx, upd.ChatID, uiLang, "language_selected", displayName)
	d.send(ctx, upd.ChatID, uiLang, "welcome")
}

func localeExists(locales []applecore.Locale, code string) bool {
	for _, loc := range locales {
		if loc.Code == code {
			return true
		}
	}
	return false
}

// resolveUILang implements spec §3's subscriber UI-language fallback: the
// subscriber's own locale, falling back to en-us when no translation
// catalog exists for it.
func resolveUILang(locale string, translations *translate.Catalog) string {
	if translations.Has(locale) {
		return locale
	}
	return translate.DefaultLanguage
}

func (d *Dispatcher) handleStop(ctx context.Context, chatID int64) {
	lang := d.uiLang(chatID)
	_, existed, err := d.subscribers.ByChatID(chatID)
	if err != nil {
		d.logger.Error("load subscriber failed", "chat_id", chatID, "error", err)
		return
	}
	if !existed {
		d.send(ctx, chatID, lang, "not_subscribed")
		return
	}
	if err := d.subscribers.Deactivate(chatID); err != nil {
		d.logger.Error("deactivate subscriber failed", "chat_id", chatID, "error", err)
		return
	}
	d.send(ctx, chatID, lang, "stop_confirmation")
}

func (d *Dispatcher) handleUpdates(ctx context.Context, chatID int64, rawTag string) {
	sub, existed, err := d.subscribers.ByChatID(chatID)
	if err != nil {
		d.logger.Error("load subscriber failed", "chat_id", chatID, "error", err)
		return
	}
	if !existed {
		d.send(ctx, chatID, translate.DefaultLanguage, "not_subscribed")
		return
	}
	d.sendRecent(ctx, chatID, sub.UILang, sub.Locale, rawTag, "")
}

func (d *Dispatcher) handleLanguage(ctx context.Context, chatID int64, arg string) {
	lang := d.uiLang(chatID)
	if arg == "" {
		locales, err := d.catalog.Locales()
		if err != nil {
			d.logger.Error("load locale catalog failed", "error", err)
			return
		}
		if len(locales) == 0 {
			d.send(ctx, chatID, lang, "no_languages")
			return
		}
		var b strings.Builder
		b.WriteString(d.translations.Render(lang, "language_list_header"))
		for _, loc := range locales {
			b.WriteString("\n")
			b.WriteString(loc.Code)
			b.WriteString(" - ")
			b.WriteString(loc.DisplayName)
		}
		if _, err := d.transport.Send(ctx, chatID, b.String(), nil); err != nil {
			d.logger.Error("send locale list failed", "chat_id", chatID, "error", err)
		}
		return
	}

	code := strings.ToLower(strings.TrimSpace(arg))
	locales, err := d.catalog.Locales()
	if err != nil {
		d.logger.Error("load locale catalog failed", "error", err)
		return
	}
	if !localeExists(locales, code) {
		codes := make([]string, len(locales))
		for i, loc := range locales {
			codes[i] = loc.Code
		}
		best, ok := fuzzy.Best(code, codes, 0.6)
		if !ok {
			d.send(ctx, chatID, lang, "no_fuzzy_tag_match", code)
			return
		}
		notice := d.translations.Render(lang, "did_you_mean", "/language "+best)
		d.sendRecent(ctx, chatID, lang, best, "", notice)
		return
	}
	d.sendRecent(ctx, chatID, lang, code, "", "")
}

// sendRecent sends the most recent recentLimit entries for locale, filtered
// by tag when non-empty, prefixed with notice (used for fuzzy-match
// disclaimers). It implements both /updates and /language's show-only mode.
func (d *Dispatcher) sendRecent(ctx context.Context, chatID int64, lang, locale, rawTag, notice string) {
	tag := normalizeTag(rawTag)
	records, err := d.localeStore.Load(locale)
	if err != nil {
		d.logger.Error("load locale store failed", "locale", locale, "error", err)
		return
	}

	filtered := records
	if tag != "" {
		matched := filterByTag(records, tag)
		if len(matched) == 0 && !hasWordMatch(allNames(records), tag) {
			d.handleFuzzyTag(ctx, chatID, lang, locale, tag, records)
			return
		}
		filtered = matched
	}

	if len(filtered) == 0 {
		d.send(ctx, chatID, lang, "no_updates")
		return
	}
	if len(filtered) > recentLimit {
		filtered = filtered[:recentLimit]
	}

	var b strings.Builder
	if notice != "" {
		b.WriteString(notice)
		b.WriteString("\n\n")
	}
	b.WriteString(d.translations.Render(lang, "recent_updates_header", len(filtered)))
	for _, u := range filtered {
		b.WriteString("\n\n")
		b.WriteString(formatUpdate(d.translations, lang, u))
	}
	if _, err := d.transport.Send(ctx, chatID, b.String(), nil); err != nil {
		d.logger.Error("send recent updates failed", "chat_id", chatID, "error", err)
	}
}

// handleFuzzyTag implements spec §4.7's /updates tag recovery: derive
// candidate OS tokens from the subscriber's own locale store and retry with
// the closest one at cutoff 0.5.
func (d *Dispatcher) handleFuzzyTag(ctx context.Context, chatID int64, lang, locale, tag string, records []applecore.SecurityUpdate) {
	candidates := candidateTokens(records)
	best, ok := fuzzy.Best(tag, candidates, 0.5)
	if !ok {
		d.send(ctx, chatID, lang, "no_fuzzy_tag_match", tag)
		return
	}
	notice := d.translations.Render(lang, "did_you_mean_tag", tag, best)
	d.sendRecent(ctx, chatID, lang, locale, best, notice)
}

func (d *Dispatcher) handleUnknownVerb(ctx context.Context, chatID int64, verb, arg string) {
	lang := d.uiLang(chatID)
	best, ok := fuzzy.Best(verb, verbs, 0.6)
	if !ok {
		d.send(ctx, chatID, lang, "unknown_command")
		return
	}
	notice := d.translations.Render(lang, "did_you_mean", best)
	if _, err := d.transport.Send(ctx, chatID, notice, nil); err != nil {
		d.logger.Error("send did-you-mean notice failed", "chat_id", chatID, "error", err)
	}
	d.Handle(ctx, Update{ChatID: chatID, Text: strings.TrimSpace(best + " " + arg)})
}

func normalizeTag(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if len(tag) > maxTagLength {
		tag = tag[:maxTagLength]
	}
	return tag
}

func formatUpdate(translations *translate.Catalog, lang string, u applecore.SecurityUpdate) string {
	title := u.Name
	if u.URL != "" {
		title = u.Name + "\n" + u.URL
	}
	return translations.Render(lang, "update_entry", title, u.Target, u.Date)
}
