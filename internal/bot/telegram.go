package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramTransport implements Transport over the real bot API, the way
// ObiAU-HFNewsAggregator's and dd3ok-d3k-agent's telegram packages wrap
// tgbotapi.BotAPI for their own bots.
type TelegramTransport struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

// NewTelegramTransport creates a bot API client from token. The teacher's
// HTTP403Error-style typed error doesn't apply here; tgbotapi.NewBotAPI
// itself validates the token against the Telegram API on construction.
func NewTelegramTransport(token string, logger *slog.Logger) (*TelegramTransport, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}
	return &TelegramTransport{api: api, logger: logger}, nil
}

// Updates streams incoming messages and callback queries using long
// polling, closing the returned channel when ctx is canceled.
func (t *TelegramTransport) Updates(ctx context.Context) <-chan Update {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	raw := t.api.GetUpdatesChan(cfg)

	out := make(chan Update)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-raw:
				if !ok {
					return
				}
				if mapped, ok := mapUpdate(upd); ok {
					select {
					case out <- mapped:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out
}

func mapUpdate(upd tgbotapi.Update) (Update, bool) {
	switch {
	case upd.CallbackQuery != nil:
		cb := upd.CallbackQuery
		chatID := int64(0)
		messageID := 0
		if cb.Message != nil {
			chatID = cb.Message.Chat.ID
			messageID = cb.Message.MessageID
		}
		return Update{ChatID: chatID, MessageID: messageID, CallbackData: cb.Data, CallbackID: cb.ID}, true
	case upd.Message != nil:
		return Update{ChatID: upd.Message.Chat.ID, Text: upd.Message.Text}, true
	case upd.MyChatMember != nil:
		status := upd.MyChatMember.NewChatMember.Status
		if status == "left" || status == "kicked" {
			return Update{ChatID: upd.MyChatMember.Chat.ID, MembershipLost: true}, true
		}
		return Update{}, false
	default:
		return Update{}, false
	}
}

// Send delivers text to chatID with keyboard, if any, translating
// tgbotapi's error shapes into the sentinel kinds errors.go recognizes.
func (t *TelegramTransport) Send(ctx context.Context, chatID int64, text string, keyboard Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = false
	if len(keyboard) > 0 {
		msg.ReplyMarkup = buildMarkup(keyboard)
	}

	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, translateSendError(chatID, err)
	}
	return sent.MessageID, nil
}

// EditKeyboard clears or replaces messageID's inline keyboard, used after a
// /start locale selection is made so the buttons don't linger.
func (t *TelegramTransport) EditKeyboard(_ context.Context, chatID int64, messageID int, keyboard Keyboard) error {
	markup := buildMarkup(keyboard)
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, markup)
	_, err := t.api.Send(edit)
	if err != nil {
		return translateSendError(chatID, err)
	}
	return nil
}

// AnswerCallback acknowledges a callback query so Telegram stops showing
// its loading spinner on the pressed button.
func (t *TelegramTransport) AnswerCallback(_ context.Context, callbackID, text string) error {
	_, err := t.api.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

func buildMarkup(keyboard Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// translateSendError wraps a raw tgbotapi error into BlockedError or
// RateLimitError when the API response carries one of those signals, per
// spec §4.8's three-way classification.
func translateSendError(chatID int64, err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.RetryAfter > 0 {
			return &RateLimitError{RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second}
		}
		if apiErr.Code == 403 {
			return &BlockedError{Reason: apiErr.Message}
		}
	}
	return fmt.Errorf("send to chat %d: %w", chatID, err)
}
