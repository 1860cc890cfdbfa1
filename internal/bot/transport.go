// Package bot implements the long-lived chat bot described in spec §2, §4.6-
// §4.9: a command dispatcher reacting to subscriber messages and a trigger
// watcher fanning out newly observed updates, sharing the subscriber store
// and delivery ledger. Each of the two stores serializes its own
// operations behind its own mutex; no lock spans both.
package bot

import "context"

// Button is one inline-keyboard button: Data is echoed back on the
// CallbackData field of the Update it produces when pressed.
type Button struct {
	Text string
	Data string
}

// Keyboard is a grid of inline-keyboard buttons, row-major.
type Keyboard [][]Button

// Update is a transport event the dispatcher reacts to: either a typed
// message or a callback-query from an inline-keyboard press, or a
// membership-loss notification (the bot was removed from, or blocked by,
// chatID).
type Update struct {
	Text           string
	CallbackData   string
	CallbackID     string
	ChatID         int64
	MessageID      int
	MembershipLost bool
}

// IsCallback reports whether this update is an inline-keyboard press.
func (u Update) IsCallback() bool { return u.CallbackData != "" }

// Transport is the capability set spec §6 treats as an opaque external
// collaborator: receive updates, send a message with an optional inline
// keyboard, edit a message's keyboard, and surface membership-loss events.
// TelegramTransport implements it over the real bot API; tests use a fake.
type Transport interface {
	// Updates streams incoming events until ctx is canceled.
	Updates(ctx context.Context) <-chan Update
	// Send delivers text to chatID, optionally with an inline keyboard, and
	// returns the sent message's id (needed by EditKeyboard).
	Send(ctx context.Context, chatID int64, text string, keyboard Keyboard) (messageID int, err error)
	// EditKeyboard replaces messageID's inline keyboard in chatID, typically
	// to clear it after a selection is made.
	EditKeyboard(ctx context.Context, chatID int64, messageID int, keyboard Keyboard) error
	// AnswerCallback acknowledges a callback query so the client stops
	// showing its loading spinner.
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
