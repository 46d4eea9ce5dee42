package telegram

import (
	"context"
	"sync"

	"telegram-course-bot/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.Transport = (*NoopBotAdapter)(nil)

// NoopBotAdapter records outbound messages instead of hitting Telegram.
// Used by tests and local demos.
type NoopBotAdapter struct {
	mu   sync.Mutex
	sent []NoopMessage

	// SendErr, when set, is returned by every SendMessage call.
	SendErr error
}

type NoopMessage struct {
	ChatID int64
	Text   string
	Opts   adapter.SendOptions
}

func NewNoopBotAdapter() *NoopBotAdapter {
	return &NoopBotAdapter{}
}

func (n *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string, opts adapter.SendOptions) error {
	if n.SendErr != nil {
		return n.SendErr
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, NoopMessage{ChatID: chatID, Text: text, Opts: opts})
	return nil
}

// Sent returns a copy of everything delivered so far.
func (n *NoopBotAdapter) Sent() []NoopMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]NoopMessage, len(n.sent))
	copy(out, n.sent)
	return out
}
