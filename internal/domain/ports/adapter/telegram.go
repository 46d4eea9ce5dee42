package adapter

import "context"

// SendOptions carries the subset of Telegram send parameters the bot uses.
type SendOptions struct {
	ParseMode             string
	DisableWebPagePreview bool
	DisableNotification   bool
}

// Transport is the outbound messaging capability: deliver one text message to
// one chat. The real implementation wraps tgbotapi; tests use in-memory fakes.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts SendOptions) error
}
