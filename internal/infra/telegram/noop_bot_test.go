//go:build !integration

package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"telegram-course-bot/internal/domain/ports/adapter"
	"telegram-course-bot/internal/splitter"
)

func TestNoopBotRecordsSends(t *testing.T) {
	bot := NewNoopBotAdapter()

	opts := adapter.SendOptions{ParseMode: "Markdown"}
	if err := bot.SendMessage(context.Background(), 42, "hello", opts); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	sent := bot.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 recorded message, got %d", len(sent))
	}
	if sent[0].ChatID != 42 || sent[0].Text != "hello" || sent[0].Opts.ParseMode != "Markdown" {
		t.Fatalf("unexpected record: %+v", sent[0])
	}
}

func TestNoopBotInjectedError(t *testing.T) {
	bot := NewNoopBotAdapter()
	bot.SendErr = errors.New("boom")

	if err := bot.SendMessage(context.Background(), 42, "hello", adapter.SendOptions{}); err == nil {
		t.Fatalf("expected injected error")
	}
	if len(bot.Sent()) != 0 {
		t.Fatalf("failed send must not be recorded")
	}
}

func TestNoopBotCarriesChunkedDelivery(t *testing.T) {
	bot := NewNoopBotAdapter()
	log := zerolog.Nop()
	sender := splitter.NewLongSender(2000, 0, splitter.Labels{}, &log)

	par := strings.Repeat("ក", 1900)
	text := par + "\n\n" + par + "\n\n" + par

	if err := sender.Send(context.Background(), bot, 42, text, adapter.SendOptions{}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	sent := bot.Sent()
	if len(sent) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(sent))
	}
	for i, m := range sent {
		if m.ChatID != 42 {
			t.Fatalf("chunk %d wrong chat: %d", i, m.ChatID)
		}
	}
	if !strings.HasSuffix(sent[2].Text, "part 3/3") {
		t.Fatalf("missing part indicator on final chunk: %q", sent[2].Text[:40])
	}
}
