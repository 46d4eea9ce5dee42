package splitter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"telegram-course-bot/internal/domain"
	"telegram-course-bot/internal/domain/ports/adapter"
	"telegram-course-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// DefaultChunkDelay paces consecutive chunk sends so the transport's own rate
// limits are respected.
const DefaultChunkDelay = 500 * time.Millisecond

// Labels supplies the localized texts appended to multi-part messages. Part is
// the "part i/N" indicator; SendFailed is the best-effort notice sent to the
// chat when a part could not be delivered.
type Labels struct {
	Part       func(i, n int) string
	SendFailed func(i, n int) string
}

func defaultLabels() Labels {
	return Labels{
		Part:       func(i, n int) string { return fmt.Sprintf("part %d/%d", i, n) },
		SendFailed: func(i, n int) string { return fmt.Sprintf("failed to deliver part %d/%d, please retry", i, n) },
	}
}

// LongSender delivers long text through a Transport, splitting it into chunks
// and sending them strictly in order, one at a time.
type LongSender struct {
	limit  int
	delay  time.Duration
	labels Labels
	log    *zerolog.Logger
}

func NewLongSender(limit int, delay time.Duration, labels Labels, logger *zerolog.Logger) *LongSender {
	if limit <= 0 {
		limit = DefaultChunkLimit
	}
	if delay < 0 {
		delay = DefaultChunkDelay
	}
	def := defaultLabels()
	if labels.Part == nil {
		labels.Part = def.Part
	}
	if labels.SendFailed == nil {
		labels.SendFailed = def.SendFailed
	}
	compLog := logger.With().Str("component", "LongSender").Logger()
	return &LongSender{limit: limit, delay: delay, labels: labels, log: &compLog}
}

// Send delivers text to chatID, chunking when it exceeds the Telegram hard
// cap. A failed chunk aborts the remaining ones after a best-effort notice to
// the chat; the original transport error is returned. There is no retry: the
// caller decides whether to repeat the whole call.
func (s *LongSender) Send(ctx context.Context, transport adapter.Transport, chatID int64, text string, opts adapter.SendOptions) error {
	if transport == nil || chatID == 0 || strings.TrimSpace(text) == "" {
		s.log.Error().Int64("chat_id", chatID).Msg("invalid arguments for long send")
		return fmt.Errorf("send long message: %w", domain.ErrInvalidArgument)
	}

	// Fast path: no splitting needed below the hard API cap.
	if runeLen(text) <= TelegramMessageLimit {
		if err := transport.SendMessage(ctx, chatID, text, opts); err != nil {
			s.log.Error().Err(err).Int64("chat_id", chatID).Msg("direct send failed")
			metrics.IncSendFailure()
			return err
		}
		metrics.IncChunkSent()
		return nil
	}

	chunks := Split(text, s.limit)
	s.log.Info().Int64("chat_id", chatID).Int("chunks", len(chunks)).Msg("splitting long message")

	for i, chunk := range chunks {
		if len(chunks) > 1 {
			chunk += "\n\n" + s.labels.Part(i+1, len(chunks))
		}

		if err := transport.SendMessage(ctx, chatID, chunk, opts); err != nil {
			s.log.Error().Err(err).Int64("chat_id", chatID).
				Int("part", i+1).Int("parts", len(chunks)).Msg("chunk send failed")
			metrics.IncSendFailure()
			if notice := s.labels.SendFailed(i+1, len(chunks)); notice != "" {
				if nerr := transport.SendMessage(ctx, chatID, notice, adapter.SendOptions{}); nerr != nil {
					s.log.Error().Err(nerr).Int64("chat_id", chatID).Msg("failure notice send failed")
				}
			}
			return err
		}
		metrics.IncChunkSent()

		if i < len(chunks)-1 && s.delay > 0 {
			timer := time.NewTimer(s.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return nil
}
