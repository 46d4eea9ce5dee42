package usecase

import (
	"context"
	"errors"
	"time"

	"telegram-course-bot/internal/content"
	"telegram-course-bot/internal/domain"
	"telegram-course-bot/internal/domain/model"
	"telegram-course-bot/internal/domain/ports/adapter"
	"telegram-course-bot/internal/domain/ports/repository"
	"telegram-course-bot/internal/infra/i18n"
	"telegram-course-bot/internal/infra/logging"
	"telegram-course-bot/internal/infra/metrics"
	"telegram-course-bot/internal/splitter"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ LessonUseCase = (*lessonUC)(nil)

// LessonUseCase drives the gated lesson flow: access check, content
// resolution, chunked delivery, progress bookkeeping.
type LessonUseCase interface {
	Deliver(ctx context.Context, transport adapter.Transport, tgID, chatID int64, day int) error
	Progress(ctx context.Context, tgID int64) (*model.Progress, error)
}

type lessonUC struct {
	users    repository.UserRepository
	progress repository.ProgressRepository
	catalog  *content.Catalog
	sender   *splitter.LongSender
	tr       *i18n.Translator
	log      *zerolog.Logger
}

func NewLessonUseCase(
	users repository.UserRepository,
	progress repository.ProgressRepository,
	catalog *content.Catalog,
	sender *splitter.LongSender,
	tr *i18n.Translator,
	logger *zerolog.Logger,
) *lessonUC {
	return &lessonUC{
		users:    users,
		progress: progress,
		catalog:  catalog,
		sender:   sender,
		tr:       tr,
		log:      logger,
	}
}

// Deliver runs the full per-command flow. An unpaid or unknown user gets the
// paywall message and no progress write. A day without authored content gets
// the "still being prepared" placeholder, which counts as a delivery. A
// failed progress upsert is logged and swallowed: the content already reached
// the student, bookkeeping must not undo that.
func (l *lessonUC) Deliver(ctx context.Context, transport adapter.Transport, tgID, chatID int64, day int) error {
	defer logging.TraceDuration(l.log, "LessonUC.Deliver")()

	if transport == nil || tgID <= 0 || chatID == 0 || day < 1 || day > l.catalog.MaxDay() {
		return domain.ErrInvalidArgument
	}
	log := logging.With(ctx, l.log)

	user, err := l.users.FindByTelegramID(ctx, repository.NoTX, tgID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if !user.HasAccess() {
		metrics.IncPaywallBlock(day)
		log.Info().Int("day", day).Msg("lesson request blocked by paywall")
		return transport.SendMessage(ctx, chatID, l.tr.T("paywall", day), adapter.SendOptions{})
	}

	text, ok := l.catalog.Lesson(day)
	if !ok {
		// Not an error: defined fallback for any day without authored content.
		text = l.tr.T("lesson_preparing", day, day)
	}

	start := time.Now()
	if err := l.sender.Send(ctx, transport, chatID, text, adapter.SendOptions{}); err != nil {
		metrics.ObserveDeliveryLatency(day, time.Since(start).Milliseconds(), false)
		return err
	}
	metrics.ObserveDeliveryLatency(day, time.Since(start).Milliseconds(), true)
	metrics.IncLessonDelivered(day)

	if err := l.progress.MarkDay(ctx, repository.NoTX, tgID, day, time.Now()); err != nil {
		log.Error().Err(err).Int("day", day).Msg("progress upsert failed after delivery")
	}

	log.Info().Int("day", day).Msg("lesson delivered")
	return nil
}

func (l *lessonUC) Progress(ctx context.Context, tgID int64) (*model.Progress, error) {
	defer logging.TraceDuration(l.log, "LessonUC.Progress")()
	return l.progress.FindByTelegramID(ctx, repository.NoTX, tgID)
}
