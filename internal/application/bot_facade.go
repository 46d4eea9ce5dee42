package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telegram-course-bot/internal/domain"
	"telegram-course-bot/internal/domain/model"
	"telegram-course-bot/internal/domain/ports/adapter"
	"telegram-course-bot/internal/infra/i18n"
	"telegram-course-bot/internal/usecase"
)

// BotFacade composes usecases into high-level bot commands. Methods that only
// produce text return strings so the Telegram adapter just forwards them to
// the chat; lesson delivery takes the transport because it sends in chunks.
type BotFacade struct {
	UserUC   usecase.UserUseCase
	LessonUC usecase.LessonUseCase
	tr       *i18n.Translator
	maxDay   int
}

func NewBotFacade(userUC usecase.UserUseCase, lessonUC usecase.LessonUseCase, tr *i18n.Translator, maxDay int) *BotFacade {
	if maxDay <= 0 || maxDay > model.MaxLessonDay {
		maxDay = model.MaxLessonDay
	}
	return &BotFacade{
		UserUC:   userUC,
		LessonUC: lessonUC,
		tr:       tr,
		maxDay:   maxDay,
	}
}

// MaxDay is the highest lesson day the bot serves.
func (b *BotFacade) MaxDay() int { return b.maxDay }

// HandleStart registers or fetches the user and returns the welcome text.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64, username string) (string, error) {
	if b.UserUC == nil {
		return "", fmt.Errorf("user usecase not available")
	}
	if _, err := b.UserUC.RegisterOrFetch(ctx, tgID, username); err != nil {
		return "", fmt.Errorf("register/fetch user: %w", err)
	}
	return b.tr.T("start_welcome"), nil
}

// HandlePricing returns the pricing call-to-action.
func (b *BotFacade) HandlePricing() string { return b.tr.T("pricing") }

// HandleHelp returns the help text.
func (b *BotFacade) HandleHelp() string { return b.tr.T("help") }

// HandleJoinIntent answers the free-text "I want to join" registration phrase.
func (b *BotFacade) HandleJoinIntent() string { return b.tr.T("join_intent_reply") }

// JoinIntentKeyword is the localized phrase that triggers the join funnel.
func (b *BotFacade) JoinIntentKeyword() string { return b.tr.T("join_intent_keyword") }

// HandleLesson runs the gated lesson flow for one day.
func (b *BotFacade) HandleLesson(ctx context.Context, transport adapter.Transport, tgID, chatID int64, day int) error {
	if b.LessonUC == nil {
		return fmt.Errorf("lesson usecase not available")
	}
	if day < 1 || day > b.maxDay {
		return domain.ErrInvalidArgument
	}
	return b.LessonUC.Deliver(ctx, transport, tgID, chatID, day)
}

// HandleProgress renders the user's completion map. Unpaid users are shown
// the paywall for day one, same as a gated lesson request.
func (b *BotFacade) HandleProgress(ctx context.Context, tgID int64) (string, error) {
	if b.UserUC == nil || b.LessonUC == nil {
		return "", fmt.Errorf("some usecases are not available")
	}
	user, err := b.UserUC.GetByTelegramID(ctx, tgID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	if !user.HasAccess() {
		return b.tr.T("paywall", 1), nil
	}

	progress, err := b.LessonUC.Progress(ctx, tgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return b.tr.T("progress_empty"), nil
		}
		return "", err
	}

	sb := strings.Builder{}
	sb.WriteString(b.tr.T("progress_header", progress.CurrentDay, b.maxDay))
	sb.WriteString("\n\n")
	for day := 1; day <= b.maxDay; day++ {
		if progress.Completed(day) {
			sb.WriteString(b.tr.T("progress_day_done", day))
		} else {
			sb.WriteString(b.tr.T("progress_day_pending", day))
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// Apology is the single generic failure message shown when a handler fails.
func (b *BotFacade) Apology() string { return b.tr.T("apology") }

// RateLimited is shown when a user exceeds the per-command window.
func (b *BotFacade) RateLimited() string { return b.tr.T("rate_limited") }
