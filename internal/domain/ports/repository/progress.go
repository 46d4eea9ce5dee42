package repository

import (
	"context"
	"time"

	"telegram-course-bot/internal/domain/model"
)

// -----------------------------
// Lesson progress
// -----------------------------

type ProgressRepository interface {
	// MarkDay upserts the progress record for the user: the day completion
	// flag is set, current_day only advances, last_access is stamped.
	MarkDay(ctx context.Context, tx Tx, tgID int64, day int, at time.Time) error
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.Progress, error)
	CountCompletedDay(ctx context.Context, tx Tx, day int) (int, error)
}
