package repository

import (
	"context"
	"time"

	"telegram-course-bot/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.User, error)
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	SetPaid(ctx context.Context, tx Tx, tgID int64, paid bool) error
	CountUsers(ctx context.Context, tx Tx) (int, error)
	CountPaidUsers(ctx context.Context, tx Tx) (int, error)
	// CountInactivePaidUsers counts paid students with no activity since the
	// given time; feeds the stalled-student reminder sweep.
	CountInactivePaidUsers(ctx context.Context, tx Tx, since time.Time) (int, error)
}
