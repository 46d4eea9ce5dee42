package usecase

import (
	"context"
	"errors"
	"time"

	"telegram-course-bot/internal/domain"
	"telegram-course-bot/internal/domain/model"
	"telegram-course-bot/internal/domain/ports/repository"
	"telegram-course-bot/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes user-related operations used by bot and admin flows.
type UserUseCase interface {
	RegisterOrFetch(ctx context.Context, tgID int64, username string) (*model.User, error)
	GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error)
	SetPaid(ctx context.Context, tgID int64, paid bool) error
	Count(ctx context.Context) (int, error)
	CountPaid(ctx context.Context) (int, error)
	CountInactivePaidSince(ctx context.Context, since time.Time) (int, error)
}

type userUC struct {
	users repository.UserRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *userUC {
	return &userUC{
		users: users,
		tm:    tm,
		log:   logger,
	}
}

// RegisterOrFetch finds the user by Telegram ID, updating the username and
// last-active stamp, or creates a fresh unpaid record. Find and save run in
// one serializable transaction so concurrent /start invocations cannot race.
func (u *userUC) RegisterOrFetch(ctx context.Context, tgID int64, username string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.RegisterOrFetch")()

	var user *model.User
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		usr, err := u.users.FindByTelegramID(ctx, tx, tgID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if usr != nil {
			if username != "" && usr.Username != username {
				usr.Username = username
			}
			usr.Touch()
			if err := u.users.Save(ctx, tx, usr); err != nil {
				u.log.Error().Err(err).Int64("tg_id", tgID).Msg("failed to update user")
				return err
			}
			user = usr
			return nil
		}

		nu, err := model.NewUser("", tgID, username)
		if err != nil {
			return err
		}
		if err := u.users.Save(ctx, tx, nu); err != nil {
			return err
		}
		user = nu
		return nil
	})

	return user, err
}

func (u *userUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.GetByTelegramID")()
	return u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
}

// SetPaid flips the access flag; invoked from the admin API after an
// out-of-band payment is confirmed.
func (u *userUC) SetPaid(ctx context.Context, tgID int64, paid bool) error {
	defer logging.TraceDuration(u.log, "UserUC.SetPaid")()
	if err := u.users.SetPaid(ctx, repository.NoTX, tgID, paid); err != nil {
		return err
	}
	u.log.Info().Int64("tg_id", tgID).Bool("paid", paid).Msg("paid flag updated")
	return nil
}

func (u *userUC) Count(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "UserUC.Count")()
	return u.users.CountUsers(ctx, repository.NoTX)
}

func (u *userUC) CountPaid(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "UserUC.CountPaid")()
	return u.users.CountPaidUsers(ctx, repository.NoTX)
}

func (u *userUC) CountInactivePaidSince(ctx context.Context, since time.Time) (int, error) {
	defer logging.TraceDuration(u.log, "UserUC.CountInactivePaidSince")()
	return u.users.CountInactivePaidUsers(ctx, repository.NoTX, since)
}
