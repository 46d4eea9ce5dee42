package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-course-bot/internal/domain"
	"telegram-course-bot/internal/domain/model"
	"telegram-course-bot/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

const userColumns = `id, telegram_id, username, is_paid, registered_at, last_active_at, is_admin`

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (id, telegram_id, username, is_paid, registered_at, last_active_at, is_admin)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  telegram_id=$2, username=$3, is_paid=$4, last_active_at=$6, is_admin=$7;
`
	ex, err := pickExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, u.ID, u.TelegramID, u.Username, encodePaidFlag(u.Paid), u.RegisteredAt, u.LastActiveAt, u.IsAdmin)
	return err
}

func (r *PostgresUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+userColumns+` FROM users WHERE telegram_id=$1;`, tgID)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+userColumns+` FROM users WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *PostgresUserRepo) SetPaid(ctx context.Context, tx repository.Tx, tgID int64, paid bool) error {
	ex, err := pickExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `UPDATE users SET is_paid=$2 WHERE telegram_id=$1;`, tgID, encodePaidFlag(paid))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM users;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *PostgresUserRepo) CountPaidUsers(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM users WHERE lower(is_paid) IN ('t','true','1');`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count paid users: %w", err)
	}
	return n, nil
}

func (r *PostgresUserRepo) CountInactivePaidUsers(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	const q = `
SELECT COUNT(*) FROM users
 WHERE lower(is_paid) IN ('t','true','1')
   AND (last_active_at IS NULL OR last_active_at < $1);
`
	row, err := pickRow(ctx, r.pool, tx, q, since)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count inactive paid: %w", err)
	}
	return n, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	var rawPaid *string
	// timestamps are nullable in rows written by the legacy importer
	var registeredAt, lastActiveAt *time.Time
	if err := row.Scan(&u.ID, &u.TelegramID, &u.Username, &rawPaid, &registeredAt, &lastActiveAt, &u.IsAdmin); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	u.Paid = decodePaidFlag(rawPaid)
	if registeredAt != nil {
		u.RegisteredAt = *registeredAt
	}
	if lastActiveAt != nil {
		u.LastActiveAt = *lastActiveAt
	}
	return &u, nil
}
