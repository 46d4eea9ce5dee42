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

var _ repository.ProgressRepository = (*PostgresProgressRepo)(nil)

// PostgresProgressRepo persists lesson progress against the original course
// schema: one row per user with day1_completed..day7_completed flag columns.
type PostgresProgressRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresProgressRepo(pool *pgxpool.Pool) *PostgresProgressRepo {
	return &PostgresProgressRepo{pool: pool}
}

// MarkDay upserts the progress row. current_day never moves backwards and the
// day column name is derived from a bounds-checked integer, never user input.
func (r *PostgresProgressRepo) MarkDay(ctx context.Context, tx repository.Tx, tgID int64, day int, at time.Time) error {
	if day < 1 || day > model.MaxLessonDay {
		return domain.ErrInvalidArgument
	}
	col := fmt.Sprintf("day%d_completed", day)
	q := fmt.Sprintf(`
INSERT INTO progress (user_id, %[1]s, current_day, last_access)
VALUES ($1, TRUE, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET
  %[1]s = TRUE,
  current_day = GREATEST(progress.current_day, $2),
  last_access = $3;
`, col)

	ex, err := pickExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, q, tgID, day, at); err != nil {
		return fmt.Errorf("mark day %d: %w", day, err)
	}
	return nil
}

func (r *PostgresProgressRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.Progress, error) {
	const q = `
SELECT user_id,
       day1_completed, day2_completed, day3_completed, day4_completed,
       day5_completed, day6_completed, day7_completed,
       current_day, last_access
  FROM progress WHERE user_id=$1;
`
	row, err := pickRow(ctx, r.pool, tx, q, tgID)
	if err != nil {
		return nil, err
	}

	var p model.Progress
	// day columns are nullable in legacy rows, so scan through pointers
	days := make([]*bool, model.MaxLessonDay)
	dest := []interface{}{&p.UserTelegramID}
	for i := range days {
		dest = append(dest, &days[i])
	}
	var currentDay *int
	var lastAccess *time.Time
	dest = append(dest, &currentDay, &lastAccess)

	if err := row.Scan(dest...); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.DaysCompleted = make(map[int]bool, model.MaxLessonDay)
	for i, done := range days {
		if done != nil && *done {
			p.DaysCompleted[i+1] = true
		}
	}
	if currentDay != nil {
		p.CurrentDay = *currentDay
	}
	if lastAccess != nil {
		p.LastAccessAt = *lastAccess
	}
	return &p, nil
}

func (r *PostgresProgressRepo) CountCompletedDay(ctx context.Context, tx repository.Tx, day int) (int, error) {
	if day < 1 || day > model.MaxLessonDay {
		return 0, domain.ErrInvalidArgument
	}
	q := fmt.Sprintf(`SELECT COUNT(*) FROM progress WHERE day%d_completed;`, day)
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count completed day %d: %w", day, err)
	}
	return n, nil
}
