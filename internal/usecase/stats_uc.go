package usecase

import (
	"context"

	"telegram-course-bot/internal/domain/model"
	"telegram-course-bot/internal/domain/ports/repository"
	"telegram-course-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// Stats is the admin-facing summary of the course funnel.
type Stats struct {
	TotalUsers     int         `json:"total_users"`
	PaidUsers      int         `json:"paid_users"`
	CompletedByDay map[int]int `json:"completed_by_day"`
}

type StatsUseCase interface {
	Summary(ctx context.Context) (*Stats, error)
}

type statsUC struct {
	users    repository.UserRepository
	progress repository.ProgressRepository
	log      *zerolog.Logger
}

func NewStatsUseCase(users repository.UserRepository, progress repository.ProgressRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{users: users, progress: progress, log: logger}
}

func (s *statsUC) Summary(ctx context.Context) (*Stats, error) {
	defer logging.TraceDuration(s.log, "StatsUC.Summary")()

	total, err := s.users.CountUsers(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	paid, err := s.users.CountPaidUsers(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}

	byDay := make(map[int]int, model.MaxLessonDay)
	for day := 1; day <= model.MaxLessonDay; day++ {
		n, err := s.progress.CountCompletedDay(ctx, repository.NoTX, day)
		if err != nil {
			return nil, err
		}
		byDay[day] = n
	}

	return &Stats{TotalUsers: total, PaidUsers: paid, CompletedByDay: byDay}, nil
}
