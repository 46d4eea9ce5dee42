package model

import (
	"time"

	"telegram-course-bot/internal/domain"
)

// MaxLessonDay is the number of course days the schema reserves columns for.
const MaxLessonDay = 7

// Progress tracks which lesson days a user has completed. One record per
// Telegram user, created on first successful lesson delivery.
type Progress struct {
	UserTelegramID int64
	DaysCompleted  map[int]bool
	CurrentDay     int
	LastAccessAt   time.Time
}

func NewProgress(tgID int64) (*Progress, error) {
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Progress{
		UserTelegramID: tgID,
		DaysCompleted:  make(map[int]bool),
	}, nil
}

// MarkDay records completion of a lesson day: the day flag is set, the current
// day pointer only ever moves forward, and the last access time is stamped.
func (p *Progress) MarkDay(day int, at time.Time) error {
	if day < 1 || day > MaxLessonDay {
		return domain.ErrInvalidArgument
	}
	if p.DaysCompleted == nil {
		p.DaysCompleted = make(map[int]bool)
	}
	p.DaysCompleted[day] = true
	if day > p.CurrentDay {
		p.CurrentDay = day
	}
	p.LastAccessAt = at
	return nil
}

// Completed reports whether the given day has been finished.
func (p *Progress) Completed(day int) bool {
	return p != nil && p.DaysCompleted[day]
}

// CompletedCount returns how many days have been finished.
func (p *Progress) CompletedCount() int {
	n := 0
	for _, done := range p.DaysCompleted {
		if done {
			n++
		}
	}
	return n
}
