package model

import (
	"time"

	"telegram-course-bot/internal/domain"

	"github.com/google/uuid"
)

// User is a domain entity representing a Telegram user of the course bot.
// Paid is the single canonical access flag; the legacy text encoding of the
// column ('t'/'f') is coerced once at the Postgres adapter, never here.
type User struct {
	ID           string
	TelegramID   int64
	Username     string
	Paid         bool
	RegisteredAt time.Time
	LastActiveAt time.Time
	IsAdmin      bool
}

func NewUser(id string, tgID int64, username string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	u := &User{
		ID:           id,
		TelegramID:   tgID,
		Username:     username,
		Paid:         false,
		RegisteredAt: time.Now(),
		LastActiveAt: time.Now(),
	}
	return u, nil
}

func (u *User) Touch() { u.LastActiveAt = time.Now() }

// HasAccess reports whether gated lesson content may be delivered to this user.
func (u *User) HasAccess() bool { return u != nil && u.Paid }
