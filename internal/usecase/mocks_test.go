//go:build !integration

package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-course-bot/internal/content"
	"telegram-course-bot/internal/domain"
	"telegram-course-bot/internal/domain/model"
	"telegram-course-bot/internal/domain/ports/adapter"
	"telegram-course-bot/internal/domain/ports/repository"
	"telegram-course-bot/internal/infra/i18n"
	"telegram-course-bot/internal/splitter"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memUserRepo is a small in-memory implementation used by unit tests.
type memUserRepo struct {
	mu      sync.RWMutex
	store   map[int64]*model.User // map by TelegramID
	saveErr error
	findErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[int64]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.TelegramID] = &cp
	return nil
}

func (m *memUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) SetPaid(ctx context.Context, tx repository.Tx, tgID int64, paid bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[tgID]
	if !ok {
		return domain.ErrNotFound
	}
	u.Paid = paid
	return nil
}

func (m *memUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

func (m *memUserRepo) CountPaidUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, u := range m.store {
		if u.Paid {
			n++
		}
	}
	return n, nil
}

func (m *memUserRepo) CountInactivePaidUsers(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, u := range m.store {
		if u.Paid && u.LastActiveAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// memProgressRepo keeps progress rows keyed by Telegram ID.
type memProgressRepo struct {
	mu      sync.RWMutex
	store   map[int64]*model.Progress
	markErr error
	marks   int
}

func newMemProgressRepo() *memProgressRepo {
	return &memProgressRepo{store: make(map[int64]*model.Progress)}
}

func (m *memProgressRepo) MarkDay(ctx context.Context, tx repository.Tx, tgID int64, day int, at time.Time) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[tgID]
	if !ok {
		np, err := model.NewProgress(tgID)
		if err != nil {
			return err
		}
		p = np
		m.store[tgID] = p
	}
	if err := p.MarkDay(day, at); err != nil {
		return err
	}
	m.marks++
	return nil
}

func (m *memProgressRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.Progress, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProgressRepo) CountCompletedDay(ctx context.Context, tx repository.Tx, day int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, p := range m.store {
		if p.Completed(day) {
			n++
		}
	}
	return n, nil
}

// memTxManager runs the function directly; there is no real transaction.
type memTxManager struct{}

func (memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

// recTransport records outbound messages and can fail on demand.
type recTransport struct {
	mu      sync.Mutex
	sent    []string
	chatIDs []int64
	sendErr error
}

func (r *recTransport) SendMessage(ctx context.Context, chatID int64, text string, opts adapter.SendOptions) error {
	if r.sendErr != nil {
		return r.sendErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
	r.chatIDs = append(r.chatIDs, chatID)
	return nil
}

func (r *recTransport) Sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

const testLocale = `paywall: "locked day %d"
lesson_preparing: "day %d not ready (%d)"
part_indicator: "part %d/%d"
part_send_failed: "part %d/%d failed"
`

func newTestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	fsys := fstest.MapFS{"locales/en.yaml": &fstest.MapFile{Data: []byte(testLocale)}}
	tr, err := i18n.NewTranslator(fsys, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	return tr
}

func newTestCatalog(t *testing.T, lessons map[int]string) *content.Catalog {
	t.Helper()
	fsys := fstest.MapFS{}
	for day, text := range lessons {
		name := fmt.Sprintf("lessons/day%d.txt", day)
		fsys[name] = &fstest.MapFile{Data: []byte(text)}
	}
	cat, err := content.NewCatalog(fsys, model.MaxLessonDay)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func newTestSender() *splitter.LongSender {
	return splitter.NewLongSender(100, 0, splitter.Labels{}, nopLogger())
}
