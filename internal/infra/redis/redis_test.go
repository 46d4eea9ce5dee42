//go:build !integration

package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// memRedis is an in-process stand-in for the client interface. Expiry is
// wall-clock based, which is fine for the short windows used here.
type memRedis struct {
	mu      sync.Mutex
	values  map[string]int64
	expiry  map[string]time.Time
	callErr error
}

func newMemRedis() *memRedis {
	return &memRedis{values: make(map[string]int64), expiry: make(map[string]time.Time)}
}

func (m *memRedis) purge(key string) {
	if exp, ok := m.expiry[key]; ok && time.Now().After(exp) {
		delete(m.values, key)
		delete(m.expiry, key)
	}
}

func (m *memRedis) Ping(ctx context.Context) error { return m.callErr }

func (m *memRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.callErr != nil {
		return m.callErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = 1
	if expiration > 0 {
		m.expiry[key] = time.Now().Add(expiration)
	}
	return nil
}

func (m *memRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if m.callErr != nil {
		return false, m.callErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purge(key)
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = 1
	if expiration > 0 {
		m.expiry[key] = time.Now().Add(expiration)
	}
	return true, nil
}

func (m *memRedis) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("not used")
}

func (m *memRedis) Incr(ctx context.Context, key string) (int64, error) {
	if m.callErr != nil {
		return 0, m.callErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purge(key)
	m.values[key]++
	return m.values[key], nil
}

func (m *memRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	if m.callErr != nil {
		return m.callErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiry[key] = time.Now().Add(expiration)
	return nil
}

func (m *memRedis) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
		delete(m.expiry, k)
	}
	return nil
}

func (m *memRedis) Close() error { return nil }

func TestDeduperFirstSeenOnce(t *testing.T) {
	d := NewDeduper(newMemRedis(), time.Minute)
	ctx := context.Background()

	first, err := d.FirstSeen(ctx, 100, 1)
	if err != nil || !first {
		t.Fatalf("first claim: %v %v", first, err)
	}
	again, err := d.FirstSeen(ctx, 100, 1)
	if err != nil || again {
		t.Fatalf("duplicate claim must report false: %v %v", again, err)
	}
	// A different message id is an independent claim.
	other, err := d.FirstSeen(ctx, 100, 2)
	if err != nil || !other {
		t.Fatalf("distinct message: %v %v", other, err)
	}
}

func TestDeduperWindowExpires(t *testing.T) {
	d := NewDeduper(newMemRedis(), 10*time.Millisecond)
	ctx := context.Background()

	if first, _ := d.FirstSeen(ctx, 100, 1); !first {
		t.Fatalf("initial claim failed")
	}
	time.Sleep(20 * time.Millisecond)
	if first, _ := d.FirstSeen(ctx, 100, 1); !first {
		t.Fatalf("claim should be fresh after the TTL window")
	}
}

func TestDeduperPropagatesBackendError(t *testing.T) {
	m := newMemRedis()
	m.callErr = errors.New("redis gone")
	d := NewDeduper(m, time.Minute)

	if _, err := d.FirstSeen(context.Background(), 100, 1); err == nil {
		t.Fatalf("expected backend error")
	}
}

func TestRateLimiterFixedWindow(t *testing.T) {
	rl := NewRateLimiter(newMemRedis())
	ctx := context.Background()
	key := UserCommandKey(42, "/day1")

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("call %d should pass: %v %v", i+1, ok, err)
		}
	}
	ok, err := rl.Allow(ctx, key, 3, time.Minute)
	if err != nil || ok {
		t.Fatalf("fourth call must be limited: %v %v", ok, err)
	}
	// A different user is not affected.
	ok, err = rl.Allow(ctx, UserCommandKey(43, "/day1"), 3, time.Minute)
	if err != nil || !ok {
		t.Fatalf("other user should pass: %v %v", ok, err)
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl := NewRateLimiter(newMemRedis())
	ctx := context.Background()
	key := UserCommandKey(42, "/help")

	if ok, _ := rl.Allow(ctx, key, 1, 10*time.Millisecond); !ok {
		t.Fatalf("first call should pass")
	}
	if ok, _ := rl.Allow(ctx, key, 1, 10*time.Millisecond); ok {
		t.Fatalf("second call in window must be limited")
	}
	time.Sleep(20 * time.Millisecond)
	if ok, _ := rl.Allow(ctx, key, 1, 10*time.Millisecond); !ok {
		t.Fatalf("call after window should pass")
	}
}
