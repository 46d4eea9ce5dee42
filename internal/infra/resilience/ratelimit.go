// Package resilience wraps the outbound Telegram send path with the
// protections the API effectively requires: token-bucket pacing (global and
// per chat) and a circuit breaker that sheds load during API outages.
package resilience

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/time/rate"
)

// SendLimiter provides global and per-chat rate limiting for outbound sends.
type SendLimiter struct {
	global   *rate.Limiter
	perChat  map[string]*rate.Limiter
	mu       sync.RWMutex
	keyRPS   float64
	keyBurst int
}

// SendLimiterConfig holds rate limiter configuration.
type SendLimiterConfig struct {
	GlobalRPS   float64
	GlobalBurst int
	ChatRPS     float64
	ChatBurst   int
}

// DefaultSendLimiterConfig returns sensible defaults for Telegram:
// ~30 msg/s globally, ~1 msg/s per chat.
func DefaultSendLimiterConfig() SendLimiterConfig {
	return SendLimiterConfig{
		GlobalRPS:   30,
		GlobalBurst: 10,
		ChatRPS:     1,
		ChatBurst:   3,
	}
}

func NewSendLimiter(cfg SendLimiterConfig) *SendLimiter {
	return &SendLimiter{
		global:   rate.NewLimiter(rate.Limit(cfg.GlobalRPS), cfg.GlobalBurst),
		perChat:  make(map[string]*rate.Limiter),
		keyRPS:   cfg.ChatRPS,
		keyBurst: cfg.ChatBurst,
	}
}

// Wait blocks until both the global and the per-chat limit allow a send.
func (l *SendLimiter) Wait(ctx context.Context, chatID int64) error {
	if err := l.global.Wait(ctx); err != nil {
		return err
	}
	return l.getOrCreate(strconv.FormatInt(chatID, 10)).Wait(ctx)
}

func (l *SendLimiter) getOrCreate(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.perChat[key]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, ok = l.perChat[key]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(rate.Limit(l.keyRPS), l.keyBurst)
	l.perChat[key] = limiter
	return limiter
}
