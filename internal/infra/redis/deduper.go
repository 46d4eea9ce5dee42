package redis

import (
	"context"
	"fmt"
	"time"
)

// Deduper drops repeated webhook deliveries of the same Telegram message.
// Telegram retries webhook pushes until acknowledged, so updates arrive
// at-least-once; keying on (chat_id, message_id) with a TTL gives a bounded,
// externally owned cache instead of process-lifetime state.
type Deduper struct {
	client RedisClient
	ttl    time.Duration
}

func NewDeduper(client RedisClient, ttl time.Duration) *Deduper {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Deduper{client: client, ttl: ttl}
}

// FirstSeen claims the (chatID, messageID) pair. It returns true exactly once
// per pair within the TTL window; later calls report a duplicate.
func (d *Deduper) FirstSeen(ctx context.Context, chatID int64, messageID int) (bool, error) {
	key := fmt.Sprintf("dedupe:%d:%d", chatID, messageID)
	return d.client.SetNX(ctx, key, 1, d.ttl)
}
