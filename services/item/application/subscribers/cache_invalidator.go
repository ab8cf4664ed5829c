// Package subscribers holds the worker-side handlers for item domain events.
package subscribers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/shoplist/pkg/logger"
)

// Invalidator drops the cached item list. *cache.ItemListCache satisfies it.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// eventEnvelope holds the fields shared by every item event payload.
type eventEnvelope struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ItemID     int64     `json:"item_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CacheInvalidator consumes item events and clears the list cache so readers
// on every api instance see the committed write. A nil Invalidator only logs.
type CacheInvalidator struct {
	cache Invalidator
	log   logger.Logger
}

// NewCacheInvalidator returns a CacheInvalidator. Pass a nil cache when Redis is disabled.
func NewCacheInvalidator(cache Invalidator, log logger.Logger) *CacheInvalidator {
	return &CacheInvalidator{cache: cache, log: log}
}

// Handler returns the event handler for topic.
// Handlers must be idempotent; EventBus retries up to 3x on failure.
// Undecodable payloads are logged and acknowledged since a retry cannot fix them.
func (c *CacheInvalidator) Handler(topic string) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt eventEnvelope
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			c.log.ErrorContext(ctx, "dropping undecodable item event",
				"topic", topic, "message_id", msg.UUID, "error", err)
			return nil
		}

		if c.cache != nil {
			if err := c.cache.Invalidate(ctx); err != nil {
				return fmt.Errorf("invalidate list cache for %s: %w", topic, err)
			}
		}

		c.log.InfoContext(ctx, "item event processed",
			"topic", topic,
			"event_id", evt.EventID,
			"item_id", evt.ItemID,
			"lag", time.Since(evt.OccurredAt).Round(time.Millisecond),
		)
		return nil
	}
}
