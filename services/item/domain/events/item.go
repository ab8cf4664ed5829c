package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics published by the item repository through the outbox.
const (
	TopicItemCreated = "item.created"
	TopicItemUpdated = "item.updated"
	TopicItemDeleted = "item.deleted"
)

// Topics lists every item topic; the worker subscribes to all of them.
var Topics = []string{TopicItemCreated, TopicItemUpdated, TopicItemDeleted}

// ItemCreatedEvent is published after a new Item is persisted.
type ItemCreatedEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	ItemID     int64     `json:"item_id"`
	Text       string    `json:"text"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ItemUpdatedEvent is published after an Item's text or completed flag changes.
// It carries the full post-update state.
type ItemUpdatedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ItemID     int64     `json:"item_id"`
	Text       string    `json:"text"`
	Completed  bool      `json:"completed"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ItemDeletedEvent is published after an Item is removed.
type ItemDeletedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ItemID     int64     `json:"item_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
