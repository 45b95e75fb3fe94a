// Package notify pushes membership-change events to an external task queue.
// Delivery is fire-and-forget: the core never waits on or observes the
// consumer, and a missing broker only costs a log line.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Event describes a membership or authorship change for the consumer side
type Event struct {
	Change     string    `json:"change"` // "member_added", "author_removed", ...
	UserID     uint      `json:"user_id"`
	EntityKind string    `json:"entity_kind"`
	EntityID   uint      `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier enqueues events onto a redis list consumed by the mailer worker
type Notifier struct {
	client *redis.Client
	queue  string
	log    *zap.Logger
}

// New creates a notifier. A nil client disables delivery; events are logged
// and dropped, which keeps the core independent of the broker.
func New(client *redis.Client, queue string, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{client: client, queue: queue, log: log}
}

// MembershipChanged enqueues a membership-change event without blocking the
// caller. Failures are logged, never returned.
func (n *Notifier) MembershipChanged(change string, userID uint, entityKind string, entityID uint) {
	event := Event{
		Change:     change,
		UserID:     userID,
		EntityKind: entityKind,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}

	if n.client == nil {
		n.log.Debug("notification broker disabled, dropping event",
			zap.String("change", change),
			zap.Uint("user_id", userID))
		return
	}

	go n.push(event)
}

func (n *Notifier) push(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.log.Error("Failed to marshal notification event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := n.client.LPush(ctx, n.queue, payload).Err(); err != nil {
		n.log.Error("Failed to enqueue notification event",
			zap.Error(err),
			zap.String("queue", n.queue))
		return
	}

	n.log.Debug("Notification event enqueued",
		zap.String("change", event.Change),
		zap.Uint("user_id", event.UserID),
		zap.String("entity_kind", event.EntityKind),
		zap.Uint("entity_id", event.EntityID))
}
