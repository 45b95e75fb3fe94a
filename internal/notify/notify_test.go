package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipChangedEnqueuesEvent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	n := New(client, "mail_queue", nil)
	n.MembershipChanged("member_added", 7, "organization", 3)

	// Delivery happens on a background goroutine
	require.Eventually(t, func() bool {
		return mr.Exists("mail_queue")
	}, time.Second, 10*time.Millisecond)

	payload, err := mr.Lpop("mail_queue")
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal([]byte(payload), &event))
	assert.Equal(t, "member_added", event.Change)
	assert.Equal(t, uint(7), event.UserID)
	assert.Equal(t, "organization", event.EntityKind)
	assert.Equal(t, uint(3), event.EntityID)
	assert.False(t, event.OccurredAt.IsZero())
}

func TestMembershipChangedOrdering(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	n := New(client, "mail_queue", nil)
	n.MembershipChanged("member_added", 1, "chain", 1)
	n.MembershipChanged("member_removed", 1, "chain", 1)

	require.Eventually(t, func() bool {
		items, err := mr.List("mail_queue")
		return err == nil && len(items) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestNilClientDropsEvents(t *testing.T) {
	n := New(nil, "mail_queue", nil)

	// Must not panic or block
	n.MembershipChanged("author_added", 1, "organization", 1)
}

func TestBrokerDownIsSwallowed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	n := New(client, "mail_queue", nil)
	n.MembershipChanged("member_added", 1, "restaurant", 1)

	// Give the goroutine a moment; the failure must stay internal
	time.Sleep(50 * time.Millisecond)
}
