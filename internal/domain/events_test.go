package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewLifecycleEvent(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := &Message{ID: "m1", SenderID: "alice", ReceiverID: "bob", Status: StatusDelivered, UpdatedAt: at}

	ev := NewLifecycleEvent(EventMessageDelivered, m)
	assert.Equal(t, EventMessageDelivered, ev.Event)
	assert.Equal(t, "m1", ev.MessageID)
	assert.Equal(t, "alice", ev.SenderID)
	assert.Equal(t, "bob", ev.ReceiverID)
	assert.Equal(t, StatusDelivered, ev.Status)
	assert.Equal(t, at, ev.OccurredAt)
}
