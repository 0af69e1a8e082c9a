package domain

import "time"

// Message lifecycle event names published to the event stream.
const (
	EventMessageCreated   = "message_created"
	EventMessageDelivered = "message_delivered"
	EventMessageRead      = "message_read"
)

// MessageEvent records one status change of a message. Content is not
// carried; consumers that need it read the ledger.
type MessageEvent struct {
	Event      string        `json:"event"`
	MessageID  string        `json:"message_id"`
	SenderID   string        `json:"sender_id"`
	ReceiverID string        `json:"receiver_id"`
	Status     MessageStatus `json:"status"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// NewLifecycleEvent builds a lifecycle event from the current record.
func NewLifecycleEvent(event string, m *Message) *MessageEvent {
	return &MessageEvent{
		Event:      event,
		MessageID:  m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Status:     m.Status,
		OccurredAt: m.UpdatedAt,
	}
}
