package domain

import "time"

// MessageStatus is the delivery state of a chat message.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// rank orders statuses; transitions only ever move to a higher rank.
func (s MessageStatus) rank() int {
	switch s {
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusRead:
		return 3
	default:
		return 0
	}
}

// Valid reports whether s is one of the known statuses.
func (s MessageStatus) Valid() bool {
	return s.rank() > 0
}

// Advances reports whether moving from s to next is a forward transition.
func (s MessageStatus) Advances(next MessageStatus) bool {
	return next.Valid() && next.rank() > s.rank()
}

// Below returns the statuses that next may be applied over.
func Below(next MessageStatus) []MessageStatus {
	var out []MessageStatus
	for _, s := range []MessageStatus{StatusSent, StatusDelivered, StatusRead} {
		if s.rank() < next.rank() {
			out = append(out, s)
		}
	}
	return out
}

// Message is a persisted one-to-one chat message. The JSON layout matches
// the records the mobile client already consumes.
type Message struct {
	ID         string        `json:"_id"`
	SenderID   string        `json:"sender"`
	ReceiverID string        `json:"receiver"`
	Content    string        `json:"content"`
	Status     MessageStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// Involves reports whether userID is the sender or receiver.
func (m *Message) Involves(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// ConversationKey returns an order-independent key for the pair of users.
func ConversationKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}
