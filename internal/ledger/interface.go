package ledger

import (
	"context"
	"errors"

	"github.com/srujan5570/Communications-App/internal/domain"
)

var (
	ErrNotFound      = errors.New("message not found")
	ErrPersistence   = errors.New("message store unavailable")
	ErrInvalidStatus = errors.New("invalid message status")
)

// Ledger is the durable store of chat messages.
type Ledger interface {
	// Append stores a new message with status sent.
	Append(ctx context.Context, senderID, receiverID, content string) (*domain.Message, error)
	// UpdateStatus moves a message forward to status. A request that would
	// move it backwards leaves the record unchanged and returns it.
	UpdateStatus(ctx context.Context, messageID string, status domain.MessageStatus) (*domain.Message, error)
	// FindConversation returns every message between the two users, oldest first.
	FindConversation(ctx context.Context, userA, userB string) ([]domain.Message, error)
	FindByID(ctx context.Context, messageID string) (*domain.Message, error)
	Close() error
}
