package service

import (
	"context"
	"errors"

	"github.com/srujan5570/Communications-App/internal/auth"
	"github.com/srujan5570/Communications-App/internal/domain"
	"github.com/srujan5570/Communications-App/internal/presence"
)

var (
	ErrEmptyContent     = errors.New("message content is empty")
	ErrContentTooLong   = errors.New("message content is too long")
	ErrMissingReceiver  = errors.New("receiverId is required")
	ErrMissingTarget    = errors.New("targetUserId is required")
	ErrInvalidCallMode  = errors.New("mode must be voice or video")
	ErrNotParticipant   = errors.New("user is not a participant of this message")
	ErrUnknownEventKind = errors.New("unknown signaling event")
)

// MessagingService persists chat messages and relays them between users.
type MessagingService interface {
	// HandleSend persists a message from c and forwards it to the receiver
	// if they are online. Failures are reported to c as message_error.
	HandleSend(ctx context.Context, c presence.Conn, receiverID, content string) error

	// HandleMarkRead marks a message read on behalf of its receiver and
	// notifies the original sender.
	HandleMarkRead(ctx context.Context, c presence.Conn, messageID string) error

	// GetConversation returns the history between userID and peerID.
	GetConversation(ctx context.Context, userID, peerID string) ([]domain.Message, error)

	// UpdateStatus applies a status change requested over REST by userID.
	UpdateStatus(ctx context.Context, userID, messageID string, status domain.MessageStatus) (*domain.Message, error)
}

// SignalingService forwards call signaling between two online users.
type SignalingService interface {
	// HandleSignal forwards msg to its target. An offline target is not an error.
	HandleSignal(ctx context.Context, c presence.Conn, msg *domain.SignalMessage) error
}

// ConnectionService owns the authenticated side of a connection's lifecycle.
type ConnectionService interface {
	// Authenticate verifies the credentials presented by a connecting client.
	Authenticate(ctx context.Context, creds auth.Credentials) (string, error)

	// HandleRegister makes c the live connection of its user, closing any
	// connection it replaces.
	HandleRegister(ctx context.Context, c presence.Conn) error

	// HandleDisconnect removes c from the directory if it is still current.
	HandleDisconnect(ctx context.Context, c presence.Conn) error

	// IsOnline reports whether userID has a live connection.
	IsOnline(userID string) bool
}
