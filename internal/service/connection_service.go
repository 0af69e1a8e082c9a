package service

import (
	"context"

	"github.com/srujan5570/Communications-App/internal/audit"
	"github.com/srujan5570/Communications-App/internal/auth"
	"github.com/srujan5570/Communications-App/internal/domain"
	"github.com/srujan5570/Communications-App/internal/metrics"
	"github.com/srujan5570/Communications-App/internal/presence"
	"github.com/srujan5570/Communications-App/pkg/log"
)

type connectionService struct {
	verifier  *auth.Verifier
	directory *presence.Directory
	broadcast bool
}

// NewConnectionService creates a new ConnectionService. When broadcast is
// set, other users are told when someone comes online or goes offline.
func NewConnectionService(v *auth.Verifier, dir *presence.Directory, broadcast bool) ConnectionService {
	return &connectionService{
		verifier:  v,
		directory: dir,
		broadcast: broadcast,
	}
}

func (s *connectionService) Authenticate(ctx context.Context, creds auth.Credentials) (string, error) {
	userID, err := s.verifier.Verify(creds)
	if err != nil {
		reason := auth.Reason(err)
		metrics.HandshakeFailures.WithLabelValues(reason).Inc()
		audit.LogWithDetail(ctx, audit.ActionAuthFailed, "", reason, "connection rejected")
		return "", err
	}
	audit.Log(ctx, audit.ActionAuth, userID, "connection authenticated")
	return userID, nil
}

func (s *connectionService) HandleRegister(ctx context.Context, c presence.Conn) error {
	userID := c.UserID()

	prev := s.directory.Register(userID, c)
	metrics.RegisteredUsers.Set(float64(s.directory.Len()))

	if prev != nil {
		metrics.SessionsReplaced.Inc()
		audit.LogWithDetail(ctx, audit.ActionSessionReplaced, userID, prev.ID(), "previous connection replaced")
		prev.SendMessage(&domain.SessionReplacedMessage{Type: domain.MsgTypeSessionReplaced})
		prev.Close()
		return nil
	}

	s.announce(ctx, domain.MsgTypeUserOnline, userID, c)
	return nil
}

func (s *connectionService) HandleDisconnect(ctx context.Context, c presence.Conn) error {
	userID := c.UserID()
	if userID == "" {
		return nil
	}

	removed := s.directory.Unregister(userID, c)
	metrics.RegisteredUsers.Set(float64(s.directory.Len()))
	audit.Log(ctx, audit.ActionDisconnect, userID, "connection closed")

	if removed {
		s.announce(ctx, domain.MsgTypeUserOffline, userID, c)
	}
	return nil
}

func (s *connectionService) IsOnline(userID string) bool {
	return s.directory.IsOnline(userID)
}

func (s *connectionService) announce(ctx context.Context, kind, userID string, self presence.Conn) {
	if !s.broadcast {
		return
	}
	l := log.Ctx(ctx)
	msg := &domain.PresenceMessage{Type: kind, UserID: userID}
	for _, other := range s.directory.Snapshot() {
		if other == self {
			continue
		}
		if err := other.SendMessage(msg); err != nil {
			l.Debug().Err(err).Str(log.FieldConnID, other.ID()).Str(log.FieldEvent, kind).Msg("presence notification not delivered")
		}
	}
}
