package service

import (
	"context"
	"strings"

	"github.com/srujan5570/Communications-App/internal/audit"
	"github.com/srujan5570/Communications-App/internal/domain"
	"github.com/srujan5570/Communications-App/internal/metrics"
	"github.com/srujan5570/Communications-App/internal/presence"
	"github.com/srujan5570/Communications-App/pkg/log"
)

// forwardFunc builds the outbound event for a signal sent by fromID.
type forwardFunc func(fromID string, m *domain.SignalMessage) interface{}

var forwards = map[string]forwardFunc{
	domain.MsgTypeCallRequest: func(from string, m *domain.SignalMessage) interface{} {
		return &domain.IncomingCallMessage{Type: domain.MsgTypeIncomingCall, CallerID: from, Mode: m.Mode}
	},
	domain.MsgTypeCallAccepted: func(from string, _ *domain.SignalMessage) interface{} {
		return &domain.CallAcceptedMessage{Type: domain.MsgTypeCallAccepted, AccepterID: from}
	},
	domain.MsgTypeCallRejected: func(from string, _ *domain.SignalMessage) interface{} {
		return &domain.CallRejectedMessage{Type: domain.MsgTypeCallRejected, RejecterID: from}
	},
	domain.MsgTypeCallEnded: func(from string, _ *domain.SignalMessage) interface{} {
		return &domain.CallEndedMessage{Type: domain.MsgTypeCallEnded, EnderID: from}
	},
	domain.MsgTypeWebRTCOffer: func(from string, m *domain.SignalMessage) interface{} {
		return &domain.OfferMessage{Type: domain.MsgTypeWebRTCOffer, CallerID: from, Offer: m.Offer}
	},
	domain.MsgTypeWebRTCAnswer: func(from string, m *domain.SignalMessage) interface{} {
		return &domain.AnswerMessage{Type: domain.MsgTypeWebRTCAnswer, AnswererID: from, Answer: m.Answer}
	},
	domain.MsgTypeICECandidate: func(from string, m *domain.SignalMessage) interface{} {
		return &domain.CandidateMessage{Type: domain.MsgTypeICECandidate, SenderID: from, Candidate: m.Candidate}
	},
}

type signalingService struct {
	directory *presence.Directory
}

// NewSignalingService creates a new SignalingService.
func NewSignalingService(dir *presence.Directory) SignalingService {
	return &signalingService{directory: dir}
}

// HandleSignal forwards msg without tracking any call state. A stray
// accept with no prior request is still forwarded.
func (s *signalingService) HandleSignal(ctx context.Context, c presence.Conn, msg *domain.SignalMessage) error {
	build, ok := forwards[msg.Type]
	if !ok {
		return ErrUnknownEventKind
	}

	if err := validateSignal(msg); err != nil {
		metrics.SignalingEvents.WithLabelValues(msg.Type, metrics.OutcomeInvalid).Inc()
		c.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, err.Error()))
		return err
	}

	fromID := c.UserID()
	target, ok := s.directory.Resolve(msg.TargetUserID)
	if !ok {
		// The caller's client times out on its own.
		metrics.SignalingEvents.WithLabelValues(msg.Type, metrics.OutcomeDropped).Inc()
		l := log.Ctx(ctx)
		l.Debug().Str(log.FieldEvent, msg.Type).Str(log.FieldTargetID, msg.TargetUserID).Msg("signal target offline, dropped")
		return nil
	}

	if err := target.SendMessage(build(fromID, msg)); err != nil {
		metrics.SignalingEvents.WithLabelValues(msg.Type, metrics.OutcomeDropped).Inc()
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldEvent, msg.Type).Str(log.FieldTargetID, msg.TargetUserID).Msg("failed to forward signal")
		return nil
	}

	metrics.SignalingEvents.WithLabelValues(msg.Type, metrics.OutcomeForwarded).Inc()
	if isCallControl(msg.Type) {
		audit.LogTarget(ctx, audit.ActionCallEvent, fromID, msg.TargetUserID, msg.Type, "call event forwarded")
	}
	return nil
}

func validateSignal(msg *domain.SignalMessage) error {
	if strings.TrimSpace(msg.TargetUserID) == "" {
		return ErrMissingTarget
	}
	if msg.Type == domain.MsgTypeCallRequest && !msg.Mode.Valid() {
		return ErrInvalidCallMode
	}
	return nil
}

// isCallControl excludes the high-volume media negotiation events from audit.
func isCallControl(kind string) bool {
	switch kind {
	case domain.MsgTypeCallRequest, domain.MsgTypeCallAccepted, domain.MsgTypeCallRejected, domain.MsgTypeCallEnded:
		return true
	}
	return false
}
