package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/srujan5570/Communications-App/internal/audit"
	"github.com/srujan5570/Communications-App/internal/domain"
	"github.com/srujan5570/Communications-App/internal/kafka"
	"github.com/srujan5570/Communications-App/internal/ledger"
	"github.com/srujan5570/Communications-App/internal/metrics"
	"github.com/srujan5570/Communications-App/internal/presence"
	"github.com/srujan5570/Communications-App/pkg/log"
)

const sendFailed = "Failed to send message"

type messagingService struct {
	ledger           ledger.Ledger
	directory        *presence.Directory
	producer         kafka.EventProducer
	maxContentLength int
}

// NewMessagingService creates a new MessagingService. producer may be nil.
func NewMessagingService(
	l ledger.Ledger,
	dir *presence.Directory,
	producer kafka.EventProducer,
	maxContentLength int,
) MessagingService {
	return &messagingService{
		ledger:           l,
		directory:        dir,
		producer:         producer,
		maxContentLength: maxContentLength,
	}
}

func (s *messagingService) HandleSend(ctx context.Context, c presence.Conn, receiverID, content string) error {
	l := log.Ctx(ctx)
	senderID := c.UserID()

	if err := s.validate(receiverID, content); err != nil {
		metrics.MessagesProcessed.WithLabelValues(metrics.OutcomeRejected).Inc()
		c.SendMessage(domain.NewMessageErrorEvent(sendFailed, err.Error()))
		return err
	}

	msg, err := s.ledger.Append(ctx, senderID, receiverID, content)
	if err != nil {
		metrics.MessagesProcessed.WithLabelValues(metrics.OutcomeFailed).Inc()
		c.SendMessage(domain.NewMessageErrorEvent(sendFailed, err.Error()))
		return err
	}
	s.publish(ctx, domain.EventMessageCreated, msg)

	// Resolve only after the write so a receiver who connected meanwhile
	// still gets the message.
	if target, ok := s.directory.Resolve(receiverID); ok {
		pushErr := target.SendMessage(&domain.NewMessageEvent{
			Type:    domain.MsgTypeNewMessage,
			Message: *msg,
			Sender:  domain.PeerRef{ID: msg.SenderID},
		})
		if pushErr != nil {
			l.Warn().Err(pushErr).Str(log.FieldMessageID, msg.ID).Msg("failed to push message to receiver")
		} else if delivered, err := s.ledger.UpdateStatus(ctx, msg.ID, domain.StatusDelivered); err != nil {
			l.Error().Err(err).Str(log.FieldMessageID, msg.ID).Msg("failed to mark message delivered")
		} else {
			msg = delivered
			s.publish(ctx, domain.EventMessageDelivered, msg)
		}
	}

	if msg.Status == domain.StatusDelivered {
		metrics.MessagesProcessed.WithLabelValues(metrics.OutcomeDelivered).Inc()
	} else {
		metrics.MessagesProcessed.WithLabelValues(metrics.OutcomeStored).Inc()
	}
	audit.LogTarget(ctx, audit.ActionSendMessage, senderID, receiverID, string(msg.Status), "message sent")

	return c.SendMessage(&domain.MessageSentEvent{
		Type:    domain.MsgTypeMessageSent,
		Message: *msg,
	})
}

func (s *messagingService) validate(receiverID, content string) error {
	if strings.TrimSpace(receiverID) == "" {
		return ErrMissingReceiver
	}
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if s.maxContentLength > 0 && utf8.RuneCountInString(content) > s.maxContentLength {
		return ErrContentTooLong
	}
	return nil
}

func (s *messagingService) HandleMarkRead(ctx context.Context, c presence.Conn, messageID string) error {
	userID := c.UserID()

	existing, err := s.ledger.FindByID(ctx, messageID)
	if err != nil {
		reportStoreFailure(c, err)
		return err
	}
	if existing.ReceiverID != userID {
		c.SendMessage(domain.NewErrorMessage(domain.ErrCodeForbidden, "Only the receiver can mark a message read"))
		return ErrNotParticipant
	}

	msg, err := s.ledger.UpdateStatus(ctx, messageID, domain.StatusRead)
	if err != nil {
		reportStoreFailure(c, err)
		return err
	}
	metrics.MessagesProcessed.WithLabelValues(metrics.OutcomeRead).Inc()
	s.publish(ctx, domain.EventMessageRead, msg)
	audit.LogTarget(ctx, audit.ActionMarkRead, userID, msg.SenderID, msg.ID, "message read")

	s.notifySender(ctx, msg)
	return nil
}

func (s *messagingService) GetConversation(ctx context.Context, userID, peerID string) ([]domain.Message, error) {
	return s.ledger.FindConversation(ctx, userID, peerID)
}

func (s *messagingService) UpdateStatus(ctx context.Context, userID, messageID string, status domain.MessageStatus) (*domain.Message, error) {
	if !status.Valid() {
		return nil, ledger.ErrInvalidStatus
	}

	existing, err := s.ledger.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if !existing.Involves(userID) {
		return nil, ErrNotParticipant
	}

	msg, err := s.ledger.UpdateStatus(ctx, messageID, status)
	if err != nil {
		return nil, err
	}
	audit.LogWithDetail(ctx, audit.ActionStatusUpdate, userID, string(msg.Status), "message status updated")

	if msg.Status == status && existing.Status != status {
		switch status {
		case domain.StatusDelivered:
			s.publish(ctx, domain.EventMessageDelivered, msg)
		case domain.StatusRead:
			s.publish(ctx, domain.EventMessageRead, msg)
		}
		if userID != msg.SenderID {
			s.notifySender(ctx, msg)
		}
	}
	return msg, nil
}

func (s *messagingService) notifySender(ctx context.Context, msg *domain.Message) {
	sender, ok := s.directory.Resolve(msg.SenderID)
	if !ok {
		return
	}
	err := sender.SendMessage(&domain.MessageStatusEvent{
		Type:      domain.MsgTypeMessageStatus,
		MessageID: msg.ID,
		Status:    msg.Status,
	})
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldMessageID, msg.ID).Msg("failed to notify sender of status change")
	}
}

func (s *messagingService) publish(ctx context.Context, event string, msg *domain.Message) {
	if s.producer == nil {
		return
	}
	if err := s.producer.ProduceEvent(ctx, domain.NewLifecycleEvent(event, msg)); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldMessageID, msg.ID).Str(log.FieldEvent, event).Msg("failed to publish message event")
	}
}

// reportStoreFailure tells the client about a ledger outage. Unknown ids
// stay silent.
func reportStoreFailure(c presence.Conn, err error) {
	if errors.Is(err, ledger.ErrPersistence) {
		c.SendMessage(domain.NewErrorMessage(domain.ErrCodeInternalError, "Failed to update message status"))
	}
}
