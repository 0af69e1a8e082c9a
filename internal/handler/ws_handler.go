package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/srujan5570/Communications-App/internal/auth"
	"github.com/srujan5570/Communications-App/internal/domain"
	"github.com/srujan5570/Communications-App/internal/hub"
	"github.com/srujan5570/Communications-App/internal/ledger"
	"github.com/srujan5570/Communications-App/internal/metrics"
	"github.com/srujan5570/Communications-App/internal/service"
	pkglog "github.com/srujan5570/Communications-App/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // mobile clients send no Origin
	},
}

// WSHandler handles WebSocket connections.
type WSHandler struct {
	hub         *hub.Hub
	connections service.ConnectionService
	messaging   service.MessagingService
	signaling   service.SignalingService
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(
	h *hub.Hub,
	connections service.ConnectionService,
	messaging service.MessagingService,
	signaling service.SignalingService,
) *WSHandler {
	return &WSHandler{
		hub:         h,
		connections: connections,
		messaging:   messaging,
		signaling:   signaling,
	}
}

// HandleWebSocket upgrades the connection, runs the handshake and, once
// the client is verified, starts routing its events.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l := pkglog.Ctx(r.Context())
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(h.hub, conn)

	// The request context ends with this handler; the connection outlives it.
	base := pkglog.WithLogger(context.Background(), pkglog.Ctx(r.Context()))
	ctx := pkglog.WithConn(base, client.ID(), "")

	h.hub.Register(client)
	go client.WritePump()

	userID, pending, err := h.handshake(ctx, client, r)
	if err != nil {
		client.Session.Close()
		client.SendMessage(&domain.ConnectErrorMessage{
			Type:    domain.MsgTypeConnectError,
			Message: auth.ConnectErrorMessage(err),
		})
		client.CloseWithReason(websocket.ClosePolicyViolation, "authentication failed")
		h.hub.Unregister(client)
		return
	}

	if err := client.Session.Register(userID); err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Msg("session registration failed")
		h.hub.Unregister(client)
		return
	}
	ctx = pkglog.WithConn(base, client.ID(), userID)

	client.SendMessage(&domain.ConnectedMessage{Type: domain.MsgTypeConnected, UserID: userID})
	h.connections.HandleRegister(ctx, client)

	client.SetDisconnectHandler(func(c *hub.Client) {
		c.Session.Close()
		if err := h.connections.HandleDisconnect(ctx, c); err != nil {
			l := pkglog.Ctx(ctx)
			l.Error().Err(err).Msg("disconnect handler error")
		}
	})

	if pending != nil {
		h.handleMessage(ctx, client, pending)
	}

	go client.ReadPump(func(c *hub.Client, message []byte) {
		h.handleMessage(ctx, c, message)
	})
}

// handshake reads the first frame and verifies the connection's credential.
// A first frame that is not a handshake is returned so it can be handled
// once the header or query credential has been accepted.
func (h *WSHandler) handshake(ctx context.Context, client *hub.Client, r *http.Request) (string, []byte, error) {
	l := pkglog.Ctx(ctx)

	if err := client.Session.Transition(domain.StateAuthenticating); err != nil {
		return "", nil, err
	}

	frame, err := client.ReadHandshake(h.hub.Config().HandshakeTimeout)
	if err != nil {
		reason := "read_error"
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			reason = "handshake_timeout"
		}
		metrics.HandshakeFailures.WithLabelValues(reason).Inc()
		l.Info().Err(err).Str("reason", reason).Msg("no handshake received")
		return "", nil, auth.ErrUnauthenticated
	}

	var (
		token   string
		pending []byte
		base    domain.BaseMessage
	)
	if err := json.Unmarshal(frame, &base); err == nil && base.Type == domain.MsgTypeHandshake {
		var hs domain.HandshakeMessage
		if err := json.Unmarshal(frame, &hs); err == nil {
			token = hs.Auth.Token
		}
	} else {
		pending = frame
	}

	userID, err := h.connections.Authenticate(ctx, auth.FromRequest(r, token))
	if err != nil {
		l.Info().Err(err).Msg("handshake rejected")
		return "", nil, err
	}
	return userID, pending, nil
}

func (h *WSHandler) handleMessage(ctx context.Context, client *hub.Client, message []byte) {
	l := pkglog.Ctx(ctx)

	var base domain.BaseMessage
	if err := json.Unmarshal(message, &base); err != nil {
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid message format"))
		return
	}

	switch base.Type {
	case domain.MsgTypePrivateMessage:
		var msg domain.PrivateMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewMessageErrorEvent("Failed to send message", "Invalid private_message payload"))
			return
		}
		if err := h.messaging.HandleSend(ctx, client, msg.ReceiverID, msg.Content); err != nil {
			if errors.Is(err, ledger.ErrPersistence) {
				l.Error().Err(err).Str(pkglog.FieldTargetID, msg.ReceiverID).Msg("send message failed")
			} else {
				l.Debug().Err(err).Msg("send message rejected")
			}
		}

	case domain.MsgTypeMarkRead:
		var msg domain.MarkReadMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid mark_read message"))
			return
		}
		if err := h.messaging.HandleMarkRead(ctx, client, msg.MessageID); err != nil {
			if errors.Is(err, ledger.ErrNotFound) || errors.Is(err, service.ErrNotParticipant) {
				l.Info().Err(err).Str(pkglog.FieldMessageID, msg.MessageID).Msg("mark read ignored")
			} else {
				l.Warn().Err(err).Str(pkglog.FieldMessageID, msg.MessageID).Msg("mark read failed")
			}
		}

	case domain.MsgTypeCallRequest,
		domain.MsgTypeCallAccepted,
		domain.MsgTypeCallRejected,
		domain.MsgTypeCallEnded,
		domain.MsgTypeWebRTCOffer,
		domain.MsgTypeWebRTCAnswer,
		domain.MsgTypeICECandidate:
		var msg domain.SignalMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid "+base.Type+" message"))
			return
		}
		if err := h.signaling.HandleSignal(ctx, client, &msg); err != nil {
			l.Debug().Err(err).Str(pkglog.FieldEvent, base.Type).Msg("signal rejected")
		}

	case domain.MsgTypePing:
		client.SendMessage(map[string]string{"type": domain.MsgTypePong})

	case domain.MsgTypeHandshake:
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Already authenticated"))

	default:
		client.SendMessage(domain.NewErrorMessage(domain.ErrCodeBadRequest, "Unknown message type"))
	}
}

// RegisterRoutes registers the WebSocket routes.
func (h *WSHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleWebSocket)
	mux.HandleFunc("/socket", h.HandleWebSocket)
}
