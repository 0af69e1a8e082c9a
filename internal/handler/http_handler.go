package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/srujan5570/Communications-App/internal/config"
	"github.com/srujan5570/Communications-App/internal/domain"
	"github.com/srujan5570/Communications-App/internal/ledger"
	"github.com/srujan5570/Communications-App/internal/service"
	pkglog "github.com/srujan5570/Communications-App/pkg/log"
	"github.com/srujan5570/Communications-App/pkg/middleware"
	"github.com/srujan5570/Communications-App/pkg/response"
)

type HTTPHandler struct {
	messaging   service.MessagingService
	connections service.ConnectionService
	webrtc      config.WebRTCConfig
	httpClient  *http.Client
	auth        *middleware.AuthMiddleware
}

func NewHTTPHandler(
	messaging service.MessagingService,
	connections service.ConnectionService,
	webrtc config.WebRTCConfig,
	auth *middleware.AuthMiddleware,
) *HTTPHandler {
	return &HTTPHandler{
		messaging:   messaging,
		connections: connections,
		webrtc:      webrtc,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		auth:        auth,
	}
}

func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/chat", h.auth.RequireAuth())
	{
		api.GET("/messages/:userId", h.GetConversation)
		api.PUT("/messages/:messageId/status", h.UpdateStatus)
		api.GET("/users/:userId/presence", h.GetPresence)
		api.GET("/ice-servers", h.GetICEServers)
	}

	r.GET("/health", h.HealthCheck)
}

// GetConversation returns the caller's history with another user, oldest first.
func (h *HTTPHandler) GetConversation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	peerID := c.Param("userId")

	messages, err := h.messaging.GetConversation(c.Request.Context(), userID, peerID)
	if err != nil {
		l := pkglog.Ctx(c.Request.Context())
		l.Error().Err(err).Str(pkglog.FieldTargetID, peerID).Msg("failed to fetch conversation")
		response.InternalError(c, "Error fetching messages")
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	response.Raw(c, messages)
}

type updateStatusRequest struct {
	Status domain.MessageStatus `json:"status" binding:"required"`
}

// UpdateStatus moves a message forward; only its sender or receiver may do so.
func (h *HTTPHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "status is required")
		return
	}

	msg, err := h.messaging.UpdateStatus(c.Request.Context(), middleware.GetUserID(c), c.Param("messageId"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidStatus):
			response.BadRequest(c, "status must be one of sent, delivered, read")
		case errors.Is(err, ledger.ErrNotFound):
			response.NotFound(c, "Message not found")
		case errors.Is(err, service.ErrNotParticipant):
			response.Forbidden(c, "Not a participant of this message")
		default:
			l := pkglog.Ctx(c.Request.Context())
			l.Error().Err(err).Str(pkglog.FieldMessageID, c.Param("messageId")).Msg("failed to update message status")
			response.InternalError(c, "Error updating message status")
		}
		return
	}

	response.Raw(c, msg)
}

// GetPresence reports whether a user currently has a live connection.
func (h *HTTPHandler) GetPresence(c *gin.Context) {
	userID := c.Param("userId")
	response.Success(c, gin.H{
		"userId": userID,
		"online": h.connections.IsOnline(userID),
	})
}

// GetICEServers returns the STUN/TURN servers clients use for call setup.
func (h *HTTPHandler) GetICEServers(c *gin.Context) {
	servers := h.webrtc.Resolve(c.Request.Context(), h.httpClient)
	response.Raw(c, gin.H{"iceServers": servers})
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
