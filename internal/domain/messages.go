package domain

import "encoding/json"

// WebSocket message types from client.
const (
	MsgTypeHandshake      = "handshake"
	MsgTypePrivateMessage = "private_message"
	MsgTypeMarkRead       = "mark_read"
	MsgTypeCallRequest    = "call_request"
	MsgTypeCallAccepted   = "call_accepted"
	MsgTypeCallRejected   = "call_rejected"
	MsgTypeCallEnded      = "call_ended"
	MsgTypeWebRTCOffer    = "webrtc_offer"
	MsgTypeWebRTCAnswer   = "webrtc_answer"
	MsgTypeICECandidate   = "webrtc_ice_candidate"
	MsgTypePing           = "ping"
)

// WebSocket message types to client.
const (
	MsgTypeConnected       = "connected"
	MsgTypeConnectError    = "connect_error"
	MsgTypeSessionReplaced = "session_replaced"
	MsgTypeNewMessage      = "new_message"
	MsgTypeMessageSent     = "message_sent"
	MsgTypeMessageStatus   = "message_status"
	MsgTypeMessageError    = "message_error"
	MsgTypeIncomingCall    = "incoming_call"
	MsgTypeUserOnline      = "userOnline"
	MsgTypeUserOffline     = "userOffline"
	MsgTypeError           = "error"
	MsgTypePong            = "pong"
)

// CallMode is the media kind requested for a call.
type CallMode string

const (
	CallModeVoice CallMode = "voice"
	CallModeVideo CallMode = "video"
)

// Valid reports whether m is a supported call mode.
func (m CallMode) Valid() bool {
	return m == CallModeVoice || m == CallModeVideo
}

// BaseMessage is the base structure for all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

// HandshakeAuth carries the credential presented in the handshake frame.
type HandshakeAuth struct {
	Token string `json:"token"`
}

// HandshakeMessage must be the first frame on a new connection.
type HandshakeMessage struct {
	Type string        `json:"type"`
	Auth HandshakeAuth `json:"auth"`
}

// PrivateMessage is sent by a client to message another user.
type PrivateMessage struct {
	Type       string `json:"type"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// MarkReadMessage acknowledges that the recipient has read a message.
type MarkReadMessage struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
}

// SignalMessage covers every inbound call signaling event. Offer, answer
// and candidate payloads are opaque and forwarded untouched.
type SignalMessage struct {
	Type         string          `json:"type"`
	TargetUserID string          `json:"targetUserId"`
	Mode         CallMode        `json:"mode,omitempty"`
	Offer        json.RawMessage `json:"offer,omitempty"`
	Answer       json.RawMessage `json:"answer,omitempty"`
	Candidate    json.RawMessage `json:"candidate,omitempty"`
}

// Server -> Client messages

// ConnectedMessage confirms a successful handshake.
type ConnectedMessage struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// ConnectErrorMessage is sent right before a rejected handshake is closed.
type ConnectErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SessionReplacedMessage tells a displaced connection that a newer one took over.
type SessionReplacedMessage struct {
	Type string `json:"type"`
}

// PeerRef is a reference to a user inside a message record.
type PeerRef struct {
	ID string `json:"_id"`
}

// NewMessageEvent delivers a message record to its recipient. The sender
// is rendered as an object instead of a bare id.
type NewMessageEvent struct {
	Type string `json:"type"`
	Message
	Sender PeerRef `json:"sender"`
}

// MessageSentEvent confirms persistence to the sender.
type MessageSentEvent struct {
	Type string `json:"type"`
	Message
}

// MessageStatusEvent tells a sender that one of their messages changed status.
type MessageStatusEvent struct {
	Type      string        `json:"type"`
	MessageID string        `json:"messageId"`
	Status    MessageStatus `json:"status"`
}

// MessageErrorEvent reports a failed send to the sender.
type MessageErrorEvent struct {
	Type    string `json:"type"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// IncomingCallMessage is forwarded for call_request.
type IncomingCallMessage struct {
	Type     string   `json:"type"`
	CallerID string   `json:"callerId"`
	Mode     CallMode `json:"mode"`
}

// CallAcceptedMessage is forwarded for call_accepted.
type CallAcceptedMessage struct {
	Type       string `json:"type"`
	AccepterID string `json:"accepterId"`
}

// CallRejectedMessage is forwarded for call_rejected.
type CallRejectedMessage struct {
	Type       string `json:"type"`
	RejecterID string `json:"rejecterId"`
}

// CallEndedMessage is forwarded for call_ended.
type CallEndedMessage struct {
	Type    string `json:"type"`
	EnderID string `json:"enderId"`
}

// OfferMessage is forwarded for webrtc_offer.
type OfferMessage struct {
	Type     string          `json:"type"`
	CallerID string          `json:"callerId"`
	Offer    json.RawMessage `json:"offer"`
}

// AnswerMessage is forwarded for webrtc_answer.
type AnswerMessage struct {
	Type       string          `json:"type"`
	AnswererID string          `json:"answererId"`
	Answer     json.RawMessage `json:"answer"`
}

// CandidateMessage is forwarded for webrtc_ice_candidate.
type CandidateMessage struct {
	Type      string          `json:"type"`
	SenderID  string          `json:"senderId"`
	Candidate json.RawMessage `json:"candidate"`
}

// PresenceMessage announces that a user came online or went offline.
type PresenceMessage struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// ErrorMessage is sent when an error occurs.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// NewErrorMessage creates an error message.
func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}

// NewMessageErrorEvent creates a message_error event.
func NewMessageErrorEvent(errText, details string) *MessageErrorEvent {
	return &MessageErrorEvent{
		Type:    MsgTypeMessageError,
		Error:   errText,
		Details: details,
	}
}
