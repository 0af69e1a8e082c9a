package audit

import (
	"context"

	"github.com/srujan5570/Communications-App/pkg/log"
)

// Audit actions for the relay.
const (
	ActionAuth            = "relay.auth"
	ActionAuthFailed      = "relay.auth_failed"
	ActionSessionReplaced = "relay.session_replaced"
	ActionSendMessage     = "relay.send_message"
	ActionMarkRead        = "relay.mark_read"
	ActionStatusUpdate    = "relay.status_update"
	ActionCallEvent       = "relay.call_event"
	ActionDisconnect      = "relay.disconnect"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogTarget emits an audit entry for an action aimed at another user.
func LogTarget(ctx context.Context, action, userID, targetID, detail, msg string) {
	l := log.Ctx(ctx)
	e := l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(log.FieldTargetID, targetID)
	if detail != "" {
		e = e.Str(FieldDetail, detail)
	}
	e.Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
