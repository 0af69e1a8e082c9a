package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srujan5570/Communications-App/internal/domain"
	"github.com/srujan5570/Communications-App/internal/hub"
	"github.com/srujan5570/Communications-App/internal/ledger"
	"github.com/srujan5570/Communications-App/internal/presence"
)

type messagingFixture struct {
	svc      MessagingService
	ledger   *fakeLedger
	dir      *presence.Directory
	producer *fakeProducer
	alice    *fakeConn
	bob      *fakeConn
}

func newMessagingFixture(t *testing.T) *messagingFixture {
	t.Helper()
	f := &messagingFixture{
		ledger:   newFakeLedger(),
		dir:      presence.NewDirectory(),
		producer: &fakeProducer{},
		alice:    newFakeConn("ca", "alice"),
		bob:      newFakeConn("cb", "bob"),
	}
	f.svc = NewMessagingService(f.ledger, f.dir, f.producer, 10)
	f.dir.Register("alice", f.alice)
	return f
}

func TestHandleSend_OnlineRecipient(t *testing.T) {
	f := newMessagingFixture(t)
	f.dir.Register("bob", f.bob)
	ctx := context.Background()

	require.NoError(t, f.svc.HandleSend(ctx, f.alice, "bob", "hi"))

	history, err := f.ledger.FindConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusDelivered, history[0].Status)
	assert.Equal(t, "hi", history[0].Content)

	toBob := f.bob.messages()
	require.Len(t, toBob, 1)
	nm, ok := toBob[0].(*domain.NewMessageEvent)
	require.True(t, ok)
	assert.Equal(t, domain.MsgTypeNewMessage, nm.Type)
	assert.Equal(t, "alice", nm.Sender.ID)
	assert.Equal(t, "hi", nm.Content)

	toAlice := f.alice.messages()
	require.Len(t, toAlice, 1)
	sent, ok := toAlice[0].(*domain.MessageSentEvent)
	require.True(t, ok)
	assert.Equal(t, domain.StatusDelivered, sent.Status)
	assert.Equal(t, history[0].ID, sent.ID)

	assert.Equal(t, []string{domain.EventMessageCreated, domain.EventMessageDelivered}, f.producer.names())
}

func TestHandleSend_OfflineRecipient(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.HandleSend(ctx, f.alice, "bob", "hi"))

	history, err := f.ledger.FindConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusSent, history[0].Status)

	assert.Empty(t, f.bob.messages())
	toAlice := f.alice.messages()
	require.Len(t, toAlice, 1)
	sent := toAlice[0].(*domain.MessageSentEvent)
	assert.Equal(t, domain.StatusSent, sent.Status)
}

func TestHandleSend_PushFailureLeavesSent(t *testing.T) {
	f := newMessagingFixture(t)
	f.bob.sendErr = hub.ErrSendBufferFull
	f.dir.Register("bob", f.bob)

	require.NoError(t, f.svc.HandleSend(context.Background(), f.alice, "bob", "hi"))

	sent := f.alice.messages()[0].(*domain.MessageSentEvent)
	assert.Equal(t, domain.StatusSent, sent.Status)
}

func TestHandleSend_EmptyContent(t *testing.T) {
	f := newMessagingFixture(t)

	for _, content := range []string{"", "   ", "\n\t"} {
		err := f.svc.HandleSend(context.Background(), f.alice, "bob", content)
		assert.ErrorIs(t, err, ErrEmptyContent)
	}

	assert.Equal(t, 0, f.ledger.count())
	msgs := f.alice.messages()
	require.Len(t, msgs, 3)
	me := msgs[0].(*domain.MessageErrorEvent)
	assert.Equal(t, domain.MsgTypeMessageError, me.Type)
	assert.Equal(t, "Failed to send message", me.Error)
}

func TestHandleSend_Validation(t *testing.T) {
	f := newMessagingFixture(t)

	assert.ErrorIs(t, f.svc.HandleSend(context.Background(), f.alice, "", "hi"), ErrMissingReceiver)
	assert.ErrorIs(t, f.svc.HandleSend(context.Background(), f.alice, "bob", strings.Repeat("x", 11)), ErrContentTooLong)
	assert.NoError(t, f.svc.HandleSend(context.Background(), f.alice, "bob", strings.Repeat("é", 10)))
}

func TestHandleSend_PersistenceError(t *testing.T) {
	f := newMessagingFixture(t)
	f.dir.Register("bob", f.bob)
	f.ledger.appendErr = errBoom

	err := f.svc.HandleSend(context.Background(), f.alice, "bob", "hi")
	assert.ErrorIs(t, err, ledger.ErrPersistence)

	assert.Empty(t, f.bob.messages())
	msgs := f.alice.messages()
	require.Len(t, msgs, 1)
	me := msgs[0].(*domain.MessageErrorEvent)
	assert.Equal(t, "Failed to send message", me.Error)
	assert.Contains(t, me.Details, "boom")
}

func TestHandleSend_SenderOrderPreserved(t *testing.T) {
	f := newMessagingFixture(t)
	f.dir.Register("bob", f.bob)
	ctx := context.Background()

	for _, c := range []string{"1", "2", "3", "4"} {
		require.NoError(t, f.svc.HandleSend(ctx, f.alice, "bob", c))
	}

	var got []string
	for _, m := range f.bob.messages() {
		got = append(got, m.(*domain.NewMessageEvent).Content)
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, got)
}

func TestHandleMarkRead_NotifiesSender(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.HandleSend(ctx, f.alice, "bob", "hi"))
	msgID := f.alice.messages()[0].(*domain.MessageSentEvent).ID

	f.dir.Register("bob", f.bob)
	require.NoError(t, f.svc.HandleMarkRead(ctx, f.bob, msgID))

	stored, err := f.ledger.FindByID(ctx, msgID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, stored.Status)

	msgs := f.alice.messages()
	require.Len(t, msgs, 2)
	st := msgs[1].(*domain.MessageStatusEvent)
	assert.Equal(t, domain.MsgTypeMessageStatus, st.Type)
	assert.Equal(t, msgID, st.MessageID)
	assert.Equal(t, domain.StatusRead, st.Status)
}

func TestHandleMarkRead_SenderOffline(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.HandleSend(ctx, f.alice, "bob", "hi"))
	msgID := f.alice.messages()[0].(*domain.MessageSentEvent).ID
	f.dir.Unregister("alice", f.alice)

	require.NoError(t, f.svc.HandleMarkRead(ctx, f.bob, msgID))
	assert.Len(t, f.alice.messages(), 1)
}

func TestHandleMarkRead_UnknownMessage(t *testing.T) {
	f := newMessagingFixture(t)

	err := f.svc.HandleMarkRead(context.Background(), f.bob, "nope")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	assert.Empty(t, f.bob.messages())
	assert.Empty(t, f.alice.messages())
}

func TestHandleMarkRead_StoreFailureReported(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.HandleSend(ctx, f.alice, "bob", "hi"))
	msgID := f.alice.messages()[0].(*domain.MessageSentEvent).ID
	before := len(f.bob.messages())

	f.ledger.updateErr = ledger.ErrPersistence
	err := f.svc.HandleMarkRead(ctx, f.bob, msgID)
	assert.ErrorIs(t, err, ledger.ErrPersistence)

	msgs := f.bob.messages()
	require.Len(t, msgs, before+1)
	em := msgs[before].(*domain.ErrorMessage)
	assert.Equal(t, domain.ErrCodeInternalError, em.Code)
	assert.Len(t, f.alice.messages(), 1)
}

func TestHandleMarkRead_OnlyReceiver(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.HandleSend(ctx, f.alice, "bob", "hi"))
	msgID := f.alice.messages()[0].(*domain.MessageSentEvent).ID

	err := f.svc.HandleMarkRead(ctx, f.alice, msgID)
	assert.ErrorIs(t, err, ErrNotParticipant)

	stored, _ := f.ledger.FindByID(ctx, msgID)
	assert.Equal(t, domain.StatusSent, stored.Status)
}

func TestUpdateStatus_ParticipantOnly(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	msg, err := f.ledger.Append(ctx, "alice", "bob", "hi")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, "mallory", msg.ID, domain.StatusRead)
	assert.ErrorIs(t, err, ErrNotParticipant)

	updated, err := f.svc.UpdateStatus(ctx, "bob", msg.ID, domain.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, updated.Status)

	st := f.alice.messages()[0].(*domain.MessageStatusEvent)
	assert.Equal(t, domain.StatusDelivered, st.Status)
}

func TestUpdateStatus_NoRegression(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	msg, err := f.ledger.Append(ctx, "alice", "bob", "hi")
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, "bob", msg.ID, domain.StatusRead)
	require.NoError(t, err)

	got, err := f.svc.UpdateStatus(ctx, "bob", msg.ID, domain.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, got.Status)
	// only the read transition notified the sender
	assert.Len(t, f.alice.messages(), 1)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	f := newMessagingFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), "bob", "m1", domain.MessageStatus("gone"))
	assert.ErrorIs(t, err, ledger.ErrInvalidStatus)
}

func TestNilProducer(t *testing.T) {
	dir := presence.NewDirectory()
	alice := newFakeConn("ca", "alice")
	dir.Register("alice", alice)
	svc := NewMessagingService(newFakeLedger(), dir, nil, 0)

	require.NoError(t, svc.HandleSend(context.Background(), alice, "bob", strings.Repeat("x", 5000)))
}
