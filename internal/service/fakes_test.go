package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/srujan5570/Communications-App/internal/domain"
	"github.com/srujan5570/Communications-App/internal/hub"
	"github.com/srujan5570/Communications-App/internal/ledger"
)

type fakeConn struct {
	id, user string

	mu      sync.Mutex
	sent    []interface{}
	closed  bool
	sendErr error
}

func newFakeConn(id, user string) *fakeConn {
	return &fakeConn{id: id, user: user}
}

func (c *fakeConn) ID() string     { return c.id }
func (c *fakeConn) UserID() string { return c.user }

func (c *fakeConn) SendMessage(msg interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return hub.ErrConnectionClosed
	}
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) messages() []interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]interface{}(nil), c.sent...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// fakeLedger is an in-memory ledger with the same forward-only status rule.
type fakeLedger struct {
	mu        sync.Mutex
	records   map[string]*domain.Message
	order     []string
	seq       int
	appendErr error
	updateErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[string]*domain.Message)}
}

func (l *fakeLedger) Append(_ context.Context, senderID, receiverID, content string) (*domain.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.appendErr != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrPersistence, l.appendErr)
	}
	l.seq++
	now := time.Now().UTC()
	m := &domain.Message{
		ID:         fmt.Sprintf("m%d", l.seq),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Status:     domain.StatusSent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	l.records[m.ID] = m
	l.order = append(l.order, m.ID)
	cp := *m
	return &cp, nil
}

func (l *fakeLedger) UpdateStatus(_ context.Context, id string, status domain.MessageStatus) (*domain.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.updateErr != nil {
		return nil, l.updateErr
	}
	m, ok := l.records[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	if m.Status.Advances(status) {
		m.Status = status
		m.UpdatedAt = time.Now().UTC()
	}
	cp := *m
	return &cp, nil
}

func (l *fakeLedger) FindConversation(_ context.Context, a, b string) ([]domain.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Message
	for _, id := range l.order {
		m := l.records[id]
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (l *fakeLedger) FindByID(_ context.Context, id string) (*domain.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.records[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (l *fakeLedger) Close() error { return nil }

func (l *fakeLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

type fakeProducer struct {
	mu     sync.Mutex
	events []*domain.MessageEvent
}

func (p *fakeProducer) ProduceEvent(_ context.Context, e *domain.MessageEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *fakeProducer) Close() error { return nil }

func (p *fakeProducer) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Event)
	}
	return out
}

var errBoom = errors.New("boom")
