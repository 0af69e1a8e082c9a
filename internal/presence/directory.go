package presence

import "sync"

// Conn is a live connection that can receive outbound events.
type Conn interface {
	ID() string
	UserID() string
	SendMessage(msg interface{}) error
	Close()
}

// Directory maps each user to their single live connection. The last
// registration for a user wins.
type Directory struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{conns: make(map[string]Conn)}
}

// Register binds userID to c and returns the connection it displaced, if any.
func (d *Directory) Register(userID string, c Conn) Conn {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev := d.conns[userID]
	d.conns[userID] = c
	if prev == c {
		return nil
	}
	return prev
}

// Resolve returns the live connection for userID.
func (d *Directory) Resolve(userID string) (Conn, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c, ok := d.conns[userID]
	return c, ok
}

// Unregister removes userID only if it is still bound to c, so a late
// disconnect of a replaced connection cannot evict its successor.
func (d *Directory) Unregister(userID string, c Conn) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cur, ok := d.conns[userID]; ok && cur == c {
		delete(d.conns, userID)
		return true
	}
	return false
}

// IsOnline reports whether userID has a live connection.
func (d *Directory) IsOnline(userID string) bool {
	_, ok := d.Resolve(userID)
	return ok
}

// Len returns the number of registered users.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.conns)
}

// Snapshot returns the current connections. Sending to them happens
// outside the lock.
func (d *Directory) Snapshot() []Conn {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Conn, 0, len(d.conns))
	for _, c := range d.conns {
		out = append(out, c)
	}
	return out
}
