package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id, user string
}

func (c *fakeConn) ID() string                    { return c.id }
func (c *fakeConn) UserID() string                { return c.user }
func (c *fakeConn) SendMessage(interface{}) error { return nil }
func (c *fakeConn) Close()                        {}

func TestDirectory_RegisterResolve(t *testing.T) {
	d := NewDirectory()
	a := &fakeConn{id: "c1", user: "alice"}

	assert.Nil(t, d.Register("alice", a))

	got, ok := d.Resolve("alice")
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.True(t, d.IsOnline("alice"))
	assert.False(t, d.IsOnline("bob"))
}

func TestDirectory_LastRegistrationWins(t *testing.T) {
	d := NewDirectory()
	first := &fakeConn{id: "c1", user: "alice"}
	second := &fakeConn{id: "c2", user: "alice"}

	d.Register("alice", first)
	prev := d.Register("alice", second)
	assert.Same(t, first, prev)

	got, _ := d.Resolve("alice")
	assert.Same(t, second, got)
	assert.Equal(t, 1, d.Len())
}

func TestDirectory_ReRegisterSameConn(t *testing.T) {
	d := NewDirectory()
	a := &fakeConn{id: "c1", user: "alice"}

	d.Register("alice", a)
	assert.Nil(t, d.Register("alice", a))
}

func TestDirectory_StaleUnregisterIsNoop(t *testing.T) {
	d := NewDirectory()
	first := &fakeConn{id: "c1", user: "alice"}
	second := &fakeConn{id: "c2", user: "alice"}

	d.Register("alice", first)
	d.Register("alice", second)

	assert.False(t, d.Unregister("alice", first))
	got, ok := d.Resolve("alice")
	require.True(t, ok)
	assert.Same(t, second, got)

	assert.True(t, d.Unregister("alice", second))
	_, ok = d.Resolve("alice")
	assert.False(t, ok)
	assert.False(t, d.Unregister("alice", second))
}

func TestDirectory_ConcurrentRegisterSingleEntry(t *testing.T) {
	d := NewDirectory()
	conns := make([]*fakeConn, 64)
	for i := range conns {
		conns[i] = &fakeConn{id: fmt.Sprintf("c%d", i), user: "alice"}
	}

	var wg sync.WaitGroup
	for _, c := range conns {
		wg.Add(1)
		go func(c *fakeConn) {
			defer wg.Done()
			d.Register("alice", c)
		}(c)
	}
	wg.Wait()

	assert.Equal(t, 1, d.Len())
	got, ok := d.Resolve("alice")
	require.True(t, ok)
	assert.Contains(t, conns, got)
}

func TestDirectory_ConcurrentRegisterUnregister(t *testing.T) {
	d := NewDirectory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", i%5)
			c := &fakeConn{id: fmt.Sprintf("c%d", i), user: user}
			d.Register(user, c)
			d.Resolve(user)
			d.Unregister(user, c)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, d.Len(), 5)
	for _, c := range d.Snapshot() {
		got, ok := d.Resolve(c.UserID())
		require.True(t, ok)
		assert.Same(t, c, got)
	}
}
