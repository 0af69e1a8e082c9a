package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_HappyPath(t *testing.T) {
	s := NewSession("c1")
	assert.Equal(t, StateConnecting, s.State())

	require.NoError(t, s.Transition(StateAuthenticating))
	require.NoError(t, s.Register("alice"))
	assert.True(t, s.IsRegistered())
	assert.Equal(t, "alice", s.GetUserID())

	assert.True(t, s.Close())
	assert.False(t, s.Close())
	assert.Equal(t, StateClosed, s.State())
}

func TestSession_RegisterRequiresAuthenticating(t *testing.T) {
	s := NewSession("c1")

	err := s.Register("alice")
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, StateConnecting, invalid.From)
	assert.Empty(t, s.GetUserID())
}

func TestSession_FailedAuthCloses(t *testing.T) {
	s := NewSession("c1")
	require.NoError(t, s.Transition(StateAuthenticating))
	assert.True(t, s.Close())

	assert.Error(t, s.Register("alice"))
	assert.False(t, s.IsRegistered())
}
