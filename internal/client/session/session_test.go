package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SignInOut(t *testing.T) {
	s := New()
	ch, unsub := s.Subscribe()
	defer unsub()

	_, ok := s.UserID()
	require.False(t, ok)

	s.SignIn("u1", "ann", false)
	uid, ok := s.UserID()
	require.True(t, ok)
	assert.Equal(t, "u1", uid)
	assert.Equal(t, State{Authenticated: true, UserID: "u1", Username: "ann"}, <-ch)

	s.SignOut()
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, State{}, <-ch)
}

func TestSession_DuplicateStateNotPublished(t *testing.T) {
	s := New()
	ch, unsub := s.Subscribe()
	defer unsub()

	s.SignOut()
	s.SignIn("u1", "ann", true)
	s.SignIn("u1", "ann", true)

	assert.Len(t, ch, 1)
	st := <-ch
	assert.True(t, st.Offline)
	assert.Equal(t, st, s.State())
}
