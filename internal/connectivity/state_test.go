package connectivity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateStartsOffline(t *testing.T) {
	s := NewState("acme")
	require.False(t, s.Online())
	require.Equal(t, "acme", s.TenantID())
	require.Empty(t, s.UserID())
	require.False(t, s.SessionReady())
}

func TestSetOnlineNotifiesWatchersInOrder(t *testing.T) {
	s := NewState("acme")
	first, cancelFirst := s.Watch()
	second, cancelSecond := s.Watch()
	defer cancelFirst()
	defer cancelSecond()

	s.SetOnline(true)
	s.SetOnline(false)
	s.SetOnline(true)

	for _, ch := range []<-chan bool{first, second} {
		require.True(t, <-ch)
		require.False(t, <-ch)
		require.True(t, <-ch)
	}
}

func TestSetOnlineDeliversRepeatedValue(t *testing.T) {
	// A same-value toggle still notifies so a failed subscription can be
	// retried by flipping the switch.
	s := NewState("acme")
	ch, cancel := s.Watch()
	defer cancel()

	s.SetOnline(true)
	s.SetOnline(true)

	require.True(t, <-ch)
	require.True(t, <-ch)
}

func TestCancelledWatcherStopsReceiving(t *testing.T) {
	s := NewState("acme")
	ch, cancel := s.Watch()
	cancel()

	s.SetOnline(true)
	select {
	case <-ch:
		t.Fatal("cancelled watcher received a transition")
	default:
	}
}

func TestSignInSignOut(t *testing.T) {
	s := NewState("acme")
	s.SetOnline(true)
	s.SignIn("user-1")
	require.Equal(t, "user-1", s.UserID())
	require.True(t, s.SessionReady())
	require.True(t, s.Online())

	s.SignOut()
	require.Empty(t, s.UserID())
	require.False(t, s.SessionReady())
	require.False(t, s.Online(), "sign-out must force the application offline")
}
