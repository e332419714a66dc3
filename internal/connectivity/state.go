// Package connectivity holds the process-wide online/offline switch that
// every sync component and mutation guard depends on.
package connectivity

import "sync"

// State is the process-wide connectivity context: the manual online switch,
// the authenticated principal, and the tenant namespace. It is created once
// at startup and reset on sign-out, never destroyed.
type State struct {
	mu           sync.Mutex
	online       bool
	tenantID     string
	userID       string
	sessionReady bool
	watchers     map[int]chan bool
	nextWatcher  int
}

// NewState constructs the connectivity state for a tenant. The application
// starts offline until the operator explicitly goes online.
func NewState(tenantID string) *State {
	return &State{
		tenantID: tenantID,
		watchers: make(map[int]chan bool),
	}
}

// Online reports the current connectivity flag.
func (s *State) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// TenantID returns the tenant namespace id.
func (s *State) TenantID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tenantID
}

// UserID returns the authenticated user id, empty when signed out.
func (s *State) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// SessionReady reports whether authentication has completed.
func (s *State) SessionReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionReady
}

// SetOnline flips the connectivity flag and notifies every watcher in
// registration order. Transitions are delivered even when the flag is set
// to its current value so a toggle can be used to retry a failed
// subscription.
func (s *State) SetOnline(online bool) {
	s.mu.Lock()
	s.online = online
	chans := make([]chan bool, 0, len(s.watchers))
	for i := 0; i < s.nextWatcher; i++ {
		if ch, ok := s.watchers[i]; ok {
			chans = append(chans, ch)
		}
	}
	s.mu.Unlock()

	for _, ch := range chans {
		ch <- online
	}
}

// SignIn records the authenticated user and marks the session ready.
func (s *State) SignIn(userID string) {
	s.mu.Lock()
	s.userID = userID
	s.sessionReady = true
	s.mu.Unlock()
}

// SignOut clears the principal and forces the application offline.
func (s *State) SignOut() {
	s.mu.Lock()
	s.userID = ""
	s.sessionReady = false
	s.mu.Unlock()
	s.SetOnline(false)
}

// Watch registers an ordered stream of connectivity transitions. The
// returned cancel func must be called to release the watcher.
func (s *State) Watch() (<-chan bool, func()) {
	s.mu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	// Buffered so SetOnline never blocks on a watcher that is mid-teardown.
	ch := make(chan bool, 16)
	s.watchers[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
	return ch, cancel
}
