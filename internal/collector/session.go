package collector

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Sessions scopes request cancellation per session: a new request cancels
// the previous in-flight request of the same session and no other.
type Sessions struct {
	mu     sync.Mutex
	active map[string]inflight
}

type inflight struct {
	token  string
	cancel context.CancelCauseFunc
}

func NewSessions() *Sessions {
	return &Sessions{active: make(map[string]inflight)}
}

// Begin supersedes the session's in-flight request and returns the context
// and token of the new one. The previous context is cancelled with cause
// ErrSuperseded.
func (s *Sessions) Begin(ctx context.Context, session string) (context.Context, string) {
	ctx, cancel := context.WithCancelCause(ctx)
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.active[session]; ok {
		prev.cancel(ErrSuperseded)
	}
	s.active[session] = inflight{token: token, cancel: cancel}
	return ctx, token
}

// Current reports whether token is still the session's latest request, so
// its result may be applied.
func (s *Sessions) Current(session, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.active[session]
	return ok && cur.token == token
}

// Done releases the request. It is a no-op for a superseded token.
func (s *Sessions) Done(session, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.active[session]
	if !ok || cur.token != token {
		return
	}
	cur.cancel(nil)
	delete(s.active, session)
}

// Active returns the number of sessions with a request in flight.
func (s *Sessions) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
