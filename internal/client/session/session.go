// Package session holds the per-process account state: which account is
// active and whether it finished onboarding. A Session is created at start-up and replaced, never mutated
// into another account, on account switch.
package session

import (
	"context"
	"sync/atomic"
	"time"
)

// Session is bound to exactly one account for its whole life.
type Session struct {
	AccountID string
	StartedAt time.Time

	onboarded atomic.Bool
}

func New(accountID string) *Session {
	return &Session{AccountID: accountID, StartedAt: time.Now()}
}

// Onboarded reports whether the account has a stored profile with interests
// and a major.
func (s *Session) Onboarded() bool { return s.onboarded.Load() }

func (s *Session) SetOnboarded(v bool) { s.onboarded.Store(v) }

type ctxKey string

const sessionKey ctxKey = "session"

// NewContext returns ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session stored by NewContext.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}
