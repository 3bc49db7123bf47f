package session

import (
	"context"
	"errors"
	"time"

	"hospitaladmin/pkg/account"
	"hospitaladmin/pkg/claims"
)

const (
	CookieName = "session"
	MaxAge     = 8 * time.Hour
	MaxAgeMs   = int64(MaxAge / time.Millisecond)
)

var (
	ErrNoSession        = errors.New("no session")
	ErrMalformedSession = errors.New("malformed session")
	ErrExpiredSession   = errors.New("session expired")
	ErrUnknownAccount   = errors.New("unknown account")
	ErrRevokedSession   = errors.New("session revoked")
)

// Session is a decoded, validated session together with the account it
// currently resolves to.
type Session struct {
	Claims  *claims.Claims
	Account *account.Account
}

// ExpiresAt is the instant the session stops being valid.
func (s *Session) ExpiresAt() time.Time {
	return ExpiresAt(s.Claims)
}

func ExpiresAt(c *claims.Claims) time.Time {
	return time.UnixMilli(c.IssuedAtMs + MaxAgeMs)
}

// NewContext stores the claims and the account the gate resolved.
func NewContext(ctx context.Context, s *Session) context.Context {
	ctx = claims.NewContext(ctx, s.Claims)
	return context.WithValue(ctx, claims.AccountContextKey, s.Account)
}

func FromContext(ctx context.Context) (*Session, bool) {
	c, ok := claims.FromContext(ctx)
	if !ok {
		return nil, false
	}
	acc, ok := ctx.Value(claims.AccountContextKey).(*account.Account)
	if !ok || acc == nil || acc.ID != c.AccountID {
		return nil, false
	}
	return &Session{Claims: c, Account: acc}, true
}
