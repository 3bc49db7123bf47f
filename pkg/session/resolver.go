package session

import (
	"fmt"
	"net/http"
	"time"
)

// Resolver derives the caller's session from a request. The auth gate,
// the session endpoint and the module handlers all go through it so there
// is exactly one definition of "authenticated".
type Resolver struct {
	Codec       *Codec
	Validator   *Validator
	Revocations RevocationStore
	Now         func() time.Time
}

func (r *Resolver) Resolve(req *http.Request) (*Session, error) {
	cookie, err := req.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}

	cl, err := r.Codec.Decode(cookie.Value)
	if err != nil {
		return nil, err
	}

	now := r.now()
	status, acc := r.Validator.Validate(cl, now)
	switch status {
	case Expired:
		return nil, ErrExpiredSession
	case Unknown:
		return nil, ErrUnknownAccount
	}

	if r.Revocations != nil {
		revoked, err := r.Revocations.IsRevoked(req.Context(), cl.Id, now)
		if err != nil {
			return nil, fmt.Errorf("%w: revocation check: %v", ErrRevokedSession, err)
		}
		if revoked {
			return nil, ErrRevokedSession
		}
	}

	return &Session{Claims: cl, Account: acc}, nil
}

func (r *Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}
