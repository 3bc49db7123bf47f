package claims

import (
	"context"

	jwt "github.com/dgrijalva/jwt-go"

	"hospitaladmin/pkg/policy"
)

type contextKey string

const (
	TokenContextKey   contextKey = "session"
	AccountContextKey contextKey = "account"
)

// Claims is the payload carried inside the session cookie. Time-based
// validity is judged by the session validator with millisecond precision,
// so Valid only checks that the payload is complete.
type Claims struct {
	AccountID  string      `json:"uid"`
	Username   string      `json:"username"`
	Role       policy.Role `json:"role"`
	IssuedAtMs int64       `json:"iat_ms"`
	jwt.StandardClaims
}

func (c *Claims) Valid() error {
	if c.AccountID == "" || c.Username == "" || c.Role == "" || c.IssuedAtMs <= 0 || c.Id == "" {
		return jwt.NewValidationError("incomplete session claims", jwt.ValidationErrorClaimsInvalid)
	}
	return nil
}

func NewContext(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, TokenContextKey, c)
}

func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(TokenContextKey).(*Claims)
	if !ok || c == nil || c.AccountID == "" {
		return nil, false
	}
	return c, true
}
