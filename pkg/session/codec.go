package session

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	jwt "github.com/dgrijalva/jwt-go"

	"hospitaladmin/pkg/account"
	"hospitaladmin/pkg/claims"
	"hospitaladmin/pkg/generator"
)

const maxTokenLength = 4096

var tokenFormat = regexp.MustCompile(`^[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+$`)

// Codec turns an account into a signed session token and back.
type Codec struct {
	secret []byte
	now    func() time.Time
	newID  func() (string, error)
}

func NewCodec(secret []byte, now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	return &Codec{
		secret: secret,
		now:    now,
		newID:  generator.GenerateTokenID,
	}
}

func (c *Codec) Encode(acc *account.Account) (string, *claims.Claims, error) {
	if acc == nil {
		return "", nil, errors.New("encode session: nil account")
	}

	tokenID, err := c.newID()
	if err != nil {
		return "", nil, fmt.Errorf("TokenID gen error: %w", err)
	}

	issued := c.now()
	cl := &claims.Claims{
		AccountID:  acc.ID,
		Username:   acc.Username,
		Role:       acc.Role,
		IssuedAtMs: issued.UnixMilli(),
		StandardClaims: jwt.StandardClaims{
			Id:        tokenID,
			IssuedAt:  issued.Unix(),
			ExpiresAt: issued.Add(MaxAge).Unix(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
	if err != nil {
		return "", nil, fmt.Errorf("token signing: %w", err)
	}

	return token, cl, nil
}

// Decode never panics on hostile input. Anything that is not a well-formed,
// correctly signed token with safe claim values yields ErrMalformedSession.
func (c *Codec) Decode(raw string) (*claims.Claims, error) {
	if raw == "" || len(raw) > maxTokenLength || !tokenFormat.MatchString(raw) {
		return nil, ErrMalformedSession
	}

	cl := &claims.Claims{}
	token, err := jwt.ParseWithClaims(raw, cl, func(t *jwt.Token) (interface{}, error) {
		method, ok := t.Method.(*jwt.SigningMethodHMAC)
		if !ok || method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("bad sign method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}
	if !token.Valid {
		return nil, ErrMalformedSession
	}

	for _, v := range []string{cl.AccountID, cl.Username, string(cl.Role), cl.Id} {
		if !account.SafeValue(v) {
			return nil, fmt.Errorf("%w: unsafe claim value", ErrMalformedSession)
		}
	}

	return cl, nil
}
