package account

import (
	"errors"
	"strings"

	"hospitaladmin/pkg/policy"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("duplicate username")
	ErrUnknownRole        = errors.New("unknown role")
	ErrInvalidEntry       = errors.New("invalid account entry")
)

// Account is an administrative identity. Permissions are filled in by the
// registry from the access policy and are never read from the source.
type Account struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         policy.Role `json:"role"`
	Permissions  []string    `json:"permissions"`
	PasswordHash string      `json:"-"`
}

// Authenticator is what the login endpoint needs from the credential store.
type Authenticator interface {
	Authenticate(username, password string) (*Account, error)
}

// Lookup resolves a username to its current account.
type Lookup interface {
	Lookup(username string) (*Account, bool)
}

func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
