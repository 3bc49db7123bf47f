package session

import (
	"time"

	"hospitaladmin/pkg/account"
	"hospitaladmin/pkg/claims"
)

type Status int

const (
	Valid Status = iota
	Expired
	Unknown
)

func (s Status) String() string {
	switch s {
	case Valid:
		return "valid"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

type Validator struct {
	accounts account.Lookup
}

func NewValidator(accounts account.Lookup) *Validator {
	return &Validator{accounts: accounts}
}

// Validate is a pure function of the claims, now and the account table.
// A session issued exactly MaxAge ago is still valid. The account is
// returned only for Valid.
func (v *Validator) Validate(c *claims.Claims, now time.Time) (Status, *account.Account) {
	if now.UnixMilli()-c.IssuedAtMs > MaxAgeMs {
		return Expired, nil
	}

	acc, ok := v.accounts.Lookup(c.Username)
	if !ok || acc.ID != c.AccountID || acc.Role != c.Role {
		return Unknown, nil
	}

	return Valid, acc
}
