package account

import (
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"hospitaladmin/pkg/policy"
)

var safeValue = regexp.MustCompile(`^[A-Za-z0-9_.@-]+$`)

// SafeValue reports whether s only holds characters allowed in account
// identifiers, usernames and role names.
func SafeValue(s string) bool {
	return safeValue.MatchString(s)
}

// Registry is the read-only account table built once at startup.
type Registry struct {
	byUsername map[string]*Account
	dummyHash  []byte
}

// NewRegistry validates entries against the policy, hashes any plaintext
// seed passwords with the given bcrypt cost and indexes accounts by
// normalized username. The dummy hash used for unknown usernames takes the
// highest cost found among the loaded hashes.
func NewRegistry(entries []Entry, pol *policy.Policy, cost int) (*Registry, error) {
	reg := &Registry{
		byUsername: make(map[string]*Account, len(entries)),
	}
	dummyCost := cost
	seenIDs := make(map[string]struct{}, len(entries))

	for i, e := range entries {
		username := NormalizeUsername(e.Username)
		if username == "" || !SafeValue(username) || e.ID == "" || !SafeValue(e.ID) {
			return nil, fmt.Errorf("entry %d: %w", i, ErrInvalidEntry)
		}
		if !pol.Known(e.Role) {
			return nil, fmt.Errorf("entry %d (%s): %w %q", i, username, ErrUnknownRole, e.Role)
		}
		if _, ok := reg.byUsername[username]; ok {
			return nil, fmt.Errorf("entry %d: %w %q", i, ErrDuplicateUsername, username)
		}
		if _, ok := seenIDs[e.ID]; ok {
			return nil, fmt.Errorf("entry %d: %w: duplicate id %q", i, ErrInvalidEntry, e.ID)
		}

		hash := e.PasswordHash
		switch {
		case hash != "" && e.Password != "":
			return nil, fmt.Errorf("entry %d (%s): %w: both password and password_hash set", i, username, ErrInvalidEntry)
		case hash != "":
			c, err := bcrypt.Cost([]byte(hash))
			if err != nil {
				return nil, fmt.Errorf("entry %d (%s): %w: %v", i, username, ErrInvalidEntry, err)
			}
			dummyCost = max(dummyCost, c)
		case e.Password != "":
			h, err := bcrypt.GenerateFromPassword([]byte(e.Password), cost)
			if err != nil {
				return nil, fmt.Errorf("hashing password for %s: %w", username, err)
			}
			hash = string(h)
		default:
			return nil, fmt.Errorf("entry %d (%s): %w: no password", i, username, ErrInvalidEntry)
		}

		seenIDs[e.ID] = struct{}{}
		reg.byUsername[username] = &Account{
			ID:           e.ID,
			Username:     username,
			Name:         e.Name,
			Email:        e.Email,
			Role:         e.Role,
			Permissions:  pol.Prefixes(e.Role),
			PasswordHash: hash,
		}
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), dummyCost)
	if err != nil {
		return nil, fmt.Errorf("hashing dummy password: %w", err)
	}
	reg.dummyHash = dummy

	return reg, nil
}

// Authenticate never tells an unknown username apart from a wrong
// password: both paths run one bcrypt comparison and return
// ErrInvalidCredentials.
func (r *Registry) Authenticate(username, password string) (*Account, error) {
	acc, ok := r.byUsername[NormalizeUsername(username)]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(r.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return acc.clone(), nil
}

func (r *Registry) Lookup(username string) (*Account, bool) {
	acc, ok := r.byUsername[NormalizeUsername(username)]
	if !ok {
		return nil, false
	}
	return acc.clone(), true
}

func (r *Registry) Len() int {
	return len(r.byUsername)
}

// HashCost is the bcrypt cost an unknown username pays on Authenticate.
func (r *Registry) HashCost() int {
	c, _ := bcrypt.Cost(r.dummyHash)
	return c
}

func (a *Account) clone() *Account {
	c := *a
	c.Permissions = append([]string(nil), a.Permissions...)
	return &c
}
