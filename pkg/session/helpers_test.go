package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hospitaladmin/pkg/account"
	"hospitaladmin/pkg/policy"
)

var (
	testSecret = []byte("0123456789abcdef0123456789abcdef")
	baseTime   = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

func newRegistry(t *testing.T) *account.Registry {
	t.Helper()
	reg, err := account.NewRegistry(account.DefaultEntries(), policy.Default(), bcrypt.MinCost)
	require.NoError(t, err)
	return reg
}

func mustLookup(t *testing.T, reg *account.Registry, username string) *account.Account {
	t.Helper()
	acc, ok := reg.Lookup(username)
	require.True(t, ok)
	return acc
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
