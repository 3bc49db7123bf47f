package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hospitaladmin/pkg/account"
	"hospitaladmin/pkg/audit"
	"hospitaladmin/pkg/policy"
	"hospitaladmin/pkg/session"
)

var (
	testSecret = []byte("0123456789abcdef0123456789abcdef")
	logger     = slog.New(slog.NewTextHandler(io.Discard, nil))
)

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Record(ctx context.Context, event *audit.Event) error {
	return m.Called(event.Type, event.Username).Error(0)
}

func (m *mockAudit) Recent(ctx context.Context, limit int64) ([]*audit.Event, error) {
	args := m.Called(limit)
	if events := args.Get(0); events != nil {
		return events.([]*audit.Event), args.Error(1)
	}
	return nil, args.Error(1)
}

type fixture struct {
	registry    *account.Registry
	codec       *session.Codec
	resolver    *session.Resolver
	revocations *session.MemoryRevocations
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg, err := account.NewRegistry(account.DefaultEntries(), policy.Default(), bcrypt.MinCost)
	require.NoError(t, err)

	f := &fixture{registry: reg, now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }
	f.codec = session.NewCodec(testSecret, clock)
	f.revocations = session.NewMemoryRevocations(clock)
	f.resolver = &session.Resolver{
		Codec:       f.codec,
		Validator:   session.NewValidator(reg),
		Revocations: f.revocations,
		Now:         clock,
	}
	return f
}

func (f *fixture) cookieFor(t *testing.T, username string) *http.Cookie {
	t.Helper()
	acc, ok := f.registry.Lookup(username)
	require.True(t, ok)
	token, _, err := f.codec.Encode(acc)
	require.NoError(t, err)
	return &http.Cookie{Name: session.CookieName, Value: token}
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
