package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hospitaladmin/pkg/account"
	"hospitaladmin/pkg/claims"
	"hospitaladmin/pkg/policy"
	"hospitaladmin/pkg/session"
)

func claimsFor(acc *account.Account, issuedAt time.Time) *claims.Claims {
	return &claims.Claims{
		AccountID:  acc.ID,
		Username:   acc.Username,
		Role:       acc.Role,
		IssuedAtMs: issuedAt.UnixMilli(),
	}
}

func TestValidator_ExpiryBoundary(t *testing.T) {
	reg := newRegistry(t)
	acc := mustLookup(t, reg, "hr")
	v := session.NewValidator(reg)
	now := baseTime

	tests := []struct {
		name     string
		issuedAt time.Time
		want     session.Status
	}{
		{"fresh", now, session.Valid},
		{"one ms inside window", now.Add(-session.MaxAge + time.Millisecond), session.Valid},
		{"exactly eight hours", now.Add(-session.MaxAge), session.Valid},
		{"one ms past window", now.Add(-session.MaxAge - time.Millisecond), session.Expired},
		{"long expired", now.Add(-72 * time.Hour), session.Expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, got := v.Validate(claimsFor(acc, tt.issuedAt), now)

			assert.Equal(t, tt.want, status)
			if tt.want == session.Valid {
				require.NotNil(t, got)
				assert.Equal(t, acc.ID, got.ID)
			} else {
				assert.Nil(t, got)
			}
		})
	}
	assert.Equal(t, int64(28_800_000), session.MaxAgeMs)
}

func TestValidator_UnknownAccount(t *testing.T) {
	reg := newRegistry(t)
	v := session.NewValidator(reg)
	hr := mustLookup(t, reg, "hr")

	t.Run("username gone", func(t *testing.T) {
		c := claimsFor(hr, baseTime)
		c.Username = "former-employee"

		status, _ := v.Validate(c, baseTime)
		assert.Equal(t, session.Unknown, status)
	})

	t.Run("account table changed", func(t *testing.T) {
		changed, err := account.NewRegistry([]account.Entry{
			{ID: "99", Username: "hr", Role: policy.HRAdmin, Password: "x"},
		}, policy.Default(), bcrypt.MinCost)
		require.NoError(t, err)

		status, _ := session.NewValidator(changed).Validate(claimsFor(hr, baseTime), baseTime)
		assert.Equal(t, session.Unknown, status)
	})

	t.Run("role changed", func(t *testing.T) {
		c := claimsFor(hr, baseTime)
		c.Role = policy.SuperAdmin

		status, _ := v.Validate(c, baseTime)
		assert.Equal(t, session.Unknown, status)
	})
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "valid", session.Valid.String())
	assert.Equal(t, "expired", session.Expired.String())
	assert.Equal(t, "unknown", session.Unknown.String())
}
