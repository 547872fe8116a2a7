package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	manager := NewManager("secret", time.Hour)

	signed, err := manager.Issue(42, "educator")
	require.NoError(t, err)

	claims, err := manager.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.UserID)
	require.Equal(t, "educator", claims.Role)
	require.Equal(t, "42", claims.Subject)
	require.NotEmpty(t, claims.ID)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	signed, err := NewManager("secret", time.Hour).Issue(1, "learner")
	require.NoError(t, err)

	_, err = NewManager("other", time.Hour).Parse(signed)
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = NewManager("secret", time.Hour).Parse("not-a-token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseExpired(t *testing.T) {
	manager := NewManager("secret", time.Minute)
	manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	signed, err := manager.Issue(1, "learner")
	require.NoError(t, err)

	_, err = NewManager("secret", time.Minute).Parse(signed)
	require.ErrorIs(t, err, ErrTokenExpired)
}
