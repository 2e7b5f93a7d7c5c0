package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteTokens_RoundTrip(t *testing.T) {
	tokens := NewInviteTokens("test-secret", time.Hour)

	token, err := tokens.Issue(12, 34)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &inviteClaims{}, func(t *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(*inviteClaims)
	require.True(t, ok)
	assert.Equal(t, "34", claims.Subject)
	assert.Equal(t, int64(12), claims.PartyID)
	require.NotNil(t, claims.ExpiresAt)

	partyID, participantID, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), partyID)
	assert.Equal(t, int64(34), participantID)
}

func TestInviteTokens_Verify_Rejects(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	signer := &inviteTokens{secret: []byte("s1"), ttl: time.Hour, now: func() time.Time { return issued }}
	token, err := signer.Issue(1, 2)
	require.NoError(t, err)

	tests := []struct {
		name     string
		verifier *inviteTokens
		token    string
	}{
		{"wrong secret", &inviteTokens{secret: []byte("s2"), now: func() time.Time { return issued }}, token},
		{"expired", &inviteTokens{secret: []byte("s1"), now: func() time.Time { return issued.Add(2 * time.Hour) }}, token},
		{"garbage", &inviteTokens{secret: []byte("s1"), now: time.Now}, "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.verifier.Verify(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestInviteTokens_NoExpiry(t *testing.T) {
	tokens := NewInviteTokens("s", 0)
	token, err := tokens.Issue(5, 6)
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, &inviteClaims{})
	require.NoError(t, err)
	assert.Nil(t, parsed.Claims.(*inviteClaims).ExpiresAt)
}
