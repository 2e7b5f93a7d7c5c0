package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"moviemate/internal/domain"
)

const inviteAudience = "watch-party-invite"

type inviteClaims struct {
	jwt.RegisteredClaims
	PartyID int64 `json:"party_id"`
}

type inviteTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// InviteTokens issues and verifies the signed links mailed to participants.
type InviteTokens interface {
	domain.InviteTokenIssuer
	domain.InviteTokenVerifier
}

// NewInviteTokens returns HS256 invite tokens signed with secret. A ttl of zero means tokens never expire.
func NewInviteTokens(secret string, ttl time.Duration) InviteTokens {
	return &inviteTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *inviteTokens) Issue(partyID, participantID int64) (string, error) {
	now := i.now()
	claims := inviteClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  strconv.FormatInt(participantID, 10),
			Audience: jwt.ClaimStrings{inviteAudience},
			IssuedAt: jwt.NewNumericDate(now),
		},
		PartyID: partyID,
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign invite token: %w", err)
	}
	return tokenString, nil
}

func (i *inviteTokens) Verify(tokenString string) (int64, int64, error) {
	claims := &inviteClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(inviteAudience),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid invite token: %w", err)
	}
	participantID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.PartyID <= 0 || participantID <= 0 {
		return 0, 0, errors.New("invalid invite token: malformed claims")
	}
	return claims.PartyID, participantID, nil
}
