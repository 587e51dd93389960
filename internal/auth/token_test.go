package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/depositdefenders/accounts-service/internal/domain"
)

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", 7)

	token, exp, err := tm.Issue("user-123", "a@b.com", domain.PlanPro)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(7*24*time.Hour), exp, time.Minute)

	claims := tm.Verify(token)
	require.NotNil(t, claims)
	require.Equal(t, "user-123", claims.UserID)
	require.Equal(t, "a@b.com", claims.Email)
	require.Equal(t, domain.PlanPro, claims.Plan)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
}

func TestIssue_MissingSecret(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("", 7)

	_, _, err := tm.Issue("u1", "a@b.com", domain.PlanFree)
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", 7)
	token, _, err := tm.Issue("u1", "a@b.com", domain.PlanFree)
	require.NoError(t, err)

	tampered := []byte(token)
	tampered[len(tampered)-1] ^= 0x01
	require.Nil(t, tm.Verify(string(tampered)))
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := NewTokenManager("right-secret", 7).Issue("u1", "a@b.com", domain.PlanFree)
	require.NoError(t, err)

	require.Nil(t, NewTokenManager("wrong-secret", 7).Verify(token))
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	tm := &TokenManager{secret: []byte("secret"), ttl: -time.Hour}
	token, _, err := tm.Issue("u1", "a@b.com", domain.PlanFree)
	require.NoError(t, err)

	require.Nil(t, NewTokenManager("secret", 7).Verify(token))
}

func TestVerify_WrongIssuerAudience(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	now := time.Now()
	claims := &Claims{
		UserID: "u1",
		Email:  "a@b.com",
		Plan:   domain.PlanFree,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Audience:  jwt.ClaimStrings{"other-users"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	require.Nil(t, NewTokenManager("secret", 7).Verify(token))
}

func TestVerify_IncompleteClaimShape(t *testing.T) {
	t.Parallel()

	// Correct signature, issuer and audience, but no userId/email/plan.
	secret := []byte("secret")
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    TokenIssuer,
		Audience:  jwt.ClaimStrings{TokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	require.Nil(t, NewTokenManager("secret", 7).Verify(token))
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	require.Nil(t, NewTokenManager("secret", 7).Verify("not.a.jwt"))
	require.Nil(t, NewTokenManager("secret", 7).Verify(""))
}
