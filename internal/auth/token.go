package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/depositdefenders/accounts-service/internal/domain"
)

// Issuer/audience pair every identity token is bound to.
const (
	TokenIssuer   = "deposit-defenders"
	TokenAudience = "deposit-defenders-users"
)

// ErrMissingSecret is returned at issue time when no signing secret is
// configured. Checked at call time so the absence surfaces as an explicit
// error at first use instead of a silent insecure default.
var ErrMissingSecret = errors.New("token signing secret is not configured")

// TokenManager issues and verifies signed identity tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a manager with the given lifetime in days (7 when
// unset).
func NewTokenManager(secret string, ttlDays int) *TokenManager {
	if ttlDays <= 0 {
		ttlDays = 7
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlDays) * 24 * time.Hour}
}

// TTL returns the token lifetime; the auth cookie max age mirrors it.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Claims is the identity asserted by a token.
type Claims struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Plan   domain.Plan `json:"plan"`
	jwt.RegisteredClaims
}

// Issue builds and signs an identity token for the user.
func (tm *TokenManager) Issue(userID, email string, plan domain.Plan) (string, time.Time, error) {
	if len(tm.secret) == 0 {
		return "", time.Time{}, ErrMissingSecret
	}

	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Plan:   plan,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify validates signature, issuer, audience, expiry and claim shape.
// On any failure it returns nil: callers treat "no claims" as
// unauthenticated, never as a crash.
func (tm *TokenManager) Verify(tokenStr string) *Claims {
	if len(tm.secret) == 0 {
		return nil
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithIssuer(TokenIssuer), jwt.WithAudience(TokenAudience))
	if err != nil {
		return nil
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil
	}
	// A token missing any required claim is invalid even with a good signature.
	if claims.UserID == "" || claims.Email == "" || !claims.Plan.Valid() {
		return nil
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil
	}
	return claims
}
