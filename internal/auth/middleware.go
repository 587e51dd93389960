package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/depositdefenders/accounts-service/internal/domain"
	"github.com/depositdefenders/accounts-service/internal/repository"
	apperrors "github.com/depositdefenders/accounts-service/pkg/util"
)

const identityKey = "auth_identity"

// TokenCookieName is the HTTP-only cookie carrying the identity token.
const TokenCookieName = "auth-token"

// Identity is the authenticated caller: the verified claims plus the live
// directory record they resolve to.
type Identity struct {
	Claims *Claims
	User   *domain.User
}

// Middleware validates bearer or cookie tokens and loads the caller.
type Middleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewMiddleware constructs the route guard.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes. The token may arrive
// as an Authorization bearer header or in the auth cookie.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	tokenStr := bearerToken(c)
	if tokenStr == "" {
		tokenStr = c.Cookies(TokenCookieName)
	}
	if tokenStr == "" {
		return apperrors.NewUnauthorized("missing credentials")
	}

	claims := m.tokens.Verify(tokenStr)
	if claims == nil {
		return apperrors.NewUnauthorized("invalid or expired token")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid or expired token")
		}
		return apperrors.ToDomainError(err)
	}

	c.Locals(identityKey, &Identity{Claims: claims, User: user})
	return c.Next()
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (*Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*Identity)
	return identity, ok
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
