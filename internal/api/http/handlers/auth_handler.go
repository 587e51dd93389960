package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/depositdefenders/accounts-service/internal/api/dto"
	"github.com/depositdefenders/accounts-service/internal/auth"
	"github.com/depositdefenders/accounts-service/internal/domain"
	"github.com/depositdefenders/accounts-service/internal/service"
	apperrors "github.com/depositdefenders/accounts-service/pkg/util"
)

// AuthHandler exposes signup, login and password-reset endpoints.
type AuthHandler struct {
	auth          *service.AuthService
	secureCookies bool
}

// NewAuthHandler constructs handler. secureCookies is on outside development.
func NewAuthHandler(authService *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: authService, secureCookies: secureCookies}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError("validation failed", dto.ValidationDetails(err))
	}

	user, token, exp, err := h.auth.Signup(c.Context(), req.Email, req.Password, req.Plan)
	if err != nil {
		return err
	}

	h.setAuthCookie(c, token, exp)
	return c.JSON(dto.AuthResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: exp,
		// Signup echoes only id/email/plan; subscription status is a login concern.
		User: domain.PublicUser{ID: user.ID, Email: user.Email, Plan: user.Plan},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError("validation failed", dto.ValidationDetails(err))
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setAuthCookie(c, token, exp)
	return c.JSON(dto.AuthResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: exp,
		User:      user.Public(),
	})
}

// Me handles GET /auth/me behind the auth middleware.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"user": identity.User.Public()})
}

// RequestPasswordReset handles POST /auth/password/reset/request. The
// response is the same whether or not the account exists.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError("validation failed", dto.ValidationDetails(err))
	}

	if _, err := h.auth.RequestPasswordReset(c.Context(), req.Email); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"message": "if the account exists, a reset link has been sent",
	})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError("validation failed", dto.ValidationDetails(err))
	}

	if err := h.auth.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// setAuthCookie mirrors the token's own expiry in the cookie max age so the
// two lifetimes stay in lockstep.
func (h *AuthHandler) setAuthCookie(c *fiber.Ctx, token string, exp time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(time.Until(exp).Seconds()),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
