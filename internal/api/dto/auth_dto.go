package dto

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/depositdefenders/accounts-service/internal/domain"
)

// MinPasswordLength is the signup password policy. Earlier revisions of the
// product wavered between 6 and 8; 8 is the policy, enforced only here.
const MinPasswordLength = 8

// SignupRequest payload for account creation.
type SignupRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Plan     domain.Plan `json:"plan"`
}

// Validate runs field-level validation rules.
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 0)),
		validation.Field(&r.Plan, validation.Required, validation.In(domain.PlanFree, domain.PlanPro)),
	)
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate runs field-level validation rules.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// PasswordResetRequest payload for requesting a reset link.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// Validate runs field-level validation rules.
func (r PasswordResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// PasswordResetConfirmRequest payload for completing a reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Validate runs field-level validation rules.
func (r PasswordResetConfirmRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(MinPasswordLength, 0)),
	)
}

// AuthResponse is the success payload for signup and login.
type AuthResponse struct {
	Success   bool              `json:"success"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      domain.PublicUser `json:"user"`
}

// ValidationDetails flattens ozzo field errors into the error-response
// details map.
func ValidationDetails(err error) map[string]any {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return nil
	}
	details := make(map[string]any, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		details[field] = fieldErr.Error()
	}
	return details
}
