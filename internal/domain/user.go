package domain

import "time"

// Plan is the account tier gating feature access.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// Valid reports whether the plan is a known tier.
func (p Plan) Valid() bool {
	return p == PlanFree || p == PlanPro
}

// Subscription status values written by billing sync. Advisory only; access
// control never keys off them.
const (
	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
	SubscriptionPastDue  = "past_due"
)

// User is the directory record for an account.
type User struct {
	ID                 string
	Email              string
	PasswordHash       string
	Plan               Plan
	StripeCustomerID   string
	SubscriptionStatus string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PublicUser is the projection safe to echo to clients. The password hash and
// payment-provider reference never leave the server.
type PublicUser struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Plan               Plan   `json:"plan"`
	SubscriptionStatus string `json:"subscriptionStatus,omitempty"`
}

// Public returns the client-facing projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:                 u.ID,
		Email:              u.Email,
		Plan:               u.Plan,
		SubscriptionStatus: u.SubscriptionStatus,
	}
}
