// Package payment wraps the payment provider behind a narrow interface so
// flows depend on "create a customer", not on the Stripe SDK.
package payment

import (
	"context"
	"errors"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"github.com/depositdefenders/accounts-service/internal/config"
	"github.com/depositdefenders/accounts-service/internal/domain"
)

// ErrNotConfigured is returned when a paid signup arrives without a Stripe
// secret key; required only if pro signups are enabled.
var ErrNotConfigured = errors.New("stripe secret key is not configured")

// Provider creates payment-provider customers for paid signups.
type Provider interface {
	CreateCustomer(ctx context.Context, email string, plan domain.Plan) (string, error)
}

type stripeProvider struct {
	api *client.API
}

// NewStripeProvider builds a Stripe-backed provider. With no secret key it
// still constructs, failing at first use.
func NewStripeProvider(cfg config.StripeConfig) Provider {
	if cfg.SecretKey == "" {
		return &stripeProvider{}
	}
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &stripeProvider{api: api}
}

// CreateCustomer registers a customer keyed by email and returns its id.
func (p *stripeProvider) CreateCustomer(ctx context.Context, email string, plan domain.Plan) (string, error) {
	if p.api == nil {
		return "", ErrNotConfigured
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.AddMetadata("plan", string(plan))

	customer, err := p.api.Customers.New(params)
	if err != nil {
		return "", err
	}
	return customer.ID, nil
}
