// Package mail sends transactional email through Resend.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/depositdefenders/accounts-service/internal/config"
	"github.com/depositdefenders/accounts-service/internal/domain"
)

// ErrNotConfigured is returned when sends are attempted without an API key.
var ErrNotConfigured = errors.New("resend api key is not configured")

// Sender delivers account email. Welcome mail is advisory; reset mail is not.
type Sender interface {
	SendWelcome(ctx context.Context, email string, plan domain.Plan) error
	SendPasswordReset(ctx context.Context, email, resetToken string) error
}

type resendSender struct {
	client   *resend.Client
	from     string
	siteURL  string
	resetTTL time.Duration
}

// NewResendSender builds a Resend-backed sender. resetTTL is the reset-token
// lifetime, so the email's expiry wording always matches the actual policy.
func NewResendSender(cfg config.EmailConfig, resetTTL time.Duration) Sender {
	var client *resend.Client
	if cfg.ResendAPIKey != "" {
		client = resend.NewClient(cfg.ResendAPIKey)
	}
	return &resendSender{
		client:   client,
		from:     cfg.From,
		siteURL:  strings.TrimRight(cfg.SiteURL, "/"),
		resetTTL: resetTTL,
	}
}

func (s *resendSender) SendWelcome(ctx context.Context, email string, plan domain.Plan) error {
	if s.client == nil {
		return ErrNotConfigured
	}

	subject := fmt.Sprintf("Welcome to Deposit Defenders - %s Plan", titlePlan(plan))
	body := fmt.Sprintf(
		"<h1>Welcome to Deposit Defenders!</h1>"+
			"<p>Thank you for signing up for the %s plan. You're now protected against unfair deposit deductions.</p>"+
			"<p><a href=%q>Log in to get started</a></p>",
		titlePlan(plan), s.siteURL+"/login")

	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email},
		Subject: subject,
		Html:    body,
	})
	return err
}

func (s *resendSender) SendPasswordReset(ctx context.Context, email, resetToken string) error {
	if s.client == nil {
		return ErrNotConfigured
	}

	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email},
		Subject: "Reset Your Deposit Defenders Password",
		Html:    s.resetEmailBody(resetToken),
	})
	return err
}

func (s *resendSender) resetEmailBody(resetToken string) string {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.siteURL, resetToken)
	return fmt.Sprintf(
		"<h1>Reset Your Password</h1>"+
			"<p>We received a request to reset your Deposit Defenders account password. "+
			"The link expires in %s.</p>"+
			"<p><a href=%q>Reset Password</a></p>"+
			"<p>If you didn't request this, you can safely ignore this email.</p>",
		expiryPhrase(s.resetTTL), resetURL)
}

// expiryPhrase renders a token lifetime for email copy.
func expiryPhrase(ttl time.Duration) string {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if ttl%time.Hour == 0 {
		hours := int(ttl / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	minutes := int(ttl / time.Minute)
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

func titlePlan(plan domain.Plan) string {
	p := string(plan)
	if p == "" {
		return p
	}
	return strings.ToUpper(p[:1]) + p[1:]
}
