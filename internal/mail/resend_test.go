package mail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/depositdefenders/accounts-service/internal/config"
)

func TestExpiryPhrase(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ttl  time.Duration
		want string
	}{
		{60 * time.Minute, "1 hour"},
		{2 * time.Hour, "2 hours"},
		{90 * time.Minute, "90 minutes"},
		{1 * time.Minute, "1 minute"},
		{0, "1 hour"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, expiryPhrase(tc.ttl))
	}
}

func TestResetEmailBody_MatchesConfiguredTTL(t *testing.T) {
	t.Parallel()

	cfg := config.EmailConfig{SiteURL: "https://depositdefenders.com/"}
	sender := NewResendSender(cfg, 30*time.Minute).(*resendSender)

	body := sender.resetEmailBody("tok-123")
	require.Contains(t, body, "The link expires in 30 minutes.")
	require.Contains(t, body, `"https://depositdefenders.com/reset-password?token=tok-123"`)
	require.NotContains(t, body, "one hour")
}

func TestSendWithoutAPIKey(t *testing.T) {
	t.Parallel()

	sender := NewResendSender(config.EmailConfig{}, time.Hour)
	require.ErrorIs(t, sender.SendWelcome(context.Background(), "a@b.com", "free"), ErrNotConfigured)
	require.ErrorIs(t, sender.SendPasswordReset(context.Background(), "a@b.com", "tok"), ErrNotConfigured)
}
