package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/depositdefenders/accounts-service/internal/domain"
	"github.com/depositdefenders/accounts-service/internal/events"
	"github.com/depositdefenders/accounts-service/internal/mail"
)

// NotificationService turns account events into transactional email. Send
// failures are logged out-of-band and never propagate to the flow that
// published the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     mail.Sender
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender mail.Sender, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAccountCreated, n.handleAccountCreated)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
}

func (n *NotificationService) handleAccountCreated(ctx context.Context, event events.Event) error {
	plan := domain.PlanFree
	if payload, ok := event.Payload.(events.AccountCreatedPayload); ok {
		plan = payload.Plan
	}

	if err := n.sender.SendWelcome(ctx, event.Email, plan); err != nil {
		n.logger.Error("welcome email failed",
			zap.String("user_id", event.UserID),
			zap.String("email", event.Email),
			zap.Error(err))
		return err
	}

	n.logger.Info("welcome email sent", zap.String("user_id", event.UserID))
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		n.logger.Error("password reset event with unexpected payload", zap.String("user_id", event.UserID))
		return nil
	}

	if err := n.sender.SendPasswordReset(ctx, event.Email, payload.ResetToken); err != nil {
		n.logger.Error("password reset email failed",
			zap.String("user_id", event.UserID),
			zap.String("email", event.Email),
			zap.Error(err))
		return err
	}

	n.logger.Info("password reset email sent", zap.String("user_id", event.UserID))
	return nil
}
