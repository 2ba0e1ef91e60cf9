package auth

import (
	"context"
	"log/slog"
)

// RecoveryNotifier delivers a password recovery token to the account owner.
type RecoveryNotifier interface {
	SendRecovery(ctx context.Context, user *User, token string) error
}

// LogRecoveryNotifier writes the recovery token to the structured log. It is
// the default when no mail transport is configured.
type LogRecoveryNotifier struct{}

// SendRecovery logs the token at info level.
func (LogRecoveryNotifier) SendRecovery(_ context.Context, user *User, token string) error {
	slog.Info("password recovery requested", "userId", user.ID, "email", user.Email, "recoveryToken", token)
	return nil
}
