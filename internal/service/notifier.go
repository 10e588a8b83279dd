package service

import (
	"fmt"

	"oms-api/internal/util"

	"go.uber.org/zap"
)

// Notifier is the notification sink. Send returns an acknowledgement
// string; delivery is fire-and-forget from the caller's perspective.
type Notifier interface {
	Send(recipient, message string) string
}

// EmailNotifier logs outgoing mail and returns the acknowledgement the
// API surfaces to clients.
type EmailNotifier struct {
	logger *zap.Logger
}

// NewEmailNotifier creates an email notifier
func NewEmailNotifier() *EmailNotifier {
	return &EmailNotifier{logger: util.GetLogger()}
}

// Send delivers a message to a recipient
func (n *EmailNotifier) Send(recipient, message string) string {
	n.logger.Info("Sending email",
		zap.String("recipient", recipient),
		zap.String("message", message))
	util.NotificationsSentTotal.Inc()
	return fmt.Sprintf("Email sent to %s: %s", recipient, message)
}
