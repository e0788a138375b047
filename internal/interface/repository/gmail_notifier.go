package repository

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"opsplan-service/internal/domain/entity"
	"opsplan-service/internal/domain/repository"
	"opsplan-service/pkg/logger"
)

// GmailNotifier delivers reminders as email through the Gmail API. Selected
// by configuration when the surrounding deployment has no notification
// service to post webhooks to.
type GmailNotifier struct {
	service *gmail.Service
	sender  string
	logger  logger.Logger
}

// NewGmailNotifier creates a new Gmail notifier
func NewGmailNotifier(ctx context.Context, tokenSource oauth2.TokenSource, sender string, log logger.Logger) (repository.NotifierRepository, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &GmailNotifier{
		service: service,
		sender:  sender,
		logger:  log,
	}, nil
}

// SendReminder sends the rendered reminder to the recipient's address
func (n *GmailNotifier) SendReminder(ctx context.Context, recipient string, message *entity.RenderedMessage) error {
	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		n.sender, recipient, message.Subject, message.Body)

	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	if _, err := n.service.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to send reminder mail: %w", err)
	}

	n.logger.Info("Reminder mail sent",
		"recipient", recipient,
		"subject", message.Subject)
	return nil
}
