package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"opsplan-service/internal/domain/entity"
	"opsplan-service/internal/domain/repository"
	"opsplan-service/pkg/logger"
)

// WebhookNotifier delivers reminders to the surrounding notification
// service over HTTP. It is the default NotifierRepository implementation.
type WebhookNotifier struct {
	logger      logger.Logger
	baseURL     string
	bearerToken string
	client      *http.Client
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier(baseURL, bearerToken string, log logger.Logger) repository.NotifierRepository {
	return &WebhookNotifier{
		logger:      log,
		baseURL:     baseURL,
		bearerToken: bearerToken,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type webhookMessage struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// SendReminder posts the rendered reminder to the notification endpoint
func (n *WebhookNotifier) SendReminder(ctx context.Context, recipient string, message *entity.RenderedMessage) error {
	payload := webhookMessage{
		Recipient: recipient,
		Subject:   message.Subject,
		Body:      message.Body,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/notifications/send", n.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return fmt.Errorf("notification service returned status %d: %v", resp.StatusCode, errorBody)
	}

	n.logger.Info("Reminder delivered",
		"recipient", recipient,
		"subject", message.Subject)
	return nil
}
