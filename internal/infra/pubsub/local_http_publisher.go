package pubsub

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"etwin/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// localHTTPMailer implements Mailer by sending HTTP POST requests
// to a local endpoint, simulating Pub/Sub push behavior for development
type localHTTPMailer struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// PushMessage represents the structure of a Pub/Sub push message
// This mimics the format Google Pub/Sub uses when pushing to HTTP endpoints
type PushMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// NewLocalHTTPMailer creates a new local HTTP mailer for development
func NewLocalHTTPMailer(endpoint string, logger *slog.Logger) service.Mailer {
	return &localHTTPMailer{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Send posts the email to the local endpoint
func (m *localHTTPMailer) Send(ctx context.Context, email *service.OutboundEmail) error {
	emailData, err := json.Marshal(email)
	if err != nil {
		return errors.WithStack(err)
	}

	pushMsg := PushMessage{
		Subscription: "projects/local/subscriptions/email-sub",
	}
	pushMsg.Message.Data = base64.StdEncoding.EncodeToString(emailData)
	pushMsg.Message.MessageID = uuid.NewString()
	pushMsg.Message.PublishTime = time.Now().UTC().Format(time.RFC3339)
	pushMsg.Message.Attributes = emailAttributes(email)

	body, err := json.Marshal(pushMsg)
	if err != nil {
		return errors.WithStack(err)
	}

	m.logger.Info("[LocalPubSub] Publishing email",
		slog.String("endpoint", m.endpoint),
		slog.String("message_id", pushMsg.Message.MessageID),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Add X-Request-Id header for tracing
	if email.RequestID != "" {
		req.Header.Set("X-Request-Id", email.RequestID)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("mail worker returned non-success status: %d", resp.StatusCode)
	}

	return nil
}

// Close releases resources (no-op for HTTP client)
func (m *localHTTPMailer) Close() error {
	return nil
}

// emailAttributes never carries the recipient: attributes are visible to
// every subscriber of the topic.
func emailAttributes(email *service.OutboundEmail) map[string]string {
	attributes := map[string]string{"kind": "email"}
	if email.RequestID != "" {
		attributes["request_id"] = email.RequestID
	}

	return attributes
}
