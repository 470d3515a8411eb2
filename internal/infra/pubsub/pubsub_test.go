package pubsub

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"etwin/config"
	"etwin/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLocalHTTPMailer_Send(t *testing.T) {
	var received PushMessage
	var requestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get("X-Request-Id")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	mailer := NewLocalHTTPMailer(server.URL, newDiscardLogger())
	email := &service.OutboundEmail{RequestID: "req-1", To: "alice@example.com", Title: "Hello", TextBody: "body"}

	require.NoError(t, mailer.Send(context.Background(), email))

	assert.Equal(t, "req-1", requestID)
	assert.Equal(t, "email", received.Message.Attributes["kind"])
	assert.NotContains(t, received.Message.Attributes, "to")

	data, err := base64.StdEncoding.DecodeString(received.Message.Data)
	require.NoError(t, err)
	var decoded service.OutboundEmail
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *email, decoded)
}

func TestLocalHTTPMailer_SendRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	mailer := NewLocalHTTPMailer(server.URL, newDiscardLogger())
	err := mailer.Send(context.Background(), &service.OutboundEmail{To: "bob@example.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNewMailer(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.PubSubConfig
		wantErr string
	}{
		{name: "missing section uses noop"},
		{name: "noop provider", cfg: &config.PubSubConfig{Provider: config.PubSubProviderNoop}},
		{name: "local provider", cfg: &config.PubSubConfig{Provider: config.PubSubProviderLocal, LocalEndpoint: "http://localhost:9999"}},
		{name: "local provider without endpoint", cfg: &config.PubSubConfig{Provider: config.PubSubProviderLocal}, wantErr: "local endpoint"},
		{name: "google provider without project", cfg: &config.PubSubConfig{Provider: config.PubSubProviderGoogle}, wantErr: "project ID"},
		{name: "google provider without topic", cfg: &config.PubSubConfig{Provider: config.PubSubProviderGoogle, ProjectID: "p"}, wantErr: "topic ID"},
		{name: "unknown provider", cfg: &config.PubSubConfig{Provider: "carrier-pigeon"}, wantErr: "unknown pubsub provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := fxtest.NewLifecycle(t)
			mailer, err := NewMailer(MailerParams{
				Lc:     lc,
				Ctx:    context.Background(),
				Config: &config.Config{PubSub: tt.cfg},
				Logger: newDiscardLogger(),
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}
			require.NoError(t, err)
			assert.NotNil(t, mailer)
		})
	}
}

func TestNoopMailer(t *testing.T) {
	mailer := NewNoopMailer(newDiscardLogger())

	assert.NoError(t, mailer.Send(context.Background(), &service.OutboundEmail{To: "carol@example.com"}))
	assert.NoError(t, mailer.Close())
}
