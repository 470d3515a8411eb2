package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"etwin/internal/domain/service"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// googlePubSubMailer implements Mailer using Google Cloud Pub/Sub
type googlePubSubMailer struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    *slog.Logger
}

// NewGooglePubSubMailer creates a new Google Pub/Sub mailer
// An empty credentialsPath falls back to the application default credentials.
func NewGooglePubSubMailer(ctx context.Context, projectID, topicID, credentialsPath string, logger *slog.Logger) (service.Mailer, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Check if topic exists using TopicAdminClient
	topicPath := fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	_, err = client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{
		Topic: topicPath,
	})
	if err != nil {
		client.Close()

		return nil, errors.Wrapf(err, "failed to get topic %s", topicID)
	}

	publisher := client.Publisher(topicID)

	logger.Info("Google Pub/Sub mailer initialized",
		slog.String("project_id", projectID),
		slog.String("topic_id", topicID),
	)

	return &googlePubSubMailer{
		client:    client,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// Send publishes the email and waits for the server acknowledgement
func (m *googlePubSubMailer) Send(ctx context.Context, email *service.OutboundEmail) error {
	data, err := json.Marshal(email)
	if err != nil {
		return errors.WithStack(err)
	}

	result := m.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: emailAttributes(email),
	})

	serverID, err := result.Get(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	m.logger.Info("[GooglePubSub] Email published",
		slog.String("server_id", serverID),
	)

	return nil
}

// Close releases Pub/Sub client resources
func (m *googlePubSubMailer) Close() error {
	if m.publisher != nil {
		m.publisher.Stop()
	}
	if m.client != nil {
		return errors.WithStack(m.client.Close())
	}

	return nil
}
