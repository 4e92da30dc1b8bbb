// Package pubsub connects the storefront event pipeline to Google Cloud Pub/Sub.
// The API publishes to the analytics topic; the analytics worker drains its
// subscription.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/bookverse-backend/pkg/config"
	"github.com/angelmondragon/bookverse-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoTopic           = errors.New("pubsub analytics topic is required")
	errNoSubscription    = errors.New("pubsub analytics subscription is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

type Client struct {
	ps           *pubsub.Client
	projectID    string
	topic        string
	subscription string
}

// NewClient connects and fails fast when the analytics topic is missing.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	c := &Client{
		projectID:    projectID,
		topic:        strings.TrimSpace(cfg.AnalyticsTopic),
		subscription: strings.TrimSpace(cfg.AnalyticsSubscription),
	}
	if c.topic == "" {
		return nil, errNoTopic
	}

	ps, err := pubsub.NewClient(ctx, projectID, credentials(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}
	c.ps = ps
	if err := c.Ping(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "topic", c.topic), "pubsub.ready")
	}
	return c, nil
}

func credentials(gcp config.GCPConfig) []option.ClientOption {
	if js := strings.TrimSpace(gcp.CredentialsJSON); js != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(js))}
	}
	if file := strings.TrimSpace(gcp.ApplicationCredentials); file != "" {
		return []option.ClientOption{option.WithCredentialsFile(file)}
	}
	return nil
}

// Ping looks up the analytics topic.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.ps == nil {
		return errNotInitialized
	}
	_, err := c.ps.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: c.resource("topics", c.topic)})
	return lookupError("topic", c.topic, err)
}

// EnsureSubscription looks up the analytics subscription drained by the worker.
func (c *Client) EnsureSubscription(ctx context.Context) error {
	if c == nil || c.ps == nil {
		return errNotInitialized
	}
	if c.subscription == "" {
		return errNoSubscription
	}
	_, err := c.ps.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{
		Subscription: c.resource("subscriptions", c.subscription),
	})
	return lookupError("subscription", c.subscription, err)
}

func lookupError(kind, name string, err error) error {
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("pubsub %s %q does not exist", kind, name)
	default:
		return fmt.Errorf("pubsub %s %q: %w", kind, name, err)
	}
}

// AnalyticsPublisher returns nil on a nil client.
func (c *Client) AnalyticsPublisher() *pubsub.Publisher {
	if c == nil || c.ps == nil {
		return nil
	}
	return c.ps.Publisher(c.resource("topics", c.topic))
}

// AnalyticsSubscription returns nil on a nil client or when no subscription is configured.
func (c *Client) AnalyticsSubscription() *pubsub.Subscriber {
	if c == nil || c.ps == nil || c.subscription == "" {
		return nil
	}
	return c.ps.Subscriber(c.resource("subscriptions", c.subscription))
}

func (c *Client) Close() error {
	if c == nil || c.ps == nil {
		return nil
	}
	return c.ps.Close()
}

// resource expands a bare id to projects/<project>/<kind>/<id>. Full
// resource names pass through unchanged.
func (c *Client) resource(kind, name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, "projects/") {
		return name
	}
	return "projects/" + c.projectID + "/" + kind + "/" + name
}
