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

	"github.com/loftstay/loftstay-backend/pkg/config"
	"github.com/loftstay/loftstay-backend/pkg/logger"
)

// Client owns the Pub/Sub connection used by the sync worker.
type Client struct {
	ps      *pubsub.Client
	project string
	cfg     config.PubSubConfig
}

// NewClient connects to Pub/Sub and verifies that the reservations
// subscription exists. A subscription attached to a different topic than
// configured is logged but accepted.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, errors.New("gcp project id is required")
	}
	if strings.TrimSpace(cfg.ReservationsSubscription) == "" {
		return nil, errors.New("reservations subscription is required")
	}

	var opts []option.ClientOption
	if creds := strings.TrimSpace(gcp.CredentialsJSON); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}
	ps, err := pubsub.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	c := &Client{ps: ps, project: project, cfg: cfg}
	topic, err := c.subscriptionTopic(ctx)
	if err != nil {
		_ = ps.Close()
		return nil, err
	}
	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"subscription": c.subscriptionPath(),
			"topic":        topic,
		})
		if want := resourceName(project, "topics", cfg.ReservationsTopic); want != "" && want != topic {
			logg.Warn(logg.WithField(ctx, "configured_topic", want), "reservations subscription is attached to an unexpected topic")
		}
		logg.Info(ctx, "pubsub client ready")
	}
	return c, nil
}

func (c *Client) subscriptionPath() string {
	return resourceName(c.project, "subscriptions", c.cfg.ReservationsSubscription)
}

// subscriptionTopic fetches the subscription and returns the topic it reads from.
func (c *Client) subscriptionTopic(ctx context.Context) (string, error) {
	sub, err := c.ps.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{
		Subscription: c.subscriptionPath(),
	})
	switch {
	case status.Code(err) == codes.NotFound:
		return "", fmt.Errorf("subscription %s does not exist", c.subscriptionPath())
	case err != nil:
		return "", fmt.Errorf("get subscription %s: %w", c.subscriptionPath(), err)
	}
	return sub.GetTopic(), nil
}

// ReservationsSubscription returns a subscriber with the configured flow control.
func (c *Client) ReservationsSubscription() *pubsub.Subscriber {
	if c == nil || c.ps == nil {
		return nil
	}
	sub := c.ps.Subscriber(c.subscriptionPath())
	if c.cfg.MaxOutstandingMessages > 0 {
		sub.ReceiveSettings.MaxOutstandingMessages = c.cfg.MaxOutstandingMessages
	}
	if c.cfg.NumGoroutines > 0 {
		sub.ReceiveSettings.NumGoroutines = c.cfg.NumGoroutines
	}
	return sub
}

func (c *Client) Close() error {
	if c == nil || c.ps == nil {
		return nil
	}
	return c.ps.Close()
}

// resourceName expands a short id to projects/<project>/<kind>/<id>. Names
// that are already fully qualified pass through.
func resourceName(project, kind, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "projects/") && strings.Contains(name, "/"+kind+"/") {
		return name
	}
	project = strings.TrimSpace(project)
	if project == "" {
		return ""
	}
	return "projects/" + project + "/" + kind + "/" + name
}
