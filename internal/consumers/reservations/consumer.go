// Package reservations reconciles a unit's calendar whenever the booking flow
// publishes a reservation change.
package reservations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/loftstay/loftstay-backend/internal/availsync"
	"github.com/loftstay/loftstay-backend/pkg/enums"
	pkgerrors "github.com/loftstay/loftstay-backend/pkg/errors"
	"github.com/loftstay/loftstay-backend/pkg/logger"
)

const consumerName = "availability-sync"

type synchronizer interface {
	SynchronizeAvailability(ctx context.Context, unitID uuid.UUID) (*availsync.Summary, error)
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer acks malformed or unknown messages after logging them. Failed
// reconciliation is nacked for redelivery only when the error is retryable.
type Consumer struct {
	sync         synchronizer
	manager      idempotencyChecker
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

func NewConsumer(sync synchronizer, manager idempotencyChecker, subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if sync == nil {
		return nil, errors.New("availability synchronizer is required")
	}
	if manager == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if subscription == nil {
		return nil, errors.New("reservations subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{
		sync:         sync,
		manager:      manager,
		subscription: subscription,
		logg:         logg,
	}, nil
}

// Run processes messages until the context is canceled or the subscription errors.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// processResult tells Run whether to redeliver; anything else is acked.
type processResult struct {
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	logCtx := c.logg.WithField(ctx, "message_id", msg.ID)

	var envelope Envelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode reservation event", err)
		return processResult{}
	}

	rawType := strings.TrimSpace(msg.Attributes[attributeEventType])
	if rawType == "" {
		rawType = string(envelope.EventType)
	}
	eventType, err := enums.ParseReservationEventType(rawType)
	if err != nil {
		c.logg.Info(c.logg.WithField(logCtx, "event_type", rawType), "skipping unhandled event type")
		return processResult{}
	}

	eventID, err := uuid.Parse(strings.TrimSpace(envelope.EventID))
	if err != nil {
		c.logg.Error(logCtx, "reservation event has no valid event id", err)
		return processResult{}
	}

	var payload ReservationPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to decode reservation payload", err)
		return processResult{}
	}
	if payload.UnitID == uuid.Nil {
		c.logg.Error(logCtx, "reservation payload missing unit id", fmt.Errorf("event %s", eventID))
		return processResult{}
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"event_id":       eventID.String(),
		"event_type":     eventType.String(),
		"reservation_id": payload.ReservationID.String(),
	})
	logCtx = c.logg.WithUnitID(logCtx, payload.UnitID.String())

	already, err := c.manager.CheckAndMarkProcessed(logCtx, consumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "reservation event already processed")
		return processResult{}
	}

	if _, err := c.sync.SynchronizeAvailability(logCtx, payload.UnitID); err != nil {
		c.logg.Error(logCtx, "availability sync failed", err)
		if !pkgerrors.Retryable(err) {
			return processResult{}
		}
		if delErr := c.manager.Delete(logCtx, consumerName, eventID); delErr != nil {
			c.logg.Warn(logCtx, "failed to clear idempotency key")
		}
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "reservation event reconciled")
	return processResult{}
}
