// internal/notify/pushclient.go
package notify

import (
	"context"
	"time"

	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/common/metrics"
	"marketplace-notify/internal/models"
)

// PushDeliveryClient fans a payload out to all of a user's active push
// subscriptions and maintains per-subscription delivery state.
type PushDeliveryClient struct {
	subs      SubscriptionStore
	transport PushTransport
	logger    logger.Logger
	now       func() time.Time
}

func NewPushDeliveryClient(subs SubscriptionStore, transport PushTransport, log logger.Logger) *PushDeliveryClient {
	return &PushDeliveryClient{
		subs:      subs,
		transport: transport,
		logger:    log.WithFields(map[string]interface{}{"component": "push-delivery"}),
		now:       time.Now,
	}
}

// SendAll attempts delivery to every active subscription and returns the
// number of successes. Zero active subscriptions is an expected steady state,
// not an error.
func (c *PushDeliveryClient) SendAll(ctx context.Context, user models.User, payloadJSON []byte) int {
	subs, err := c.subs.ActiveByUser(ctx, user.ID)
	if err != nil {
		c.logger.Error("failed to load push subscriptions", map[string]interface{}{
			"userId": user.ID,
			"error":  err,
		})
		return 0
	}

	if len(subs) == 0 {
		c.logger.Info("no active push subscriptions", map[string]interface{}{
			"userId": user.ID,
		})
		return 0
	}

	sent := 0
	for _, sub := range subs {
		delivered, gone, err := c.transport.SendPush(ctx, sub, payloadJSON)
		switch {
		case delivered:
			if err := c.subs.MarkDelivered(ctx, sub.ID, c.now()); err != nil {
				c.logger.Warn("failed to record push delivery", map[string]interface{}{
					"subscriptionId": sub.ID,
					"error":          err,
				})
			}
			sent++
		case gone:
			c.logger.Warn("push subscription gone, deactivating", map[string]interface{}{
				"subscriptionId": sub.ID,
				"endpoint":       sub.Endpoint,
			})
			c.markFailed(ctx, sub)
		default:
			// Transient and permanent failures are treated identically: the
			// subscription is deactivated and a later re-subscribe revives it.
			c.logger.Error("push delivery failed", map[string]interface{}{
				"subscriptionId": sub.ID,
				"endpoint":       sub.Endpoint,
				"error":          err,
			})
			c.markFailed(ctx, sub)
		}
	}

	return sent
}

func (c *PushDeliveryClient) markFailed(ctx context.Context, sub models.PushSubscription) {
	if err := c.subs.MarkFailed(ctx, sub.ID, c.now()); err != nil {
		c.logger.Error("failed to deactivate push subscription", map[string]interface{}{
			"subscriptionId": sub.ID,
			"error":          err,
		})
		return
	}
	metrics.PushSubscriptionsDeactivated.Inc()
}
