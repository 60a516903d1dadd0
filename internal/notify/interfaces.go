// internal/notify/interfaces.go
package notify

import (
	"context"
	"time"

	"marketplace-notify/internal/models"
)

// CatalogStore looks up the notification catalog: events, their templates,
// and per-user preference overrides.
type CatalogStore interface {
	FindEventByKey(ctx context.Context, key string) (models.NotificationEvent, bool, error)
	FindActiveTemplate(ctx context.Context, eventID, recipientType string) (models.NotificationTemplate, bool, error)
	FindPreference(ctx context.Context, userID, eventID string) (models.UserNotificationPreference, bool, error)
}

// GateStore is the shared key/value store backing deduplication and rate
// limiting. Increment and claim operations must be atomic under concurrent
// callers for the same key.
type GateStore interface {
	Get(ctx context.Context, key string) (count int64, exists bool, err error)
	// IncrementWithTTL atomically increments key and sets ttl only on the
	// first write of the window.
	IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// SetIfAbsent atomically claims key for ttl; false means it was already
	// claimed.
	SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// MailTransport delivers a rendered email.
type MailTransport interface {
	SendMail(ctx context.Context, toAddress, subject, body, actionURL string) error
}

// Broadcaster publishes a realtime event on a named channel.
type Broadcaster interface {
	Publish(ctx context.Context, channelName, eventName string, payload any) error
}

// PushTransport delivers one payload to one subscription endpoint. gone is
// true when the endpoint reports the subscription no longer exists (HTTP 410
// or a protocol-level expiry).
type PushTransport interface {
	SendPush(ctx context.Context, sub models.PushSubscription, payloadJSON []byte) (delivered bool, gone bool, err error)
}

// SubscriptionStore manages push subscription lifecycle state.
type SubscriptionStore interface {
	ActiveByUser(ctx context.Context, userID string) ([]models.PushSubscription, error)
	// MarkDelivered sets lastSentAt, clears failedAt and ensures the
	// subscription is active.
	MarkDelivered(ctx context.Context, subscriptionID string, at time.Time) error
	// MarkFailed sets failedAt and deactivates the subscription. The row is
	// retained for audit and excluded from future fan-outs until the client
	// re-subscribes.
	MarkFailed(ctx context.Context, subscriptionID string, at time.Time) error
}

// InAppStore persists a record in the user's in-app notification list.
type InAppStore interface {
	Create(ctx context.Context, userID, notificationType string, data map[string]any) error
}

// AuditStore appends immutable dispatch records.
type AuditStore interface {
	Append(ctx context.Context, entry models.NotificationLog) error
}

// ChannelSender performs one channel-specific delivery. It returns false on
// any failure and never lets an error escape its own boundary.
type ChannelSender interface {
	Dispatch(ctx context.Context, user models.User, event models.NotificationEvent, tmpl models.NotificationTemplate, variables map[string]any) bool
}

// Result is the outcome of one Send call.
type Result struct {
	Success  bool            `json:"success"`
	Channels []string        `json:"channels"`
	Results  map[string]bool `json:"results"`
	Error    string          `json:"error,omitempty"`
}
