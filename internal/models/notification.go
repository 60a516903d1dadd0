// internal/models/notification.go
package models

import "time"

// Channel identifies one of the four delivery mechanisms.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelToast    Channel = "toast"
	ChannelPush     Channel = "push"
	ChannelDatabase Channel = "database"
)

// ChannelOrder is the fixed dispatch order. Order carries no delivery
// semantics but keeps logs and tests deterministic.
var ChannelOrder = []Channel{ChannelEmail, ChannelToast, ChannelPush, ChannelDatabase}

// Recipient types a user can play for an event.
const (
	RecipientCustomer = "customer"
	RecipientProvider = "provider"
	RecipientAdmin    = "admin"
)

// NotificationEvent is an immutable catalog entry, looked up by key
// (e.g. "booking.created"). An inactive event makes dispatch a no-op.
type NotificationEvent struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// NotificationTemplate holds per-channel content and enablement for one
// (event, recipientType) pair.
type NotificationTemplate struct {
	ID            string `json:"id"`
	EventID       string `json:"eventId"`
	RecipientType string `json:"recipientType"` // "customer", "provider", "admin"
	IsActive      bool   `json:"isActive"`

	Email EmailTemplate `json:"email"`
	Toast ToastTemplate `json:"toast"`
	Push  PushTemplate  `json:"push"`
	InApp InAppTemplate `json:"inApp"`
}

type EmailTemplate struct {
	Enabled   bool   `json:"enabled"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	ActionURL string `json:"actionUrl,omitempty"`
}

type ToastTemplate struct {
	Enabled   bool   `json:"enabled"`
	Title     string `json:"title,omitempty"`
	Message   string `json:"message"`
	ActionURL string `json:"actionUrl,omitempty"`
}

type PushTemplate struct {
	Enabled   bool   `json:"enabled"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	ActionURL string `json:"actionUrl,omitempty"`
	Icon      string `json:"icon,omitempty"`
}

type InAppTemplate struct {
	Enabled   bool   `json:"enabled"`
	Title     string `json:"title,omitempty"`
	Message   string `json:"message"`
	ActionURL string `json:"actionUrl,omitempty"`
}

// ChannelEnabled reports the template-level flag for ch.
func (t NotificationTemplate) ChannelEnabled(ch Channel) bool {
	switch ch {
	case ChannelEmail:
		return t.Email.Enabled
	case ChannelToast:
		return t.Toast.Enabled
	case ChannelPush:
		return t.Push.Enabled
	case ChannelDatabase:
		return t.InApp.Enabled
	}
	return false
}

// UserNotificationPreference is an optional per-(user, event) override of the
// template's channel flags. A nil field means "defer to template default".
type UserNotificationPreference struct {
	UserID  string `json:"userId"`
	EventID string `json:"eventId"`
	Email   *bool  `json:"email,omitempty"`
	Toast   *bool  `json:"toast,omitempty"`
	Push    *bool  `json:"push,omitempty"`
	InApp   *bool  `json:"inApp,omitempty"`
}

// Override returns the per-channel override, or nil when absent.
func (p UserNotificationPreference) Override(ch Channel) *bool {
	switch ch {
	case ChannelEmail:
		return p.Email
	case ChannelToast:
		return p.Toast
	case ChannelPush:
		return p.Push
	case ChannelDatabase:
		return p.InApp
	}
	return nil
}

// PushSubscription belongs to exactly one user. Upserts are keyed on the
// unique endpoint. A subscription is marked inactive, never deleted, when the
// push transport reports the endpoint gone.
type PushSubscription struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Endpoint   string     `json:"endpoint"`
	P256dhKey  string     `json:"p256dhKey"`
	AuthKey    string     `json:"authKey"`
	IsActive   bool       `json:"isActive"`
	LastSentAt *time.Time `json:"lastSentAt,omitempty"`
	FailedAt   *time.Time `json:"failedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// NotificationLog is the append-only audit record for one dispatch that
// passed the gating checks. Never mutated after creation.
type NotificationLog struct {
	ID            string          `json:"id"`
	EventID       string          `json:"eventId"`
	TemplateID    string          `json:"templateId"`
	UserID        string          `json:"userId"`
	RecipientType string          `json:"recipientType"`
	Variables     map[string]any  `json:"variables,omitempty"`
	Channels      []string        `json:"channels"`
	Results       map[string]bool `json:"results"`
	Success       bool            `json:"success"`
	CreatedAt     time.Time       `json:"createdAt"`
}
