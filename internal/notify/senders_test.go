// internal/notify/senders_test.go
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/models"
)

// ==========================
// Test Fakes
// ==========================

type fakeMailTransport struct {
	to, subject, body, actionURL string
	err                          error
	calls                        int
}

func (m *fakeMailTransport) SendMail(ctx context.Context, toAddress, subject, body, actionURL string) error {
	m.calls++
	m.to, m.subject, m.body, m.actionURL = toAddress, subject, body, actionURL
	return m.err
}

type fakeBroadcaster struct {
	channelName string
	eventName   string
	payload     any
	err         error
	calls       int
}

func (b *fakeBroadcaster) Publish(ctx context.Context, channelName, eventName string, payload any) error {
	b.calls++
	b.channelName, b.eventName, b.payload = channelName, eventName, payload
	return b.err
}

type fakeInAppStore struct {
	userID           string
	notificationType string
	data             map[string]any
	err              error
	calls            int
}

func (s *fakeInAppStore) Create(ctx context.Context, userID, notificationType string, data map[string]any) error {
	s.calls++
	s.userID, s.notificationType, s.data = userID, notificationType, data
	return s.err
}

func bookingEvent() models.NotificationEvent {
	return models.NotificationEvent{ID: "evt-1", Key: "booking.created", Name: "Booking Created", IsActive: true}
}

// ==========================
// Email Sender Tests
// ==========================

func TestEmailSender_Dispatch(t *testing.T) {
	transport := &fakeMailTransport{}
	sender := NewEmailSender(transport, logger.NewTestLogger(t))

	tmpl := allChannelsTemplate()
	tmpl.Email.Subject = "Booking for {service.name}"
	tmpl.Email.Body = "Hi {user.name}, you are confirmed."
	tmpl.Email.ActionURL = "/bookings/{booking_id}"

	vars := map[string]any{
		"user":       map[string]any{"name": "Maria"},
		"service":    map[string]any{"name": "Deep Clean"},
		"booking_id": "bk-1",
	}

	ok := sender.Dispatch(context.Background(), testUser(), bookingEvent(), tmpl, vars)

	require.True(t, ok)
	assert.Equal(t, "maria@example.com", transport.to)
	assert.Equal(t, "Booking for Deep Clean", transport.subject)
	assert.Equal(t, "Hi Maria, you are confirmed.", transport.body)
	assert.Equal(t, "/bookings/bk-1", transport.actionURL)
}

func TestEmailSender_Dispatch_TransportError(t *testing.T) {
	transport := &fakeMailTransport{err: errors.New("ses throttled")}
	sender := NewEmailSender(transport, logger.NewTestLogger(t))

	ok := sender.Dispatch(context.Background(), testUser(), bookingEvent(), allChannelsTemplate(), nil)

	assert.False(t, ok)
}

func TestEmailSender_Dispatch_ChannelDisabled(t *testing.T) {
	transport := &fakeMailTransport{}
	sender := NewEmailSender(transport, logger.NewTestLogger(t))

	tmpl := allChannelsTemplate()
	tmpl.Email.Enabled = false

	ok := sender.Dispatch(context.Background(), testUser(), bookingEvent(), tmpl, nil)

	assert.False(t, ok)
	assert.Zero(t, transport.calls)
}

// ==========================
// Toast Sender Tests
// ==========================

func TestToastSender_Dispatch(t *testing.T) {
	broadcast := &fakeBroadcaster{}
	sender := NewToastSender(broadcast, logger.NewTestLogger(t))

	tmpl := allChannelsTemplate()
	tmpl.Toast.Title = "Booking confirmed"
	tmpl.Toast.Message = "See you on {booking.date}"
	tmpl.Toast.ActionURL = "/bookings/{booking_id}"

	vars := map[string]any{
		"booking":    map[string]any{"date": "2026-09-01"},
		"booking_id": "bk-1",
	}

	ok := sender.Dispatch(context.Background(), testUser(), bookingEvent(), tmpl, vars)

	require.True(t, ok)
	assert.Equal(t, "private-user.u-1", broadcast.channelName)
	assert.Equal(t, ToastEventName, broadcast.eventName)

	payload, isMap := broadcast.payload.(map[string]any)
	require.True(t, isMap)
	assert.Equal(t, "Booking confirmed", payload["title"])
	assert.Equal(t, "See you on 2026-09-01", payload["message"])
	assert.Equal(t, "booking.created", payload["type"])
	assert.Equal(t, "/bookings/bk-1", payload["actionUrl"])
	assert.Equal(t, vars, payload["metadata"])
}

func TestToastSender_Dispatch_PublishError(t *testing.T) {
	broadcast := &fakeBroadcaster{err: errors.New("connection reset")}
	sender := NewToastSender(broadcast, logger.NewTestLogger(t))

	ok := sender.Dispatch(context.Background(), testUser(), bookingEvent(), allChannelsTemplate(), nil)

	assert.False(t, ok)
}

// ==========================
// Push Sender Tests
// ==========================

func newPushSenderFixture(t *testing.T, store *fakeSubscriptionStore, transport *fakePushTransport) *PushSender {
	client := NewPushDeliveryClient(store, transport, logger.NewTestLogger(t))
	return NewPushSender(client, "", logger.NewTestLogger(t))
}

func TestPushSender_Dispatch(t *testing.T) {
	store := &fakeSubscriptionStore{
		subs: []models.PushSubscription{subscription("sub-1", "ok")},
	}
	transport := &fakePushTransport{}
	sender := newPushSenderFixture(t, store, transport)

	tmpl := allChannelsTemplate()
	tmpl.Push.Title = "New booking"
	tmpl.Push.Body = "Booking {booking_id}"
	tmpl.Push.ActionURL = "/bookings/{booking_id}"

	ok := sender.Dispatch(context.Background(), testUser(), bookingEvent(), tmpl, map[string]any{"booking_id": "bk-1"})

	require.True(t, ok)
	require.Len(t, transport.payloads, 1)

	var payload PushPayload
	require.NoError(t, json.Unmarshal(transport.payloads[0], &payload))
	assert.Equal(t, "New booking", payload.Title)
	assert.Equal(t, "Booking bk-1", payload.Body)
	assert.Equal(t, DefaultPushIcon, payload.Icon)
	assert.Equal(t, DefaultPushBadge, payload.Badge)
	assert.Equal(t, "/bookings/bk-1", payload.Data.URL)
	assert.Equal(t, "booking.created", payload.Data.EventKey)
}

func TestPushSender_Dispatch_TemplateIconOverridesDefault(t *testing.T) {
	store := &fakeSubscriptionStore{
		subs: []models.PushSubscription{subscription("sub-1", "ok")},
	}
	transport := &fakePushTransport{}
	sender := newPushSenderFixture(t, store, transport)

	tmpl := allChannelsTemplate()
	tmpl.Push.Icon = "/static/icons/booking.png"

	require.True(t, sender.Dispatch(context.Background(), testUser(), bookingEvent(), tmpl, nil))

	var payload PushPayload
	require.NoError(t, json.Unmarshal(transport.payloads[0], &payload))
	assert.Equal(t, "/static/icons/booking.png", payload.Icon)
}

func TestPushSender_Dispatch_NoActiveSubscriptionsFails(t *testing.T) {
	sender := newPushSenderFixture(t, &fakeSubscriptionStore{}, &fakePushTransport{})

	ok := sender.Dispatch(context.Background(), testUser(), bookingEvent(), allChannelsTemplate(), nil)

	assert.False(t, ok, "zero deliveries means the channel did not succeed")
}

// ==========================
// In-App Sender Tests
// ==========================

func TestInAppSender_Dispatch(t *testing.T) {
	store := &fakeInAppStore{}
	sender := NewInAppSender(store, logger.NewTestLogger(t))

	tmpl := allChannelsTemplate()
	tmpl.InApp.Title = "Booking confirmed"
	tmpl.InApp.Message = "Booking {booking_id} is set"
	tmpl.InApp.ActionURL = "/bookings/{booking_id}"

	vars := map[string]any{"booking_id": "bk-1"}
	ok := sender.Dispatch(context.Background(), testUser(), bookingEvent(), tmpl, vars)

	require.True(t, ok)
	assert.Equal(t, "u-1", store.userID)
	assert.Equal(t, "booking.created", store.notificationType)
	assert.Equal(t, "Booking confirmed", store.data["title"])
	assert.Equal(t, "Booking bk-1 is set", store.data["message"])
	assert.Equal(t, "/bookings/bk-1", store.data["action_url"])
	assert.Equal(t, vars, store.data["variables"])
}

func TestInAppSender_Dispatch_EmptyTitleFallsBackToEventName(t *testing.T) {
	store := &fakeInAppStore{}
	sender := NewInAppSender(store, logger.NewTestLogger(t))

	tmpl := allChannelsTemplate()
	tmpl.InApp.Title = ""

	require.True(t, sender.Dispatch(context.Background(), testUser(), bookingEvent(), tmpl, nil))
	assert.Equal(t, "Booking Created", store.data["title"])
}

func TestInAppSender_Dispatch_StoreError(t *testing.T) {
	store := &fakeInAppStore{err: errors.New("redis down")}
	sender := NewInAppSender(store, logger.NewTestLogger(t))

	ok := sender.Dispatch(context.Background(), testUser(), bookingEvent(), allChannelsTemplate(), nil)

	assert.False(t, ok)
}
