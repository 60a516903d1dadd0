// internal/notify/pushclient_test.go
package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/models"
)

// ==========================
// Test Fakes
// ==========================

type fakeSubscriptionStore struct {
	subs      []models.PushSubscription
	listErr   error
	delivered []string
	failed    []string
}

func (s *fakeSubscriptionStore) ActiveByUser(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.subs, nil
}

func (s *fakeSubscriptionStore) MarkDelivered(ctx context.Context, subscriptionID string, at time.Time) error {
	s.delivered = append(s.delivered, subscriptionID)
	return nil
}

func (s *fakeSubscriptionStore) MarkFailed(ctx context.Context, subscriptionID string, at time.Time) error {
	s.failed = append(s.failed, subscriptionID)
	return nil
}

// fakePushTransport routes outcomes per endpoint: "gone" endpoints report the
// subscription expired, "fail" endpoints error, everything else delivers.
type fakePushTransport struct {
	payloads [][]byte
}

func (t *fakePushTransport) SendPush(ctx context.Context, sub models.PushSubscription, payloadJSON []byte) (bool, bool, error) {
	t.payloads = append(t.payloads, payloadJSON)
	switch sub.Endpoint {
	case "gone":
		return false, true, nil
	case "fail":
		return false, false, errors.New("endpoint returned 500")
	default:
		return true, false, nil
	}
}

func subscription(id, endpoint string) models.PushSubscription {
	return models.PushSubscription{
		ID:        id,
		UserID:    "u-1",
		Endpoint:  endpoint,
		P256dhKey: "p256dh",
		AuthKey:   "auth",
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
}

// ==========================
// SendAll Tests
// ==========================

func TestPushDeliveryClient_SendAll(t *testing.T) {
	store := &fakeSubscriptionStore{
		subs: []models.PushSubscription{
			subscription("sub-1", "ok-1"),
			subscription("sub-2", "gone"),
			subscription("sub-3", "ok-2"),
		},
	}
	transport := &fakePushTransport{}
	client := NewPushDeliveryClient(store, transport, logger.NewTestLogger(t))

	sent := client.SendAll(context.Background(), testUser(), []byte(`{"title":"hi"}`))

	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"sub-1", "sub-3"}, store.delivered)
	assert.Equal(t, []string{"sub-2"}, store.failed)
	require.Len(t, transport.payloads, 3, "every active subscription gets an attempt")
}

func TestPushDeliveryClient_SendAll_TransportErrorDeactivates(t *testing.T) {
	store := &fakeSubscriptionStore{
		subs: []models.PushSubscription{
			subscription("sub-1", "fail"),
			subscription("sub-2", "ok"),
		},
	}
	client := NewPushDeliveryClient(store, &fakePushTransport{}, logger.NewTestLogger(t))

	sent := client.SendAll(context.Background(), testUser(), []byte(`{}`))

	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"sub-1"}, store.failed)
	assert.Equal(t, []string{"sub-2"}, store.delivered)
}

func TestPushDeliveryClient_SendAll_NoSubscriptions(t *testing.T) {
	store := &fakeSubscriptionStore{}
	transport := &fakePushTransport{}
	client := NewPushDeliveryClient(store, transport, logger.NewTestLogger(t))

	sent := client.SendAll(context.Background(), testUser(), []byte(`{}`))

	assert.Zero(t, sent)
	assert.Empty(t, transport.payloads)
}

func TestPushDeliveryClient_SendAll_StoreError(t *testing.T) {
	store := &fakeSubscriptionStore{listErr: errors.New("query failed")}
	client := NewPushDeliveryClient(store, &fakePushTransport{}, logger.NewTestLogger(t))

	sent := client.SendAll(context.Background(), testUser(), []byte(`{}`))

	assert.Zero(t, sent)
}
