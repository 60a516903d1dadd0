// internal/transport/webpush/webpush.go
package webpush

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	commonhttp "marketplace-notify/internal/common/http"
	"marketplace-notify/internal/models"
)

// payloadTTL tells the push service how long to retain an undelivered
// message, in seconds.
const payloadTTL = "86400"

// Transport posts payloads to browser push endpoints. Payload encryption and
// VAPID signing happen at the push gateway this transport talks to; here the
// endpoint is a delivery primitive that either accepts the payload, reports
// the subscription gone, or fails.
type Transport struct {
	client *commonhttp.Client
}

func NewTransport(timeout time.Duration) *Transport {
	return &Transport{client: commonhttp.NewClient(timeout)}
}

// SendPush delivers payloadJSON to the subscription endpoint. gone is true
// for HTTP 404 and 410, the protocol's "subscription no longer exists"
// signals.
func (t *Transport) SendPush(ctx context.Context, sub models.PushSubscription, payloadJSON []byte) (delivered bool, gone bool, err error) {
	req, err := http.NewRequest(http.MethodPost, sub.Endpoint, bytes.NewReader(payloadJSON))
	if err != nil {
		return false, false, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("TTL", payloadTTL)

	resp, err := t.client.DoWithContext(ctx, req)
	if err != nil {
		return false, false, fmt.Errorf("push request to %s: %w", sub.Endpoint, err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, false, nil
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return false, true, nil
	default:
		return false, false, fmt.Errorf("push endpoint returned %s", resp.Status)
	}
}
