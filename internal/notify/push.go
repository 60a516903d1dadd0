// internal/notify/push.go
package notify

import (
	"context"
	"encoding/json"

	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/common/metrics"
	"marketplace-notify/internal/models"
)

// DefaultPushIcon is the fallback icon path when a template specifies none.
const DefaultPushIcon = "/static/icons/notification.png"

// DefaultPushBadge is the monochrome badge shown in the notification tray.
const DefaultPushBadge = "/static/icons/badge.png"

// PushPayload is the JSON document delivered to the push endpoint.
type PushPayload struct {
	Title string          `json:"title"`
	Body  string          `json:"body"`
	Icon  string          `json:"icon"`
	Badge string          `json:"badge"`
	Data  PushPayloadData `json:"data"`
}

type PushPayloadData struct {
	URL      string `json:"url"`
	EventKey string `json:"event_key"`
}

// PushSender renders the push template and fans it out over the user's
// active subscriptions.
type PushSender struct {
	client      *PushDeliveryClient
	defaultIcon string
	logger      logger.Logger
}

func NewPushSender(client *PushDeliveryClient, defaultIcon string, log logger.Logger) *PushSender {
	if defaultIcon == "" {
		defaultIcon = DefaultPushIcon
	}
	return &PushSender{
		client:      client,
		defaultIcon: defaultIcon,
		logger:      log.WithFields(map[string]interface{}{"channel": models.ChannelPush}),
	}
}

func (s *PushSender) Dispatch(ctx context.Context, user models.User, event models.NotificationEvent, tmpl models.NotificationTemplate, variables map[string]any) bool {
	if !tmpl.Push.Enabled {
		return false
	}

	icon := Interpolate(tmpl.Push.Icon, variables)
	if icon == "" {
		icon = s.defaultIcon
	}

	payload := PushPayload{
		Title: Interpolate(tmpl.Push.Title, variables),
		Body:  Interpolate(tmpl.Push.Body, variables),
		Icon:  icon,
		Badge: DefaultPushBadge,
		Data: PushPayloadData{
			URL:      Interpolate(tmpl.Push.ActionURL, variables),
			EventKey: event.Key,
		},
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("push payload marshal failed", map[string]interface{}{
			"eventKey":   event.Key,
			"templateId": tmpl.ID,
			"userId":     user.ID,
			"error":      err,
		})
		metrics.ChannelSends.WithLabelValues(string(models.ChannelPush), "failure").Inc()
		return false
	}

	sent := s.client.SendAll(ctx, user, payloadJSON)
	if sent == 0 {
		metrics.ChannelSends.WithLabelValues(string(models.ChannelPush), "failure").Inc()
		return false
	}

	metrics.ChannelSends.WithLabelValues(string(models.ChannelPush), "success").Inc()
	return true
}
