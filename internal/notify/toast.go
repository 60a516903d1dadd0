// internal/notify/toast.go
package notify

import (
	"context"

	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/common/metrics"
	"marketplace-notify/internal/models"
)

// ToastEventName is the realtime event carried on the user's private channel.
const ToastEventName = "notification.toast"

// ToastSender emits a realtime toast on the user's private channel.
type ToastSender struct {
	broadcast Broadcaster
	logger    logger.Logger
}

func NewToastSender(broadcast Broadcaster, log logger.Logger) *ToastSender {
	return &ToastSender{
		broadcast: broadcast,
		logger:    log.WithFields(map[string]interface{}{"channel": models.ChannelToast}),
	}
}

func (s *ToastSender) Dispatch(ctx context.Context, user models.User, event models.NotificationEvent, tmpl models.NotificationTemplate, variables map[string]any) bool {
	if !tmpl.Toast.Enabled {
		return false
	}

	payload := map[string]any{
		"title":     Interpolate(tmpl.Toast.Title, variables),
		"message":   Interpolate(tmpl.Toast.Message, variables),
		"type":      event.Key,
		"actionUrl": Interpolate(tmpl.Toast.ActionURL, variables),
		"metadata":  variables,
	}

	if err := s.broadcast.Publish(ctx, user.RealtimeChannel(), ToastEventName, payload); err != nil {
		s.logger.Error("toast publish failed", map[string]interface{}{
			"eventKey":   event.Key,
			"templateId": tmpl.ID,
			"userId":     user.ID,
			"error":      err,
		})
		metrics.ChannelSends.WithLabelValues(string(models.ChannelToast), "failure").Inc()
		return false
	}

	metrics.ChannelSends.WithLabelValues(string(models.ChannelToast), "success").Inc()
	return true
}
