// internal/notify/inapp.go
package notify

import (
	"context"

	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/common/metrics"
	"marketplace-notify/internal/models"
)

// InAppSender persists the notification in the user's in-app list.
type InAppSender struct {
	store  InAppStore
	logger logger.Logger
}

func NewInAppSender(store InAppStore, log logger.Logger) *InAppSender {
	return &InAppSender{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"channel": models.ChannelDatabase}),
	}
}

func (s *InAppSender) Dispatch(ctx context.Context, user models.User, event models.NotificationEvent, tmpl models.NotificationTemplate, variables map[string]any) bool {
	if !tmpl.InApp.Enabled {
		return false
	}

	title := Interpolate(tmpl.InApp.Title, variables)
	if title == "" {
		title = event.Name
	}

	data := map[string]any{
		"title":      title,
		"message":    Interpolate(tmpl.InApp.Message, variables),
		"action_url": Interpolate(tmpl.InApp.ActionURL, variables),
		"variables":  variables,
	}

	if err := s.store.Create(ctx, user.ID, event.Key, data); err != nil {
		s.logger.Error("in-app notification write failed", map[string]interface{}{
			"eventKey":   event.Key,
			"templateId": tmpl.ID,
			"userId":     user.ID,
			"error":      err,
		})
		metrics.ChannelSends.WithLabelValues(string(models.ChannelDatabase), "failure").Inc()
		return false
	}

	metrics.ChannelSends.WithLabelValues(string(models.ChannelDatabase), "success").Inc()
	return true
}
