// internal/notify/email.go
package notify

import (
	"context"

	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/common/metrics"
	"marketplace-notify/internal/models"
)

// EmailSender renders the email template and hands it to the mail transport.
type EmailSender struct {
	mail   MailTransport
	logger logger.Logger
}

func NewEmailSender(mail MailTransport, log logger.Logger) *EmailSender {
	return &EmailSender{
		mail:   mail,
		logger: log.WithFields(map[string]interface{}{"channel": models.ChannelEmail}),
	}
}

func (s *EmailSender) Dispatch(ctx context.Context, user models.User, event models.NotificationEvent, tmpl models.NotificationTemplate, variables map[string]any) bool {
	if !tmpl.Email.Enabled {
		return false
	}

	subject := Interpolate(tmpl.Email.Subject, variables)
	body := Interpolate(tmpl.Email.Body, variables)
	actionURL := ""
	if tmpl.Email.ActionURL != "" {
		actionURL = Interpolate(tmpl.Email.ActionURL, variables)
	}

	if err := s.mail.SendMail(ctx, user.Email, subject, body, actionURL); err != nil {
		s.logger.Error("email send failed", map[string]interface{}{
			"eventKey":   event.Key,
			"templateId": tmpl.ID,
			"userId":     user.ID,
			"error":      err,
		})
		metrics.ChannelSends.WithLabelValues(string(models.ChannelEmail), "failure").Inc()
		return false
	}

	metrics.ChannelSends.WithLabelValues(string(models.ChannelEmail), "success").Inc()
	return true
}
