// internal/transport/mail/ses.go
package mail

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"marketplace-notify/internal/common/logger"
)

// SESService is the slice of the SES API the transport needs, kept as an
// interface for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Transport delivers rendered notification emails through AWS SES.
type Transport struct {
	client    SESService
	fromEmail string
	logger    logger.Logger
}

func NewTransport(client SESService, fromEmail string, log logger.Logger) *Transport {
	return &Transport{
		client:    client,
		fromEmail: fromEmail,
		logger:    log.WithFields(map[string]interface{}{"transport": "ses"}),
	}
}

// SendMail sends subject/body to toAddress. A non-empty actionURL is appended
// as a plain link; templates that want richer markup inline it in the body.
func (t *Transport) SendMail(ctx context.Context, toAddress, subject, body, actionURL string) error {
	textBody := body
	htmlBody := body
	if actionURL != "" {
		textBody = fmt.Sprintf("%s\n\n%s", body, actionURL)
		htmlBody = fmt.Sprintf(`%s<p><a href="%s">View details</a></p>`, body, actionURL)
	}

	_, err := t.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{toAddress},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(textBody)},
				Html: &types.Content{Data: aws.String(htmlBody)},
			},
		},
		Source: aws.String(t.fromEmail),
	})
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", toAddress, err)
	}
	return nil
}
