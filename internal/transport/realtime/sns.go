// internal/transport/realtime/sns.go
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSService is the slice of the SNS API the broadcaster needs.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSBroadcaster publishes realtime events to an SNS topic with the target
// channel as a message attribute, for deployments that fan out to websocket
// bridges through AWS instead of Redis.
type SNSBroadcaster struct {
	client   SNSService
	topicARN string
}

func NewSNSBroadcaster(client SNSService, topicARN string) *SNSBroadcaster {
	return &SNSBroadcaster{client: client, topicARN: topicARN}
}

func (b *SNSBroadcaster) Publish(ctx context.Context, channelName, eventName string, payload any) error {
	frame, err := json.Marshal(Envelope{Event: eventName, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal realtime envelope: %w", err)
	}

	_, err = b.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(b.topicARN),
		Message:  aws.String(string(frame)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"channel": {
				DataType:    aws.String("String"),
				StringValue: aws.String(channelName),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish for %s: %w", channelName, err)
	}
	return nil
}
