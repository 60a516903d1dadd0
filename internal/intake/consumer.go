// internal/intake/consumer.go
package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/models"
	"marketplace-notify/internal/notify"
)

// DomainEvent is the message the marketplace publishes when something worth
// notifying about happens.
type DomainEvent struct {
	EventKey      string         `json:"event_key"`
	RecipientType string         `json:"recipient_type"`
	User          models.User    `json:"user"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Sender is the dispatch entry point the consumer drives.
type Sender interface {
	Send(ctx context.Context, eventKey string, user models.User, recipientType string, variables map[string]any) (notify.Result, error)
}

// Consumer reads domain events off Kafka and hands each one to the
// dispatcher. Gating rejections are normal outcomes and commit the message;
// only an audit log failure leaves the message uncommitted for redelivery.
type Consumer struct {
	reader     *kafka.Reader
	dispatcher Sender
	logger     logger.Logger
}

func NewConsumer(brokers, groupID, topic string, dispatcher Sender, log logger.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        strings.Split(brokers, ","),
			GroupID:        groupID,
			Topic:          topic,
			MinBytes:       10e3,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
		}),
		dispatcher: dispatcher,
		logger:     log.WithFields(map[string]interface{}{"component": "intake"}),
	}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	defer func() {
		_ = c.reader.Close()
	}()

	c.logger.Info("intake consumer started", map[string]interface{}{
		"topic":   c.reader.Config().Topic,
		"groupId": c.reader.Config().GroupID,
	})

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("intake consumer shutting down", nil)
				return nil
			}
			c.logger.Error("fetch failed", map[string]interface{}{"error": err})
			time.Sleep(time.Second)
			continue
		}

		if err := c.handle(ctx, m.Value); err != nil {
			c.logger.Error("dispatch failed, leaving message uncommitted", map[string]interface{}{
				"offset": m.Offset,
				"error":  err,
			})
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit failed", map[string]interface{}{"error": err})
		}
	}
}

func (c *Consumer) handle(ctx context.Context, value []byte) error {
	var event DomainEvent
	if err := json.Unmarshal(value, &event); err != nil {
		// A malformed message will never parse; log and drop.
		c.logger.Error("malformed domain event", map[string]interface{}{"error": err})
		return nil
	}
	if event.EventKey == "" || event.User.ID == "" {
		c.logger.Warn("domain event missing event_key or user", nil)
		return nil
	}

	result, err := c.dispatcher.Send(ctx, event.EventKey, event.User, event.RecipientType, event.Variables)
	if err != nil {
		return fmt.Errorf("send %s to %s: %w", event.EventKey, event.User.ID, err)
	}

	if result.Error != "" {
		c.logger.Debug("dispatch gated", map[string]interface{}{
			"eventKey": event.EventKey,
			"userId":   event.User.ID,
			"reason":   result.Error,
		})
		return nil
	}

	c.logger.Info("dispatched", map[string]interface{}{
		"eventKey": event.EventKey,
		"userId":   event.User.ID,
		"success":  result.Success,
		"channels": result.Channels,
	})
	return nil
}
