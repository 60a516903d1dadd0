// internal/transport/realtime/redis.go
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Envelope is the wire frame published on a realtime channel. The websocket
// gateway that front-end clients connect to relays it verbatim.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// RedisBroadcaster publishes realtime events over Redis pub/sub, the default
// transport for toast notifications.
type RedisBroadcaster struct {
	rdb *redis.Client
}

func NewRedisBroadcaster(rdb *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{rdb: rdb}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channelName, eventName string, payload any) error {
	frame, err := json.Marshal(Envelope{Event: eventName, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal realtime envelope: %w", err)
	}
	if err := b.rdb.Publish(ctx, channelName, frame).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channelName, err)
	}
	return nil
}
