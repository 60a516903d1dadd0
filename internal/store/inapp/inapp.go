// internal/store/inapp/inapp.go
package inapp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// maxListLength caps each user's list; older entries fall off the tail.
	maxListLength = 500
	defaultTTL    = 30 * 24 * time.Hour
)

// Record is one persisted in-app notification.
type Record struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

// Store keeps each user's in-app notification list in a Redis list, newest
// first.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, ttl: defaultTTL}
}

func key(userID string) string { return "notify:inapp:" + userID }

// Create prepends a record to the user's list.
func (s *Store) Create(ctx context.Context, userID, notificationType string, data map[string]any) error {
	record := Record{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      notificationType,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}

	b, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal in-app record: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key(userID), b)
	pipe.LTrim(ctx, key(userID), 0, maxListLength-1)
	pipe.Expire(ctx, key(userID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push in-app record: %w", err)
	}
	return nil
}

// List returns up to limit records, newest first.
func (s *Store) List(ctx context.Context, userID string, limit int64) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	vals, err := s.rdb.LRange(ctx, key(userID), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(vals))
	for _, v := range vals {
		var r Record
		if json.Unmarshal([]byte(v), &r) == nil {
			out = append(out, r)
		}
	}
	return out, nil
}
