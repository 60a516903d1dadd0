// internal/store/subscriptions/subscriptions.go
package subscriptions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"marketplace-notify/internal/models"
)

// Store manages push subscription rows in Postgres. Subscriptions are
// upserted on endpoint and deactivated rather than deleted.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ActiveByUser returns the user's active subscriptions, oldest first.
func (s *Store) ActiveByUser(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, endpoint, p256dh_key, auth_key, is_active, last_sent_at, failed_at, created_at
		FROM push_subscriptions
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("query active subscriptions for %s: %w", userID, err)
	}
	defer rows.Close()

	var subs []models.PushSubscription
	for rows.Next() {
		var sub models.PushSubscription
		var lastSentAt, failedAt sql.NullTime
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey,
			&sub.IsActive, &lastSentAt, &failedAt, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		if lastSentAt.Valid {
			sub.LastSentAt = &lastSentAt.Time
		}
		if failedAt.Valid {
			sub.FailedAt = &failedAt.Time
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Upsert creates or refreshes a subscription keyed on endpoint. A re-submitted
// endpoint is re-activated and its keys replaced.
func (s *Store) Upsert(ctx context.Context, userID, endpoint, p256dhKey, authKey string) (models.PushSubscription, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh_key, auth_key, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		ON CONFLICT (endpoint) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    p256dh_key = EXCLUDED.p256dh_key,
		    auth_key = EXCLUDED.auth_key,
		    is_active = TRUE,
		    failed_at = NULL
		RETURNING id, user_id, endpoint, p256dh_key, auth_key, is_active, last_sent_at, failed_at, created_at`,
		uuid.New().String(), userID, endpoint, p256dhKey, authKey, time.Now().UTC())

	var sub models.PushSubscription
	var lastSentAt, failedAt sql.NullTime
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey,
		&sub.IsActive, &lastSentAt, &failedAt, &sub.CreatedAt); err != nil {
		return models.PushSubscription{}, fmt.Errorf("upsert subscription: %w", err)
	}
	if lastSentAt.Valid {
		sub.LastSentAt = &lastSentAt.Time
	}
	if failedAt.Valid {
		sub.FailedAt = &failedAt.Time
	}
	return sub, nil
}

// MarkDelivered records a successful delivery: lastSentAt is set, failedAt
// cleared and the subscription kept active.
func (s *Store) MarkDelivered(ctx context.Context, subscriptionID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE push_subscriptions
		SET last_sent_at = $2, failed_at = NULL, is_active = TRUE
		WHERE id = $1`, subscriptionID, at.UTC())
	if err != nil {
		return fmt.Errorf("mark subscription %s delivered: %w", subscriptionID, err)
	}
	return nil
}

// MarkFailed deactivates the subscription after a delivery failure. The row
// is kept for audit and excluded from fan-out until a re-subscribe.
func (s *Store) MarkFailed(ctx context.Context, subscriptionID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE push_subscriptions
		SET failed_at = $2, is_active = FALSE
		WHERE id = $1`, subscriptionID, at.UTC())
	if err != nil {
		return fmt.Errorf("mark subscription %s failed: %w", subscriptionID, err)
	}
	return nil
}
