// internal/store/catalog/catalog.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"marketplace-notify/internal/models"
)

// Store reads the notification catalog out of Postgres: the event registry,
// per-(event, recipient type) templates and per-user preference overrides.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindEventByKey looks up a catalog event by its unique key.
func (s *Store) FindEventByKey(ctx context.Context, key string) (models.NotificationEvent, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, key, name, is_active
		FROM notification_events
		WHERE key = $1`, key)

	var e models.NotificationEvent
	err := row.Scan(&e.ID, &e.Key, &e.Name, &e.IsActive)
	if err == sql.ErrNoRows {
		return models.NotificationEvent{}, false, nil
	}
	if err != nil {
		return models.NotificationEvent{}, false, fmt.Errorf("find event %q: %w", key, err)
	}
	return e, true, nil
}

// FindActiveTemplate returns the active template for (event, recipientType).
func (s *Store) FindActiveTemplate(ctx context.Context, eventID, recipientType string) (models.NotificationTemplate, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, event_id, recipient_type, is_active,
		       email_enabled, email_subject, email_body, email_action_url,
		       toast_enabled, toast_title, toast_message, toast_action_url,
		       push_enabled, push_title, push_body, push_action_url, push_icon,
		       inapp_enabled, inapp_title, inapp_message, inapp_action_url
		FROM notification_templates
		WHERE event_id = $1 AND recipient_type = $2 AND is_active = TRUE`,
		eventID, recipientType)

	var t models.NotificationTemplate
	err := row.Scan(
		&t.ID, &t.EventID, &t.RecipientType, &t.IsActive,
		&t.Email.Enabled, &t.Email.Subject, &t.Email.Body, &t.Email.ActionURL,
		&t.Toast.Enabled, &t.Toast.Title, &t.Toast.Message, &t.Toast.ActionURL,
		&t.Push.Enabled, &t.Push.Title, &t.Push.Body, &t.Push.ActionURL, &t.Push.Icon,
		&t.InApp.Enabled, &t.InApp.Title, &t.InApp.Message, &t.InApp.ActionURL,
	)
	if err == sql.ErrNoRows {
		return models.NotificationTemplate{}, false, nil
	}
	if err != nil {
		return models.NotificationTemplate{}, false, fmt.Errorf("find template for event %s/%s: %w", eventID, recipientType, err)
	}
	return t, true, nil
}

// FindPreference returns the user's per-event channel overrides, if any.
func (s *Store) FindPreference(ctx context.Context, userID, eventID string) (models.UserNotificationPreference, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, event_id, email_enabled, toast_enabled, push_enabled, inapp_enabled
		FROM user_notification_preferences
		WHERE user_id = $1 AND event_id = $2`,
		userID, eventID)

	var p models.UserNotificationPreference
	var email, toast, push, inApp sql.NullBool
	err := row.Scan(&p.UserID, &p.EventID, &email, &toast, &push, &inApp)
	if err == sql.ErrNoRows {
		return models.UserNotificationPreference{}, false, nil
	}
	if err != nil {
		return models.UserNotificationPreference{}, false, fmt.Errorf("find preference %s/%s: %w", userID, eventID, err)
	}

	p.Email = nullableBool(email)
	p.Toast = nullableBool(toast)
	p.Push = nullableBool(push)
	p.InApp = nullableBool(inApp)
	return p, true, nil
}

func nullableBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}
