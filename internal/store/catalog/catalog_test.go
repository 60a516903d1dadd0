// internal/store/catalog/catalog_test.go
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

// ==========================
// Event Lookup Tests
// ==========================

func TestStore_FindEventByKey(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, key, name, is_active")).
		WithArgs("booking.created").
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "name", "is_active"}).
			AddRow("evt-1", "booking.created", "Booking Created", true))

	event, found, err := store.FindEventByKey(context.Background(), "booking.created")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "evt-1", event.ID)
	assert.Equal(t, "booking.created", event.Key)
	assert.True(t, event.IsActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FindEventByKey_NotFound(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, key, name, is_active")).
		WithArgs("no.such.event").
		WillReturnError(sql.ErrNoRows)

	_, found, err := store.FindEventByKey(context.Background(), "no.such.event")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_FindEventByKey_QueryError(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, key, name, is_active")).
		WithArgs("booking.created").
		WillReturnError(errors.New("connection refused"))

	_, found, err := store.FindEventByKey(context.Background(), "booking.created")
	require.Error(t, err)
	assert.False(t, found)
}

// ==========================
// Template Lookup Tests
// ==========================

func templateColumns() []string {
	return []string{
		"id", "event_id", "recipient_type", "is_active",
		"email_enabled", "email_subject", "email_body", "email_action_url",
		"toast_enabled", "toast_title", "toast_message", "toast_action_url",
		"push_enabled", "push_title", "push_body", "push_action_url", "push_icon",
		"inapp_enabled", "inapp_title", "inapp_message", "inapp_action_url",
	}
}

func TestStore_FindActiveTemplate(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery("FROM notification_templates").
		WithArgs("evt-1", "customer").
		WillReturnRows(sqlmock.NewRows(templateColumns()).AddRow(
			"tpl-1", "evt-1", "customer", true,
			true, "Subject {booking_id}", "Body", "/bookings/{booking_id}",
			true, "Title", "Message", "",
			false, "", "", "", "",
			true, "", "In-app message", "",
		))

	tmpl, found, err := store.FindActiveTemplate(context.Background(), "evt-1", "customer")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "tpl-1", tmpl.ID)
	assert.True(t, tmpl.Email.Enabled)
	assert.Equal(t, "Subject {booking_id}", tmpl.Email.Subject)
	assert.True(t, tmpl.Toast.Enabled)
	assert.False(t, tmpl.Push.Enabled)
	assert.True(t, tmpl.InApp.Enabled)
}

func TestStore_FindActiveTemplate_NotFound(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery("FROM notification_templates").
		WithArgs("evt-1", "admin").
		WillReturnRows(sqlmock.NewRows(templateColumns()))

	_, found, err := store.FindActiveTemplate(context.Background(), "evt-1", "admin")
	require.NoError(t, err)
	assert.False(t, found)
}

// ==========================
// Preference Lookup Tests
// ==========================

func TestStore_FindPreference(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery("FROM user_notification_preferences").
		WithArgs("u-1", "evt-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "event_id", "email_enabled", "toast_enabled", "push_enabled", "inapp_enabled",
		}).AddRow("u-1", "evt-1", false, nil, true, nil))

	pref, found, err := store.FindPreference(context.Background(), "u-1", "evt-1")
	require.NoError(t, err)
	require.True(t, found)

	require.NotNil(t, pref.Email)
	assert.False(t, *pref.Email)
	assert.Nil(t, pref.Toast, "NULL columns come back as nil overrides")
	require.NotNil(t, pref.Push)
	assert.True(t, *pref.Push)
	assert.Nil(t, pref.InApp)
}

func TestStore_FindPreference_NotFound(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery("FROM user_notification_preferences").
		WithArgs("u-1", "evt-1").
		WillReturnError(sql.ErrNoRows)

	_, found, err := store.FindPreference(context.Background(), "u-1", "evt-1")
	require.NoError(t, err)
	assert.False(t, found)
}
