// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSeedJSON() string {
	return `{
		"version": "1.0.0",
		"events": [
			{
				"key": "booking.created",
				"name": "Booking Created",
				"isActive": true,
				"templates": [
					{
						"recipientType": "customer",
						"isActive": true,
						"email": {"enabled": true, "subject": "s", "body": "b"},
						"toast": {"enabled": false},
						"push": {"enabled": false},
						"inApp": {"enabled": true, "message": "m"}
					}
				]
			}
		]
	}`
}

func writeSeedFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	seed, err := Load(writeSeedFile(t, validSeedJSON()))
	require.NoError(t, err)

	require.Len(t, seed.Events, 1)
	event := seed.Events[0]
	assert.Equal(t, "booking.created", event.Key)
	assert.True(t, event.IsActive)
	require.Len(t, event.Templates, 1)
	assert.Equal(t, "customer", event.Templates[0].RecipientType)
	assert.True(t, event.Templates[0].Email.Enabled)
	assert.Equal(t, "s", event.Templates[0].Email.Subject)
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoad_InvalidJSON(t *testing.T) {
	_, err := Load(writeSeedFile(t, `{not json`))
	require.Error(t, err)
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{
			name: "missing events",
			json: `{"version": "1.0.0"}`,
		},
		{
			name: "event missing key",
			json: `{"version": "1.0.0", "events": [{"name": "X", "templates": []}]}`,
		},
		{
			name: "event key not dot separated",
			json: `{"version": "1.0.0", "events": [{"key": "bookingcreated", "name": "X", "templates": []}]}`,
		},
		{
			name: "unknown recipient type",
			json: `{"version": "1.0.0", "events": [{"key": "booking.created", "name": "X",
				"templates": [{"recipientType": "robot"}]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeSeedFile(t, tt.json))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid catalog seed")
		})
	}
}
