// internal/notify/policy.go
package notify

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"marketplace-notify/internal/models"
)

// Gating windows. These are engine invariants, not deployment tunables.
const (
	dedupTTL        = 5 * time.Minute
	eventRateWindow = 60 * time.Second
	eventRateLimit  = 10
	userRateWindow  = 3600 * time.Second
	userRateLimit   = 50
)

// Quiet hours: toast and push are suppressed between 22:00 and 08:00 in the
// user's local time. Email and the in-app record are always attempted.
const (
	quietHourStart = 22
	quietHourEnd   = 8
)

// Gating rejection reasons, returned verbatim in Result.Error.
const (
	ReasonEventNotFound    = "event not found"
	ReasonEventDisabled    = "event disabled"
	ReasonDuplicate        = "duplicate"
	ReasonEventRateLimited = "rate limit exceeded for event"
	ReasonUserRateLimited  = "rate limit exceeded globally"
	ReasonNoTemplate       = "no template for recipient type"
)

// identityVariables is the fixed allowlist of variable keys that distinguish
// otherwise-identical events for deduplication.
var identityVariables = []string{
	"booking_id",
	"review_id",
	"message_id",
	"conversation_id",
	"service_id",
	"provider_id",
}

// inQuietHours reports whether now falls in the user's quiet window.
func inQuietHours(now time.Time, user models.User) bool {
	hour := now.In(user.Location()).Hour()
	return hour >= quietHourStart || hour < quietHourEnd
}

// resolveChannel is the single source of truth for "should this channel be
// sent": template flag AND preference override (template default when the
// override is absent) AND the quiet-hours suppression for toast and push.
func resolveChannel(tmpl models.NotificationTemplate, pref *models.UserNotificationPreference, ch models.Channel, quietHours bool) bool {
	if !tmpl.ChannelEnabled(ch) {
		return false
	}
	if pref != nil {
		if override := pref.Override(ch); override != nil && !*override {
			return false
		}
	}
	if quietHours && (ch == models.ChannelToast || ch == models.ChannelPush) {
		return false
	}
	return true
}

// identityHash builds a stable FNV-1a hash over the identity variables
// present in vars, in allowlist order. Empty string when none are present.
func identityHash(vars map[string]any) string {
	h := fnv.New64a()
	found := false
	for _, key := range identityVariables {
		if value, ok := vars[key]; ok {
			found = true
			fmt.Fprintf(h, "%s=%v|", key, value)
		}
	}
	if !found {
		return ""
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

func dedupKey(userID, eventKey string, vars map[string]any) string {
	key := "notify:dedup:" + userID + ":" + eventKey
	if hash := identityHash(vars); hash != "" {
		key += ":" + hash
	}
	return key
}

func eventRateKey(userID, eventKey string) string {
	return "notify:rate:event:" + userID + ":" + eventKey
}

func userRateKey(userID string) string {
	return "notify:rate:user:" + userID
}
