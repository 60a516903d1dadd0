// internal/models/user.go
package models

import "time"

// User is the notification recipient. Only the fields the dispatch engine
// needs; the marketplace owns the rest of the profile.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Timezone string `json:"timezone,omitempty"` // IANA name; empty means UTC
}

// Location resolves the user's timezone, falling back to UTC when unset or
// unparseable.
func (u User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RealtimeChannel is the user's private broadcast channel name.
func (u User) RealtimeChannel() string {
	return "private-user." + u.ID
}
