package cache

import (
	"context"
	"errors"
)

// ErrKeyEmpty is returned when a key is blank
var ErrKeyEmpty = errors.New("cache: key cannot be empty")

// KeyValueStore is a flat string key-value persistence collaborator.
// It never holds lifecycle state; engagements and requests live in the repository.
type KeyValueStore interface {
	// Get returns the value and whether the key was present
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error
}

// Key layout
const (
	prefixMentorPreferences    = "mentorPreferences:"
	prefixMentorPreferencesSet = "mentorPreferencesSet:"
	prefixLastActivity         = "lastActivity:"
)

// MentorPreferencesKey holds a mentee's preferences as JSON
func MentorPreferencesKey(menteeID string) string {
	return prefixMentorPreferences + menteeID
}

// MentorPreferencesSetKey holds "true" once a mentee saved preferences
func MentorPreferencesSetKey(menteeID string) string {
	return prefixMentorPreferencesSet + menteeID
}

// LastActivityKey holds the RFC 3339 time of the latest engagement mutation
func LastActivityKey(engagementID string) string {
	return prefixLastActivity + engagementID
}
