package models

import "time"

// NotificationKind classifies a user-facing notification
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is the payload delivered to webhook notification sinks
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	SentAt      time.Time        `json:"sentAt"`
}
