package models

import "time"

// MentorPreferences are the mentoring preferences a mentee records before requesting a mentor
type MentorPreferences struct {
	MenteeID         string    `json:"menteeId"`
	Topics           []string  `json:"topics"`
	Experience       string    `json:"experience"`
	Format           string    `json:"format"`
	SessionsPerMonth int       `json:"sessionsPerMonth"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// SavePreferencesRequest is the payload for saving mentee preferences
type SavePreferencesRequest struct {
	Topics           []string `json:"topics" binding:"required,min=1,max=10,dive,required,max=100"`
	Experience       string   `json:"experience" binding:"omitempty,oneof=junior middle senior lead"`
	Format           string   `json:"format" binding:"omitempty,oneof=online offline any"`
	SessionsPerMonth int      `json:"sessionsPerMonth" binding:"omitempty,min=1,max=31"`
}

// PreferencesResponse is returned when reading preferences
type PreferencesResponse struct {
	Set         bool               `json:"set"`
	Preferences *MentorPreferences `json:"preferences,omitempty"`
}
