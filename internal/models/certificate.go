package models

import "time"

// Certificate is a read-only projection of a completed engagement
type Certificate struct {
	EngagementID string    `json:"engagementId"`
	MenteeID     string    `json:"menteeId"`
	MentorID     string    `json:"mentorId"`
	Topic        string    `json:"topic"`
	IssuedDate   time.Time `json:"issuedDate"`
}

// CertificateDocument is the certificate plus its optional signed token and archive location
type CertificateDocument struct {
	Certificate Certificate `json:"certificate"`
	Token       string      `json:"token,omitempty"`
	ArchiveURL  string      `json:"archiveUrl,omitempty"`
}
