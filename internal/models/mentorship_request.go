package models

import (
	"time"
)

// RequestStatus represents the status of a mentorship request
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// IsTerminalStatus returns true if the status is terminal (no further transitions allowed)
func (s RequestStatus) IsTerminalStatus() bool {
	return s == RequestAccepted || s == RequestRejected
}

// CanTransitionTo checks if a status transition is valid
func (s RequestStatus) CanTransitionTo(newStatus RequestStatus) bool {
	if s.IsTerminalStatus() {
		return false
	}
	return s == RequestPending && (newStatus == RequestAccepted || newStatus == RequestRejected)
}

// IsValid reports whether s is a known request status
func (s RequestStatus) IsValid() bool {
	return s == RequestPending || s == RequestAccepted || s == RequestRejected
}

// MentorshipRequest is a mentee's request to a mentor; the precursor to an engagement
type MentorshipRequest struct {
	ID              string        `json:"id"`
	MenteeID        string        `json:"menteeId"`
	MentorID        string        `json:"mentorId"`
	Topic           string        `json:"topic"`
	Message         string        `json:"message"`
	SubmittedDate   time.Time     `json:"submittedDate"`
	Status          RequestStatus `json:"status"`
	ResponseMessage *string       `json:"responseMessage,omitempty"`
	RejectionReason *string       `json:"rejectionReason,omitempty"`
	EngagementID    string        `json:"engagementId,omitempty"`
	RespondedDate   *time.Time    `json:"respondedDate,omitempty"`

	// Version is the stored revision the value was read at; zero means not yet stored
	Version int64 `json:"-"`
}

// Clone returns a deep copy of the request
func (r *MentorshipRequest) Clone() *MentorshipRequest {
	if r == nil {
		return nil
	}
	c := *r
	if r.ResponseMessage != nil {
		v := *r.ResponseMessage
		c.ResponseMessage = &v
	}
	if r.RejectionReason != nil {
		v := *r.RejectionReason
		c.RejectionReason = &v
	}
	c.RespondedDate = cloneTime(r.RespondedDate)
	return &c
}

// RequestFilter narrows ListRequests. Empty fields match everything.
type RequestFilter struct {
	MenteeID string
	MentorID string
	Status   RequestStatus
}

// Matches reports whether r satisfies the filter
func (f RequestFilter) Matches(r *MentorshipRequest) bool {
	if f.MenteeID != "" && r.MenteeID != f.MenteeID {
		return false
	}
	if f.MentorID != "" && r.MentorID != f.MentorID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

// SubmitRequestPayload is the payload for a mentee's mentorship request
type SubmitRequestPayload struct {
	MenteeID string `json:"menteeId" binding:"required,max=100"`
	MentorID string `json:"mentorId" binding:"required,max=100"`
	Topic    string `json:"topic" binding:"required,max=200"`
	Message  string `json:"message" binding:"max=5000"`
}

// AcceptRequestPayload is the payload for accepting a request
type AcceptRequestPayload struct {
	Message string `json:"message" binding:"max=5000"`
}

// RejectRequestPayload is the payload for rejecting a request
type RejectRequestPayload struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// MentorshipRequestsResponse is the response for listing requests
type MentorshipRequestsResponse struct {
	Requests []*MentorshipRequest `json:"requests"`
	Total    int                  `json:"total"`
}

// AcceptRequestResponse is returned when a request is accepted
type AcceptRequestResponse struct {
	Request    *MentorshipRequest `json:"request"`
	Engagement *Engagement        `json:"engagement"`
}
