package lifecycle

import (
	"strings"
	"time"

	"github.com/getmentor/mentorship-api/internal/models"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
)

const entityRequest = "request"

// NewRequest validates and builds a pending mentorship request
func NewRequest(id, menteeID, mentorID, topic, message string, now time.Time) (*models.MentorshipRequest, error) {
	menteeID = strings.TrimSpace(menteeID)
	mentorID = strings.TrimSpace(mentorID)
	topic = strings.TrimSpace(topic)

	if menteeID == "" {
		return nil, apperrors.ValidationError("menteeId", "is required")
	}
	if mentorID == "" {
		return nil, apperrors.ValidationError("mentorId", "is required")
	}
	if menteeID == mentorID {
		return nil, apperrors.ValidationError("mentorId", "must differ from menteeId")
	}
	if topic == "" {
		return nil, apperrors.ValidationError("topic", "is required")
	}

	return &models.MentorshipRequest{
		ID:            id,
		MenteeID:      menteeID,
		MentorID:      mentorID,
		Topic:         topic,
		Message:       message,
		SubmittedDate: now,
		Status:        models.RequestPending,
	}, nil
}

// AcceptRequest moves a pending request to accepted and spawns its engagement
func AcceptRequest(r *models.MentorshipRequest, message, engagementID string, now time.Time) (*models.MentorshipRequest, *models.Engagement, error) {
	if !r.Status.CanTransitionTo(models.RequestAccepted) {
		return nil, nil, apperrors.InvalidTransitionError(entityRequest, string(r.Status), "accept")
	}

	next := r.Clone()
	responded := now
	next.Status = models.RequestAccepted
	next.ResponseMessage = &message
	next.EngagementID = engagementID
	next.RespondedDate = &responded

	return next, NewEngagement(engagementID, next, now), nil
}

// RejectRequest moves a pending request to rejected
func RejectRequest(r *models.MentorshipRequest, reason string, now time.Time) (*models.MentorshipRequest, error) {
	if !r.Status.CanTransitionTo(models.RequestRejected) {
		return nil, apperrors.InvalidTransitionError(entityRequest, string(r.Status), "reject")
	}

	next := r.Clone()
	responded := now
	next.Status = models.RequestRejected
	next.RejectionReason = &reason
	next.RespondedDate = &responded
	return next, nil
}
