package lifecycle

import (
	"github.com/getmentor/mentorship-api/internal/models"
)

// Unmet completion conditions, in the order they are reported
const (
	ConditionGoalsNotSet         = "goals not set"
	ConditionNoSessionsCompleted = "no sessions completed"
)

// IsCompletionEligible reports whether goals are set and at least one session
// is completed. Always derived from the current state.
func IsCompletionEligible(e *models.Engagement) bool {
	return e.GoalsSet && e.SessionsCompletedCount() > 0
}

// UnmetConditions lists the completion conditions e does not satisfy
func UnmetConditions(e *models.Engagement) []string {
	var unmet []string
	if !e.GoalsSet {
		unmet = append(unmet, ConditionGoalsNotSet)
	}
	if e.SessionsCompletedCount() == 0 {
		unmet = append(unmet, ConditionNoSessionsCompleted)
	}
	return unmet
}

// Eligibility summarises completion eligibility for callers that surface it
func Eligibility(e *models.Engagement) models.EligibilityResponse {
	unmet := UnmetConditions(e)
	if unmet == nil {
		unmet = []string{}
	}
	return models.EligibilityResponse{
		EngagementID:           e.ID,
		Status:                 e.Status,
		Eligible:               len(unmet) == 0,
		GoalsSet:               e.GoalsSet,
		SessionsCompletedCount: e.SessionsCompletedCount(),
		UnmetConditions:        unmet,
	}
}

// DeriveCertificate projects a completed engagement into a certificate.
// Any other status, withdrawn included, yields no certificate.
func DeriveCertificate(e *models.Engagement) (*models.Certificate, bool) {
	if e == nil || e.Status != models.EngagementCompleted {
		return nil, false
	}

	issued := e.UpdatedAt
	if e.EndDate != nil {
		issued = *e.EndDate
	}

	return &models.Certificate{
		EngagementID: e.ID,
		MenteeID:     e.MenteeID,
		MentorID:     e.MentorID,
		Topic:        e.Topic,
		IssuedDate:   issued,
	}, true
}
