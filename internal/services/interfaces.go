package services

import (
	"context"

	"github.com/getmentor/mentorship-api/internal/models"
)

// MentorshipServiceInterface defines the request and engagement lifecycle operations
type MentorshipServiceInterface interface {
	SubmitRequest(ctx context.Context, payload *models.SubmitRequestPayload) (*models.MentorshipRequest, error)
	GetRequest(ctx context.Context, id string) (*models.MentorshipRequest, error)
	ListRequests(ctx context.Context, filter models.RequestFilter) (*models.MentorshipRequestsResponse, error)
	AcceptRequest(ctx context.Context, id string, payload *models.AcceptRequestPayload) (*models.AcceptRequestResponse, error)
	RejectRequest(ctx context.Context, id string, payload *models.RejectRequestPayload) (*models.MentorshipRequest, error)

	GetEngagement(ctx context.Context, id string) (*models.Engagement, error)
	ListEngagements(ctx context.Context, filter models.EngagementFilter) (*models.EngagementsResponse, error)
	GetActivity(ctx context.Context, id string) (*models.ActivityResponse, error)

	AddSession(ctx context.Context, id string, payload *models.AddSessionRequest) (*models.Engagement, error)
	CompleteSession(ctx context.Context, id, sessionID string, payload *models.CompleteSessionRequest) (*models.Engagement, error)
	CancelSession(ctx context.Context, id, sessionID string) (*models.Engagement, error)
	RecordSessionNotes(ctx context.Context, id, sessionID string, payload *models.SessionNotesRequest) (*models.Engagement, error)
	AddTask(ctx context.Context, id string, payload *models.AddTaskRequest) (*models.Engagement, error)
	CompleteTask(ctx context.Context, id, taskID string, payload *models.CompleteTaskRequest) (*models.Engagement, error)
	SetGoals(ctx context.Context, id string) (*models.Engagement, error)
	Withdraw(ctx context.Context, id string, payload *models.WithdrawRequest) (*models.Engagement, error)
	Complete(ctx context.Context, id string) (*models.Engagement, error)

	GetEligibility(ctx context.Context, id string) (*models.EligibilityResponse, error)
	GetCertificate(ctx context.Context, id string) (*models.CertificateDocument, error)
}

// CertificateServiceInterface defines certificate issuing and verification
type CertificateServiceInterface interface {
	Issue(e *models.Engagement) (*models.CertificateDocument, error)
	Verify(token string) (*models.Certificate, error)
	Publish(ctx context.Context, e *models.Engagement) error
	PublishAsync(e *models.Engagement)
}

// PreferencesServiceInterface defines mentee preference storage
type PreferencesServiceInterface interface {
	GetPreferences(ctx context.Context, menteeID string) (*models.PreferencesResponse, error)
	SavePreferences(ctx context.Context, menteeID string, req *models.SavePreferencesRequest) (*models.MentorPreferences, error)
}

// Ensure services implement their interfaces
var _ MentorshipServiceInterface = (*MentorshipService)(nil)
var _ CertificateServiceInterface = (*CertificateService)(nil)
var _ PreferencesServiceInterface = (*PreferencesService)(nil)
