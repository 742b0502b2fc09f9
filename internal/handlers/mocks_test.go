package handlers

import (
	"context"

	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockNotifier is a mock implementation of services.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, kind models.NotificationKind, title, description string) {
	m.Called(ctx, kind, title, description)
}

// MockMentorshipService is a mock implementation of services.MentorshipServiceInterface
type MockMentorshipService struct {
	mock.Mock
}

func engagementResult(args mock.Arguments) (*models.Engagement, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Engagement), args.Error(1)
}

func requestResult(args mock.Arguments) (*models.MentorshipRequest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorshipRequest), args.Error(1)
}

func (m *MockMentorshipService) SubmitRequest(ctx context.Context, payload *models.SubmitRequestPayload) (*models.MentorshipRequest, error) {
	return requestResult(m.Called(ctx, payload))
}

func (m *MockMentorshipService) GetRequest(ctx context.Context, id string) (*models.MentorshipRequest, error) {
	return requestResult(m.Called(ctx, id))
}

func (m *MockMentorshipService) ListRequests(ctx context.Context, filter models.RequestFilter) (*models.MentorshipRequestsResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorshipRequestsResponse), args.Error(1)
}

func (m *MockMentorshipService) AcceptRequest(ctx context.Context, id string, payload *models.AcceptRequestPayload) (*models.AcceptRequestResponse, error) {
	args := m.Called(ctx, id, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AcceptRequestResponse), args.Error(1)
}

func (m *MockMentorshipService) RejectRequest(ctx context.Context, id string, payload *models.RejectRequestPayload) (*models.MentorshipRequest, error) {
	return requestResult(m.Called(ctx, id, payload))
}

func (m *MockMentorshipService) GetEngagement(ctx context.Context, id string) (*models.Engagement, error) {
	return engagementResult(m.Called(ctx, id))
}

func (m *MockMentorshipService) ListEngagements(ctx context.Context, filter models.EngagementFilter) (*models.EngagementsResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EngagementsResponse), args.Error(1)
}

func (m *MockMentorshipService) GetActivity(ctx context.Context, id string) (*models.ActivityResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActivityResponse), args.Error(1)
}

func (m *MockMentorshipService) AddSession(ctx context.Context, id string, payload *models.AddSessionRequest) (*models.Engagement, error) {
	return engagementResult(m.Called(ctx, id, payload))
}

func (m *MockMentorshipService) CompleteSession(ctx context.Context, id, sessionID string, payload *models.CompleteSessionRequest) (*models.Engagement, error) {
	return engagementResult(m.Called(ctx, id, sessionID, payload))
}

func (m *MockMentorshipService) CancelSession(ctx context.Context, id, sessionID string) (*models.Engagement, error) {
	return engagementResult(m.Called(ctx, id, sessionID))
}

func (m *MockMentorshipService) RecordSessionNotes(ctx context.Context, id, sessionID string, payload *models.SessionNotesRequest) (*models.Engagement, error) {
	return engagementResult(m.Called(ctx, id, sessionID, payload))
}

func (m *MockMentorshipService) AddTask(ctx context.Context, id string, payload *models.AddTaskRequest) (*models.Engagement, error) {
	return engagementResult(m.Called(ctx, id, payload))
}

func (m *MockMentorshipService) CompleteTask(ctx context.Context, id, taskID string, payload *models.CompleteTaskRequest) (*models.Engagement, error) {
	return engagementResult(m.Called(ctx, id, taskID, payload))
}

func (m *MockMentorshipService) SetGoals(ctx context.Context, id string) (*models.Engagement, error) {
	return engagementResult(m.Called(ctx, id))
}

func (m *MockMentorshipService) Withdraw(ctx context.Context, id string, payload *models.WithdrawRequest) (*models.Engagement, error) {
	return engagementResult(m.Called(ctx, id, payload))
}

func (m *MockMentorshipService) Complete(ctx context.Context, id string) (*models.Engagement, error) {
	return engagementResult(m.Called(ctx, id))
}

func (m *MockMentorshipService) GetEligibility(ctx context.Context, id string) (*models.EligibilityResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EligibilityResponse), args.Error(1)
}

func (m *MockMentorshipService) GetCertificate(ctx context.Context, id string) (*models.CertificateDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CertificateDocument), args.Error(1)
}

// MockCertificateService is a mock implementation of services.CertificateServiceInterface
type MockCertificateService struct {
	mock.Mock
}

func (m *MockCertificateService) Issue(e *models.Engagement) (*models.CertificateDocument, error) {
	args := m.Called(e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CertificateDocument), args.Error(1)
}

func (m *MockCertificateService) Verify(token string) (*models.Certificate, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Certificate), args.Error(1)
}

func (m *MockCertificateService) Publish(ctx context.Context, e *models.Engagement) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockCertificateService) PublishAsync(e *models.Engagement) {
	m.Called(e)
}

// MockPreferencesService is a mock implementation of services.PreferencesServiceInterface
type MockPreferencesService struct {
	mock.Mock
}

func (m *MockPreferencesService) GetPreferences(ctx context.Context, menteeID string) (*models.PreferencesResponse, error) {
	args := m.Called(ctx, menteeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PreferencesResponse), args.Error(1)
}

func (m *MockPreferencesService) SavePreferences(ctx context.Context, menteeID string, req *models.SavePreferencesRequest) (*models.MentorPreferences, error) {
	args := m.Called(ctx, menteeID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorPreferences), args.Error(1)
}
