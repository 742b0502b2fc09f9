package services

import (
	"context"
	"fmt"
	"time"

	"github.com/getmentor/mentorship-api/internal/cache"
	"github.com/getmentor/mentorship-api/internal/lifecycle"
	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/repository"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"github.com/getmentor/mentorship-api/pkg/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Operations, used as metric labels, span names and notification titles
const (
	OpSubmitRequest      = "submit_request"
	OpAcceptRequest      = "accept_request"
	OpRejectRequest      = "reject_request"
	OpAddSession         = "add_session"
	OpCompleteSession    = "complete_session"
	OpCancelSession      = "cancel_session"
	OpRecordSessionNotes = "record_session_notes"
	OpAddTask            = "add_task"
	OpCompleteTask       = "complete_task"
	OpSetGoals           = "set_goals"
	OpWithdraw           = "withdraw"
	OpComplete           = "complete"
)

// maxSaveAttempts bounds how often a mutation is re-applied after a version conflict
const maxSaveAttempts = 3

var operationTitles = map[string]string{
	OpAddSession:         "Session scheduled",
	OpCompleteSession:    "Session completed",
	OpCancelSession:      "Session cancelled",
	OpRecordSessionNotes: "Session notes saved",
	OpAddTask:            "Task assigned",
	OpCompleteTask:       "Task completed",
	OpSetGoals:           "Goals set",
	OpWithdraw:           "Engagement withdrawn",
	OpComplete:           "Engagement completed",
	OpSubmitRequest:      "Request submitted",
	OpAcceptRequest:      "Request accepted",
	OpRejectRequest:      "Request rejected",
}

// CertificatePublisher is what the mentorship service needs from certificates
type CertificatePublisher interface {
	Issue(e *models.Engagement) (*models.CertificateDocument, error)
	PublishAsync(e *models.Engagement)
}

// MentorshipOption customises a MentorshipService
type MentorshipOption func(*MentorshipService)

// WithClock replaces the time source
func WithClock(now func() time.Time) MentorshipOption {
	return func(s *MentorshipService) { s.now = now }
}

// WithIDGenerator replaces the id source
func WithIDGenerator(newID func() string) MentorshipOption {
	return func(s *MentorshipService) { s.newID = newID }
}

// MentorshipService runs every request and engagement operation.
// Mutations of one entity are serialized; the lifecycle package decides
// what each mutation does.
type MentorshipService struct {
	engagements  repository.EngagementStore
	requests     repository.RequestStore
	kv           cache.KeyValueStore
	notifier     Notifier
	certificates CertificatePublisher
	locks        *keyedMutex
	now          func() time.Time
	newID        func() string
}

// NewMentorshipService creates a new MentorshipService
func NewMentorshipService(
	engagements repository.EngagementStore,
	requests repository.RequestStore,
	kv cache.KeyValueStore,
	notifier Notifier,
	certificates CertificatePublisher,
	opts ...MentorshipOption,
) *MentorshipService {
	s := &MentorshipService{
		engagements:  engagements,
		requests:     requests,
		kv:           kv,
		notifier:     notifier,
		certificates: certificates,
		locks:        newKeyedMutex(),
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = NewLogNotifier()
	}
	return s
}

// SubmitRequest records a new pending request from a mentee
func (s *MentorshipService) SubmitRequest(ctx context.Context, payload *models.SubmitRequestPayload) (req *models.MentorshipRequest, err error) {
	ctx, span := tracing.StartSpan(ctx, "MentorshipService.SubmitRequest")
	defer func() { tracing.EndSpan(span, err) }()

	req, err = lifecycle.NewRequest(s.newID(), payload.MenteeID, payload.MentorID, payload.Topic, payload.Message, s.now())
	if err != nil {
		s.notifyFailure(ctx, OpSubmitRequest, err)
		return nil, err
	}

	if err = s.requests.Save(ctx, req); err != nil {
		err = fmt.Errorf("failed to save request: %w", err)
		s.notifyFailure(ctx, OpSubmitRequest, err)
		return nil, err
	}

	metrics.RequestTransitions.WithLabelValues(string(req.Status)).Inc()
	logger.Info("Mentorship request submitted",
		zap.String("request_id", req.ID),
		zap.String("mentee_id", req.MenteeID),
		zap.String("mentor_id", req.MentorID))
	s.notifySuccess(ctx, OpSubmitRequest, fmt.Sprintf("Request on %q sent to mentor", req.Topic))

	return req, nil
}

// GetRequest returns a request by id
func (s *MentorshipService) GetRequest(ctx context.Context, id string) (*models.MentorshipRequest, error) {
	return s.requests.Get(ctx, id)
}

// ListRequests returns requests matching filter in submission order
func (s *MentorshipService) ListRequests(ctx context.Context, filter models.RequestFilter) (*models.MentorshipRequestsResponse, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, apperrors.ValidationError("status", "unknown request status")
	}

	requests, err := s.requests.List(ctx, filter)
	if err != nil {
		logger.Error("Failed to list requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	return &models.MentorshipRequestsResponse{Requests: requests, Total: len(requests)}, nil
}

// AcceptRequest accepts a pending request and starts its engagement
func (s *MentorshipService) AcceptRequest(ctx context.Context, id string, payload *models.AcceptRequestPayload) (resp *models.AcceptRequestResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "MentorshipService.AcceptRequest", attribute.String("request.id", id))
	defer func() { tracing.EndSpan(span, err) }()

	unlock := s.locks.Lock("request:" + id)
	defer unlock()

	current, err := s.requests.Get(ctx, id)
	if err != nil {
		s.notifyFailure(ctx, OpAcceptRequest, err)
		return nil, err
	}

	accepted, engagement, err := lifecycle.AcceptRequest(current, payload.Message, s.newID(), s.now())
	if err != nil {
		s.notifyFailure(ctx, OpAcceptRequest, err)
		return nil, err
	}

	if err = s.requests.Save(ctx, accepted); err != nil {
		err = fmt.Errorf("failed to save request: %w", err)
		s.notifyFailure(ctx, OpAcceptRequest, err)
		return nil, err
	}

	if err = s.engagements.Save(ctx, engagement); err != nil {
		// Put the request back so it can be accepted again
		restored := current.Clone()
		restored.Version = accepted.Version
		if rollbackErr := s.requests.Save(ctx, restored); rollbackErr != nil {
			logger.Error("Failed to roll back accepted request",
				zap.String("request_id", id),
				zap.Error(rollbackErr))
		}
		err = fmt.Errorf("failed to save engagement: %w", err)
		s.notifyFailure(ctx, OpAcceptRequest, err)
		return nil, err
	}

	s.touch(ctx, engagement)
	metrics.RequestTransitions.WithLabelValues(string(accepted.Status)).Inc()
	metrics.EngagementTransitions.WithLabelValues(string(engagement.Status)).Inc()
	logger.Info("Mentorship request accepted",
		zap.String("request_id", id),
		zap.String("engagement_id", engagement.ID))
	s.notifySuccess(ctx, OpAcceptRequest, fmt.Sprintf("Engagement on %q started", engagement.Topic))

	return &models.AcceptRequestResponse{Request: accepted, Engagement: engagement}, nil
}

// RejectRequest rejects a pending request
func (s *MentorshipService) RejectRequest(ctx context.Context, id string, payload *models.RejectRequestPayload) (req *models.MentorshipRequest, err error) {
	ctx, span := tracing.StartSpan(ctx, "MentorshipService.RejectRequest", attribute.String("request.id", id))
	defer func() { tracing.EndSpan(span, err) }()

	unlock := s.locks.Lock("request:" + id)
	defer unlock()

	current, err := s.requests.Get(ctx, id)
	if err != nil {
		s.notifyFailure(ctx, OpRejectRequest, err)
		return nil, err
	}

	req, err = lifecycle.RejectRequest(current, payload.Reason, s.now())
	if err != nil {
		s.notifyFailure(ctx, OpRejectRequest, err)
		return nil, err
	}

	if err = s.requests.Save(ctx, req); err != nil {
		err = fmt.Errorf("failed to save request: %w", err)
		s.notifyFailure(ctx, OpRejectRequest, err)
		return nil, err
	}

	metrics.RequestTransitions.WithLabelValues(string(req.Status)).Inc()
	logger.Info("Mentorship request rejected", zap.String("request_id", id))
	s.notifySuccess(ctx, OpRejectRequest, fmt.Sprintf("Request on %q was declined", req.Topic))

	return req, nil
}

// GetEngagement returns an engagement by id
func (s *MentorshipService) GetEngagement(ctx context.Context, id string) (*models.Engagement, error) {
	return s.engagements.Get(ctx, id)
}

// ListEngagements returns engagements matching filter in creation order
func (s *MentorshipService) ListEngagements(ctx context.Context, filter models.EngagementFilter) (*models.EngagementsResponse, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, apperrors.ValidationError("status", "unknown engagement status")
	}

	engagements, err := s.engagements.List(ctx, filter)
	if err != nil {
		logger.Error("Failed to list engagements", zap.Error(err))
		return nil, fmt.Errorf("failed to list engagements: %w", err)
	}

	return &models.EngagementsResponse{Engagements: engagements, Total: len(engagements)}, nil
}

// GetActivity returns the time of the last successful mutation of an engagement
func (s *MentorshipService) GetActivity(ctx context.Context, id string) (*models.ActivityResponse, error) {
	if _, err := s.engagements.Get(ctx, id); err != nil {
		return nil, err
	}

	resp := &models.ActivityResponse{EngagementID: id}
	if s.kv == nil {
		return resp, nil
	}

	value, found, err := s.kv.Get(ctx, cache.LastActivityKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read last activity: %w", err)
	}
	if !found {
		return resp, nil
	}

	at, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		logger.Warn("Ignoring malformed last activity value",
			zap.String("engagement_id", id),
			zap.String("value", value))
		return resp, nil
	}
	resp.LastActivity = &at
	return resp, nil
}

// AddSession schedules a new session
func (s *MentorshipService) AddSession(ctx context.Context, id string, payload *models.AddSessionRequest) (*models.Engagement, error) {
	sessionID := s.newID()
	return s.mutate(ctx, OpAddSession, id, func(e *models.Engagement, now time.Time) (*models.Engagement, error) {
		return lifecycle.AddSession(e, sessionID, payload.Title, payload.Date, now)
	})
}

// CompleteSession marks an upcoming session as held
func (s *MentorshipService) CompleteSession(ctx context.Context, id, sessionID string, payload *models.CompleteSessionRequest) (*models.Engagement, error) {
	notes := lifecycle.SessionNotes{}
	if payload != nil {
		notes.MentorNotes = nonEmpty(payload.MentorNotes)
		notes.MenteeNotes = nonEmpty(payload.MenteeNotes)
	}
	return s.mutate(ctx, OpCompleteSession, id, func(e *models.Engagement, now time.Time) (*models.Engagement, error) {
		return lifecycle.CompleteSession(e, sessionID, notes, now)
	})
}

// CancelSession cancels an upcoming session
func (s *MentorshipService) CancelSession(ctx context.Context, id, sessionID string) (*models.Engagement, error) {
	return s.mutate(ctx, OpCancelSession, id, func(e *models.Engagement, now time.Time) (*models.Engagement, error) {
		return lifecycle.CancelSession(e, sessionID, now)
	})
}

// RecordSessionNotes updates the notes of a completed session
func (s *MentorshipService) RecordSessionNotes(ctx context.Context, id, sessionID string, payload *models.SessionNotesRequest) (*models.Engagement, error) {
	notes := lifecycle.SessionNotes{MentorNotes: payload.MentorNotes, MenteeNotes: payload.MenteeNotes}
	return s.mutate(ctx, OpRecordSessionNotes, id, func(e *models.Engagement, now time.Time) (*models.Engagement, error) {
		return lifecycle.RecordSessionNotes(e, sessionID, notes, now)
	})
}

// AddTask assigns a new task
func (s *MentorshipService) AddTask(ctx context.Context, id string, payload *models.AddTaskRequest) (*models.Engagement, error) {
	taskID := s.newID()
	return s.mutate(ctx, OpAddTask, id, func(e *models.Engagement, now time.Time) (*models.Engagement, error) {
		return lifecycle.AddTask(e, taskID, payload.Title, payload.Description, payload.DueDate, now)
	})
}

// CompleteTask marks a pending task as done
func (s *MentorshipService) CompleteTask(ctx context.Context, id, taskID string, payload *models.CompleteTaskRequest) (*models.Engagement, error) {
	feedback := ""
	if payload != nil {
		feedback = payload.Feedback
	}
	return s.mutate(ctx, OpCompleteTask, id, func(e *models.Engagement, now time.Time) (*models.Engagement, error) {
		return lifecycle.CompleteTask(e, taskID, feedback, now)
	})
}

// SetGoals records that goals are agreed
func (s *MentorshipService) SetGoals(ctx context.Context, id string) (*models.Engagement, error) {
	return s.mutate(ctx, OpSetGoals, id, lifecycle.SetGoals)
}

// Withdraw ends an active engagement early. Either party may withdraw.
func (s *MentorshipService) Withdraw(ctx context.Context, id string, payload *models.WithdrawRequest) (*models.Engagement, error) {
	var by models.Party
	if payload != nil {
		by = payload.InitiatedBy
	}
	if by != "" && by != models.PartyMentee && by != models.PartyMentor {
		err := apperrors.ValidationError("initiatedBy", "must be mentee or mentor")
		s.notifyFailure(ctx, OpWithdraw, err)
		return nil, err
	}

	return s.mutate(ctx, OpWithdraw, id, func(e *models.Engagement, now time.Time) (*models.Engagement, error) {
		return lifecycle.Withdraw(e, by, now)
	})
}

// Complete closes an eligible engagement and publishes its certificate
func (s *MentorshipService) Complete(ctx context.Context, id string) (*models.Engagement, error) {
	completed, err := s.mutate(ctx, OpComplete, id, lifecycle.Complete)
	if err != nil {
		return nil, err
	}

	if s.certificates != nil {
		s.certificates.PublishAsync(completed)
	}
	return completed, nil
}

// GetEligibility reports whether an engagement may be completed and what is missing
func (s *MentorshipService) GetEligibility(ctx context.Context, id string) (*models.EligibilityResponse, error) {
	e, err := s.engagements.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	eligibility := lifecycle.Eligibility(e)
	return &eligibility, nil
}

// GetCertificate returns the certificate of a completed engagement
func (s *MentorshipService) GetCertificate(ctx context.Context, id string) (*models.CertificateDocument, error) {
	e, err := s.engagements.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.certificates != nil {
		return s.certificates.Issue(e)
	}

	cert, ok := lifecycle.DeriveCertificate(e)
	if !ok {
		return nil, apperrors.NotFoundError("certificate", id)
	}
	return &models.CertificateDocument{Certificate: *cert}, nil
}

// mutate runs one read-modify-write of an engagement under its lock
func (s *MentorshipService) mutate(
	ctx context.Context,
	operation, id string,
	apply func(e *models.Engagement, now time.Time) (*models.Engagement, error),
) (next *models.Engagement, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "MentorshipService."+operation, attribute.String("engagement.id", id))
	defer func() {
		tracing.EndSpan(span, err)
		metrics.EngagementOperations.WithLabelValues(operation, metrics.StatusLabel(err)).Inc()
	}()

	unlock := s.locks.Lock("engagement:" + id)
	defer unlock()

	// The lock only serializes this process. Writers in other replicas show up
	// as version conflicts and the operation is re-applied on fresh state.
	var current *models.Engagement
	for attempt := 1; ; attempt++ {
		current, err = s.engagements.Get(ctx, id)
		if err != nil {
			s.notifyFailure(ctx, operation, err)
			return nil, err
		}

		next, err = apply(current, s.now())
		if err != nil {
			logger.Debug("Engagement operation rejected",
				zap.String("operation", operation),
				zap.String("engagement_id", id),
				zap.String("kind", apperrors.Kind(err)),
				zap.Error(err))
			s.notifyFailure(ctx, operation, err)
			return nil, err
		}

		err = s.engagements.Save(ctx, next)
		if err == nil {
			break
		}
		if apperrors.Is(err, apperrors.ErrConflict) && attempt < maxSaveAttempts {
			logger.Warn("Engagement changed concurrently, retrying",
				zap.String("operation", operation),
				zap.String("engagement_id", id),
				zap.Int("attempt", attempt))
			continue
		}

		logger.Error("Failed to save engagement",
			zap.String("operation", operation),
			zap.String("engagement_id", id),
			zap.Error(err))
		err = fmt.Errorf("failed to save engagement: %w", err)
		s.notifyFailure(ctx, operation, err)
		return nil, err
	}

	s.touch(ctx, next)

	if next.Status != current.Status {
		metrics.EngagementTransitions.WithLabelValues(string(next.Status)).Inc()
		logger.Info("Engagement status changed",
			zap.String("engagement_id", id),
			zap.String("from_status", string(current.Status)),
			zap.String("to_status", string(next.Status)))
	}

	logger.Info("Engagement updated",
		zap.String("operation", operation),
		zap.String("engagement_id", id),
		zap.Int("sessions_completed", next.SessionsCompletedCount()),
		zap.Duration("duration", time.Since(start)))
	s.notifySuccess(ctx, operation, fmt.Sprintf("Engagement on %q", next.Topic))

	return next, nil
}

// touch records the last activity time. Failures are logged only.
func (s *MentorshipService) touch(ctx context.Context, e *models.Engagement) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Set(ctx, cache.LastActivityKey(e.ID), e.UpdatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		logger.Warn("Failed to record last activity",
			zap.String("engagement_id", e.ID),
			zap.Error(err))
	}
}

func (s *MentorshipService) notifySuccess(ctx context.Context, operation, description string) {
	s.notifier.Notify(ctx, models.NotificationSuccess, operationTitles[operation], description)
}

func (s *MentorshipService) notifyFailure(ctx context.Context, operation string, err error) {
	NotifyFailure(ctx, s.notifier, operation, err)
}

func nonEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
