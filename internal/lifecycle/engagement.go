// Package lifecycle contains the state machines for mentorship requests and
// engagements. Every function here is pure: it receives the current state,
// returns the next state as a fresh copy, and never touches storage.
package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/getmentor/mentorship-api/internal/models"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
)

const (
	entityEngagement = "engagement"
	entitySession    = "session"
	entityTask       = "task"
)

// SessionNotes are the optional notes recorded on a completed session.
// A nil field leaves the existing note untouched.
type SessionNotes struct {
	MentorNotes *string
	MenteeNotes *string
}

// NewEngagement builds the engagement spawned by an accepted request
func NewEngagement(id string, req *models.MentorshipRequest, now time.Time) *models.Engagement {
	start := now
	return &models.Engagement{
		ID:        id,
		RequestID: req.ID,
		MenteeID:  req.MenteeID,
		MentorID:  req.MentorID,
		Topic:     req.Topic,
		Status:    models.EngagementActive,
		StartDate: &start,
		GoalsSet:  false,
		Sessions:  []models.Session{},
		Tasks:     []models.Task{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddSession appends an upcoming session
func AddSession(e *models.Engagement, sessionID, title, date string, now time.Time) (*models.Engagement, error) {
	if err := requireActive(e, "add session to"); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.ValidationError("title", "is required")
	}
	scheduled, err := ParseDate(date)
	if err != nil {
		return nil, apperrors.ValidationError("date", err.Error())
	}

	next := e.Clone()
	next.Sessions = append(next.Sessions, models.Session{
		ID:            sessionID,
		Title:         title,
		ScheduledDate: scheduled,
		Status:        models.SessionUpcoming,
	})
	next.UpdatedAt = now
	return next, nil
}

// CompleteSession marks an upcoming session as completed
func CompleteSession(e *models.Engagement, sessionID string, notes SessionNotes, now time.Time) (*models.Engagement, error) {
	if err := requireActive(e, "complete session of"); err != nil {
		return nil, err
	}
	idx := e.FindSession(sessionID)
	if idx < 0 {
		return nil, apperrors.NotFoundError(entitySession, sessionID)
	}
	if status := e.Sessions[idx].Status; status != models.SessionUpcoming {
		return nil, apperrors.InvalidTransitionError(entitySession, string(status), "complete")
	}

	next := e.Clone()
	completedAt := now
	session := &next.Sessions[idx]
	session.Status = models.SessionCompleted
	session.CompletedAt = &completedAt
	applyNotes(session, notes)
	next.UpdatedAt = now
	return next, nil
}

// CancelSession marks an upcoming session as cancelled
func CancelSession(e *models.Engagement, sessionID string, now time.Time) (*models.Engagement, error) {
	if err := requireActive(e, "cancel session of"); err != nil {
		return nil, err
	}
	idx := e.FindSession(sessionID)
	if idx < 0 {
		return nil, apperrors.NotFoundError(entitySession, sessionID)
	}
	if status := e.Sessions[idx].Status; status != models.SessionUpcoming {
		return nil, apperrors.InvalidTransitionError(entitySession, string(status), "cancel")
	}

	next := e.Clone()
	next.Sessions[idx].Status = models.SessionCancelled
	next.UpdatedAt = now
	return next, nil
}

// RecordSessionNotes updates notes on an already completed session
func RecordSessionNotes(e *models.Engagement, sessionID string, notes SessionNotes, now time.Time) (*models.Engagement, error) {
	if err := requireActive(e, "record session notes on"); err != nil {
		return nil, err
	}
	idx := e.FindSession(sessionID)
	if idx < 0 {
		return nil, apperrors.NotFoundError(entitySession, sessionID)
	}
	if status := e.Sessions[idx].Status; status != models.SessionCompleted {
		return nil, apperrors.InvalidTransitionError(entitySession, string(status), "record notes on")
	}
	if notes.MentorNotes == nil && notes.MenteeNotes == nil {
		return nil, apperrors.ValidationError("notes", "at least one of mentorNotes or menteeNotes is required")
	}

	next := e.Clone()
	applyNotes(&next.Sessions[idx], notes)
	next.UpdatedAt = now
	return next, nil
}

// AddTask appends a pending task for the mentee
func AddTask(e *models.Engagement, taskID, title, description, dueDate string, now time.Time) (*models.Engagement, error) {
	if err := requireActive(e, "add task to"); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.ValidationError("title", "is required")
	}
	due, err := ParseDate(dueDate)
	if err != nil {
		return nil, apperrors.ValidationError("dueDate", err.Error())
	}

	next := e.Clone()
	next.Tasks = append(next.Tasks, models.Task{
		ID:          taskID,
		Title:       title,
		Description: description,
		DueDate:     due,
		Status:      models.TaskPending,
	})
	next.UpdatedAt = now
	return next, nil
}

// CompleteTask marks a pending task as completed, storing optional feedback
func CompleteTask(e *models.Engagement, taskID, feedback string, now time.Time) (*models.Engagement, error) {
	if err := requireActive(e, "complete task of"); err != nil {
		return nil, err
	}
	idx := e.FindTask(taskID)
	if idx < 0 {
		return nil, apperrors.NotFoundError(entityTask, taskID)
	}
	if status := e.Tasks[idx].Status; status != models.TaskPending {
		return nil, apperrors.InvalidTransitionError(entityTask, string(status), "complete")
	}

	next := e.Clone()
	completedAt := now
	task := &next.Tasks[idx]
	task.Status = models.TaskCompleted
	task.CompletedAt = &completedAt
	if feedback != "" {
		task.Feedback = feedback
	}
	next.UpdatedAt = now
	return next, nil
}

// SetGoals records that the mentee's goals are set. Calling it again is a no-op.
func SetGoals(e *models.Engagement, now time.Time) (*models.Engagement, error) {
	if err := requireActive(e, "set goals on"); err != nil {
		return nil, err
	}

	next := e.Clone()
	if next.GoalsSet {
		return next, nil
	}
	next.GoalsSet = true
	next.UpdatedAt = now
	return next, nil
}

// Withdraw ends an active engagement without a certificate
func Withdraw(e *models.Engagement, by models.Party, now time.Time) (*models.Engagement, error) {
	if err := requireActive(e, "withdraw"); err != nil {
		return nil, err
	}

	next := e.Clone()
	end := now
	next.Status = models.EngagementWithdrawn
	next.EndDate = &end
	next.WithdrawnBy = by
	next.UpdatedAt = now
	return next, nil
}

// Complete ends an active engagement. Allowed only when the engagement is
// completion eligible; otherwise the error lists every unmet condition.
func Complete(e *models.Engagement, now time.Time) (*models.Engagement, error) {
	if err := requireActive(e, "complete"); err != nil {
		return nil, err
	}
	if unmet := UnmetConditions(e); len(unmet) > 0 {
		return nil, apperrors.NewPreconditionError("complete engagement", unmet...)
	}

	next := e.Clone()
	end := now
	next.Status = models.EngagementCompleted
	next.EndDate = &end
	next.UpdatedAt = now
	return next, nil
}

func requireActive(e *models.Engagement, operation string) error {
	if e.Status == models.EngagementActive {
		return nil
	}
	err := apperrors.InvalidTransitionError(entityEngagement, string(e.Status), operation)
	if e.Status.IsTerminal() {
		return fmt.Errorf("engagement %s is closed: %w", e.ID, err)
	}
	return err
}

func applyNotes(s *models.Session, notes SessionNotes) {
	if notes.MentorNotes != nil {
		s.MentorNotes = *notes.MentorNotes
	}
	if notes.MenteeNotes != nil {
		s.MenteeNotes = *notes.MenteeNotes
	}
}
