package models

import (
	"encoding/json"
	"time"
)

// EngagementStatus represents the status of a mentoring engagement
type EngagementStatus string

const (
	EngagementPending   EngagementStatus = "pending"
	EngagementActive    EngagementStatus = "active"
	EngagementCompleted EngagementStatus = "completed"
	EngagementWithdrawn EngagementStatus = "withdrawn"
)

// IsTerminal returns true if no further mutation is allowed
func (s EngagementStatus) IsTerminal() bool {
	return s == EngagementCompleted || s == EngagementWithdrawn
}

// IsValid reports whether s is a known engagement status
func (s EngagementStatus) IsValid() bool {
	switch s {
	case EngagementPending, EngagementActive, EngagementCompleted, EngagementWithdrawn:
		return true
	default:
		return false
	}
}

// SessionStatus represents the status of a mentoring session
type SessionStatus string

const (
	SessionUpcoming  SessionStatus = "upcoming"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// TaskStatus represents the status of a mentee task
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// Party identifies one side of an engagement
type Party string

const (
	PartyMentee Party = "mentee"
	PartyMentor Party = "mentor"
)

// Session is one scheduled or held meeting within an engagement
type Session struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	ScheduledDate time.Time     `json:"scheduledDate"`
	Status        SessionStatus `json:"status"`
	MentorNotes   string        `json:"mentorNotes,omitempty"`
	MenteeNotes   string        `json:"menteeNotes,omitempty"`
	CompletedAt   *time.Time    `json:"completedAt,omitempty"`
}

// Task is an assignment given to the mentee within an engagement
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     time.Time  `json:"dueDate"`
	Status      TaskStatus `json:"status"`
	Feedback    string     `json:"feedback,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Engagement is one mentee-mentor pairing and its mentoring relationship.
// The completed session count is derived from Sessions and never stored.
type Engagement struct {
	ID          string           `json:"id"`
	RequestID   string           `json:"requestId"`
	MenteeID    string           `json:"menteeId"`
	MentorID    string           `json:"mentorId"`
	Topic       string           `json:"topic"`
	Status      EngagementStatus `json:"status"`
	StartDate   *time.Time       `json:"startDate"`
	EndDate     *time.Time       `json:"endDate"`
	GoalsSet    bool             `json:"goalsSet"`
	WithdrawnBy Party            `json:"withdrawnBy,omitempty"`
	Sessions    []Session        `json:"sessions"`
	Tasks       []Task           `json:"tasks"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`

	// Version is the stored revision the value was read at; zero means not yet stored
	Version int64 `json:"-"`
}

// SessionsCompletedCount recomputes the number of completed sessions
func (e *Engagement) SessionsCompletedCount() int {
	count := 0
	for i := range e.Sessions {
		if e.Sessions[i].Status == SessionCompleted {
			count++
		}
	}
	return count
}

// FindSession returns the index of the session with the given id, or -1
func (e *Engagement) FindSession(sessionID string) int {
	for i := range e.Sessions {
		if e.Sessions[i].ID == sessionID {
			return i
		}
	}
	return -1
}

// FindTask returns the index of the task with the given id, or -1
func (e *Engagement) FindTask(taskID string) int {
	for i := range e.Tasks {
		if e.Tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the engagement
func (e *Engagement) Clone() *Engagement {
	if e == nil {
		return nil
	}
	c := *e
	c.StartDate = cloneTime(e.StartDate)
	c.EndDate = cloneTime(e.EndDate)

	c.Sessions = make([]Session, len(e.Sessions))
	for i, s := range e.Sessions {
		s.CompletedAt = cloneTime(s.CompletedAt)
		c.Sessions[i] = s
	}

	c.Tasks = make([]Task, len(e.Tasks))
	for i, t := range e.Tasks {
		t.CompletedAt = cloneTime(t.CompletedAt)
		c.Tasks[i] = t
	}
	return &c
}

// MarshalJSON adds the derived sessionsCompletedCount to the wire form
func (e Engagement) MarshalJSON() ([]byte, error) {
	type engagementAlias Engagement
	return json.Marshal(struct {
		engagementAlias
		SessionsCompletedCount int `json:"sessionsCompletedCount"`
	}{
		engagementAlias:        engagementAlias(e),
		SessionsCompletedCount: e.SessionsCompletedCount(),
	})
}

// EngagementFilter narrows ListEngagements. Empty fields match everything.
type EngagementFilter struct {
	MenteeID string
	MentorID string
	Status   EngagementStatus
}

// Matches reports whether e satisfies the filter
func (f EngagementFilter) Matches(e *Engagement) bool {
	if f.MenteeID != "" && e.MenteeID != f.MenteeID {
		return false
	}
	if f.MentorID != "" && e.MentorID != f.MentorID {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	return true
}

// EngagementsResponse is the response for listing engagements
type EngagementsResponse struct {
	Engagements []*Engagement `json:"engagements"`
	Total       int           `json:"total"`
}

// EligibilityResponse describes whether an engagement may be completed
type EligibilityResponse struct {
	EngagementID           string           `json:"engagementId"`
	Status                 EngagementStatus `json:"status"`
	Eligible               bool             `json:"eligible"`
	GoalsSet               bool             `json:"goalsSet"`
	SessionsCompletedCount int              `json:"sessionsCompletedCount"`
	UnmetConditions        []string         `json:"unmetConditions"`
}

// ActivityResponse reports the last recorded mutation of an engagement
type ActivityResponse struct {
	EngagementID string     `json:"engagementId"`
	LastActivity *time.Time `json:"lastActivity"`
}

// AddSessionRequest is the payload for scheduling a session
type AddSessionRequest struct {
	Title string `json:"title" binding:"required,max=200"`
	Date  string `json:"date" binding:"required"`
}

// CompleteSessionRequest is the payload for completing a session
type CompleteSessionRequest struct {
	MentorNotes string `json:"mentorNotes" binding:"max=5000"`
	MenteeNotes string `json:"menteeNotes" binding:"max=5000"`
}

// SessionNotesRequest is the payload for recording notes on a completed session
type SessionNotesRequest struct {
	MentorNotes *string `json:"mentorNotes" binding:"omitempty,max=5000"`
	MenteeNotes *string `json:"menteeNotes" binding:"omitempty,max=5000"`
}

// AddTaskRequest is the payload for assigning a task
type AddTaskRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=5000"`
	DueDate     string `json:"dueDate" binding:"required"`
}

// CompleteTaskRequest is the payload for completing a task
type CompleteTaskRequest struct {
	Feedback string `json:"feedback" binding:"max=5000"`
}

// WithdrawRequest is the payload for withdrawing from an engagement
type WithdrawRequest struct {
	InitiatedBy Party `json:"initiatedBy" binding:"omitempty,oneof=mentee mentor"`
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
