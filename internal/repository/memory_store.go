package repository

import (
	"context"
	"sync"

	"github.com/getmentor/mentorship-api/internal/models"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
)

// MemoryEngagementStore keeps engagements in process memory.
// Listing preserves insertion order. Saves are checked against the stored
// version like the postgres store does.
type MemoryEngagementStore struct {
	mu    sync.RWMutex
	items map[string]*models.Engagement
	order []string
}

// NewMemoryEngagementStore creates an empty in-memory engagement store
func NewMemoryEngagementStore() *MemoryEngagementStore {
	return &MemoryEngagementStore{
		items: make(map[string]*models.Engagement),
	}
}

func (s *MemoryEngagementStore) Get(_ context.Context, id string) (*models.Engagement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.items[id]
	if !ok {
		return nil, apperrors.NotFoundError("engagement", id)
	}
	return e.Clone(), nil
}

func (s *MemoryEngagementStore) Save(_ context.Context, e *models.Engagement) error {
	if e == nil || e.ID == "" {
		return apperrors.ValidationError("engagement", "id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if stored, exists := s.items[e.ID]; exists {
		current = stored.Version
	}
	if current != e.Version {
		return apperrors.ConflictError("engagement", e.ID)
	}
	if current == 0 {
		s.order = append(s.order, e.ID)
	}
	e.Version++
	s.items[e.ID] = e.Clone()
	return nil
}

func (s *MemoryEngagementStore) List(_ context.Context, filter models.EngagementFilter) ([]*models.Engagement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Engagement, 0, len(s.order))
	for _, id := range s.order {
		e := s.items[id]
		if filter.Matches(e) {
			result = append(result, e.Clone())
		}
	}
	return result, nil
}

// MemoryRequestStore keeps mentorship requests in process memory
type MemoryRequestStore struct {
	mu    sync.RWMutex
	items map[string]*models.MentorshipRequest
	order []string
}

// NewMemoryRequestStore creates an empty in-memory request store
func NewMemoryRequestStore() *MemoryRequestStore {
	return &MemoryRequestStore{
		items: make(map[string]*models.MentorshipRequest),
	}
}

func (s *MemoryRequestStore) Get(_ context.Context, id string) (*models.MentorshipRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.items[id]
	if !ok {
		return nil, apperrors.NotFoundError("request", id)
	}
	return r.Clone(), nil
}

func (s *MemoryRequestStore) Save(_ context.Context, r *models.MentorshipRequest) error {
	if r == nil || r.ID == "" {
		return apperrors.ValidationError("request", "id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if stored, exists := s.items[r.ID]; exists {
		current = stored.Version
	}
	if current != r.Version {
		return apperrors.ConflictError("request", r.ID)
	}
	if current == 0 {
		s.order = append(s.order, r.ID)
	}
	r.Version++
	s.items[r.ID] = r.Clone()
	return nil
}

func (s *MemoryRequestStore) List(_ context.Context, filter models.RequestFilter) ([]*models.MentorshipRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.MentorshipRequest, 0, len(s.order))
	for _, id := range s.order {
		r := s.items[id]
		if filter.Matches(r) {
			result = append(result, r.Clone())
		}
	}
	return result, nil
}

var (
	_ EngagementStore = (*MemoryEngagementStore)(nil)
	_ RequestStore    = (*MemoryRequestStore)(nil)
)
