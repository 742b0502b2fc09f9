package repository

import (
	"context"

	"github.com/getmentor/mentorship-api/internal/models"
)

// EngagementStore persists engagements.
// Implementations return deep copies so callers never share state with the store.
type EngagementStore interface {
	// Get returns the engagement or a not found error
	Get(ctx context.Context, id string) (*models.Engagement, error)

	// Save inserts or replaces the engagement. It fails with a conflict error
	// when e.Version no longer matches the stored version, and bumps e.Version
	// on success.
	Save(ctx context.Context, e *models.Engagement) error

	// List returns engagements matching the filter, oldest first
	List(ctx context.Context, filter models.EngagementFilter) ([]*models.Engagement, error)
}

// RequestStore persists mentorship requests
type RequestStore interface {
	// Get returns the request or a not found error
	Get(ctx context.Context, id string) (*models.MentorshipRequest, error)

	// Save inserts or replaces the request, with the same version check as EngagementStore
	Save(ctx context.Context, r *models.MentorshipRequest) error

	// List returns requests matching the filter, oldest first
	List(ctx context.Context, filter models.RequestFilter) ([]*models.MentorshipRequest, error)
}
