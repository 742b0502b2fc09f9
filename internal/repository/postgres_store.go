package repository

import (
	"context"

	"github.com/getmentor/mentorship-api/internal/database/postgres"
	"github.com/getmentor/mentorship-api/internal/models"
)

// PostgresEngagementStore implements EngagementStore using PostgreSQL
type PostgresEngagementStore struct {
	client *postgres.Client
}

// NewPostgresEngagementStore creates a new PostgreSQL engagement store
func NewPostgresEngagementStore(client *postgres.Client) *PostgresEngagementStore {
	return &PostgresEngagementStore{client: client}
}

func (s *PostgresEngagementStore) Get(ctx context.Context, id string) (*models.Engagement, error) {
	return s.client.GetEngagement(ctx, id)
}

func (s *PostgresEngagementStore) Save(ctx context.Context, e *models.Engagement) error {
	return s.client.UpsertEngagement(ctx, e)
}

func (s *PostgresEngagementStore) List(ctx context.Context, filter models.EngagementFilter) ([]*models.Engagement, error) {
	return s.client.ListEngagements(ctx, filter)
}

// PostgresRequestStore implements RequestStore using PostgreSQL
type PostgresRequestStore struct {
	client *postgres.Client
}

// NewPostgresRequestStore creates a new PostgreSQL request store
func NewPostgresRequestStore(client *postgres.Client) *PostgresRequestStore {
	return &PostgresRequestStore{client: client}
}

func (s *PostgresRequestStore) Get(ctx context.Context, id string) (*models.MentorshipRequest, error) {
	return s.client.GetRequest(ctx, id)
}

func (s *PostgresRequestStore) Save(ctx context.Context, r *models.MentorshipRequest) error {
	return s.client.UpsertRequest(ctx, r)
}

func (s *PostgresRequestStore) List(ctx context.Context, filter models.RequestFilter) ([]*models.MentorshipRequest, error) {
	return s.client.ListRequests(ctx, filter)
}

var (
	_ EngagementStore = (*PostgresEngagementStore)(nil)
	_ RequestStore    = (*PostgresRequestStore)(nil)
)
