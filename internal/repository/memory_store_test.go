package repository

import (
	"context"
	"testing"
	"time"

	"github.com/getmentor/mentorship-api/internal/models"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEngagement(id, mentee string, status models.EngagementStatus) *models.Engagement {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	return &models.Engagement{
		ID:        id,
		MenteeID:  mentee,
		MentorID:  "mentor-1",
		Topic:     "Go",
		Status:    status,
		StartDate: &now,
		Sessions: []models.Session{
			{ID: "s1", Title: "Intro", ScheduledDate: now, Status: models.SessionUpcoming},
		},
		Tasks:     []models.Task{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryEngagementStore_GetMissing(t *testing.T) {
	store := NewMemoryEngagementStore()

	_, err := store.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryEngagementStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryEngagementStore()
	original := sampleEngagement("e1", "mentee-1", models.EngagementActive)
	require.NoError(t, store.Save(ctx, original))

	// Mutating the saved value must not leak into the store
	original.Sessions[0].Status = models.SessionCompleted

	got, err := store.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionUpcoming, got.Sessions[0].Status)

	// Neither may mutating a returned value
	got.Sessions[0].Title = "changed"
	*got.StartDate = got.StartDate.Add(time.Hour)

	again, err := store.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Intro", again.Sessions[0].Title)
	assert.Equal(t, original.CreatedAt, *again.StartDate)
}

func TestMemoryEngagementStore_ListFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryEngagementStore()
	require.NoError(t, store.Save(ctx, sampleEngagement("e1", "mentee-1", models.EngagementActive)))
	require.NoError(t, store.Save(ctx, sampleEngagement("e2", "mentee-2", models.EngagementCompleted)))
	require.NoError(t, store.Save(ctx, sampleEngagement("e3", "mentee-1", models.EngagementWithdrawn)))
	// Re-saving keeps the first insertion position
	e1, err := store.Get(ctx, "e1")
	require.NoError(t, err)
	e1.Status = models.EngagementCompleted
	require.NoError(t, store.Save(ctx, e1))

	all, err := store.List(ctx, models.EngagementFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2", "e3"}, engagementIDs(all))

	byMentee, err := store.List(ctx, models.EngagementFilter{MenteeID: "mentee-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e3"}, engagementIDs(byMentee))

	completed, err := store.List(ctx, models.EngagementFilter{Status: models.EngagementCompleted})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, engagementIDs(completed))

	none, err := store.List(ctx, models.EngagementFilter{MentorID: "someone-else"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryEngagementStore_StaleSaveConflicts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryEngagementStore()
	created := sampleEngagement("e1", "mentee-1", models.EngagementActive)
	require.NoError(t, store.Save(ctx, created))
	assert.Equal(t, int64(1), created.Version)

	first, err := store.Get(ctx, "e1")
	require.NoError(t, err)
	second, err := store.Get(ctx, "e1")
	require.NoError(t, err)

	first.Sessions[0].Status = models.SessionCompleted
	require.NoError(t, store.Save(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Sessions[0].Status = models.SessionCancelled
	err = store.Save(ctx, second)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	got, err := store.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, got.Sessions[0].Status)

	// A fresh value for an existing id is stale too
	err = store.Save(ctx, sampleEngagement("e1", "mentee-1", models.EngagementActive))
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestMemoryEngagementStore_SaveRequiresID(t *testing.T) {
	store := NewMemoryEngagementStore()

	err := store.Save(context.Background(), &models.Engagement{})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestMemoryRequestStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRequestStore()
	reason := "busy"

	_, err := store.Get(ctx, "r1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, store.Save(ctx, &models.MentorshipRequest{ID: "r1", MenteeID: "a", MentorID: "m", Status: models.RequestPending}))
	require.NoError(t, store.Save(ctx, &models.MentorshipRequest{ID: "r2", MenteeID: "b", MentorID: "m", Status: models.RequestRejected, RejectionReason: &reason}))

	got, err := store.Get(ctx, "r2")
	require.NoError(t, err)
	*got.RejectionReason = "mutated"

	again, err := store.Get(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, "busy", *again.RejectionReason)

	pending, err := store.List(ctx, models.RequestFilter{MentorID: "m", Status: models.RequestPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "r1", pending[0].ID)

	stale := pending[0].Clone()
	pending[0].Status = models.RequestAccepted
	require.NoError(t, store.Save(ctx, pending[0]))
	stale.Status = models.RequestRejected
	assert.ErrorIs(t, store.Save(ctx, stale), apperrors.ErrConflict)
}

func engagementIDs(items []*models.Engagement) []string {
	ids := make([]string, 0, len(items))
	for _, e := range items {
		ids = append(ids, e.ID)
	}
	return ids
}
