package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/getmentor/mentorship-api/internal/cache"
	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/services"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPreferencesService_NotSet(t *testing.T) {
	svc := services.NewPreferencesService(cache.NewMemoryStore(0))

	resp, err := svc.GetPreferences(context.Background(), "mentee-1")

	require.NoError(t, err)
	assert.False(t, resp.Set)
	assert.Nil(t, resp.Preferences)
}

func TestPreferencesService_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	kv := cache.NewMemoryStore(0)
	svc := services.NewPreferencesService(kv)

	saved, err := svc.SavePreferences(ctx, "mentee-1", &models.SavePreferencesRequest{
		Topics:           []string{" Go ", "go", "Kubernetes", ""},
		Experience:       "middle",
		Format:           "online",
		SessionsPerMonth: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Kubernetes"}, saved.Topics)

	flag, found, err := kv.Get(ctx, cache.MentorPreferencesSetKey("mentee-1"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "true", flag)

	resp, err := svc.GetPreferences(ctx, "mentee-1")
	require.NoError(t, err)
	assert.True(t, resp.Set)
	require.NotNil(t, resp.Preferences)
	assert.Equal(t, "mentee-1", resp.Preferences.MenteeID)
	assert.Equal(t, []string{"Go", "Kubernetes"}, resp.Preferences.Topics)
	assert.Equal(t, 2, resp.Preferences.SessionsPerMonth)
}

func TestPreferencesService_Validation(t *testing.T) {
	svc := services.NewPreferencesService(cache.NewMemoryStore(0))

	_, err := svc.SavePreferences(context.Background(), " ", &models.SavePreferencesRequest{Topics: []string{"Go"}})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.SavePreferences(context.Background(), "mentee-1", &models.SavePreferencesRequest{Topics: []string{"  "}})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.GetPreferences(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPreferencesService_MalformedValue(t *testing.T) {
	ctx := context.Background()
	kv := cache.NewMemoryStore(0)
	require.NoError(t, kv.Set(ctx, cache.MentorPreferencesSetKey("m"), "true"))
	require.NoError(t, kv.Set(ctx, cache.MentorPreferencesKey("m"), "{not json"))

	resp, err := services.NewPreferencesService(kv).GetPreferences(ctx, "m")

	require.NoError(t, err)
	assert.False(t, resp.Set)
}

func TestPreferencesService_StoreFailure(t *testing.T) {
	kv := new(MockKeyValueStore)
	kv.On("Set", mock.Anything, cache.MentorPreferencesKey("m"), mock.Anything).Return(errors.New("redis down"))

	_, err := services.NewPreferencesService(kv).SavePreferences(context.Background(), "m",
		&models.SavePreferencesRequest{Topics: []string{"Go"}})

	assert.Error(t, err)
	kv.AssertNotCalled(t, "Set", mock.Anything, cache.MentorPreferencesSetKey("m"), mock.Anything)
}
