package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/getmentor/mentorship-api/internal/cache"
	"github.com/getmentor/mentorship-api/internal/models"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"go.uber.org/zap"
)

const preferencesSetValue = "true"

// PreferencesService stores the mentoring preferences a mentee fills in
// before looking for a mentor
type PreferencesService struct {
	kv  cache.KeyValueStore
	now func() time.Time
}

// NewPreferencesService creates a new PreferencesService
func NewPreferencesService(kv cache.KeyValueStore) *PreferencesService {
	return &PreferencesService{
		kv:  kv,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// GetPreferences returns saved preferences, or Set=false when there are none
func (s *PreferencesService) GetPreferences(ctx context.Context, menteeID string) (*models.PreferencesResponse, error) {
	menteeID = strings.TrimSpace(menteeID)
	if menteeID == "" {
		return nil, apperrors.ValidationError("menteeId", "is required")
	}

	flag, found, err := s.kv.Get(ctx, cache.MentorPreferencesSetKey(menteeID))
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences flag: %w", err)
	}
	if !found || flag != preferencesSetValue {
		return &models.PreferencesResponse{Set: false}, nil
	}

	raw, found, err := s.kv.Get(ctx, cache.MentorPreferencesKey(menteeID))
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	if !found {
		return &models.PreferencesResponse{Set: false}, nil
	}

	var prefs models.MentorPreferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		logger.Warn("Stored preferences are malformed",
			zap.String("mentee_id", menteeID),
			zap.Error(err))
		return &models.PreferencesResponse{Set: false}, nil
	}

	return &models.PreferencesResponse{Set: true, Preferences: &prefs}, nil
}

// SavePreferences replaces the mentee's preferences and marks them as set
func (s *PreferencesService) SavePreferences(ctx context.Context, menteeID string, req *models.SavePreferencesRequest) (prefs *models.MentorPreferences, err error) {
	defer func() {
		metrics.PreferencesUpdates.WithLabelValues(metrics.StatusLabel(err)).Inc()
	}()

	menteeID = strings.TrimSpace(menteeID)
	if menteeID == "" {
		return nil, apperrors.ValidationError("menteeId", "is required")
	}

	topics := normalizeTopics(req.Topics)
	if len(topics) == 0 {
		return nil, apperrors.ValidationError("topics", "at least one topic is required")
	}

	prefs = &models.MentorPreferences{
		MenteeID:         menteeID,
		Topics:           topics,
		Experience:       req.Experience,
		Format:           req.Format,
		SessionsPerMonth: req.SessionsPerMonth,
		UpdatedAt:        s.now(),
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}

	if err = s.kv.Set(ctx, cache.MentorPreferencesKey(menteeID), string(data)); err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	if err = s.kv.Set(ctx, cache.MentorPreferencesSetKey(menteeID), preferencesSetValue); err != nil {
		return nil, fmt.Errorf("failed to save preferences flag: %w", err)
	}

	logger.Info("Mentee preferences saved",
		zap.String("mentee_id", menteeID),
		zap.Int("topics", len(topics)))

	return prefs, nil
}

// normalizeTopics trims, drops blanks and removes case-insensitive duplicates
func normalizeTopics(topics []string) []string {
	seen := make(map[string]bool, len(topics))
	result := make([]string, 0, len(topics))
	for _, topic := range topics {
		topic = strings.TrimSpace(topic)
		key := strings.ToLower(topic)
		if topic == "" || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, topic)
	}
	return result
}
