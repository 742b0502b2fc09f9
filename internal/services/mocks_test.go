package services_test

import (
	"context"
	"errors"
	"sync"

	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/repository"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/stretchr/testify/mock"
)

// MockNotifier is a mock implementation of services.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, kind models.NotificationKind, title, description string) {
	m.Called(ctx, kind, title, description)
}

// MockCertificatePublisher is a mock implementation of services.CertificatePublisher
type MockCertificatePublisher struct {
	mock.Mock
}

func (m *MockCertificatePublisher) Issue(e *models.Engagement) (*models.CertificateDocument, error) {
	args := m.Called(e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CertificateDocument), args.Error(1)
}

func (m *MockCertificatePublisher) PublishAsync(e *models.Engagement) {
	m.Called(e)
}

// MockCertificateArchive is a mock implementation of services.CertificateArchive
type MockCertificateArchive struct {
	mock.Mock
}

func (m *MockCertificateArchive) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockCertificateArchive) ObjectURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// MockKeyValueStore is a mock implementation of cache.KeyValueStore
type MockKeyValueStore struct {
	mock.Mock
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockKeyValueStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

var errStoreDown = errors.New("store unavailable")

// failingEngagementStore rejects every save
type failingEngagementStore struct {
	*repository.MemoryEngagementStore
}

func (s *failingEngagementStore) Save(_ context.Context, _ *models.Engagement) error {
	return errStoreDown
}

// conflictingEngagementStore accepts inserts but reports every update as stale
type conflictingEngagementStore struct {
	*repository.MemoryEngagementStore
}

func (s *conflictingEngagementStore) Save(ctx context.Context, e *models.Engagement) error {
	if e.Version == 0 {
		return s.MemoryEngagementStore.Save(ctx, e)
	}
	return apperrors.ConflictError("engagement", e.ID)
}

// interleavingEngagementStore runs a competing write right before the next save,
// the way another replica would between our read and our write
type interleavingEngagementStore struct {
	*repository.MemoryEngagementStore
	mu         sync.Mutex
	beforeSave func()
}

func (s *interleavingEngagementStore) interleave(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeSave = fn
}

func (s *interleavingEngagementStore) Save(ctx context.Context, e *models.Engagement) error {
	s.mu.Lock()
	hook := s.beforeSave
	s.beforeSave = nil
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return s.MemoryEngagementStore.Save(ctx, e)
}
