package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/getmentor/mentorship-api/internal/lifecycle"
	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/services"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/getmentor/mentorship-api/pkg/httpclient"
	"github.com/getmentor/mentorship-api/pkg/jwt"
	"github.com/getmentor/mentorship-api/pkg/retry"
	"github.com/getmentor/mentorship-api/pkg/trigger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const expectedCertificateKey = "certificates/sistemnyy-dizayn-eng-1.json"

func completedEngagement(t *testing.T) *models.Engagement {
	t.Helper()

	req, err := lifecycle.NewRequest("req-1", "mentee-1", "mentor-1", "Системный дизайн", "", fixedNow)
	require.NoError(t, err)
	_, e, err := lifecycle.AcceptRequest(req, "", "eng-1", fixedNow)
	require.NoError(t, err)
	e, err = lifecycle.SetGoals(e, fixedNow)
	require.NoError(t, err)
	e, err = lifecycle.AddSession(e, "s1", "Kickoff", "2024-03-02", fixedNow)
	require.NoError(t, err)
	e, err = lifecycle.CompleteSession(e, "s1", lifecycle.SessionNotes{}, fixedNow)
	require.NoError(t, err)
	e, err = lifecycle.Complete(e, fixedNow.Add(time.Hour))
	require.NoError(t, err)
	return e
}

func TestCertificateKey(t *testing.T) {
	key := services.CertificateKey(&models.Certificate{EngagementID: "eng-1", Topic: "Системный дизайн"})
	assert.Equal(t, expectedCertificateKey, key)
}

func TestCertificateService_Issue(t *testing.T) {
	signer := jwt.NewCertificateSigner("secret", "mentorship-api")
	archive := new(MockCertificateArchive)
	archive.On("ObjectURL", expectedCertificateKey).Return("https://storage/bucket/" + expectedCertificateKey)

	svc := services.NewCertificateService(signer, archive, nil, 0)
	e := completedEngagement(t)

	doc, err := svc.Issue(e)

	require.NoError(t, err)
	assert.Equal(t, "eng-1", doc.Certificate.EngagementID)
	assert.Equal(t, "Системный дизайн", doc.Certificate.Topic)
	assert.True(t, doc.Certificate.IssuedDate.Equal(*e.EndDate))
	assert.NotEmpty(t, doc.Token)
	assert.Equal(t, "https://storage/bucket/"+expectedCertificateKey, doc.ArchiveURL)

	verified, err := svc.Verify(doc.Token)
	require.NoError(t, err)
	assert.Equal(t, doc.Certificate.EngagementID, verified.EngagementID)
	assert.Equal(t, doc.Certificate.MentorID, verified.MentorID)
}

func TestCertificateService_IssueWithoutCollaborators(t *testing.T) {
	svc := services.NewCertificateService(nil, nil, nil, 0)

	doc, err := svc.Issue(completedEngagement(t))

	require.NoError(t, err)
	assert.Empty(t, doc.Token)
	assert.Empty(t, doc.ArchiveURL)
}

func TestCertificateService_IssueRequiresCompletion(t *testing.T) {
	svc := services.NewCertificateService(nil, nil, nil, 0)

	req, err := lifecycle.NewRequest("req-1", "a", "b", "Go", "", fixedNow)
	require.NoError(t, err)
	_, active, err := lifecycle.AcceptRequest(req, "", "eng-1", fixedNow)
	require.NoError(t, err)

	_, err = svc.Issue(active)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	withdrawn, err := lifecycle.Withdraw(active, models.PartyMentee, fixedNow)
	require.NoError(t, err)
	_, err = svc.Issue(withdrawn)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCertificateService_Verify(t *testing.T) {
	t.Run("signing disabled", func(t *testing.T) {
		svc := services.NewCertificateService(nil, nil, nil, 0)
		_, err := svc.Verify("anything")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("empty token", func(t *testing.T) {
		svc := services.NewCertificateService(jwt.NewCertificateSigner("secret", "iss"), nil, nil, 0)
		_, err := svc.Verify("")
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other := jwt.NewCertificateSigner("other-secret", "iss")
		token, err := other.Sign("eng-1", "a", "b", "Go", fixedNow)
		require.NoError(t, err)

		svc := services.NewCertificateService(jwt.NewCertificateSigner("secret", "iss"), nil, nil, 0)
		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestCertificateService_Publish(t *testing.T) {
	var received atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var doc models.CertificateDocument
		if err := json.NewDecoder(r.Body).Decode(&doc); err == nil {
			received.Store(doc)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	archive := new(MockCertificateArchive)
	archive.On("ObjectURL", expectedCertificateKey).Return("https://storage/bucket/" + expectedCertificateKey)
	archive.On("Upload", mock.Anything, expectedCertificateKey, mock.Anything, "application/json").
		Return("https://storage/bucket/"+expectedCertificateKey, nil).Once()

	issued := trigger.New("certificate_issued", server.URL, httpclient.NewStandardClient(5*time.Second))
	svc := services.NewCertificateService(jwt.NewCertificateSigner("secret", "iss"), archive, issued, time.Second)

	err := svc.Publish(context.Background(), completedEngagement(t))

	require.NoError(t, err)
	archive.AssertExpectations(t)

	doc, ok := received.Load().(models.CertificateDocument)
	require.True(t, ok, "webhook did not receive the certificate")
	assert.Equal(t, "eng-1", doc.Certificate.EngagementID)
	assert.NotEmpty(t, doc.Token)
}

func TestCertificateService_PublishUploadFailure(t *testing.T) {
	archive := new(MockCertificateArchive)
	archive.On("ObjectURL", mock.Anything).Return("https://storage/x")
	archive.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", fmt.Errorf("%w: access denied", retry.ErrPermanent)).Once()

	svc := services.NewCertificateService(nil, archive, nil, time.Second)

	err := svc.Publish(context.Background(), completedEngagement(t))

	assert.Error(t, err)
	archive.AssertNumberOfCalls(t, "Upload", 1)
}

func TestCertificateService_PublishAsync(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	issued := trigger.New("certificate_issued", server.URL, httpclient.NewStandardClient(5*time.Second))
	svc := services.NewCertificateService(nil, nil, issued, time.Second)

	svc.PublishAsync(completedEngagement(t))

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}
