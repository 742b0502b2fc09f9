package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/getmentor/mentorship-api/internal/lifecycle"
	"github.com/getmentor/mentorship-api/internal/models"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/getmentor/mentorship-api/pkg/jwt"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"github.com/getmentor/mentorship-api/pkg/retry"
	"github.com/getmentor/mentorship-api/pkg/slug"
	"github.com/getmentor/mentorship-api/pkg/tracing"
	"github.com/getmentor/mentorship-api/pkg/trigger"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const defaultPublishTimeout = 60 * time.Second

// CertificateArchive stores published certificate documents
type CertificateArchive interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
	ObjectURL(key string) string
}

// CertificateService signs, verifies and publishes certificates of completed engagements
type CertificateService struct {
	signer         *jwt.CertificateSigner
	archive        CertificateArchive
	issuedTrigger  *trigger.Trigger
	publishTimeout time.Duration
	retry          retry.Config
}

// NewCertificateService creates a new CertificateService.
// signer, archive and issuedTrigger are optional.
func NewCertificateService(signer *jwt.CertificateSigner, archive CertificateArchive, issuedTrigger *trigger.Trigger, publishTimeout time.Duration) *CertificateService {
	if publishTimeout <= 0 {
		publishTimeout = defaultPublishTimeout
	}
	return &CertificateService{
		signer:         signer,
		archive:        archive,
		issuedTrigger:  issuedTrigger,
		publishTimeout: publishTimeout,
		retry:          retry.StorageConfig(),
	}
}

// CertificateKey is the object key a certificate is archived under
func CertificateKey(c *models.Certificate) string {
	return fmt.Sprintf("certificates/%s.json", slug.WithID(slug.Topic(c.Topic), c.EngagementID))
}

// Issue builds the certificate document of a completed engagement
func (s *CertificateService) Issue(e *models.Engagement) (*models.CertificateDocument, error) {
	cert, ok := lifecycle.DeriveCertificate(e)
	if !ok {
		return nil, apperrors.NotFoundError("certificate", e.ID)
	}

	doc := &models.CertificateDocument{Certificate: *cert}

	if s.signer != nil {
		token, err := s.signer.Sign(cert.EngagementID, cert.MenteeID, cert.MentorID, cert.Topic, cert.IssuedDate)
		if err != nil {
			return nil, err
		}
		doc.Token = token
	}

	if s.archive != nil {
		doc.ArchiveURL = s.archive.ObjectURL(CertificateKey(cert))
	}

	return doc, nil
}

// Verify checks a signed certificate token and returns the certificate it carries
func (s *CertificateService) Verify(token string) (*models.Certificate, error) {
	if s.signer == nil {
		return nil, apperrors.ValidationError("token", "certificate signing is not configured")
	}
	if token == "" {
		return nil, apperrors.ValidationError("token", "is required")
	}

	claims, err := s.signer.Verify(token)
	if err != nil {
		metrics.CertificatesIssued.WithLabelValues("verify_failed").Inc()
		return nil, apperrors.ValidationError("token", err.Error())
	}

	return &models.Certificate{
		EngagementID: claims.EngagementID,
		MenteeID:     claims.MenteeID,
		MentorID:     claims.MentorID,
		Topic:        claims.Topic,
		IssuedDate:   claims.IssuedDate(),
	}, nil
}

// Publish archives the certificate document and fires the certificate issued webhook
func (s *CertificateService) Publish(ctx context.Context, e *models.Engagement) (err error) {
	ctx, span := tracing.StartSpan(ctx, "CertificateService.Publish", attribute.String("engagement.id", e.ID))
	defer func() { tracing.EndSpan(span, err) }()

	doc, err := s.Issue(e)
	if err != nil {
		metrics.CertificatesIssued.WithLabelValues("error").Inc()
		return err
	}

	if s.archive != nil {
		body, marshalErr := json.Marshal(doc)
		if marshalErr != nil {
			err = fmt.Errorf("failed to encode certificate: %w", marshalErr)
			metrics.CertificatesIssued.WithLabelValues("error").Inc()
			return err
		}

		key := CertificateKey(&doc.Certificate)
		err = retry.Do(ctx, s.retry, "certificate_upload", func() error {
			_, uploadErr := s.archive.Upload(ctx, key, body, "application/json")
			return uploadErr
		})
		if err != nil {
			metrics.CertificatesIssued.WithLabelValues("error").Inc()
			logger.Error("Failed to archive certificate",
				zap.String("engagement_id", e.ID),
				zap.String("key", key),
				zap.Error(err))
			return fmt.Errorf("failed to archive certificate: %w", err)
		}
	}

	if err = s.issuedTrigger.Fire(ctx, doc); err != nil {
		metrics.CertificatesIssued.WithLabelValues("error").Inc()
		return err
	}

	metrics.CertificatesIssued.WithLabelValues("success").Inc()
	logger.Info("Certificate published",
		zap.String("engagement_id", e.ID),
		zap.String("archive_url", doc.ArchiveURL))

	return nil
}

// PublishAsync publishes in the background with its own timeout
func (s *CertificateService) PublishAsync(e *models.Engagement) {
	snapshot := e.Clone()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
		defer cancel()

		if err := s.Publish(ctx, snapshot); err != nil {
			logger.Warn("Certificate publishing failed",
				zap.String("engagement_id", snapshot.ID),
				zap.Error(err))
		}
	}()
}
