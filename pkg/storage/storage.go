package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"go.uber.org/zap"
)

const (
	defaultEndpoint = "https://storage.yandexcloud.net"
	defaultRegion   = "ru-central1"

	// MaxObjectSize caps uploaded documents at 1MB
	MaxObjectSize = 1 << 20
)

// ObjectPutter is the part of the S3 API the client uses
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds S3-compatible object storage settings
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
}

// Client uploads documents to S3-compatible object storage
type Client struct {
	api        ObjectPutter
	bucketName string
	endpoint   string
}

// NewClient creates an S3 client. Endpoint and region default to Yandex Object Storage.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("storage bucket name is required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	api := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		UsePathStyle: true,
	})

	logger.Info("Object storage client initialized",
		zap.String("bucket", cfg.BucketName),
		zap.String("endpoint", endpoint),
		zap.String("region", region),
	)

	return NewClientWithAPI(api, cfg.BucketName, endpoint), nil
}

// NewClientWithAPI builds a client around an existing S3 API implementation
func NewClientWithAPI(api ObjectPutter, bucketName, endpoint string) *Client {
	return &Client{
		api:        api,
		bucketName: bucketName,
		endpoint:   strings.TrimRight(endpoint, "/"),
	}
}

// Upload stores body under key and returns its public URL
func (c *Client) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	start := time.Now()
	operation := "upload"

	if err := ValidateKey(key); err != nil {
		return "", err
	}
	if len(body) > MaxObjectSize {
		return "", fmt.Errorf("object too large: %d bytes (max %d bytes)", len(body), MaxObjectSize)
	}

	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})

	duration := metrics.MeasureDuration(start)
	status := metrics.StatusLabel(err)
	metrics.StorageClientOperationDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.StorageClientOperationTotal.WithLabelValues(operation, status).Inc()

	if err != nil {
		logger.LogAPICall("object_storage", operation, status, duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	logger.LogAPICall("object_storage", operation, status, duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(body)),
	)

	return c.ObjectURL(key), nil
}

// ObjectURL formats the public URL: {endpoint}/{bucket}/{key}
func (c *Client) ObjectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucketName, key)
}

// ValidateKey rejects empty keys, absolute keys and parent references
func ValidateKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("object key is required")
	case strings.HasPrefix(key, "/"):
		return fmt.Errorf("object key must be relative: %s", key)
	case strings.Contains(key, ".."):
		return fmt.Errorf("object key must not contain '..': %s", key)
	}
	return nil
}
