package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/jchoi/storefront-backend/config"
	"github.com/jchoi/storefront-backend/pkg/logger"
)

var (
	// ErrUnsupportedContentType is returned for non-image uploads
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrNotConfigured is returned when object storage settings are absent
	ErrNotConfigured = errors.New("object storage is not configured")
)

const presignExpiry = 15 * time.Minute

// allowedContentTypes maps accepted upload types to their extension
var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// PresignedUpload is a one-shot grant to PUT an object directly to the
// bucket, bypassing the API server.
type PresignedUpload struct {
	UploadURL string    `json:"upload_url"`
	PublicURL string    `json:"public_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

type S3Storage struct {
	presigner *s3.PresignClient
	cfg       *config.S3Config
}

// NewS3Storage builds a storage client from static credentials. Returns
// ErrNotConfigured when the bucket or region is unset so callers can
// degrade gracefully.
func NewS3Storage(ctx context.Context, cfg *config.S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrNotConfigured
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Storage{
		presigner: s3.NewPresignClient(client),
		cfg:       cfg,
	}, nil
}

// GeneratePresignedUploadURL validates the content type and returns a
// presigned PUT grant for a freshly minted object key. Keys are random,
// the caller's filename only contributes for logging.
func (s *S3Storage) GeneratePresignedUploadURL(ctx context.Context, filename, contentType string) (*PresignedUpload, error) {
	ext, ok := allowedContentTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}

	key := fmt.Sprintf("products/%s%s", uuid.New().String(), ext)

	request, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		logger.Error("Failed to presign upload URL", err, map[string]interface{}{
			"key":    key,
			"bucket": s.cfg.Bucket,
		})
		return nil, err
	}

	logger.Debug("Presigned upload URL issued", map[string]interface{}{
		"key":          key,
		"content_type": contentType,
		"filename":     filepath.Base(filename),
	})

	return &PresignedUpload{
		UploadURL: request.URL,
		PublicURL: s.publicURL(key),
		Key:       key,
		ExpiresAt: time.Now().Add(presignExpiry),
	}, nil
}

func (s *S3Storage) publicURL(key string) string {
	if s.cfg.BaseURL != "" {
		return strings.TrimRight(s.cfg.BaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
