// Package assets stores uploaded media in S3-compatible object storage.
package assets

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	dom "vidtube/internal/domain"
)

// objectAPI is the part of *s3.Client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Config struct {
	Bucket        string
	Region        string
	Endpoint      string // empty = AWS
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	UsePathStyle  bool
	UploadTimeout time.Duration
	MaxAttempts   int
}

// S3Store uploads files under random keys and returns their public URLs.
type S3Store struct {
	api     objectAPI
	bucket  string
	baseURL string
	timeout time.Duration
	now     func() time.Time
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

// NewS3Store builds an S3 client from cfg. Static credentials are used when
// both keys are set, the default AWS chain otherwise.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithRetryMaxAttempts(cfg.MaxAttempts),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3Store(client, cfg), nil
}

func newS3Store(api objectAPI, cfg Config) *S3Store {
	return &S3Store{
		api:     api,
		bucket:  cfg.Bucket,
		baseURL: publicBaseURL(cfg),
		timeout: cfg.UploadTimeout,
		now:     time.Now,
	}
}

func publicBaseURL(cfg Config) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

// Upload puts the file into the bucket and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, f dom.UploadedFile) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	file, err := os.Open(f.FilePath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.FieldName, err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(f.FilePath))
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := s.objectKey(f.FieldName, ext)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(f.SizeBytes),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}

// Delete removes the object behind a URL returned by Upload. URLs that do
// not belong to this bucket are ignored.
func (s *S3Store) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || key == "" {
		return nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// objectKey is <field>/<yyyy>/<mm>/<dd>/<uuid><ext>.
func (s *S3Store) objectKey(field, ext string) string {
	d := s.now().UTC()
	return fmt.Sprintf("%s/%d/%02d/%02d/%s%s", field, d.Year(), d.Month(), d.Day(), uuid.NewString(), ext)
}

func (s *S3Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
