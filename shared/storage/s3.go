// Package storage keeps uploaded files in S3 or an S3-compatible server such as MinIO.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrForeignReference is returned when a reference was not produced by this store.
var ErrForeignReference = errors.New("reference does not belong to this bucket")

// Config holds the object storage settings. An empty Bucket disables uploads.
type Config struct {
	Bucket          string        `env:"BUCKET"`
	Region          string        `env:"REGION"            envDefault:"us-east-1"`
	Endpoint        string        `env:"ENDPOINT"`
	AccessKeyID     string        `env:"ACCESS_KEY_ID"`
	SecretAccessKey string        `env:"SECRET_ACCESS_KEY"`
	UsePathStyle    bool          `env:"USE_PATH_STYLE"`
	PublicBaseURL   string        `env:"PUBLIC_BASE_URL"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES"  envDefault:"10485760"`
	PresignTTL      time.Duration `env:"PRESIGN_TTL"       envDefault:"10m"`
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// S3Store uploads objects and hands out references to them.
//
// References are public URLs under PublicBaseURL when one is configured, and s3://bucket/key otherwise.
type S3Store struct {
	client        *s3.Client
	uploader      *manager.Uploader
	presigner     *s3.PresignClient
	bucket        string
	publicBaseURL string
}

// NewS3Store builds a client from the default AWS credential chain, overridden by static keys and a
// custom endpoint when configured.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Store{
		client:        client,
		uploader:      manager.NewUploader(client),
		presigner:     s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload stores body under key and returns the object's reference.
func (s *S3Store) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	return s.reference(key), nil
}

// PresignURL returns a time-limited GET URL for a reference produced by Upload.
func (s *S3Store) PresignURL(ctx context.Context, ref string, ttl time.Duration) (string, error) {
	key, err := s.keyFromReference(ref)
	if err != nil {
		return "", err
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

func (s *S3Store) reference(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + (&url.URL{Path: key}).EscapedPath()
	}
	return "s3://" + s.bucket + "/" + key
}

func (s *S3Store) keyFromReference(ref string) (string, error) {
	if s.publicBaseURL != "" && strings.HasPrefix(ref, s.publicBaseURL+"/") {
		return url.PathUnescape(strings.TrimPrefix(ref, s.publicBaseURL+"/"))
	}

	prefix := "s3://" + s.bucket + "/"
	if strings.HasPrefix(ref, prefix) {
		return strings.TrimPrefix(ref, prefix), nil
	}

	return "", ErrForeignReference
}
