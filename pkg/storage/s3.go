package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	errs "tweetetl/pkg/errors"
	"tweetetl/pkg/logger"
)

// Uploader publishes a local file to an object store
type Uploader interface {
	Upload(ctx context.Context, localPath, bucket, key string) error
}

// S3Config holds the connection info for S3 or an S3-compatible store
type S3Config struct {
	Endpoint string
	Region   string
	UseSSL   bool
	// Transport overrides the HTTP transport, mainly for tests
	Transport http.RoundTripper
}

// S3Uploader implements Uploader with minio-go
type S3Uploader struct {
	client *minio.Client
	logger logger.Logger
}

var _ Uploader = (*S3Uploader)(nil)

// AmbientCredentials resolves credentials the way AWS tooling does: the
// AWS_* environment variables, then the shared credentials file, then the
// EC2/ECS instance role.
func AmbientCredentials() *credentials.Credentials {
	return credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.FileAWSCredentials{},
		&credentials.IAM{
			Client: &http.Client{Transport: http.DefaultTransport},
		},
	})
}

// StaticCredentials uses a fixed access key pair, for S3-compatible stores
func StaticCredentials(accessKey, secretKey string) *credentials.Credentials {
	return credentials.NewStaticV4(accessKey, secretKey, "")
}

// NewS3Uploader creates an uploader. A nil creds falls back to
// AmbientCredentials.
func NewS3Uploader(cfg S3Config, creds *credentials.Credentials, log logger.Logger) (*S3Uploader, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if creds == nil {
		creds = AmbientCredentials()
	}

	endpoint, secure := splitEndpoint(cfg.Endpoint, cfg.UseSSL)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint must be provided")
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:     creds,
		Secure:    secure,
		Region:    region,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &S3Uploader{
		client: client,
		logger: log.WithField("component", "s3"),
	}, nil
}

// Upload puts localPath at s3://bucket/key. Failures are returned as
// *errors.UploadError.
func (u *S3Uploader) Upload(ctx context.Context, localPath, bucket, key string) error {
	start := time.Now()
	info, err := u.client.FPutObject(ctx, bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		u.logger.WithError(err).ErrorWithFields("upload failed", map[string]interface{}{
			"bucket":      bucket,
			"key":         key,
			"local_path":  localPath,
			"s3_code":     resp.Code,
			"status_code": resp.StatusCode,
		})
		return errs.NewUploadError(bucket, key, err)
	}

	u.logger.InfoWithFields("upload completed", map[string]interface{}{
		"bucket":   bucket,
		"key":      key,
		"size":     info.Size,
		"etag":     info.ETag,
		"duration": time.Since(start),
	})
	return nil
}

// splitEndpoint accepts either a bare host or a URL and reports whether TLS
// should be used
func splitEndpoint(endpoint string, useSSL bool) (string, bool) {
	endpoint = strings.TrimSpace(endpoint)
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint, useSSL = strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		endpoint, useSSL = strings.TrimPrefix(endpoint, "http://"), false
	}
	return strings.TrimRight(endpoint, "/"), useSSL
}
