package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "tweetetl/pkg/errors"
	"tweetetl/pkg/logger"
)

type capturedPut struct {
	method      string
	path        string
	contentType string
	body        string
}

func newFakeS3(t *testing.T, status int, respBody string) (*httptest.Server, *capturedPut) {
	t.Helper()
	captured := &capturedPut{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.contentType = r.Header.Get("Content-Type")
		captured.body = string(data)

		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(status)
			io.WriteString(w, respBody)
			return
		}
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "refined_tweets_20240501T120000Z.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestS3UploaderUpload(t *testing.T) {
	server, captured := newFakeS3(t, http.StatusOK, "")
	log := logger.NewTestLogger()

	uploader, err := NewS3Uploader(S3Config{
		Endpoint: server.URL,
		Region:   "us-east-1",
	}, StaticCredentials("AKIDEXAMPLE", "secret"), log)
	require.NoError(t, err)

	path := writeArtifact(t, "user,text\nsomeone,hello\n")
	err = uploader.Upload(context.Background(), path, "bhaskar-airflow-bucket", "refined_tweets_20240501T120000Z.csv")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, captured.method)
	assert.Equal(t, "/bhaskar-airflow-bucket/refined_tweets_20240501T120000Z.csv", captured.path)
	assert.Equal(t, "text/csv", captured.contentType)
	assert.Contains(t, captured.body, "someone,hello")
	assert.True(t, log.HasMessage("upload completed"))
}

func TestS3UploaderAccessDenied(t *testing.T) {
	server, _ := newFakeS3(t, http.StatusForbidden,
		`<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message><RequestId>1</RequestId></Error>`)
	log := logger.NewTestLogger()

	uploader, err := NewS3Uploader(S3Config{
		Endpoint: server.URL,
		Region:   "us-east-1",
	}, StaticCredentials("AKIDEXAMPLE", "secret"), log)
	require.NoError(t, err)

	path := writeArtifact(t, "user,text\n")
	err = uploader.Upload(context.Background(), path, "bucket", "key.csv")
	require.Error(t, err)

	var uploadErr *errs.UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, "bucket", uploadErr.Bucket)
	assert.Equal(t, "key.csv", uploadErr.Key)
	assert.Contains(t, err.Error(), "S3 upload failed")
	assert.Contains(t, err.Error(), "Access Denied")
	assert.True(t, log.HasError())
}

func TestS3UploaderMissingFile(t *testing.T) {
	server, _ := newFakeS3(t, http.StatusOK, "")

	uploader, err := NewS3Uploader(S3Config{Endpoint: server.URL}, StaticCredentials("a", "b"), logger.NewNopLogger())
	require.NoError(t, err)

	err = uploader.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), "bucket", "key.csv")
	var uploadErr *errs.UploadError
	assert.ErrorAs(t, err, &uploadErr)
}

func TestNewS3UploaderRequiresEndpoint(t *testing.T) {
	_, err := NewS3Uploader(S3Config{}, StaticCredentials("a", "b"), logger.NewNopLogger())
	assert.Error(t, err)
}

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		in       string
		useSSL   bool
		wantHost string
		wantTLS  bool
	}{
		{"s3.amazonaws.com", true, "s3.amazonaws.com", true},
		{"minio.local:9000", false, "minio.local:9000", false},
		{"http://127.0.0.1:9000/", true, "127.0.0.1:9000", false},
		{"https://storage.example.com", false, "storage.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			host, tls := splitEndpoint(tt.in, tt.useSSL)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantTLS, tls)
		})
	}
}

func TestAmbientCredentialsFromEnv(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDENV")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "envsecret")

	creds := AmbientCredentials()
	value, err := creds.Get()
	require.NoError(t, err)
	assert.Equal(t, "AKIDENV", value.AccessKeyID)
	assert.True(t, strings.HasPrefix(value.SecretAccessKey, "env"))
}
