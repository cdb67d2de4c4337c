package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tweetetl/pkg/config"
	errs "tweetetl/pkg/errors"
	"tweetetl/pkg/logger"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"config", &errs.ConfigError{Err: errors.New("bearer token is required")}, exitConfig},
		{"wrapped config", fmt.Errorf("startup: %w", &errs.ConfigError{Err: errors.New("x")}), exitConfig},
		{"upload", errs.NewUploadError("b", "k", errors.New("AccessDenied")), exitUpload},
		{"not found", &errs.Error{Type: errs.ErrorTypeNotFound, Message: "Could not find user"}, exitFatal},
		{"plain", errors.New("boom"), exitFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func fakeXAPI(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/users/by/username/wtfruchss":
			io.WriteString(w, `{"data":{"id":"42","username":"wtfruchss","name":"Ruchi"}}`)
		case r.URL.Path == "/users/42/tweets":
			assert.Equal(t, "retweets,replies", r.URL.Query().Get("exclude"))
			assert.Equal(t, "created_at,public_metrics", r.URL.Query().Get("tweet.fields"))
			io.WriteString(w, `{"data":[`+
				`{"id":"2","text":"second","created_at":"2024-04-30T10:00:00.000Z","public_metrics":{"like_count":3,"retweet_count":1,"reply_count":0,"quote_count":0}},`+
				`{"id":"1","text":"first, with comma","created_at":"2024-04-29T10:00:00.000Z","public_metrics":{"like_count":0,"retweet_count":0,"reply_count":0,"quote_count":0}}`+
				`],"meta":{"result_count":2}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

type fakeBucket struct {
	status  int
	objects map[string]string
}

func newFakeBucket(t *testing.T, status int) (*httptest.Server, *fakeBucket) {
	t.Helper()
	bucket := &fakeBucket{status: status, objects: map[string]string{}}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		if bucket.status != http.StatusOK {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(bucket.status)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`)
			return
		}
		bucket.objects[r.URL.Path] = string(data)
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, bucket
}

func testConfig(t *testing.T, apiURL, s3URL string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Twitter.BaseURL = apiURL
	cfg.Twitter.BearerToken = "test-token"
	cfg.Twitter.Timeout = 5 * time.Second
	cfg.Fetch.Username = "@wtfruchss"
	cfg.RateLimit.RequestsPerMinute = 0
	cfg.Output.Directory = t.TempDir()
	cfg.Storage.Endpoint = s3URL
	cfg.Storage.UseSSL = false
	cfg.Storage.AccessKey = "AKIDEXAMPLE"
	cfg.Storage.SecretKey = "secret"
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestNewPipelineRunsEndToEnd(t *testing.T) {
	api := fakeXAPI(t)
	s3, bucket := newFakeBucket(t, http.StatusOK)
	cfg := testConfig(t, api.URL, s3.URL)

	p, err := newPipeline(cfg, logger.NewTestLogger())
	require.NoError(t, err)

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, "wtfruchss", result.Handle)
	assert.True(t, strings.HasPrefix(result.Key, "refined_tweets_"))

	local, err := os.ReadFile(result.LocalPath)
	require.NoError(t, err)
	uploaded, ok := bucket.objects["/bhaskar-airflow-bucket/"+result.Key]
	require.True(t, ok, "object not uploaded: %v", bucket.objects)
	assert.Contains(t, string(local), "user,text,favorite_count,retweet_count,created_at\n")
	assert.Contains(t, string(local), `wtfruchss,"first, with comma",0,0,2024-04-29 10:00:00+00:00`)
	// plain-HTTP uploads are aws-chunked, so only the payload lines are compared
	for _, line := range strings.Split(strings.TrimSpace(string(local)), "\n") {
		assert.Contains(t, uploaded, line)
	}
	assert.Equal(t, exitOK, exitCode(err))
}

func TestNewPipelineUploadFailureExitCode(t *testing.T) {
	api := fakeXAPI(t)
	s3, _ := newFakeBucket(t, http.StatusForbidden)
	cfg := testConfig(t, api.URL, s3.URL)

	p, err := newPipeline(cfg, logger.NewTestLogger())
	require.NoError(t, err)

	result, err := p.Run(context.Background())
	require.Error(t, err)
	require.NotNil(t, result)
	assert.FileExists(t, result.LocalPath)
	assert.Contains(t, err.Error(), "Access Denied")
	assert.Equal(t, exitUpload, exitCode(err))
}

func TestNewPipelineUnknownHandleExitCode(t *testing.T) {
	api := fakeXAPI(t)
	s3, bucket := newFakeBucket(t, http.StatusOK)
	cfg := testConfig(t, api.URL, s3.URL)
	cfg.Fetch.Username = "nobody"

	p, err := newPipeline(cfg, logger.NewTestLogger())
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Equal(t, exitFatal, exitCode(err))
	assert.Empty(t, bucket.objects)
}

func TestRunFlagsOnlyIncludesChangedValues(t *testing.T) {
	t.Cleanup(func() {
		limit, bucket, logLevel = 0, "", ""
		runCmd.Flags().Lookup("limit").Changed = false
		runCmd.Flags().Lookup("bucket").Changed = false
	})

	require.NoError(t, runCmd.Flags().Set("limit", "200"))
	logLevel = "debug"

	flags := runFlags(runCmd, []string{"wtfruchss"})
	assert.Equal(t, map[string]interface{}{
		"username":  "wtfruchss",
		"limit":     200,
		"log-level": "debug",
	}, flags)
}

func TestConfigFileCannotDropExclusions(t *testing.T) {
	api := fakeXAPI(t)
	s3, bucket := newFakeBucket(t, http.StatusOK)
	t.Setenv(config.BearerTokenEnv, "test-token")

	path := filepath.Join(t.TempDir(), "tweetetl.yaml")
	doc := fmt.Sprintf(`twitter:
  base_url: %s
fetch:
  username: wtfruchss
  exclude: []
rate_limit:
  requests_per_minute: 0
output:
  directory: %s
storage:
  endpoint: %s
  use_ssl: false
  access_key: AKIDEXAMPLE
  secret_key: secret
`, api.URL, t.TempDir(), s3.URL)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	p, err := newPipeline(cfg, logger.NewTestLogger())
	require.NoError(t, err)

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.Len(t, bucket.objects, 1)
}
