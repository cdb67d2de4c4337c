package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	errs "tweetetl/pkg/errors"
	"tweetetl/pkg/logger"
	"tweetetl/pkg/records"
	"tweetetl/pkg/storage"
	"tweetetl/pkg/twitter"
)

// Deps are the collaborators a run talks to
type Deps struct {
	Source   TweetSource
	Store    ArtifactStore
	Uploader storage.Uploader
	Logger   logger.Logger
	// Clock defaults to time.Now
	Clock func() time.Time
}

// Options describe a single run
type Options struct {
	Handle      string
	Limit       int
	PageOptions twitter.PageOptions
	Bucket      string
	KeyPrefix   string
}

// Result summarizes a run
type Result struct {
	RunID     string
	StartedAt time.Time
	Handle    string
	UserID    string
	Rows      int
	LocalPath string
	Bucket    string
	Key       string
	Duration  time.Duration
}

// Pipeline runs fetch, transform, serialize and upload once
type Pipeline struct {
	deps Deps
	opts Options
}

// New creates a pipeline
func New(deps Deps, opts Options) *Pipeline {
	if deps.Logger == nil {
		deps.Logger = logger.GetLogger()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	opts.Handle = twitter.SanitizeHandle(opts.Handle)
	return &Pipeline{deps: deps, opts: opts}
}

// Run executes the pipeline. On upload failure the returned Result is still
// populated and the error is an *errors.UploadError.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		StartedAt: p.deps.Clock().UTC(),
		Handle:    p.opts.Handle,
		Bucket:    p.opts.Bucket,
	}
	log := p.deps.Logger.WithContext(ctx).WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"handle": result.Handle,
	})

	logger.LogStage(log, "extract", "started", map[string]interface{}{"limit": p.opts.Limit})
	posts, pages, err := p.extract(ctx, result)
	if err != nil {
		log.WithError(err).ErrorWithFields("Extract failed", map[string]interface{}{"pages": pages})
		return nil, err
	}
	logger.LogStage(log, "extract", "completed", map[string]interface{}{
		"posts": len(posts),
		"pages": pages,
	})

	table := records.Build(result.Handle, posts)
	result.Rows = len(table)
	logger.LogStage(log, "transform", "completed", map[string]interface{}{"rows": result.Rows})

	var buf bytes.Buffer
	if err := records.WriteCSV(&buf, table); err != nil {
		return nil, fmt.Errorf("serialize table: %w", err)
	}

	result.Key = storage.ArtifactName(p.opts.KeyPrefix, result.StartedAt)
	path, err := p.deps.Store.Save(&buf, result.Key)
	if err != nil {
		log.WithError(err).Error("Writing artifact failed")
		return nil, fmt.Errorf("write artifact: %w", err)
	}
	result.LocalPath = path
	logger.LogStage(log, "load", "started", map[string]interface{}{
		"local_path": path,
		"bucket":     result.Bucket,
		"key":        result.Key,
	})

	if err := p.deps.Uploader.Upload(ctx, path, result.Bucket, result.Key); err != nil {
		var uploadErr *errs.UploadError
		if !errors.As(err, &uploadErr) {
			err = errs.NewUploadError(result.Bucket, result.Key, err)
		}
		result.Duration = p.deps.Clock().Sub(result.StartedAt)
		log.WithError(err).ErrorWithFields("Upload failed", map[string]interface{}{
			"local_path": path,
		})
		return result, err
	}
	logger.LogStage(log, "load", "completed", nil)

	result.Duration = p.deps.Clock().Sub(result.StartedAt)
	logger.LogMetrics(log, "run", map[string]interface{}{
		"rows":     result.Rows,
		"duration": result.Duration,
		"key":      result.Key,
	})
	return result, nil
}

// extract returns the collected posts and the number of pages requested
func (p *Pipeline) extract(ctx context.Context, result *Result) ([]twitter.Tweet, int, error) {
	user, err := p.deps.Source.LookupUser(ctx, result.Handle)
	if err != nil {
		return nil, 0, fmt.Errorf("lookup user %q: %w", result.Handle, err)
	}
	result.UserID = user.ID

	paginator := twitter.NewPaginator(p.deps.Source, user.ID, p.opts.PageOptions)
	posts, err := paginator.Collect(ctx, p.opts.Limit)
	if err != nil {
		return nil, paginator.Pages(), fmt.Errorf("fetch posts for %q: %w", result.Handle, err)
	}
	return posts, paginator.Pages(), nil
}
