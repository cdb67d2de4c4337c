package pipeline

import (
	"context"
	"io"

	"tweetetl/pkg/twitter"
)

// TweetSource defines the X API operations the pipeline needs
type TweetSource interface {
	LookupUser(ctx context.Context, handle string) (*twitter.User, error)
	twitter.PageFetcher
}

// ArtifactStore persists the serialized table locally
type ArtifactStore interface {
	Save(r io.Reader, name string) (string, error)
}
