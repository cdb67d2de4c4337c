package twitter

import (
	"context"
	"errors"
	"iter"
)

// ErrPaginatorConsumed is yielded when a Paginator is iterated a second time
var ErrPaginatorConsumed = errors.New("twitter: paginator already consumed")

// PageFetcher retrieves a single timeline page
type PageFetcher interface {
	UserTweetsPage(ctx context.Context, userID string, opts PageOptions, token string) (*TweetsPage, error)
}

// Paginator walks a user's timeline page by page. It can be iterated once.
type Paginator struct {
	fetcher  PageFetcher
	userID   string
	opts     PageOptions
	consumed bool
	pages    int
}

// NewPaginator creates a paginator over userID's timeline
func NewPaginator(fetcher PageFetcher, userID string, opts PageOptions) *Paginator {
	return &Paginator{
		fetcher: fetcher,
		userID:  userID,
		opts:    opts.normalized(),
	}
}

// Pages returns how many pages have been requested so far
func (p *Paginator) Pages() int {
	return p.pages
}

// Flatten yields posts one at a time across page boundaries. It stops after
// limit posts (limit <= 0 means until the timeline ends), when the API stops
// returning a next token, or after the first error.
func (p *Paginator) Flatten(ctx context.Context, limit int) iter.Seq2[Tweet, error] {
	return func(yield func(Tweet, error) bool) {
		if p.consumed {
			yield(Tweet{}, ErrPaginatorConsumed)
			return
		}
		p.consumed = true

		yielded := 0
		token := ""
		for {
			if err := ctx.Err(); err != nil {
				yield(Tweet{}, err)
				return
			}

			page, err := p.fetcher.UserTweetsPage(ctx, p.userID, p.opts, token)
			p.pages++
			if err != nil {
				yield(Tweet{}, err)
				return
			}

			for _, tweet := range page.Tweets {
				if !yield(tweet, nil) {
					return
				}
				yielded++
				if limit > 0 && yielded >= limit {
					return
				}
			}

			if page.NextToken == "" {
				return
			}
			token = page.NextToken
		}
	}
}

// Collect drains up to limit posts into a slice
func (p *Paginator) Collect(ctx context.Context, limit int) ([]Tweet, error) {
	var tweets []Tweet
	for tweet, err := range p.Flatten(ctx, limit) {
		if err != nil {
			return nil, err
		}
		tweets = append(tweets, tweet)
	}
	return tweets, nil
}
