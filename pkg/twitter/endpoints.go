package twitter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the X API v2 root
	DefaultBaseURL = "https://api.twitter.com/2"

	// UserLookupEndpoint resolves a handle to an account
	UserLookupEndpoint = "/users/by/username/"

	// UserTweetsEndpoint is the per-account timeline, formatted with the user id
	UserTweetsEndpoint = "/users/%s/tweets"

	// DefaultPageSize is the number of posts requested per page
	DefaultPageSize = 40

	// MinPageSize and MaxPageSize bound max_results on the timeline endpoint
	MinPageSize = 5
	MaxPageSize = 100

	maxHandleLength = 15
)

var (
	// excludedKinds are never part of an extract: reposts and replies
	excludedKinds = []string{"retweets", "replies"}

	// tweetFields are the fields the records table is built from
	tweetFields = []string{"created_at", "public_metrics"}
)

// PageOptions controls how the timeline endpoint is paged. Reposts and
// replies are always excluded and the requested fields are fixed.
type PageOptions struct {
	PageSize int
}

// DefaultPageOptions requests DefaultPageSize posts per page
func DefaultPageOptions() PageOptions {
	return PageOptions{PageSize: DefaultPageSize}
}

func (o PageOptions) normalized() PageOptions {
	switch {
	case o.PageSize <= 0:
		o.PageSize = DefaultPageSize
	case o.PageSize < MinPageSize:
		o.PageSize = MinPageSize
	case o.PageSize > MaxPageSize:
		o.PageSize = MaxPageSize
	}
	return o
}

// UserLookupURL constructs the URL resolving handle to an account
func UserLookupURL(baseURL, handle string) string {
	return strings.TrimRight(baseURL, "/") + UserLookupEndpoint + url.PathEscape(handle)
}

// UserTweetsURL constructs the timeline URL for one page
func UserTweetsURL(baseURL, userID string, opts PageOptions, paginationToken string) string {
	opts = opts.normalized()

	params := url.Values{}
	params.Set("max_results", strconv.Itoa(opts.PageSize))
	params.Set("tweet.fields", strings.Join(tweetFields, ","))
	params.Set("exclude", strings.Join(excludedKinds, ","))
	if paginationToken != "" {
		params.Set("pagination_token", paginationToken)
	}

	path := fmt.Sprintf(UserTweetsEndpoint, url.PathEscape(userID))
	return strings.TrimRight(baseURL, "/") + path + "?" + params.Encode()
}

// SanitizeHandle strips a leading @, surrounding whitespace and trailing slashes
func SanitizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	handle = strings.TrimPrefix(handle, "@")
	return strings.TrimRight(handle, "/ ")
}

// IsValidHandle checks the X handle rules: 1-15 letters, digits or underscores
func IsValidHandle(handle string) bool {
	if handle == "" || len(handle) > maxHandleLength {
		return false
	}
	for _, char := range handle {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '_') {
			return false
		}
	}
	return true
}
