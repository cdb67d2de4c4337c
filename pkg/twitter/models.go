package twitter

import "time"

// User is the account a handle resolves to
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// PublicMetrics holds engagement counters. Any counter the API omits is nil.
type PublicMetrics struct {
	LikeCount    *int `json:"like_count"`
	RetweetCount *int `json:"retweet_count"`
	ReplyCount   *int `json:"reply_count"`
	QuoteCount   *int `json:"quote_count"`
}

// Tweet is a single post as returned by the user tweets timeline
type Tweet struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	CreatedAt     time.Time      `json:"created_at"`
	PublicMetrics *PublicMetrics `json:"public_metrics,omitempty"`
}

// APIError is one entry of the "errors" array the v2 API returns alongside,
// or instead of, "data"
type APIError struct {
	Title     string `json:"title"`
	Detail    string `json:"detail"`
	Type      string `json:"type"`
	Value     string `json:"value,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

// Meta carries pagination state for timeline responses
type Meta struct {
	ResultCount int    `json:"result_count"`
	NewestID    string `json:"newest_id,omitempty"`
	OldestID    string `json:"oldest_id,omitempty"`
	NextToken   string `json:"next_token,omitempty"`
}

// TweetsPage is one page of a user's timeline
type TweetsPage struct {
	Tweets    []Tweet
	NextToken string
}

type userResponse struct {
	Data   *User      `json:"data"`
	Errors []APIError `json:"errors"`
}

type tweetsResponse struct {
	Data   []Tweet    `json:"data"`
	Meta   Meta       `json:"meta"`
	Errors []APIError `json:"errors"`
}

// problemResponse is the RFC 7807 style body sent with non-2xx statuses
type problemResponse struct {
	Title  string     `json:"title"`
	Detail string     `json:"detail"`
	Errors []APIError `json:"errors"`
}
