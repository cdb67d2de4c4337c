package records

import (
	"time"

	"tweetetl/pkg/twitter"
)

// Record is one flattened post
type Record struct {
	User          string
	Text          string
	FavoriteCount *int
	RetweetCount  *int
	CreatedAt     time.Time
}

// Table holds records in fetch order
type Table []Record

// FromPost flattens a post. Missing engagement counters stay nil.
func FromPost(handle string, t twitter.Tweet) Record {
	r := Record{
		User:      handle,
		Text:      t.Text,
		CreatedAt: t.CreatedAt,
	}
	if m := t.PublicMetrics; m != nil {
		r.FavoriteCount = m.LikeCount
		r.RetweetCount = m.RetweetCount
	}
	return r
}

// Build flattens posts, preserving their order
func Build(handle string, posts []twitter.Tweet) Table {
	table := make(Table, 0, len(posts))
	for _, p := range posts {
		table = append(table, FromPost(handle, p))
	}
	return table
}
