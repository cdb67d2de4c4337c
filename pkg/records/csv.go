package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// CreatedAtLayout matches the timestamp format downstream loaders expect
const CreatedAtLayout = "2006-01-02 15:04:05-07:00"

// Header lists the CSV columns in order
var Header = []string{"user", "text", "favorite_count", "retweet_count", "created_at"}

// WriteCSV encodes t with a header row. A table with no records still
// produces the header.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, r := range t {
		if err := writer.Write(r.fields()); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func (r Record) fields() []string {
	return []string{
		r.User,
		r.Text,
		formatCount(r.FavoriteCount),
		formatCount(r.RetweetCount),
		formatTime(r.CreatedAt),
	}
}

func formatCount(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(CreatedAtLayout)
}
