package storage

import "time"

// TimestampLayout renders run timestamps as 20240501T120000Z
const TimestampLayout = "20060102T150405Z"

// RunTimestamp formats t in UTC for use in artifact names
func RunTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ArtifactName is both the local file name and the object key for a run
func ArtifactName(prefix string, t time.Time) string {
	return prefix + RunTimestamp(t) + ".csv"
}
