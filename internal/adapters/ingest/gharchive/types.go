package gharchive

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const baseURL = "https://data.gharchive.org"

// ShardRef identifies one unit of archived event data: an absolute URL or a
// local file path
type ShardRef string

// Remote reports whether the shard must be fetched over HTTP
func (s ShardRef) Remote() bool {
	return strings.HasPrefix(string(s), "http://") || strings.HasPrefix(string(s), "https://")
}

// String returns the raw reference
func (s ShardRef) String() string { return string(s) }

// HourRef identifies a GH Archive hour (UTC)
type HourRef struct {
	Year  int
	Month int
	Day   int
	Hour  int
}

// NewHourRef creates an HourRef from a time.Time, converting to UTC
func NewHourRef(t time.Time) HourRef {
	ut := t.UTC()
	return HourRef{Year: ut.Year(), Month: int(ut.Month()), Day: ut.Day(), Hour: ut.Hour()}
}

// String returns the hour in GH Archive naming: YYYY-MM-DD-H
func (h HourRef) String() string {
	return fmt.Sprintf("%04d-%02d-%02d-%d", h.Year, h.Month, h.Day, h.Hour)
}

// Shard returns the public archive URL for the hour
func (h HourRef) Shard() ShardRef {
	return ShardRef(fmt.Sprintf("%s/%s.json.gz", baseURL, h.String()))
}

// EventEnvelope is the outer event format the archive stores per line.
// Only the fields the classifier needs are decoded; Payload stays raw for
// type-specific decode
type EventEnvelope struct {
	Type    string          `json:"type"`
	Actor   Actor           `json:"actor"`
	Repo    Repo            `json:"repo"`
	Payload json.RawMessage `json:"payload"`
}

// Actor is the user who triggered the event
type Actor struct {
	Login string `json:"login"`
}

// Repo is the repository the event occurred in
type Repo struct {
	Name string `json:"name"` // owner/name
}
