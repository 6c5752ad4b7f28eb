// Package domain holds the ingestion service ports and the types that cross
// them. Wire and classifier types are re-exported from the adapters so the
// service layer stays adapter-agnostic
package domain

import (
	"github.com/carlospolop/github-archive-scraper/internal/adapters/ingest/classify"
	"github.com/carlospolop/github-archive-scraper/internal/adapters/ingest/gharchive"
)

// ShardRef identifies one unit of archived event data
type ShardRef = gharchive.ShardRef

// HourRef identifies a GH Archive hour (UTC)
type HourRef = gharchive.HourRef

// EventEnvelope is the outer per-line event format
type EventEnvelope = gharchive.EventEnvelope

// Fact is what one event implies for the entity store
type Fact = classify.Fact
