package domain

import (
	"context"
	"io"
)

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	Run(ctx context.Context, shards []ShardRef) error
}

// SourcePort opens the byte stream behind one shard reference
type SourcePort interface {
	Open(ctx context.Context, ref ShardRef) (io.ReadCloser, error)
}

// ReaderPort is the event reader interface
type ReaderPort interface {
	Next() (EventEnvelope, error)
	Close() error
	Stats() (events, skipped int, bytes int64)
}

// ReaderFactory is the event reader factory interface
type ReaderFactory interface {
	New(io.ReadCloser) (ReaderPort, error)
}

// ClassifierPort turns one decoded event into entity facts
type ClassifierPort interface {
	FromEvent(env EventEnvelope) Fact
}
