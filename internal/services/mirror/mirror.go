// Package mirror downloads archive shards and stores them locally as plain
// newline-JSON part files, split so no single file grows unwieldy. Mirrored
// parts feed the ingestion phase through file references
package mirror

import (
	"context"
	"io"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/carlospolop/github-archive-scraper/internal/adapters/ingest/gharchive"
	"github.com/carlospolop/github-archive-scraper/internal/platform/logger"
)

// DefaultMaxPartBytes is the split threshold for one decompressed part file
const DefaultMaxPartBytes = 100 << 20

// Config holds configuration options for the mirror service
type Config struct {
	Workers      int   // parallel shard downloads; <=0 -> 1
	MaxPartBytes int64 // split threshold; <=0 -> DefaultMaxPartBytes
	OutDir       string
}

// Service mirrors shards through a fixed worker pool. A shard failure is
// contained to that shard
type Service struct {
	Source gharchive.Source
	Cfg    Config
}

// New constructs the mirror service
func New(src gharchive.Source, cfg Config) *Service {
	if src == nil {
		panic("mirror.Service requires a non nil Source")
	}
	if cfg.MaxPartBytes <= 0 {
		cfg.MaxPartBytes = DefaultMaxPartBytes
	}
	return &Service{Source: src, Cfg: cfg}
}

// Run mirrors every shard in the list
func (s *Service) Run(ctx context.Context, shards []gharchive.ShardRef) error {
	if len(shards) == 0 {
		return nil
	}

	queue := make(chan gharchive.ShardRef, len(shards))
	for _, ref := range shards {
		queue <- ref
	}
	close(queue)

	w := max(s.Cfg.Workers, 1)
	total := len(shards)
	var done, fails int64
	var wg sync.WaitGroup

	wg.Add(w)
	for range w {
		go func() {
			defer wg.Done()
			for ref := range queue {
				if ctx.Err() != nil {
					return
				}
				sctx := logger.WithShard(ctx, ref.String())
				if err := s.mirrorShard(sctx, ref); err != nil {
					logger.C(sctx).Error().Err(err).Msg("mirror: shard failed")
					atomic.AddInt64(&fails, 1)
				}
				d := atomic.AddInt64(&done, 1)
				logger.C(sctx).Info().Int64("done", d).Int("total", total).
					Msg("shard mirrored")
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if f := atomic.LoadInt64(&fails); f > 0 {
		logger.C(ctx).Warn().Int64("failed", f).Int("total", total).
			Msg("mirror: run finished with failed shards")
	}
	return nil
}

func (s *Service) mirrorShard(ctx context.Context, ref gharchive.ShardRef) (retErr error) {
	rc, err := s.Source.Open(ctx, ref)
	if err != nil {
		return err
	}
	rd, err := gharchive.NewReader(rc)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rd.Close(); cerr != nil && retErr == nil {
			retErr = cerr
		}
	}()

	pw := newPartWriter(s.Cfg.OutDir, partPrefix(ref), s.Cfg.MaxPartBytes)
	for {
		if err := ctx.Err(); err != nil {
			_ = pw.Close()
			return err
		}
		line, e := rd.NextLine()
		if e == io.EOF {
			break
		}
		if e != nil {
			_ = pw.Close()
			return e
		}
		if werr := pw.Write(line); werr != nil {
			_ = pw.Close()
			return werr
		}
	}
	if _, _, b := rd.Stats(); b > 0 {
		logger.C(ctx).Debug().Int64("bytes", b).Int("parts", pw.Parts()).
			Msg("shard decompressed")
	}
	return pw.Close()
}

// partPrefix derives the local file prefix from the shard name
func partPrefix(ref gharchive.ShardRef) string {
	base := path.Base(string(ref))
	base = strings.TrimSuffix(base, ".gz")
	return strings.TrimSuffix(base, ".json")
}
