// Package service provides the archive ingestion service implementation
package service

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carlospolop/github-archive-scraper/internal/core/entity"
	perr "github.com/carlospolop/github-archive-scraper/internal/platform/errors"
	"github.com/carlospolop/github-archive-scraper/internal/platform/logger"
	"github.com/carlospolop/github-archive-scraper/internal/services/scrape/domain"
)

// Config holds configuration options for the ingestion service
type Config struct {
	// Concurrency
	Workers int // number of parallel shards; <=0 -> 1

	// Shard-level retry
	MaxRetries int           // attempts per shard; <=0 -> 1
	RetryBase  time.Duration // base backoff for shard retries; <=0 -> 500ms
}

// Service drains a list of shards through a fixed worker pool and folds the
// classified facts into the shared entity store. A shard failure is contained
// to that shard; the run continues and reports the failure count at the end
type Service struct {
	Source   domain.SourcePort
	Reader   domain.ReaderFactory
	Classify domain.ClassifierPort
	Store    *entity.Store
	Cfg      Config
}

// New constructs the ingestion service
func New(src domain.SourcePort, rf domain.ReaderFactory, cl domain.ClassifierPort, st *entity.Store, cfg Config) *Service {
	if src == nil {
		panic("scrape.Service requires a non nil SourcePort")
	}
	if rf == nil {
		panic("scrape.Service requires a non nil ReaderFactory")
	}
	if cl == nil {
		panic("scrape.Service requires a non nil ClassifierPort")
	}
	if st == nil {
		panic("scrape.Service requires a non nil Store")
	}
	return &Service{Source: src, Reader: rf, Classify: cl, Store: st, Cfg: cfg}
}

// Run implements domain.RunnerPort. The whole work list is enqueued up front
// and a fixed pool drains it; workers exit when the queue empties or the
// context is cancelled
func (s *Service) Run(ctx context.Context, shards []domain.ShardRef) error {
	if len(shards) == 0 {
		return nil
	}

	queue := make(chan domain.ShardRef, len(shards))
	for _, ref := range shards {
		queue <- ref
	}
	close(queue)

	w := max(s.Cfg.Workers, 1)
	total := len(shards)
	var done, fails int64
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for ref := range queue {
			if ctx.Err() != nil {
				return
			}
			sctx := logger.WithShard(ctx, ref.String())
			if err := s.runShardWithRetry(sctx, ref); err != nil {
				logger.C(sctx).Error().Err(err).Msg("scrape: shard failed")
				atomic.AddInt64(&fails, 1)
			}
			d := atomic.AddInt64(&done, 1)
			repos, users := s.Store.Len()
			logger.C(sctx).Info().
				Int64("done", d).Int("total", total).
				Int("repos", repos).Int("users", users).
				Msg("shard processed")
		}
	}

	wg.Add(w)
	for range w {
		go worker()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if f := atomic.LoadInt64(&fails); f > 0 {
		logger.C(ctx).Warn().Int64("failed", f).Int("total", total).
			Msg("scrape: run finished with failed shards")
	}
	return nil
}

func (s *Service) runShardWithRetry(ctx context.Context, ref domain.ShardRef) error {
	attempts := max(s.Cfg.MaxRetries, 1)
	base := s.Cfg.RetryBase
	if base <= 0 {
		base = 500 * time.Millisecond
	}

	var last error
	for i := range attempts {
		err := s.runShard(ctx, ref)
		if err == nil {
			return nil
		}
		last = err

		// Stop early on non-retryable errors
		if !perr.Retryable(err) {
			return last
		}
		if i == attempts-1 {
			break
		}

		// Exponential backoff with jitter, cap at 30s
		d := min(base<<i, 30*time.Second)
		j := d
		if half := d / 2; half > 0 {
			j = half + time.Duration(rand.Int63n(int64(half)))
		}
		if se := sleepCtx(ctx, j); se != nil {
			return se
		}
	}
	return last
}

// runShard streams one shard end to end. Facts observed before a mid-stream
// failure stay applied; upserts are idempotent so a retried shard converges
// to the same state
func (s *Service) runShard(ctx context.Context, ref domain.ShardRef) (retErr error) {
	rc, err := s.Source.Open(ctx, ref)
	if err != nil {
		return err
	}

	rd, err := s.Reader.New(rc)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rd.Close(); cerr != nil && retErr == nil {
			retErr = cerr
		}
	}()

	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		env, e := rd.Next()
		if e == io.EOF {
			break
		}
		if e != nil {
			return e
		}
		s.apply(s.Classify.FromEvent(env))
	}

	events, skipped, bytes := rd.Stats()
	logger.C(ctx).Debug().
		Int("events", events).Int("skipped", skipped).Int64("bytes", bytes).
		Dur("elapsed", time.Since(start)).
		Msg("shard read complete")
	return nil
}

// apply folds one fact into the store
func (s *Service) apply(f domain.Fact) {
	if f.RepoName != "" {
		key := s.Store.UpsertRepo(f.RepoName)
		if f.RepoDeleted {
			s.Store.ApplyRepoTransition(key, entity.TransitionDefaultBranchDeleted)
		}
	}
	if f.Login != "" {
		s.Store.UpsertUser(f.Login)
		if f.CollabRepo != "" {
			s.Store.RecordCollaboration(f.Login, f.CollabRepo)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
