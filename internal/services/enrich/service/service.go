// Package service provides the enrichment service implementation
package service

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/carlospolop/github-archive-scraper/internal/core/entity"
	perr "github.com/carlospolop/github-archive-scraper/internal/platform/errors"
	"github.com/carlospolop/github-archive-scraper/internal/platform/logger"
	"github.com/carlospolop/github-archive-scraper/internal/services/enrich/domain"
)

// Config holds configuration options for the enrichment service
type Config struct {
	Workers   int // parallel batches in flight; <=0 -> 1
	BatchSize int // entities per aggregated lookup; <=0 -> 200
}

// Service loads a snapshot into the entity store, resolves it in batches
// through the lookup port, and rewrites the snapshot incrementally as each
// batch lands. A batch the resolver gives up on is abandoned, not fatal; its
// rows are flushed with their pre-enrichment values once the pool drains
type Service struct {
	Resolver domain.ResolverPort
	Snap     domain.SnapshotPort
	Store    *entity.Store
	Cfg      Config

	// mu makes each batch's merge-then-append a single atomic step, so the
	// snapshot on disk never interleaves rows from two batches
	mu sync.Mutex
}

// New constructs the enrichment service
func New(res domain.ResolverPort, snap domain.SnapshotPort, st *entity.Store, cfg Config) *Service {
	if res == nil {
		panic("enrich.Service requires a non nil ResolverPort")
	}
	if snap == nil {
		panic("enrich.Service requires a non nil SnapshotPort")
	}
	if st == nil {
		panic("enrich.Service requires a non nil Store")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	return &Service{Resolver: res, Snap: snap, Store: st, Cfg: cfg}
}

// Run implements domain.RunnerPort
func (s *Service) Run(ctx context.Context, dir string, kinds domain.Kinds) error {
	if !kinds.Repos && !kinds.Users {
		return perr.Configf("nothing to enrich: both kinds disabled")
	}
	if kinds.Repos {
		if err := s.enrichRepos(ctx, dir); err != nil {
			return err
		}
	}
	if kinds.Users {
		if err := s.enrichUsers(ctx, dir); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) enrichRepos(ctx context.Context, dir string) error {
	repos, err := s.Snap.LoadRepos(dir)
	if err != nil {
		return err
	}
	for _, r := range repos {
		s.Store.InsertRepo(r)
	}

	// The snapshot is recreated only after a successful load; from here on
	// every landed batch is appended as it completes
	sink, err := s.Snap.RepoSink(dir)
	if err != nil {
		return err
	}

	keys := s.Store.RepoNames()
	work := batches(keys, s.Cfg.BatchSize)
	logger.C(ctx).Info().Int("repos", len(keys)).Int("batches", len(work)).
		Msg("enrich: repository pass starting")

	var abMu sync.Mutex
	var abandoned []string
	var done int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Cfg.Workers, 1))
	for _, b := range work {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, rerr := s.Resolver.ResolveRepos(gctx, b)
			if rerr != nil {
				logger.C(gctx).Warn().Err(rerr).Int("size", len(b)).
					Msg("enrich: repository batch abandoned")
				abMu.Lock()
				abandoned = append(abandoned, b...)
				abMu.Unlock()
			} else if aerr := s.commitRepos(b, res, sink); aerr != nil {
				return aerr
			}
			d := atomic.AddInt64(&done, 1)
			logger.C(gctx).Info().Int64("done", d).Int("total", len(work)).
				Msg("enrich: repository batch finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = sink.Close()
		return err
	}

	if len(abandoned) > 0 {
		logger.C(ctx).Warn().Int("rows", len(abandoned)).
			Msg("enrich: flushing abandoned repositories unenriched")
		rows := make([]entity.Repository, 0, len(abandoned))
		for _, k := range abandoned {
			if r, ok := s.Store.GetRepo(k); ok {
				rows = append(rows, r)
			}
		}
		if err := sink.Append(rows); err != nil {
			_ = sink.Close()
			return err
		}
	}
	return sink.Close()
}

func (s *Service) enrichUsers(ctx context.Context, dir string) error {
	users, err := s.Snap.LoadUsers(dir)
	if err != nil {
		return err
	}
	for _, u := range users {
		s.Store.InsertUser(u)
	}

	sink, err := s.Snap.UserSink(dir)
	if err != nil {
		return err
	}

	keys := s.Store.Usernames()
	work := batches(keys, s.Cfg.BatchSize)
	logger.C(ctx).Info().Int("users", len(keys)).Int("batches", len(work)).
		Msg("enrich: user pass starting")

	var abMu sync.Mutex
	var abandoned []string
	var done int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Cfg.Workers, 1))
	for _, b := range work {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, rerr := s.Resolver.ResolveUsers(gctx, b)
			if rerr != nil {
				logger.C(gctx).Warn().Err(rerr).Int("size", len(b)).
					Msg("enrich: user batch abandoned")
				abMu.Lock()
				abandoned = append(abandoned, b...)
				abMu.Unlock()
			} else if aerr := s.commitUsers(b, res, sink); aerr != nil {
				return aerr
			}
			d := atomic.AddInt64(&done, 1)
			logger.C(gctx).Info().Int64("done", d).Int("total", len(work)).
				Msg("enrich: user batch finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = sink.Close()
		return err
	}

	if len(abandoned) > 0 {
		logger.C(ctx).Warn().Int("rows", len(abandoned)).
			Msg("enrich: flushing abandoned users unenriched")
		rows := make([]entity.User, 0, len(abandoned))
		for _, k := range abandoned {
			if u, ok := s.Store.GetUser(k); ok {
				rows = append(rows, u)
			}
		}
		if err := sink.Append(rows); err != nil {
			_ = sink.Close()
			return err
		}
	}
	return sink.Close()
}

// commitRepos merges one resolved batch into the store and appends the
// updated rows, all under the batch lock
func (s *Service) commitRepos(keys []string, res map[string]domain.RepoLookup, sink domain.RepoSinkPort) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]entity.Repository, 0, len(keys))
	for _, k := range keys {
		if lk, ok := res[k]; ok {
			s.Store.UpdateRepo(k, func(r *entity.Repository) { mergeRepo(r, lk) })
		}
		if r, ok := s.Store.GetRepo(k); ok {
			rows = append(rows, r)
		}
	}
	return sink.Append(rows)
}

// commitUsers merges one resolved batch into the store and appends the
// updated rows, all under the batch lock
func (s *Service) commitUsers(keys []string, res map[string]domain.UserLookup, sink domain.UserSinkPort) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]entity.User, 0, len(keys))
	for _, k := range keys {
		if lk, ok := res[k]; ok {
			s.Store.UpdateUser(k, func(u *entity.User) { mergeUser(u, lk) })
		}
		if u, ok := s.Store.GetUser(k); ok {
			rows = append(rows, u)
		}
	}
	return sink.Append(rows)
}

// batches splits keys into consecutive chunks of at most size, preserving
// order; the final chunk may be short
func batches(keys []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	out := make([][]string, 0, (len(keys)+size-1)/size)
	for i := 0; i < len(keys); i += size {
		out = append(out, keys[i:min(i+size, len(keys))])
	}
	return out
}
