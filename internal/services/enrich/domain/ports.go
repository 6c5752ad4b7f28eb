package domain

import (
	"context"

	"github.com/carlospolop/github-archive-scraper/internal/core/entity"
)

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	Run(ctx context.Context, dir string, kinds Kinds) error
}

// Kinds selects which entity snapshots to enrich
type Kinds struct {
	Repos bool
	Users bool
}

// ResolverPort answers aggregated lookups for one batch. Every input key is
// present in the result; a missing remote record maps to Inexistent
type ResolverPort interface {
	ResolveRepos(ctx context.Context, fullNames []string) (map[string]RepoLookup, error)
	ResolveUsers(ctx context.Context, logins []string) (map[string]UserLookup, error)
}

// RepoSinkPort appends enriched repository rows incrementally
type RepoSinkPort interface {
	Append(repos []entity.Repository) error
	Close() error
}

// UserSinkPort appends enriched user rows incrementally
type UserSinkPort interface {
	Append(users []entity.User) error
	Close() error
}

// SnapshotPort loads and recreates the on-disk entity snapshots
type SnapshotPort interface {
	LoadRepos(dir string) ([]entity.Repository, error)
	LoadUsers(dir string) ([]entity.User, error)
	RepoSink(dir string) (RepoSinkPort, error)
	UserSink(dir string) (UserSinkPort, error)
}
