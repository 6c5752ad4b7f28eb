// Package module provides the enrichment module implementation
package module

import (
	"github.com/carlospolop/github-archive-scraper/internal/adapters/github"
	"github.com/carlospolop/github-archive-scraper/internal/adapters/snapshot"
	"github.com/carlospolop/github-archive-scraper/internal/core/entity"
	"github.com/carlospolop/github-archive-scraper/internal/modkit"
	"github.com/carlospolop/github-archive-scraper/internal/services/enrich/domain"
	"github.com/carlospolop/github-archive-scraper/internal/services/enrich/service"
)

// Ports defines the enrichment module ports
type Ports struct {
	Runner domain.RunnerPort
	Store  *entity.Store
}

// Module implements the enrichment module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the enrichment module, wiring the credential rotator, the
// GraphQL client, and the snapshot files to the service using deps.Cfg
func New(deps modkit.Deps) (*Module, error) {
	opts, err := FromConfig(deps.Cfg)
	if err != nil {
		return nil, err
	}

	creds, err := github.LoadCredentials(opts.Token)
	if err != nil {
		return nil, err
	}

	client := github.NewClient(github.Options{
		Endpoint:      opts.Endpoint,
		UserAgent:     opts.UserAgent,
		Timeout:       opts.Timeout,
		MaxRetries:    opts.MaxRetries,
		RetryWait:     opts.RetryWait,
		LimitCooldown: opts.LimitCooldown,
	}, github.NewRotator(creds))

	store := entity.NewStore(0)

	svc := service.New(client, snapshotFS{}, store, service.Config{
		Workers:   opts.Workers,
		BatchSize: opts.BatchSize,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc, Store: store}
	return m, nil
}

// Name returns the module name
func (m *Module) Name() string { return "enrich" }

// Ports returns the module ports
func (m *Module) Ports() Ports { return m.ports }

// snapshotFS binds the CSV snapshot files behind the domain port
type snapshotFS struct{}

func (snapshotFS) LoadRepos(dir string) ([]entity.Repository, error) {
	return snapshot.LoadRepos(dir)
}

func (snapshotFS) LoadUsers(dir string) ([]entity.User, error) {
	return snapshot.LoadUsers(dir)
}

func (snapshotFS) RepoSink(dir string) (domain.RepoSinkPort, error) {
	return snapshot.CreateRepoSink(dir)
}

func (snapshotFS) UserSink(dir string) (domain.UserSinkPort, error) {
	return snapshot.CreateUserSink(dir)
}
