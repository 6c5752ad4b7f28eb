// Package module provides the ingestion module implementation
package module

import (
	"io"

	"github.com/carlospolop/github-archive-scraper/internal/adapters/ingest/classify"
	"github.com/carlospolop/github-archive-scraper/internal/adapters/ingest/gharchive"
	"github.com/carlospolop/github-archive-scraper/internal/core/entity"
	"github.com/carlospolop/github-archive-scraper/internal/modkit"
	"github.com/carlospolop/github-archive-scraper/internal/services/scrape/domain"
	"github.com/carlospolop/github-archive-scraper/internal/services/scrape/service"
)

// Ports defines the ingestion module ports
type Ports struct {
	Runner domain.RunnerPort
	Store  *entity.Store
}

// Module implements the ingestion module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the ingestion module, wiring the shard source, the event
// reader, and the classifier to the service using config from deps.Cfg
func New(deps modkit.Deps) (*Module, error) {
	opts, err := FromConfig(deps.Cfg)
	if err != nil {
		return nil, err
	}

	store := entity.NewStore(opts.MaxCollab)

	svc := service.New(
		gharchive.NewAutoSource(opts.HTTPTimeout), readerFactory{}, classifier{}, store,
		service.Config{
			Workers:    opts.Workers,
			MaxRetries: opts.MaxRetries,
			RetryBase:  opts.RetryBase,
		},
	)

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc, Store: store}
	return m, nil
}

// Name returns the module name
func (m *Module) Name() string { return "scrape" }

// Ports returns the module ports
func (m *Module) Ports() Ports { return m.ports }

// readerFactory wraps the archive reader behind the domain port
type readerFactory struct{}

func (readerFactory) New(rc io.ReadCloser) (domain.ReaderPort, error) {
	return gharchive.NewReader(rc)
}

// classifier wraps event classification behind the domain port
type classifier struct{}

func (classifier) FromEvent(env domain.EventEnvelope) domain.Fact {
	return classify.FromEvent(env)
}
