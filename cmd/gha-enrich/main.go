// gha-enrich resolves the scraped snapshots against the GraphQL API in
// aggregated batches, rotating credentials on rate limits, and rewrites
// repos.csv and users.csv in place with the enriched rows
package main

import (
	"context"
	"flag"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/carlospolop/github-archive-scraper/internal/core/version"
	"github.com/carlospolop/github-archive-scraper/internal/modkit"
	"github.com/carlospolop/github-archive-scraper/internal/platform/config"
	"github.com/carlospolop/github-archive-scraper/internal/platform/logger"
	"github.com/carlospolop/github-archive-scraper/internal/services/enrich/domain"
	enrichmod "github.com/carlospolop/github-archive-scraper/internal/services/enrich/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	var (
		fDir     = flag.String("d", "", "folder holding repos.csv and users.csv")
		fToken   = flag.String("T", "", "API token, or path of a file with one token per line")
		fThreads = flag.Int("t", 10, "number of parallel batch workers")
		fBatch   = flag.Int("b", 200, "entities per aggregated query")
		fRepos   = flag.Bool("repos", true, "enrich the repository snapshot")
		fUsers   = flag.Bool("users", true, "enrich the user snapshot")
	)
	flag.Parse()

	l := logger.Get()
	if *fDir == "" {
		l.Fatal().Msg("must provide -d with the snapshot folder")
	}

	mustSetEnv("CORE_GITHUB_TOKEN", *fToken)
	mustSetEnv("CORE_ENRICH_WORKERS", strconv.Itoa(*fThreads))
	mustSetEnv("CORE_ENRICH_BATCH", strconv.Itoa(*fBatch))

	root := config.New()
	deps := modkit.Deps{Cfg: root, Log: *l}

	m, err := enrichmod.New(deps)
	if err != nil {
		l.Fatal().Err(err).Msg("enrich module init failed")
	}
	ports := m.Ports()

	ctx := logger.WithRun(context.Background(), uuid.NewString())
	bi := version.Info()
	logger.C(ctx).Info().
		Str("version", bi.Version).Str("commit", bi.Commit).
		Str("dir", *fDir).
		Bool("repos", *fRepos).Bool("users", *fUsers).
		Msg("enrich starting")

	if err := ports.Runner.Run(ctx, *fDir, domain.Kinds{Repos: *fRepos, Users: *fUsers}); err != nil {
		l.Fatal().Err(err).Msg("enrich failed")
	}
	logger.C(ctx).Info().Msg("enrich finished")
}
