// gha-scrape streams GH Archive shards listed in a URL file, folds the
// events into the deduplicated entity store, and writes the repos.csv and
// users.csv snapshots when the list is drained
package main

import (
	"context"
	"flag"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/carlospolop/github-archive-scraper/internal/adapters/ingest/gharchive"
	"github.com/carlospolop/github-archive-scraper/internal/adapters/snapshot"
	"github.com/carlospolop/github-archive-scraper/internal/core/version"
	"github.com/carlospolop/github-archive-scraper/internal/modkit"
	"github.com/carlospolop/github-archive-scraper/internal/platform/config"
	"github.com/carlospolop/github-archive-scraper/internal/platform/logger"
	scrapemod "github.com/carlospolop/github-archive-scraper/internal/services/scrape/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	var (
		fFile    = flag.String("f", "", "file with shard URLs or paths, one per line")
		fOut     = flag.String("o", "output", "output folder for the CSV snapshots")
		fThreads = flag.Int("t", 10, "number of parallel shard workers")
		fRetries = flag.Int("retries", 0, "attempts per shard (0 = config default)")
	)
	flag.Parse()

	l := logger.Get()
	if *fFile == "" {
		l.Fatal().Msg("must provide -f with the shard list")
	}

	mustSetEnv("CORE_SCRAPE_WORKERS", strconv.Itoa(*fThreads))
	if *fRetries > 0 {
		mustSetEnv("CORE_SCRAPE_RETRIES", strconv.Itoa(*fRetries))
	}

	root := config.New()
	deps := modkit.Deps{Cfg: root, Log: *l}

	shards, err := gharchive.ReadShardList(*fFile)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to read shard list")
	}
	if len(shards) == 0 {
		l.Fatal().Str("file", *fFile).Msg("shard list is empty")
	}

	m, err := scrapemod.New(deps)
	if err != nil {
		l.Fatal().Err(err).Msg("scrape module init failed")
	}
	ports := m.Ports()

	ctx := logger.WithRun(context.Background(), uuid.NewString())
	bi := version.Info()
	logger.C(ctx).Info().
		Str("version", bi.Version).Str("commit", bi.Commit).
		Int("shards", len(shards)).Str("out", *fOut).
		Msg("scrape starting")

	if err := ports.Runner.Run(ctx, shards); err != nil {
		l.Fatal().Err(err).Msg("scrape failed")
	}

	repos := ports.Store.Repos()
	users := ports.Store.Users()
	if err := snapshot.WriteRepos(*fOut, repos); err != nil {
		l.Fatal().Err(err).Msg("failed to write repository snapshot")
	}
	if err := snapshot.WriteUsers(*fOut, users); err != nil {
		l.Fatal().Err(err).Msg("failed to write user snapshot")
	}
	logger.C(ctx).Info().Int("repos", len(repos)).Int("users", len(users)).
		Msg("scrape finished")
}
