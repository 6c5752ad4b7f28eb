// gha-mirror downloads archive shards and stores them locally as plain
// newline-JSON part files split at a size threshold, so later ingestion runs
// can work offline against the mirror
package main

import (
	"context"
	"flag"

	"github.com/google/uuid"

	"github.com/carlospolop/github-archive-scraper/internal/adapters/ingest/gharchive"
	"github.com/carlospolop/github-archive-scraper/internal/platform/logger"
	"github.com/carlospolop/github-archive-scraper/internal/services/mirror"
)

func main() {
	var (
		fFile    = flag.String("f", "", "file with shard URLs, one per line")
		fOut     = flag.String("o", "mirror", "folder for the mirrored part files")
		fThreads = flag.Int("t", 4, "number of parallel downloads")
		fSplitMB = flag.Int64("split-mb", 100, "part file split threshold in MB")
	)
	flag.Parse()

	l := logger.Get()
	if *fFile == "" {
		l.Fatal().Msg("must provide -f with the shard list")
	}

	shards, err := gharchive.ReadShardList(*fFile)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to read shard list")
	}
	if len(shards) == 0 {
		l.Fatal().Str("file", *fFile).Msg("shard list is empty")
	}

	svc := mirror.New(gharchive.NewAutoSource(0), mirror.Config{
		Workers:      *fThreads,
		MaxPartBytes: *fSplitMB << 20,
		OutDir:       *fOut,
	})

	ctx := logger.WithRun(context.Background(), uuid.NewString())
	logger.C(ctx).Info().Int("shards", len(shards)).Str("out", *fOut).Msg("mirror starting")

	if err := svc.Run(ctx, shards); err != nil {
		l.Fatal().Err(err).Msg("mirror failed")
	}
	logger.C(ctx).Info().Msg("mirror finished")
}
