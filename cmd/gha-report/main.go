// gha-report derives filtered and sorted CSV views from an enriched
// snapshot folder: metric rankings and flag subsets for repositories,
// flag and field subsets for users
package main

import (
	"context"
	"flag"

	"github.com/google/uuid"

	"github.com/carlospolop/github-archive-scraper/internal/platform/logger"
	"github.com/carlospolop/github-archive-scraper/internal/services/report"
)

func main() {
	var (
		fDir   = flag.String("d", "", "folder holding repos.csv and users.csv")
		fRepos = flag.Bool("repos", true, "write the repository reports")
		fUsers = flag.Bool("users", true, "write the user reports")
	)
	flag.Parse()

	l := logger.Get()
	if *fDir == "" {
		l.Fatal().Msg("must provide -d with the snapshot folder")
	}
	if !*fRepos && !*fUsers {
		l.Fatal().Msg("nothing to report: both -repos and -users disabled")
	}

	ctx := logger.WithRun(context.Background(), uuid.NewString())

	if *fRepos {
		if err := report.WriteRepoReports(ctx, *fDir); err != nil {
			l.Fatal().Err(err).Msg("repository reports failed")
		}
	}
	if *fUsers {
		if err := report.WriteUserReports(ctx, *fDir); err != nil {
			l.Fatal().Err(err).Msg("user reports failed")
		}
	}
	logger.C(ctx).Info().Str("dir", *fDir).Msg("reports finished")
}
