// Package report derives filtered and sorted CSV views from an enriched
// snapshot folder: per-metric rankings and per-flag subsets for
// repositories, per-flag and per-field subsets for users
package report

import (
	"context"
	"sort"

	"github.com/carlospolop/github-archive-scraper/internal/adapters/snapshot"
	"github.com/carlospolop/github-archive-scraper/internal/core/entity"
	"github.com/carlospolop/github-archive-scraper/internal/platform/logger"
)

// repoView is one derived repository report
type repoView struct {
	file string
	keep func(entity.Repository) bool
	rank func(entity.Repository) int // nil = keep snapshot order
}

// userView is one derived user report
type userView struct {
	file string
	keep func(entity.User) bool
}

var repoViews = []repoView{
	{"repos_sorted_stars.csv", metricKnown(stars), metricValue(stars)},
	{"repos_sorted_forks.csv", metricKnown(forks), metricValue(forks)},
	{"repos_sorted_watchers.csv", metricKnown(watchers), metricValue(watchers)},
	{"repos_private.csv", func(r entity.Repository) bool { return r.Private }, nil},
	{"repos_deleted.csv", func(r entity.Repository) bool { return r.Deleted }, nil},
	{"repos_archived.csv", func(r entity.Repository) bool { return r.Archived }, nil},
	{"repos_disabled.csv", func(r entity.Repository) bool { return r.Disabled }, nil},
}

var userViews = []userView{
	{"users_site_admin.csv", func(u entity.User) bool { return u.SiteAdmin }},
	{"users_deleted.csv", func(u entity.User) bool { return u.Deleted }},
	{"users_hireable.csv", func(u entity.User) bool { return u.Hireable }},
	{"users_github_star.csv", func(u entity.User) bool { return u.GitHubStar }},
	{"users_email.csv", func(u entity.User) bool { return u.Email != "" }},
	{"users_company.csv", func(u entity.User) bool { return u.Company != "" }},
}

func stars(r entity.Repository) entity.Count    { return r.Stars }
func forks(r entity.Repository) entity.Count    { return r.Forks }
func watchers(r entity.Repository) entity.Count { return r.Watchers }

// metricKnown keeps rows whose metric was resolved to a positive value
func metricKnown(metric func(entity.Repository) entity.Count) func(entity.Repository) bool {
	return func(r entity.Repository) bool {
		c := metric(r)
		return c.Known && c.Value > 0
	}
}

func metricValue(metric func(entity.Repository) entity.Count) func(entity.Repository) int {
	return func(r entity.Repository) int { return metric(r).Value }
}

// WriteRepoReports writes every repository view for the snapshot in dir
func WriteRepoReports(ctx context.Context, dir string) error {
	repos, err := snapshot.LoadRepos(dir)
	if err != nil {
		return err
	}
	for _, v := range repoViews {
		rows := filterRepos(repos, v.keep)
		if v.rank != nil {
			rank := v.rank
			sort.SliceStable(rows, func(i, j int) bool { return rank(rows[i]) > rank(rows[j]) })
		}
		if err := snapshot.WriteReposNamed(dir, v.file, rows); err != nil {
			return err
		}
		logger.C(ctx).Info().Str("file", v.file).Int("rows", len(rows)).Msg("report written")
	}
	return nil
}

// WriteUserReports writes every user view for the snapshot in dir
func WriteUserReports(ctx context.Context, dir string) error {
	users, err := snapshot.LoadUsers(dir)
	if err != nil {
		return err
	}
	for _, v := range userViews {
		rows := filterUsers(users, v.keep)
		if err := snapshot.WriteUsersNamed(dir, v.file, rows); err != nil {
			return err
		}
		logger.C(ctx).Info().Str("file", v.file).Int("rows", len(rows)).Msg("report written")
	}
	return nil
}

func filterRepos(in []entity.Repository, keep func(entity.Repository) bool) []entity.Repository {
	out := make([]entity.Repository, 0, len(in))
	for _, r := range in {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func filterUsers(in []entity.User, keep func(entity.User) bool) []entity.User {
	out := make([]entity.User, 0, len(in))
	for _, u := range in {
		if keep(u) {
			out = append(out, u)
		}
	}
	return out
}
