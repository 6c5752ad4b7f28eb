package service

import (
	"github.com/carlospolop/github-archive-scraper/internal/core/entity"
	"github.com/carlospolop/github-archive-scraper/internal/services/enrich/domain"
)

// mergeRepo folds one lookup result into the stored record. An existent
// answer is authoritative for metrics and flags and clears deletion state
// observed during ingestion. An inexistent answer keeps the deletion flag
// and marks the invisible-but-not-deleted remainder as private
func mergeRepo(r *entity.Repository, lk domain.RepoLookup) {
	if lk.Inexistent {
		r.Stars, r.Forks, r.Watchers = entity.Count{}, entity.Count{}, entity.Count{}
		r.Archived = false
		r.Disabled = false
		r.Private = !r.Deleted
		return
	}
	r.Stars = entity.KnownCount(lk.Stars)
	r.Forks = entity.KnownCount(lk.Forks)
	r.Watchers = entity.KnownCount(lk.Watchers)
	r.Archived = lk.Archived
	r.Disabled = lk.Disabled
	r.Deleted = false
	r.Private = false
}

// mergeUser folds one lookup result into the stored record. Collaborations
// come from ingestion and are never touched here
func mergeUser(u *entity.User, lk domain.UserLookup) {
	if lk.Inexistent {
		u.Deleted = true
		return
	}
	u.Deleted = false
	u.SiteAdmin = lk.SiteAdmin
	u.Hireable = lk.Hireable
	u.GitHubStar = lk.GitHubStar
	u.Email = lk.Email
	u.Company = lk.Company
}
