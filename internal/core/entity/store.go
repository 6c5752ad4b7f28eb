package entity

import (
	"sync"

	"github.com/carlospolop/github-archive-scraper/internal/platform/logger"
)

// DefaultMaxCollab caps repos_collab per user; the CSV cell has to stay
// under the usual reader field limits
const DefaultMaxCollab = 5000

// Store is the deduplicating entity map mutated concurrently by shard
// workers and enrichment workers. Creation and every field update of a
// given key happen under that kind's lock, so no two divergent records can
// exist for one key and updates never interleave field-by-field
type Store struct {
	maxCollab int

	repoMu    sync.RWMutex
	repos     map[string]*Repository
	repoOrder []string

	userMu    sync.RWMutex
	users     map[string]*User
	userOrder []string
	collab    map[string]map[string]struct{}
}

// NewStore creates an empty store; maxCollab <= 0 selects DefaultMaxCollab
func NewStore(maxCollab int) *Store {
	if maxCollab <= 0 {
		maxCollab = DefaultMaxCollab
	}
	return &Store{
		maxCollab: maxCollab,
		repos:     make(map[string]*Repository),
		users:     make(map[string]*User),
		collab:    make(map[string]map[string]struct{}),
	}
}

// UpsertRepo ensures a repository record exists for name (normalized) and
// returns the key it was stored under. Never removes or demotes a record
func (s *Store) UpsertRepo(name string) string {
	key, truncated := NormalizeFullName(name)
	s.repoMu.Lock()
	if _, ok := s.repos[key]; !ok {
		r := NewRepository(key)
		s.repos[key] = &r
		s.repoOrder = append(s.repoOrder, key)
		if truncated {
			logger.Named("entity").Warn().Str("raw", name).Str("kept", key).
				Msg("repository name had extra path segments; truncated")
		}
	}
	s.repoMu.Unlock()
	return key
}

// ApplyRepoTransition applies a classifier transition to the repository,
// creating it first if it was never seen
func (s *Store) ApplyRepoTransition(name string, tr RepoTransition) {
	if tr == TransitionNone {
		return
	}
	key, _ := NormalizeFullName(name)
	s.repoMu.Lock()
	r, ok := s.repos[key]
	if !ok {
		nr := NewRepository(key)
		s.repos[key] = &nr
		s.repoOrder = append(s.repoOrder, key)
		r = &nr
	}
	if tr == TransitionDefaultBranchDeleted {
		r.Deleted = true
		r.Private = false
	}
	s.repoMu.Unlock()
}

// UpsertUser ensures a user record exists for login
func (s *Store) UpsertUser(login string) {
	s.userMu.Lock()
	if _, ok := s.users[login]; !ok {
		u := NewUser(login)
		s.users[login] = &u
		s.userOrder = append(s.userOrder, login)
	}
	s.userMu.Unlock()
}

// RecordCollaboration appends repoName to the user's collaboration set.
// Idempotent, insertion-ordered, and bounded by maxCollab; the user is
// created if absent
func (s *Store) RecordCollaboration(login, repoName string) {
	repo, _ := NormalizeFullName(repoName)
	s.userMu.Lock()
	u, ok := s.users[login]
	if !ok {
		nu := NewUser(login)
		s.users[login] = &nu
		s.userOrder = append(s.userOrder, login)
		u = &nu
	}
	set, ok := s.collab[login]
	if !ok {
		set = make(map[string]struct{})
		s.collab[login] = set
	}
	if _, dup := set[repo]; !dup && len(u.ReposCollab) < s.maxCollab {
		set[repo] = struct{}{}
		u.ReposCollab = append(u.ReposCollab, repo)
	}
	s.userMu.Unlock()
}

// UpdateRepo runs mutate on the record under the repository lock; reports
// whether the key exists. Used by the enrichment merge
func (s *Store) UpdateRepo(name string, mutate func(*Repository)) bool {
	s.repoMu.Lock()
	defer s.repoMu.Unlock()
	r, ok := s.repos[name]
	if !ok {
		return false
	}
	mutate(r)
	return true
}

// UpdateUser runs mutate on the record under the user lock; reports whether
// the key exists
func (s *Store) UpdateUser(login string, mutate func(*User)) bool {
	s.userMu.Lock()
	defer s.userMu.Unlock()
	u, ok := s.users[login]
	if !ok {
		return false
	}
	mutate(u)
	return true
}

// InsertRepo stores a fully-formed record, as loaded from a snapshot.
// Last writer wins; the first insertion fixes the key's position
func (s *Store) InsertRepo(r Repository) {
	s.repoMu.Lock()
	if _, ok := s.repos[r.FullName]; !ok {
		s.repoOrder = append(s.repoOrder, r.FullName)
	}
	cp := r
	s.repos[r.FullName] = &cp
	s.repoMu.Unlock()
}

// InsertUser stores a fully-formed record, seeding the collaboration index
func (s *Store) InsertUser(u User) {
	s.userMu.Lock()
	if _, ok := s.users[u.Username]; !ok {
		s.userOrder = append(s.userOrder, u.Username)
	}
	cp := u
	cp.ReposCollab = append([]string(nil), u.ReposCollab...)
	s.users[u.Username] = &cp
	set := make(map[string]struct{}, len(cp.ReposCollab))
	for _, r := range cp.ReposCollab {
		set[r] = struct{}{}
	}
	s.collab[u.Username] = set
	s.userMu.Unlock()
}

// GetRepo returns a copy of the record for key, if present
func (s *Store) GetRepo(name string) (Repository, bool) {
	s.repoMu.RLock()
	defer s.repoMu.RUnlock()
	r, ok := s.repos[name]
	if !ok {
		return Repository{}, false
	}
	return *r, true
}

// GetUser returns a copy of the record for login, if present
func (s *Store) GetUser(login string) (User, bool) {
	s.userMu.RLock()
	defer s.userMu.RUnlock()
	u, ok := s.users[login]
	if !ok {
		return User{}, false
	}
	cp := *u
	cp.ReposCollab = append([]string(nil), u.ReposCollab...)
	return cp, true
}

// Repos returns a point-in-time copy of every repository in first-seen order
func (s *Store) Repos() []Repository {
	s.repoMu.RLock()
	defer s.repoMu.RUnlock()
	out := make([]Repository, 0, len(s.repoOrder))
	for _, k := range s.repoOrder {
		out = append(out, *s.repos[k])
	}
	return out
}

// Users returns a point-in-time copy of every user in first-seen order
func (s *Store) Users() []User {
	s.userMu.RLock()
	defer s.userMu.RUnlock()
	out := make([]User, 0, len(s.userOrder))
	for _, k := range s.userOrder {
		cp := *s.users[k]
		cp.ReposCollab = append([]string(nil), s.users[k].ReposCollab...)
		out = append(out, cp)
	}
	return out
}

// RepoNames returns every repository key in first-seen order
func (s *Store) RepoNames() []string {
	s.repoMu.RLock()
	defer s.repoMu.RUnlock()
	return append([]string(nil), s.repoOrder...)
}

// Usernames returns every user key in first-seen order
func (s *Store) Usernames() []string {
	s.userMu.RLock()
	defer s.userMu.RUnlock()
	return append([]string(nil), s.userOrder...)
}

// Len returns the current entity counts
func (s *Store) Len() (repos, users int) {
	s.repoMu.RLock()
	repos = len(s.repos)
	s.repoMu.RUnlock()
	s.userMu.RLock()
	users = len(s.users)
	s.userMu.RUnlock()
	return repos, users
}
