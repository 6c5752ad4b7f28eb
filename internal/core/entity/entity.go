// Package entity holds the Repository and User records tracked across both
// pipeline phases, plus the deduplicating store they live in
package entity

import "strings"

// Count is an integer metric that distinguishes "never observed" from a
// legitimate zero. The zero value is unknown
type Count struct {
	Value int
	Known bool
}

// KnownCount returns a known Count carrying v
func KnownCount(v int) Count { return Count{Value: v, Known: true} }

// Kind tags an entity variant
type Kind int

// Entity kinds
const (
	KindRepository Kind = iota
	KindUser
)

// String returns the kind name
func (k Kind) String() string {
	if k == KindUser {
		return "user"
	}
	return "repository"
}

// RepoTransition names a state transition the classifier can imply for a
// repository
type RepoTransition int

// Repository transitions
const (
	// TransitionNone leaves the record untouched
	TransitionNone RepoTransition = iota

	// TransitionDefaultBranchDeleted marks the repository deleted. A repo
	// that looked private but had its default branch removed is reclassified
	// as deleted rather than private; a heuristic, not a certainty
	TransitionDefaultBranchDeleted
)

// Repository is keyed by FullName (owner/name); equality is by key alone
type Repository struct {
	FullName string

	Stars    Count
	Forks    Count
	Watchers Count

	Deleted  bool
	Private  bool
	Archived bool
	Disabled bool
}

// NewRepository creates a first-sight record with unknown metrics
func NewRepository(fullName string) Repository {
	return Repository{FullName: fullName}
}

// Owner returns the owner half of the full name
func (r Repository) Owner() string {
	owner, _ := SplitFullName(r.FullName)
	return owner
}

// Name returns the repo half of the full name
func (r Repository) Name() string {
	_, name := SplitFullName(r.FullName)
	return name
}

// User is keyed by Username; equality is by key alone
type User struct {
	Username    string
	ReposCollab []string

	Deleted    bool
	SiteAdmin  bool
	Hireable   bool
	GitHubStar bool

	Email   string
	Company string
}

// NewUser creates a first-sight record with all-unknown fields
func NewUser(username string) User {
	return User{Username: username}
}

// NormalizeFullName keeps the first two path segments of a repository full
// name. Upstream data occasionally carries names like a/b/tree/main; the
// truncation is a known lossy workaround, and the second return reports
// whether it triggered
func NormalizeFullName(name string) (string, bool) {
	parts := strings.Split(name, "/")
	if len(parts) <= 2 {
		return name, false
	}
	return parts[0] + "/" + parts[1], true
}

// SplitFullName splits owner/name; name is empty when there is no slash
func SplitFullName(full string) (owner, name string) {
	owner, name, _ = strings.Cut(full, "/")
	return owner, name
}
