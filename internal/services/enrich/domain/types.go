// Package domain holds the enrichment service ports and the types that cross
// them. Lookup types are re-exported from the GraphQL adapter so the service
// layer stays adapter-agnostic
package domain

import (
	"github.com/carlospolop/github-archive-scraper/internal/adapters/github"
)

// RepoLookup is the per-repository enrichment result
type RepoLookup = github.RepoLookup

// UserLookup is the per-user enrichment result
type UserLookup = github.UserLookup
