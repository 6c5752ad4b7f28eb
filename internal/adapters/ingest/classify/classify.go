// Package classify turns one decoded archive event into the entity facts it
// implies: repositories and users mentioned, the default-branch deletion
// transition, and push/merged-PR collaborations
package classify

import (
	"encoding/json"
	"strings"

	"github.com/carlospolop/github-archive-scraper/internal/adapters/ingest/gharchive"
)

// Fact is what one event implies for the entity store. Zero-value fields
// mean "nothing to do"; the classifier never errors on missing fields
type Fact struct {
	RepoName    string // owner/name mentioned by the event, "" if none
	RepoDeleted bool   // a default-branch deletion was observed for RepoName
	Login       string // actor or pull-request author, "" if none
	CollabRepo  string // repository to record as a collaboration for Login
}

// payload shapes, decoded per event type

type deletePayload struct {
	RefType string `json:"ref_type"`
	Ref     string `json:"ref"`
}

type prPayload struct {
	PullRequest struct {
		MergedAt *string `json:"merged_at"`
		User     struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"pull_request"`
}

// FromEvent classifies a single event envelope
func FromEvent(env gharchive.EventEnvelope) Fact {
	var f Fact

	f.RepoName = strings.TrimSpace(env.Repo.Name)
	f.Login = strings.TrimSpace(env.Actor.Login)

	switch env.Type {
	case "DeleteEvent":
		var p deletePayload
		if err := json.Unmarshal(env.Payload, &p); err == nil {
			if f.RepoName != "" && p.RefType == "branch" && isDefaultBranch(p.Ref) {
				f.RepoDeleted = true
			}
		}

	case "PushEvent":
		if f.Login != "" && f.RepoName != "" {
			f.CollabRepo = f.RepoName
		}

	case "PullRequestEvent":
		var p prPayload
		if err := json.Unmarshal(env.Payload, &p); err == nil {
			if f.Login == "" {
				f.Login = strings.TrimSpace(p.PullRequest.User.Login)
			}
			merged := p.PullRequest.MergedAt != nil && *p.PullRequest.MergedAt != ""
			if merged && f.Login != "" && f.RepoName != "" {
				f.CollabRepo = f.RepoName
			}
		}
	}

	return f
}

// isDefaultBranch reports whether ref names a conventional default branch
func isDefaultBranch(ref string) bool {
	return ref == "master" || ref == "main"
}
