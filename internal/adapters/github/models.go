package github

import "encoding/json"

// RepoLookup is the per-repository enrichment result. Inexistent means the
// remote side has no record of the entity, which is a valid terminal state,
// not an error
type RepoLookup struct {
	Inexistent bool
	Stars      int
	Forks      int
	Watchers   int
	Archived   bool
	Disabled   bool
}

// UserLookup is the per-user enrichment result
type UserLookup struct {
	Inexistent bool
	SiteAdmin  bool
	Hireable   bool
	GitHubStar bool
	Email      string
	Company    string
}

// wire shapes

type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []graphQLError             `json:"errors"`
}

type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type repoNode struct {
	NameWithOwner  string `json:"nameWithOwner"`
	StargazerCount int    `json:"stargazerCount"`
	Forks          struct {
		TotalCount int `json:"totalCount"`
	} `json:"forks"`
	Watchers struct {
		TotalCount int `json:"totalCount"`
	} `json:"watchers"`
	IsArchived bool `json:"isArchived"`
	IsDisabled bool `json:"isDisabled"`
}

type userNode struct {
	IsSiteAdmin  bool   `json:"isSiteAdmin"`
	IsHireable   bool   `json:"isHireable"`
	IsGitHubStar bool   `json:"isGitHubStar"`
	Email        string `json:"email"`
	Company      string `json:"company"`
}
