package github

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/carlospolop/github-archive-scraper/internal/core/entity"
)

// One aggregated query resolves a whole batch; every entity gets a
// positional alias (q0, q1, ...) so null results map back to their key

func alias(i int) string { return fmt.Sprintf("q%d", i) }

// buildRepoQuery aggregates one repository(owner, name) selection per batch
// entry. Entries without an owner/name shape keep their alias but query an
// impossible name, which the API answers with null
func buildRepoQuery(fullNames []string) string {
	var b strings.Builder
	b.WriteString("query { ")
	for i, full := range fullNames {
		owner, name := entity.SplitFullName(full)
		fmt.Fprintf(&b,
			"%s: repository(owner: %s, name: %s) { nameWithOwner stargazerCount forks { totalCount } watchers { totalCount } isArchived isDisabled } ",
			alias(i), quote(owner), quote(name),
		)
	}
	b.WriteString("}")
	return b.String()
}

// buildUserQuery aggregates one user(login) selection per batch entry
func buildUserQuery(logins []string) string {
	var b strings.Builder
	b.WriteString("query { ")
	for i, login := range logins {
		fmt.Fprintf(&b,
			"%s: user(login: %s) { isSiteAdmin isHireable isGitHubStar email company } ",
			alias(i), quote(login),
		)
	}
	b.WriteString("}")
	return b.String()
}

// quote produces a GraphQL string literal; Go quoting escapes the same
// metacharacters GraphQL cares about
func quote(s string) string { return strconv.Quote(s) }
