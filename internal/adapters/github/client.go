// Package github provides a resilient GraphQL batch client for enrichment.
// One aggregated query covers a whole batch of repositories or users;
// transport and bad-gateway failures get a bounded wait-and-retry, and
// rate-limit signals rotate credentials with a long cooldown once every
// credential has been tried
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	perr "github.com/carlospolop/github-archive-scraper/internal/platform/errors"
	"github.com/carlospolop/github-archive-scraper/internal/platform/logger"
)

const (
	endpointDefault      = "https://api.github.com/graphql"
	defaultUA            = "github-archive-scraper"
	defaultTimeout       = 30 * time.Second
	defaultMaxRetries    = 3
	defaultRetryWait     = 30 * time.Second
	defaultLimitCooldown = 5 * time.Minute
)

// Options configures the Client
type Options struct {
	Endpoint  string
	UserAgent string
	Timeout   time.Duration

	// MaxRetries bounds transport and bad-gateway retries (independent
	// counters); past the bound the batch is abandoned
	MaxRetries int

	// RetryWait is the fixed cooldown between bounded retries
	RetryWait time.Duration

	// LimitCooldown is the long sleep taken when every credential has been
	// tried since a rate limit was first observed
	LimitCooldown time.Duration
}

// Client issues aggregated GraphQL queries with credential rotation
type Client struct {
	http  *http.Client
	opts  Options
	rot   *Rotator
	log   logger.Logger
	sleep func(time.Duration)
}

// NewClient creates a Client with sane defaults over the given rotator
func NewClient(o Options, rot *Rotator) *Client {
	if o.Endpoint == "" {
		o.Endpoint = endpointDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.RetryWait <= 0 {
		o.RetryWait = defaultRetryWait
	}
	if o.LimitCooldown <= 0 {
		o.LimitCooldown = defaultLimitCooldown
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		rot:   rot,
		log:   *logger.Named("github"),
		sleep: time.Sleep,
	}
}

// ResolveRepos resolves one batch of repository full names. Every input key
// is present in the result; a null per-entity answer maps to Inexistent
func (c *Client) ResolveRepos(ctx context.Context, fullNames []string) (map[string]RepoLookup, error) {
	out := make(map[string]RepoLookup, len(fullNames))
	if len(fullNames) == 0 {
		return out, nil
	}
	data, err := c.resolve(ctx, buildRepoQuery(fullNames))
	if err != nil {
		return nil, err
	}
	for i, full := range fullNames {
		raw, ok := data[alias(i)]
		if !ok || isNull(raw) {
			out[full] = RepoLookup{Inexistent: true}
			continue
		}
		var n repoNode
		if uerr := json.Unmarshal(raw, &n); uerr != nil {
			return nil, perr.Wrapf(uerr, perr.ErrorCodeDecode, "repository result for %s", full)
		}
		out[full] = RepoLookup{
			Stars:    n.StargazerCount,
			Forks:    n.Forks.TotalCount,
			Watchers: n.Watchers.TotalCount,
			Archived: n.IsArchived,
			Disabled: n.IsDisabled,
		}
	}
	return out, nil
}

// ResolveUsers resolves one batch of user logins
func (c *Client) ResolveUsers(ctx context.Context, logins []string) (map[string]UserLookup, error) {
	out := make(map[string]UserLookup, len(logins))
	if len(logins) == 0 {
		return out, nil
	}
	data, err := c.resolve(ctx, buildUserQuery(logins))
	if err != nil {
		return nil, err
	}
	for i, login := range logins {
		raw, ok := data[alias(i)]
		if !ok || isNull(raw) {
			out[login] = UserLookup{Inexistent: true}
			continue
		}
		var n userNode
		if uerr := json.Unmarshal(raw, &n); uerr != nil {
			return nil, perr.Wrapf(uerr, perr.ErrorCodeDecode, "user result for %s", login)
		}
		out[login] = UserLookup{
			SiteAdmin:  n.IsSiteAdmin,
			Hireable:   n.IsHireable,
			GitHubStar: n.IsGitHubStar,
			Email:      n.Email,
			Company:    n.Company,
		}
	}
	return out, nil
}

// resolve runs the retry/rotation loop for one aggregated query.
// The loop is explicit and bounded per failure class; the only unbounded
// dimension is rate-limit rotation, which always makes progress through the
// credential cycle and sleeps the long cooldown once per full cycle
func (c *Client) resolve(ctx context.Context, query string) (map[string]json.RawMessage, error) {
	transportTries := 0
	upstreamTries := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tok, idx := c.rot.Current()
		body, status, err := c.post(ctx, query, tok)

		if err != nil {
			transportTries++
			if transportTries > c.opts.MaxRetries {
				return nil, perr.Wrapf(err, perr.ErrorCodeTransport,
					"batch abandoned after %d transport retries", c.opts.MaxRetries)
			}
			c.log.Warn().Err(err).Int("attempt", transportTries).
				Dur("wait", c.opts.RetryWait).Msg("transport error, retrying batch")
			c.sleep(c.opts.RetryWait)
			continue
		}

		switch {
		case status == http.StatusOK:
			var gr graphQLResponse
			if uerr := json.Unmarshal(body, &gr); uerr != nil {
				return nil, perr.Wrapf(uerr, perr.ErrorCodeDecode, "graphql response")
			}
			// Rate limiting can arrive inside a success-shaped response
			if rateLimited(gr.Errors, body) {
				c.rotate(idx)
				continue
			}
			c.rot.MarkHealthy()
			return gr.Data, nil

		case status == http.StatusBadGateway ||
			status == http.StatusServiceUnavailable ||
			status == http.StatusGatewayTimeout:
			upstreamTries++
			if upstreamTries > c.opts.MaxRetries {
				return nil, perr.Unavailablef(
					"batch abandoned after %d upstream retries (status %d)", c.opts.MaxRetries, status)
			}
			c.log.Warn().Int("status", status).Int("attempt", upstreamTries).
				Dur("wait", c.opts.RetryWait).Msg("upstream error, retrying batch")
			c.sleep(c.opts.RetryWait)
			continue

		default:
			if rateLimited(nil, body) {
				c.rotate(idx)
				continue
			}
			return nil, perr.Newf(perr.ErrorCodeUnknown,
				"graphql status %d body %s", status, truncate(body, 2048))
		}
	}
}

// rotate advances the credential set and takes the long cooldown when the
// full cycle completes
func (c *Client) rotate(idx int) {
	_, cycled := c.rot.OnRateLimit(idx)
	if cycled {
		c.log.Warn().Int("credentials", c.rot.Len()).
			Dur("cooldown", c.opts.LimitCooldown).
			Msg("rate limit hit on every credential, cooling down")
		c.sleep(c.opts.LimitCooldown)
		return
	}
	c.log.Debug().Msg("rate limited, rotated credential")
}

func (c *Client) post(ctx context.Context, query, token string) ([]byte, int, error) {
	payload, err := json.Marshal(graphQLRequest{Query: query})
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// a body cut mid-read is the chunked-encoding failure mode
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// rateLimited matches both the typed GraphQL error and the plain-text
// rejection mentioning the limit
func rateLimited(errs []graphQLError, body []byte) bool {
	for _, e := range errs {
		if e.Type == "RATE_LIMITED" {
			return true
		}
	}
	return strings.Contains(strings.ToLower(string(body)), "rate limit")
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return fmt.Sprintf("%s...", b[:n])
}
