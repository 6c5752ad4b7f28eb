package github

import (
	"math/rand"
	"os"
	"strings"
	"sync"

	perr "github.com/carlospolop/github-archive-scraper/internal/platform/errors"
)

// LoadCredentials accepts either a literal credential or the path of a file
// holding newline-separated credentials
func LoadCredentials(tokenOrFile string) ([]string, error) {
	tokenOrFile = strings.TrimSpace(tokenOrFile)
	if tokenOrFile == "" {
		return nil, perr.Configf("no credential supplied")
	}
	fi, err := os.Stat(tokenOrFile)
	if err != nil || fi.IsDir() {
		return []string{tokenOrFile}, nil
	}
	raw, err := os.ReadFile(tokenOrFile)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeConfig, "read credential file %s", tokenOrFile)
	}
	var toks []string
	for _, line := range strings.Split(string(raw), "\n") {
		if t := strings.TrimSpace(line); t != "" {
			toks = append(toks, t)
		}
	}
	if len(toks) == 0 {
		return nil, perr.Configf("credential file %s is empty", tokenOrFile)
	}
	return toks, nil
}

// Rotator hands out credentials for outbound batch calls. One is chosen at
// random initially and advanced round-robin on rate limit. The rotation
// state is shared by every enrichment worker, so detection of "every
// credential tried since the limit was first seen" happens exactly once per
// cycle no matter how many workers hit the limit together
type Rotator struct {
	mu      sync.Mutex
	tokens  []string
	cur     int
	limited int // index that first observed the current limit window; -1 when clear
}

// NewRotator builds a rotator over the given credential set. An empty set is
// allowed (anonymous calls, very low quota)
func NewRotator(tokens []string) *Rotator {
	r := &Rotator{tokens: tokens, limited: -1}
	if len(tokens) > 1 {
		r.cur = rand.Intn(len(tokens))
	}
	return r
}

// Len returns the credential count
func (r *Rotator) Len() int { return len(r.tokens) }

// Current returns the selected credential and its index. The index must be
// passed back to OnRateLimit so concurrent observers of the same stale
// credential rotate only once
func (r *Rotator) Current() (string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tokens) == 0 {
		return "", 0
	}
	return r.tokens[r.cur], r.cur
}

// OnRateLimit records a rate-limit observation against the credential at
// idx and advances round-robin. cycled is true only for the single caller
// whose rotation returned to the credential that first observed the limit;
// that caller owns the long cooldown
func (r *Rotator) OnRateLimit(idx int) (tok string, cycled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tokens) == 0 {
		return "", true // anonymous: nothing to rotate to, always cool down
	}
	if idx != r.cur {
		// another worker already rotated away from this credential
		return r.tokens[r.cur], false
	}
	if r.limited < 0 {
		r.limited = idx
	}
	r.cur = (r.cur + 1) % len(r.tokens)
	if r.cur == r.limited {
		r.limited = -1
		return r.tokens[r.cur], true
	}
	return r.tokens[r.cur], false
}

// MarkHealthy clears the limit window after a successful call, so the next
// limit starts a fresh cycle
func (r *Rotator) MarkHealthy() {
	r.mu.Lock()
	r.limited = -1
	r.mu.Unlock()
}
