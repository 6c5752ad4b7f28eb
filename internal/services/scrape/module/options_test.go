package module

import (
	"testing"
	"time"

	"github.com/carlospolop/github-archive-scraper/internal/platform/config"
	perr "github.com/carlospolop/github-archive-scraper/internal/platform/errors"
)

func TestFromConfigDefaults(t *testing.T) {
	opts, err := FromConfig(config.New())
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if opts.Workers != 10 || opts.MaxRetries != 1 || opts.MaxCollab != 5000 {
		t.Fatalf("opts = %+v", opts)
	}
	if opts.RetryBase != 500*time.Millisecond {
		t.Fatalf("retry base = %v", opts.RetryBase)
	}
}

func TestFromConfigReadsEnv(t *testing.T) {
	t.Setenv("CORE_SCRAPE_WORKERS", "3")
	t.Setenv("CORE_SCRAPE_MAX_COLLAB", "100")
	opts, err := FromConfig(config.New())
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if opts.Workers != 3 || opts.MaxCollab != 100 {
		t.Fatalf("opts = %+v", opts)
	}
}

func TestFromConfigRejectsInvalid(t *testing.T) {
	t.Setenv("CORE_SCRAPE_WORKERS", "0")
	_, err := FromConfig(config.New())
	if perr.CodeOf(err) != perr.ErrorCodeConfig {
		t.Fatalf("err = %v", err)
	}
}
