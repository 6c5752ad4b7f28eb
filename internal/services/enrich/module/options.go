package module

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/carlospolop/github-archive-scraper/internal/platform/config"
	perr "github.com/carlospolop/github-archive-scraper/internal/platform/errors"
)

var validate = validator.New()

// Options holds configuration options for the enrichment service and its
// GraphQL client
type Options struct {
	Workers   int `validate:"gte=1"`
	BatchSize int `validate:"gte=1,lte=500"`

	// Credential: a literal token or the path of a newline-separated file
	Token string `validate:"required"`

	Endpoint      string
	UserAgent     string
	Timeout       time.Duration `validate:"gte=0"`
	MaxRetries    int           `validate:"gte=1"`
	RetryWait     time.Duration `validate:"gte=0"`
	LimitCooldown time.Duration `validate:"gte=0"`
}

// FromConfig reads the enrichment options from config with CORE_ENRICH_ and
// CORE_GITHUB_ prefixes
func FromConfig(cfg config.Conf) (Options, error) {
	en := cfg.Prefix("CORE_ENRICH_")
	gh := cfg.Prefix("CORE_GITHUB_")
	o := Options{
		Workers:       en.MayInt("WORKERS", 10),
		BatchSize:     en.MayInt("BATCH", 200),
		Token:         gh.MayString("TOKEN", ""),
		Endpoint:      gh.MayString("ENDPOINT", ""),
		UserAgent:     gh.MayString("USER_AGENT", ""),
		Timeout:       gh.MayDuration("TIMEOUT", 30*time.Second),
		MaxRetries:    gh.MayInt("RETRIES", 3),
		RetryWait:     gh.MayDuration("RETRY_WAIT", 30*time.Second),
		LimitCooldown: gh.MayDuration("LIMIT_COOLDOWN", 5*time.Minute),
	}
	if err := validate.Struct(o); err != nil {
		return o, perr.Wrapf(err, perr.ErrorCodeConfig, "enrich options")
	}
	return o, nil
}
