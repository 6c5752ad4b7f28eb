package module

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/carlospolop/github-archive-scraper/internal/platform/config"
	perr "github.com/carlospolop/github-archive-scraper/internal/platform/errors"
)

var validate = validator.New()

// Options holds configuration options for the ingestion service
type Options struct {
	Workers     int           `validate:"gte=1"`
	MaxRetries  int           `validate:"gte=1"`
	RetryBase   time.Duration `validate:"gte=0"`
	MaxCollab   int           `validate:"gte=1"`
	HTTPTimeout time.Duration `validate:"gte=0"`
}

// FromConfig reads the ingestion options from config with CORE_SCRAPE_ prefix
func FromConfig(cfg config.Conf) (Options, error) {
	sc := cfg.Prefix("CORE_SCRAPE_")
	o := Options{
		Workers:     sc.MayInt("WORKERS", 10),
		MaxRetries:  sc.MayInt("RETRIES", 1),
		RetryBase:   sc.MayDuration("RETRY_BASE", 500*time.Millisecond),
		MaxCollab:   sc.MayInt("MAX_COLLAB", 5000),
		HTTPTimeout: sc.MayDuration("HTTP_TIMEOUT", 0),
	}
	if err := validate.Struct(o); err != nil {
		return o, perr.Wrapf(err, perr.ErrorCodeConfig, "scrape options")
	}
	return o, nil
}
