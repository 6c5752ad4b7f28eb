package gharchive

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	perr "github.com/carlospolop/github-archive-scraper/internal/platform/errors"
)

// Source resolves a shard reference into a raw byte stream
type Source interface {
	Open(ctx context.Context, ref ShardRef) (io.ReadCloser, error)
}

// HTTPSource fetches remote shards
type HTTPSource struct {
	Client *http.Client
}

// NewHTTPSourceWithTimeout creates an HTTPSource; zero duration means no
// client timeout (shards can be hundreds of MB on slow links)
func NewHTTPSourceWithTimeout(d time.Duration) *HTTPSource {
	return &HTTPSource{Client: &http.Client{Timeout: d}}
}

// Open issues a GET for the shard and returns the response body
func (s *HTTPSource) Open(ctx context.Context, ref ShardRef) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(ref), nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "bad shard url %s", ref)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeTransport, "shard download failed %s", ref)
	}
	// The archive backend answers missing hours with 200 + an error document
	// (handled by the reader) or a 404; both mean "no content", other
	// statuses are upstream trouble
	switch {
	case resp.StatusCode == http.StatusOK:
		return resp.Body, nil
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, perr.NotFoundf("shard %s not found", ref)
	default:
		_ = resp.Body.Close()
		return nil, perr.Unavailablef("shard %s: unexpected status %d", ref, resp.StatusCode)
	}
}

// FileSource opens local shard files (mirrored .json or .json.gz)
type FileSource struct{}

// Open opens the shard at the given path
func (FileSource) Open(_ context.Context, ref ShardRef) (io.ReadCloser, error) {
	f, err := os.Open(string(ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perr.NotFoundf("shard file %s not found", ref)
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "open shard file %s", ref)
	}
	return f, nil
}

// AutoSource dispatches to HTTP or file access based on the reference
type AutoSource struct {
	HTTP Source
	File Source
}

// NewAutoSource builds the default dispatching source
func NewAutoSource(httpTimeout time.Duration) *AutoSource {
	return &AutoSource{
		HTTP: NewHTTPSourceWithTimeout(httpTimeout),
		File: FileSource{},
	}
}

// Open resolves the shard through the matching backend
func (s *AutoSource) Open(ctx context.Context, ref ShardRef) (io.ReadCloser, error) {
	if ref.Remote() {
		return s.HTTP.Open(ctx, ref)
	}
	return s.File.Open(ctx, ref)
}
