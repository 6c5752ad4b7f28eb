package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/carlospolop/github-archive-scraper/internal/adapters/ingest/classify"
	"github.com/carlospolop/github-archive-scraper/internal/core/entity"
	perr "github.com/carlospolop/github-archive-scraper/internal/platform/errors"
	"github.com/carlospolop/github-archive-scraper/internal/platform/testkit"
	"github.com/carlospolop/github-archive-scraper/internal/services/scrape/domain"
)

// fakeSource serves canned newline-JSON per shard and fails designated refs
type fakeSource struct {
	data  map[domain.ShardRef]string
	fails map[domain.ShardRef]error
	opens int64
}

func (f *fakeSource) Open(_ context.Context, ref domain.ShardRef) (io.ReadCloser, error) {
	atomic.AddInt64(&f.opens, 1)
	if err, ok := f.fails[ref]; ok {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(f.data[ref])), nil
}

// lineReader decodes envelopes from a plain stream, mirroring the archive
// reader contract without gzip
type lineReader struct {
	lines  []string
	pos    int
	closed bool
}

func (r *lineReader) Next() (domain.EventEnvelope, error) {
	for r.pos < len(r.lines) {
		line := r.lines[r.pos]
		r.pos++
		var env domain.EventEnvelope
		if err := json.Unmarshal([]byte(line), &env); err != nil {
			continue
		}
		return env, nil
	}
	return domain.EventEnvelope{}, io.EOF
}

func (r *lineReader) Close() error             { r.closed = true; return nil }
func (r *lineReader) Stats() (int, int, int64) { return r.pos, 0, 0 }

type lineReaderFactory struct{}

func (lineReaderFactory) New(rc io.ReadCloser) (domain.ReaderPort, error) {
	b, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, l := range strings.Split(string(b), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return &lineReader{lines: lines}, nil
}

type realClassifier struct{}

func (realClassifier) FromEvent(env domain.EventEnvelope) domain.Fact {
	return classify.FromEvent(env)
}

func pushLine(login, repo string) string {
	return fmt.Sprintf(`{"type":"PushEvent","actor":{"login":%q},"repo":{"name":%q}}`, login, repo)
}

func deleteLine(login, repo string) string {
	return fmt.Sprintf(
		`{"type":"DeleteEvent","actor":{"login":%q},"repo":{"name":%q},"payload":{"ref_type":"branch","ref":"master"}}`,
		login, repo)
}

func newTestService(src *fakeSource, workers int) (*Service, *entity.Store) {
	st := entity.NewStore(0)
	svc := New(src, lineReaderFactory{}, realClassifier{}, st, Config{Workers: workers, MaxRetries: 1})
	return svc, st
}

func TestRunDrainsAllShards(t *testing.T) {
	src := &fakeSource{data: map[domain.ShardRef]string{}}
	var refs []domain.ShardRef
	for i := range 12 {
		ref := domain.ShardRef(fmt.Sprintf("shard-%d", i))
		src.data[ref] = pushLine(fmt.Sprintf("user%d", i), fmt.Sprintf("owner/repo%d", i))
		refs = append(refs, ref)
	}

	svc, st := newTestService(src, 4)
	if err := svc.Run(context.Background(), refs); err != nil {
		t.Fatalf("Run: %v", err)
	}
	repos, users := st.Len()
	if repos != 12 || users != 12 {
		t.Fatalf("store = %d repos, %d users", repos, users)
	}
	if got := atomic.LoadInt64(&src.opens); got != 12 {
		t.Fatalf("opens = %d", got)
	}
}

func TestRunAppliesFacts(t *testing.T) {
	ref := domain.ShardRef("s")
	src := &fakeSource{data: map[domain.ShardRef]string{
		ref: strings.Join([]string{
			pushLine("alice", "a/b"),
			deleteLine("bob", "c/d"),
			pushLine("alice", "a/b"),
		}, "\n"),
	}}
	svc, st := newTestService(src, 1)
	if err := svc.Run(context.Background(), []domain.ShardRef{ref}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	r, ok := st.GetRepo("c/d")
	if !ok || !r.Deleted {
		t.Fatalf("c/d = %+v ok=%v", r, ok)
	}
	u, _ := st.GetUser("alice")
	if len(u.ReposCollab) != 1 || u.ReposCollab[0] != "a/b" {
		t.Fatalf("alice = %+v", u)
	}
}

func TestShardFailureIsContained(t *testing.T) {
	good := domain.ShardRef("good")
	bad := domain.ShardRef("bad")
	src := &fakeSource{
		data:  map[domain.ShardRef]string{good: pushLine("alice", "a/b")},
		fails: map[domain.ShardRef]error{bad: perr.NotFoundf("shard bad not found")},
	}
	svc, st := newTestService(src, 2)
	if err := svc.Run(context.Background(), []domain.ShardRef{bad, good}); err != nil {
		t.Fatalf("a failed shard must not fail the run: %v", err)
	}
	if _, ok := st.GetRepo("a/b"); !ok {
		t.Fatal("good shard was not processed")
	}
}

func TestRetryOnRetryableError(t *testing.T) {
	ref := domain.ShardRef("flaky")
	src := &fakeSource{
		data:  map[domain.ShardRef]string{ref: pushLine("alice", "a/b")},
		fails: map[domain.ShardRef]error{ref: perr.Transportf("connection reset")},
	}
	st := entity.NewStore(0)
	svc := New(src, lineReaderFactory{}, realClassifier{}, st, Config{Workers: 1, MaxRetries: 3, RetryBase: 1})
	_ = svc.Run(context.Background(), []domain.ShardRef{ref})
	if got := atomic.LoadInt64(&src.opens); got != 3 {
		t.Fatalf("opens = %d, want 3 attempts", got)
	}
}

func TestNonRetryableFailsFast(t *testing.T) {
	ref := domain.ShardRef("gone")
	src := &fakeSource{
		data:  map[domain.ShardRef]string{},
		fails: map[domain.ShardRef]error{ref: perr.NotFoundf("nope")},
	}
	st := entity.NewStore(0)
	svc := New(src, lineReaderFactory{}, realClassifier{}, st, Config{Workers: 1, MaxRetries: 3, RetryBase: 1})
	_ = svc.Run(context.Background(), []domain.ShardRef{ref})
	if got := atomic.LoadInt64(&src.opens); got != 1 {
		t.Fatalf("opens = %d, want 1 attempt", got)
	}
}

func TestEmptyWorkList(t *testing.T) {
	svc, _ := newTestService(&fakeSource{data: map[domain.ShardRef]string{}}, 2)
	if err := svc.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestNewPanicsOnNilPorts(t *testing.T) {
	st := entity.NewStore(0)
	testkit.MustPanic(t, func() { New(nil, lineReaderFactory{}, realClassifier{}, st, Config{}) })
	testkit.MustPanic(t, func() { New(&fakeSource{}, nil, realClassifier{}, st, Config{}) })
	testkit.MustPanic(t, func() { New(&fakeSource{}, lineReaderFactory{}, nil, st, Config{}) })
	testkit.MustPanic(t, func() { New(&fakeSource{}, lineReaderFactory{}, realClassifier{}, nil, Config{}) })
}
