package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/carlospolop/github-archive-scraper/internal/platform/testkit"
)

// Init is process-wide and sticky, so one buffer serves every test here
var logBuf bytes.Buffer

func initTestLogger() {
	Init(Options{Level: "debug", Format: "json", Writer: &logBuf, Service: "test"})
}

func TestContextEnrichment(t *testing.T) {
	initTestLogger()
	logBuf.Reset()

	ctx := WithRun(context.Background(), "run-123")
	ctx = WithShard(ctx, "2020-06-05-4")
	C(ctx).Info().Msg("hello")

	out := logBuf.String()
	testkit.MustContain(t, out, `"run_id":"run-123"`)
	testkit.MustContain(t, out, `"shard":"2020-06-05-4"`)
	testkit.MustContain(t, out, `"service":"test"`)
}

func TestPlainContextHasNoRunFields(t *testing.T) {
	initTestLogger()
	logBuf.Reset()

	C(context.Background()).Info().Msg("bare")
	out := logBuf.String()
	if bytes.Contains([]byte(out), []byte("run_id")) {
		t.Fatalf("unexpected run_id in %q", out)
	}
}

func TestNamedAddsComponent(t *testing.T) {
	initTestLogger()
	logBuf.Reset()

	Named("gharchive").Debug().Msg("component log")
	testkit.MustContain(t, logBuf.String(), `"component":"gharchive"`)
}

func TestWithRunIgnoresEmpty(t *testing.T) {
	ctx := context.Background()
	if WithRun(ctx, "") != ctx {
		t.Fatal("empty run id must not allocate a child context")
	}
	if WithShard(ctx, "") != ctx {
		t.Fatal("empty shard must not allocate a child context")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug":   "debug",
		"WARN":    "warn",
		"warning": "warn",
		"bogus":   "info",
		"":        "info",
	}
	for in, want := range cases {
		if got := parseLevel(in).String(); got != want {
			t.Fatalf("parseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}
