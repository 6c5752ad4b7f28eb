package mirror

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carlospolop/github-archive-scraper/internal/adapters/ingest/gharchive"
	"github.com/carlospolop/github-archive-scraper/internal/platform/testkit"
)

type memSource struct {
	data map[gharchive.ShardRef][]byte
}

func (m *memSource) Open(_ context.Context, ref gharchive.ShardRef) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.data[ref])), nil
}

func TestPartWriterSplits(t *testing.T) {
	dir := t.TempDir()
	pw := newPartWriter(dir, "2020-01-01-0", 10)
	for _, line := range []string{"aaaa", "bbbb", "cccc"} { // 5 bytes each with newline
		if err := pw.Write([]byte(line)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := pw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if pw.Parts() != 2 {
		t.Fatalf("parts = %d", pw.Parts())
	}

	p0, err := os.ReadFile(filepath.Join(dir, "2020-01-01-0_0.json"))
	if err != nil {
		t.Fatalf("read part 0: %v", err)
	}
	if string(p0) != "aaaa\nbbbb\n" {
		t.Fatalf("part 0 = %q", p0)
	}
	p1, err := os.ReadFile(filepath.Join(dir, "2020-01-01-0_1.json"))
	if err != nil {
		t.Fatalf("read part 1: %v", err)
	}
	if string(p1) != "cccc\n" {
		t.Fatalf("part 1 = %q", p1)
	}
}

func TestPartWriterEmptyLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	pw := newPartWriter(dir, "x", 10)
	if err := pw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %v", entries)
	}
}

func TestPartWriterOversizedLineGetsOwnPart(t *testing.T) {
	dir := t.TempDir()
	pw := newPartWriter(dir, "x", 4)
	if err := pw.Write([]byte("this line alone exceeds the threshold")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := pw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if pw.Parts() != 1 {
		t.Fatalf("parts = %d", pw.Parts())
	}
}

func TestMirrorShardDecompresses(t *testing.T) {
	dir := t.TempDir()
	ref := gharchive.ShardRef("https://data.gharchive.org/2020-06-05-4.json.gz")
	src := &memSource{data: map[gharchive.ShardRef][]byte{
		ref: testkit.GzipLines(t, `{"type":"PushEvent"}`, `{"type":"WatchEvent"}`),
	}}

	svc := New(src, Config{Workers: 1, OutDir: dir})
	if err := svc.Run(context.Background(), []gharchive.ShardRef{ref}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "2020-06-05-4_0.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 2 || lines[0] != `{"type":"PushEvent"}` {
		t.Fatalf("lines = %v", lines)
	}
}

func TestPartPrefix(t *testing.T) {
	cases := map[gharchive.ShardRef]string{
		"https://data.gharchive.org/2020-06-05-4.json.gz": "2020-06-05-4",
		"/local/2020-06-05-4.json":                        "2020-06-05-4",
		"plain":                                           "plain",
	}
	for in, want := range cases {
		if got := partPrefix(in); got != want {
			t.Fatalf("partPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}
