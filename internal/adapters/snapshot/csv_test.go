package snapshot

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/carlospolop/github-archive-scraper/internal/core/entity"
)

func TestRepoRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := []entity.Repository{
		{FullName: "a/b", Stars: entity.KnownCount(10), Forks: entity.KnownCount(0), Deleted: true},
		{FullName: "c/d", Private: true, Archived: true},
	}
	if err := WriteRepos(dir, in); err != nil {
		t.Fatalf("WriteRepos: %v", err)
	}
	out, err := LoadRepos(dir)
	if err != nil {
		t.Fatalf("LoadRepos: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("rows = %d", len(out))
	}
	r := out[0]
	if r.FullName != "a/b" || !r.Stars.Known || r.Stars.Value != 10 || !r.Deleted {
		t.Fatalf("row = %+v", r)
	}
	// a written zero must come back as known zero, not unknown
	if !r.Forks.Known || r.Forks.Value != 0 {
		t.Fatalf("forks = %+v", r.Forks)
	}
	if r.Watchers.Known {
		t.Fatalf("watchers must stay unknown: %+v", r.Watchers)
	}
	if !out[1].Private || !out[1].Archived || out[1].Deleted {
		t.Fatalf("row = %+v", out[1])
	}
}

func TestUserRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := []entity.User{
		{Username: "alice", ReposCollab: []string{"a/b", "c/d"}, SiteAdmin: true, Email: "a@b.c"},
		{Username: "bob", Deleted: true},
	}
	if err := WriteUsers(dir, in); err != nil {
		t.Fatalf("WriteUsers: %v", err)
	}
	out, err := LoadUsers(dir)
	if err != nil {
		t.Fatalf("LoadUsers: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("rows = %d", len(out))
	}
	u := out[0]
	if u.Username != "alice" || len(u.ReposCollab) != 2 || u.ReposCollab[1] != "c/d" {
		t.Fatalf("row = %+v", u)
	}
	if !u.SiteAdmin || u.Email != "a@b.c" || u.Deleted {
		t.Fatalf("row = %+v", u)
	}
	if !out[1].Deleted || len(out[1].ReposCollab) != 0 {
		t.Fatalf("row = %+v", out[1])
	}
}

func TestUnknownRendersBlank(t *testing.T) {
	dir := t.TempDir()
	if err := WriteRepos(dir, []entity.Repository{{FullName: "a/b"}}); err != nil {
		t.Fatalf("WriteRepos: %v", err)
	}
	f, err := os.Open(filepath.Join(dir, ReposFile))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	row := rows[1]
	for i := 2; i <= 8; i++ { // every metric and flag
		if row[i] != "" {
			t.Fatalf("column %d = %q, want blank", i, row[i])
		}
	}
}

func TestLoadAcceptsLegacySentinels(t *testing.T) {
	dir := t.TempDir()
	raw := "owner,repo,stars,forks,watchers,deleted,private,archived,disabled\n" +
		"a,b,-1,5,,0,1,true,false\n"
	if err := os.WriteFile(filepath.Join(dir, ReposFile), []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := LoadRepos(dir)
	if err != nil {
		t.Fatalf("LoadRepos: %v", err)
	}
	r := out[0]
	if r.Stars.Known {
		t.Fatalf("-1 must load as unknown: %+v", r.Stars)
	}
	if !r.Forks.Known || r.Forks.Value != 5 || r.Watchers.Known {
		t.Fatalf("row = %+v", r)
	}
	if r.Deleted || !r.Private || !r.Archived || r.Disabled {
		t.Fatalf("flags = %+v", r)
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	if _, err := LoadRepos(t.TempDir()); err == nil {
		t.Fatal("want error for missing snapshot")
	}
}

func TestSinkAppendsBatches(t *testing.T) {
	dir := t.TempDir()
	sink, err := CreateRepoSink(dir)
	if err != nil {
		t.Fatalf("CreateRepoSink: %v", err)
	}
	if err := sink.Append([]entity.Repository{{FullName: "a/b"}}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := sink.Append([]entity.Repository{{FullName: "c/d"}, {FullName: "e/f"}}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	out, err := LoadRepos(dir)
	if err != nil {
		t.Fatalf("LoadRepos: %v", err)
	}
	if len(out) != 3 || out[2].FullName != "e/f" {
		t.Fatalf("rows = %+v", out)
	}
}

func TestCreateSinkTruncates(t *testing.T) {
	dir := t.TempDir()
	if err := WriteUsers(dir, []entity.User{{Username: "old"}}); err != nil {
		t.Fatalf("WriteUsers: %v", err)
	}
	sink, err := CreateUserSink(dir)
	if err != nil {
		t.Fatalf("CreateUserSink: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	out, err := LoadUsers(dir)
	if err != nil {
		t.Fatalf("LoadUsers: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("rows = %+v", out)
	}
}
