package classify

import (
	"encoding/json"
	"testing"

	"github.com/carlospolop/github-archive-scraper/internal/adapters/ingest/gharchive"
)

func event(t *testing.T, typ, login, repo, payload string) gharchive.EventEnvelope {
	t.Helper()
	env := gharchive.EventEnvelope{Type: typ}
	env.Actor.Login = login
	env.Repo.Name = repo
	if payload != "" {
		env.Payload = json.RawMessage(payload)
	}
	return env
}

func TestDeleteEventDefaultBranch(t *testing.T) {
	for _, ref := range []string{"master", "main"} {
		f := FromEvent(event(t, "DeleteEvent", "alice", "a/b",
			`{"ref_type":"branch","ref":"`+ref+`"}`))
		if !f.RepoDeleted {
			t.Fatalf("ref %q must imply deletion", ref)
		}
		if f.RepoName != "a/b" || f.Login != "alice" {
			t.Fatalf("fact = %+v", f)
		}
	}
}

func TestDeleteEventOtherRefs(t *testing.T) {
	cases := []string{
		`{"ref_type":"branch","ref":"feature"}`,
		`{"ref_type":"tag","ref":"master"}`,
		`{"ref_type":"repository","ref":""}`,
	}
	for _, p := range cases {
		f := FromEvent(event(t, "DeleteEvent", "alice", "a/b", p))
		if f.RepoDeleted {
			t.Fatalf("payload %s must not imply deletion", p)
		}
	}
}

func TestDeleteEventMalformedPayload(t *testing.T) {
	f := FromEvent(event(t, "DeleteEvent", "alice", "a/b", `{"ref_type":`))
	if f.RepoDeleted {
		t.Fatal("malformed payload must not imply deletion")
	}
	if f.RepoName != "a/b" {
		t.Fatalf("repo fact lost: %+v", f)
	}
}

func TestPushEventRecordsCollaboration(t *testing.T) {
	f := FromEvent(event(t, "PushEvent", "bob", "a/b", `{}`))
	if f.CollabRepo != "a/b" || f.Login != "bob" {
		t.Fatalf("fact = %+v", f)
	}
}

func TestPushEventWithoutActor(t *testing.T) {
	f := FromEvent(event(t, "PushEvent", "", "a/b", `{}`))
	if f.CollabRepo != "" {
		t.Fatalf("collaboration needs an actor: %+v", f)
	}
}

func TestPullRequestEventMerged(t *testing.T) {
	f := FromEvent(event(t, "PullRequestEvent", "carol", "a/b",
		`{"pull_request":{"merged_at":"2020-01-01T00:00:00Z","user":{"login":"dora"}}}`))
	if f.CollabRepo != "a/b" || f.Login != "carol" {
		t.Fatalf("fact = %+v", f)
	}
}

func TestPullRequestEventUnmerged(t *testing.T) {
	cases := []string{
		`{"pull_request":{"merged_at":null,"user":{"login":"dora"}}}`,
		`{"pull_request":{"user":{"login":"dora"}}}`,
		`{"pull_request":{"merged_at":"","user":{"login":"dora"}}}`,
	}
	for _, p := range cases {
		f := FromEvent(event(t, "PullRequestEvent", "carol", "a/b", p))
		if f.CollabRepo != "" {
			t.Fatalf("payload %s must not imply collaboration", p)
		}
	}
}

func TestPullRequestEventAuthorFallback(t *testing.T) {
	f := FromEvent(event(t, "PullRequestEvent", "", "a/b",
		`{"pull_request":{"merged_at":"2020-01-01T00:00:00Z","user":{"login":"dora"}}}`))
	if f.Login != "dora" || f.CollabRepo != "a/b" {
		t.Fatalf("fact = %+v", f)
	}
}

func TestUnknownEventStillNamesEntities(t *testing.T) {
	f := FromEvent(event(t, "WatchEvent", "eve", "a/b", `{}`))
	if f.RepoName != "a/b" || f.Login != "eve" {
		t.Fatalf("fact = %+v", f)
	}
	if f.RepoDeleted || f.CollabRepo != "" {
		t.Fatalf("watch must imply nothing else: %+v", f)
	}
}
