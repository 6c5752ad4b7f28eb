package config

import (
	"testing"
	"time"

	"github.com/carlospolop/github-archive-scraper/internal/platform/testkit"
)

func TestPrefixComposition(t *testing.T) {
	t.Setenv("CORE_SCRAPE_WORKERS", "7")
	cfg := New().Prefix("CORE_").Prefix("SCRAPE_")
	if got := cfg.MayInt("WORKERS", 1); got != 7 {
		t.Fatalf("got %d", got)
	}
}

func TestMayDefaults(t *testing.T) {
	cfg := New().Prefix("TESTCFG_NONE_")
	if cfg.MayString("S", "def") != "def" {
		t.Fatal("MayString default")
	}
	if cfg.MayInt("I", 42) != 42 {
		t.Fatal("MayInt default")
	}
	if cfg.MayBool("B", true) != true {
		t.Fatal("MayBool default")
	}
	if cfg.MayDuration("D", 5*time.Second) != 5*time.Second {
		t.Fatal("MayDuration default")
	}
}

func TestMayInvalidFallsBack(t *testing.T) {
	t.Setenv("TESTCFG_BAD_I", "not-a-number")
	t.Setenv("TESTCFG_BAD_D", "soon")
	cfg := New().Prefix("TESTCFG_BAD_")
	if cfg.MayInt("I", 9) != 9 {
		t.Fatal("invalid int must fall back")
	}
	if cfg.MayDuration("D", time.Minute) != time.Minute {
		t.Fatal("invalid duration must fall back")
	}
}

func TestMayDurationParses(t *testing.T) {
	t.Setenv("TESTCFG_DUR_D", "150ms")
	cfg := New().Prefix("TESTCFG_DUR_")
	if got := cfg.MayDuration("D", 0); got != 150*time.Millisecond {
		t.Fatalf("got %v", got)
	}
}

func TestMustPanicsWhenMissing(t *testing.T) {
	cfg := New().Prefix("TESTCFG_MISSING_")
	testkit.MustPanic(t, func() { cfg.MustString("NOPE") })
	testkit.MustPanic(t, func() { cfg.MustInt("NOPE") })
	testkit.MustPanic(t, func() { cfg.Require("NOPE") })
}

func TestMustReadsValue(t *testing.T) {
	t.Setenv("TESTCFG_MUST_URL", "https://example.test")
	cfg := New().Prefix("TESTCFG_MUST_")
	testkit.MustNotPanic(t, func() {
		if cfg.MustString("URL") != "https://example.test" {
			t.Fatal("MustString value")
		}
	})
}

func TestMayCSV(t *testing.T) {
	t.Setenv("TESTCFG_CSV_LIST", "a, b,,c ")
	cfg := New().Prefix("TESTCFG_CSV_")
	got := cfg.MayCSV("LIST", nil)
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("got %v", got)
	}
	if def := cfg.MayCSV("EMPTY", []string{"x"}); len(def) != 1 {
		t.Fatalf("default = %v", def)
	}
}
