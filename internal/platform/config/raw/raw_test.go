package raw

import "testing"

func TestGetWithDefault(t *testing.T) {
	t.Setenv("RAWTEST_LEVEL", "debug")
	c := New().Prefix("RAWTEST_")
	if got := c.Get("LEVEL", "info"); got != "debug" {
		t.Fatalf("got %q", got)
	}
	if got := c.Get("MISSING", "info"); got != "info" {
		t.Fatalf("got %q", got)
	}
}

func TestGetBool(t *testing.T) {
	t.Setenv("RAWTEST_CALLER", "1")
	t.Setenv("RAWTEST_BROKEN", "maybe")
	c := New().Prefix("RAWTEST_")
	if !c.GetBool("CALLER", false) {
		t.Fatal("1 must parse true")
	}
	if c.GetBool("BROKEN", false) {
		t.Fatal("invalid bool must fall back")
	}
	if !c.GetBool("MISSING", true) {
		t.Fatal("missing must use default")
	}
}

func TestGetInt(t *testing.T) {
	t.Setenv("RAWTEST_N", "12")
	c := New().Prefix("RAWTEST_")
	if got := c.GetInt("N", 1); got != 12 {
		t.Fatalf("got %d", got)
	}
	if got := c.GetInt("MISSING", 3); got != 3 {
		t.Fatalf("got %d", got)
	}
}
