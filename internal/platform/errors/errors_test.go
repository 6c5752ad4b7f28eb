package errors

import (
	stderrs "errors"
	"fmt"
	"io"
	"testing"
)

func TestCodeOf(t *testing.T) {
	if CodeOf(NotFoundf("missing")) != ErrorCodeNotFound {
		t.Fatal("NotFoundf code")
	}
	if CodeOf(stderrs.New("plain")) != ErrorCodeUnknown {
		t.Fatal("plain errors default to Unknown")
	}
	if CodeOf(nil) != ErrorCodeUnknown {
		t.Fatal("nil defaults to Unknown")
	}
}

func TestCodeSurvivesWrapping(t *testing.T) {
	inner := RateLimitedf("limited")
	outer := fmt.Errorf("calling api: %w", inner)
	if CodeOf(outer) != ErrorCodeRateLimited {
		t.Fatal("code lost through fmt wrapping")
	}
	if !IsCode(outer, ErrorCodeRateLimited) {
		t.Fatal("IsCode")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := Wrapf(cause, ErrorCodeTransport, "shard read")
	if !stderrs.Is(err, io.ErrUnexpectedEOF) {
		t.Fatal("cause lost")
	}
	if Root(err) != cause {
		t.Fatalf("Root = %v", Root(err))
	}
	if err.Error() != "shard read: unexpected EOF" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestWrapIf(t *testing.T) {
	if WrapIf(nil, ErrorCodeUnknown, "x") != nil {
		t.Fatal("WrapIf(nil) must be nil")
	}
	if WrapIf(stderrs.New("boom"), ErrorCodeDecode, "x") == nil {
		t.Fatal("WrapIf(err) must wrap")
	}
}

func TestWithOp(t *testing.T) {
	err := Configf("bad value")
	tagged := WithOp(err, "enrich.options")
	e, ok := As(tagged)
	if !ok || e.Op() != "enrich.options" {
		t.Fatalf("op = %+v", e)
	}
	// original is untouched
	if orig, _ := As(err); orig.Op() != "" {
		t.Fatal("WithOp mutated the original")
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{Transportf("reset"), true},
		{Unavailablef("502"), true},
		{RateLimitedf("limited"), false},
		{Decodef("bad gzip"), false},
		{Configf("bad env"), false},
		{NotFoundf("missing"), false},
		{InvalidArgf("bad ref"), false},
		{io.ErrUnexpectedEOF, true},
		{stderrs.New("connection reset by peer"), true},
		{stderrs.New("some business error"), false},
		{nil, false},
	}
	for _, c := range cases {
		if got := Retryable(c.err); got != c.want {
			t.Fatalf("Retryable(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestIsTransportWrappedStreamCut(t *testing.T) {
	err := fmt.Errorf("read body: %w", io.ErrUnexpectedEOF)
	if !IsTransport(err) {
		t.Fatal("wrapped unexpected EOF must be transport")
	}
}
