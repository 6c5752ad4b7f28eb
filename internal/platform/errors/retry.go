package errors

import (
	stderrs "errors"
	"io"
	"net"
	"strings"
	"syscall"
)

// Retryable reports whether the error represents a transient condition where
// retrying the same unit of work may succeed. Rate-limit signals are not
// retryable here; they are a flow-control condition handled by rotation
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	switch CodeOf(err) {
	case ErrorCodeTransport, ErrorCodeUnavailable:
		return true
	case ErrorCodeRateLimited, ErrorCodeDecode, ErrorCodeConfig,
		ErrorCodeNotFound, ErrorCodeInvalidArgument:
		return false
	}
	return IsTransport(err)
}

// IsTransport reports whether err looks like a connection-level failure:
// reset/refused connections, timeouts, or a stream cut mid-body (the
// chunked-encoding failure mode)
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if stderrs.Is(err, syscall.ECONNRESET) || stderrs.Is(err, syscall.ECONNREFUSED) ||
		stderrs.Is(err, syscall.EPIPE) {
		return true
	}
	var ne net.Error
	if stderrs.As(err, &ne) {
		return true
	}
	// net/http wraps body read failures in plain errors; match the usual texts
	s := err.Error()
	return strings.Contains(s, "connection reset") ||
		strings.Contains(s, "unexpected EOF") ||
		strings.Contains(s, "http2: server sent GOAWAY")
}
