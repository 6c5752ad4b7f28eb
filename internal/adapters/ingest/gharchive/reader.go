package gharchive

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"

	perr "github.com/carlospolop/github-archive-scraper/internal/platform/errors"
	"github.com/carlospolop/github-archive-scraper/internal/platform/logger"
)

const (
	maxScanTokenSize = 32 * 1024 * 1024
	sniffSize        = 512
)

var gzipMagic = []byte{0x1f, 0x8b}

// noContentMarker appears in the storage backend's error document for an
// hour that was never archived; such shards yield zero lines
const noContentMarker = "NoSuchKey"

// Reader streams EventEnvelope items from a shard byte stream
type Reader struct {
	rc      io.ReadCloser
	gz      *gzip.Reader
	sc      *bufio.Scanner
	err     error
	empty   bool
	events  int
	skipped int
	bytes   int64
}

// NewReader wraps a shard stream. Gzip is detected by magic bytes; plain
// newline-JSON passes through untouched. A stream holding the backend's
// no-content document produces a reader that immediately reports EOF
func NewReader(rc io.ReadCloser) (*Reader, error) {
	br := bufio.NewReaderSize(rc, 64*1024)
	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF {
		_ = rc.Close()
		return nil, perr.Wrapf(err, perr.ErrorCodeTransport, "shard read failed")
	}

	rd := &Reader{rc: rc}
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		gz, gerr := gzip.NewReader(br)
		if gerr != nil {
			_ = rc.Close()
			return nil, perr.Wrapf(gerr, perr.ErrorCodeDecode, "shard gzip open failed")
		}
		rd.gz = gz
		rd.sc = newScanner(gz)
	case bytes.Contains(head, []byte(noContentMarker)):
		rd.empty = true
	default:
		rd.sc = newScanner(br)
	}
	return rd, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	buf := make([]byte, 512*1024)
	sc.Buffer(buf, maxScanTokenSize)
	return sc
}

// Next reads the next event; returns io.EOF when done. Malformed lines are
// skipped with a diagnostic and counted in Stats
func (rd *Reader) Next() (EventEnvelope, error) {
	for {
		line, err := rd.NextLine()
		if err != nil {
			return EventEnvelope{}, err
		}
		var env EventEnvelope
		if uerr := json.Unmarshal(line, &env); uerr != nil {
			rd.skipped++
			logger.Named("gharchive").Debug().
				Int("line_bytes", len(line)).
				Err(uerr).
				Msg("skipping malformed line")
			continue
		}
		rd.events++
		return env, nil
	}
}

// NextLine reads the next raw line without decoding; returns io.EOF when done
func (rd *Reader) NextLine() ([]byte, error) {
	if rd.err != nil {
		return nil, rd.err
	}
	if rd.empty {
		rd.err = io.EOF
		return nil, io.EOF
	}
	if !rd.sc.Scan() {
		if err := rd.sc.Err(); err != nil {
			rd.err = perr.Wrapf(err, perr.ErrorCodeDecode, "shard stream failed")
			return nil, rd.err
		}
		rd.err = io.EOF
		return nil, io.EOF
	}
	line := rd.sc.Bytes()
	cp := make([]byte, len(line))
	copy(cp, line)
	rd.bytes += int64(len(cp) + 1) // include newline
	return cp, nil
}

// Close closes the underlying stream
func (rd *Reader) Close() error {
	var first error
	if rd.gz != nil {
		if err := rd.gz.Close(); err != nil {
			first = err
		}
	}
	if rd.rc != nil {
		if err := rd.rc.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Stats returns events decoded, malformed lines skipped, and uncompressed
// bytes read so far
func (rd *Reader) Stats() (events, skipped int, bytes int64) {
	return rd.events, rd.skipped, rd.bytes
}
