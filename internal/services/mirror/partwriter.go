package mirror

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	perr "github.com/carlospolop/github-archive-scraper/internal/platform/errors"
)

// partWriter appends newline-terminated lines to prefix_N.json files,
// opening the next part when the current one would pass the split threshold.
// Files open lazily so empty shards leave nothing behind
type partWriter struct {
	dir    string
	prefix string
	max    int64

	n    int
	f    *os.File
	bw   *bufio.Writer
	size int64
}

func newPartWriter(dir, prefix string, maxBytes int64) *partWriter {
	return &partWriter{dir: dir, prefix: prefix, max: maxBytes}
}

// Write appends one line, rotating first if the part would overflow
func (p *partWriter) Write(line []byte) error {
	need := int64(len(line) + 1)
	if p.f != nil && p.size > 0 && p.size+need > p.max {
		if err := p.closeCurrent(); err != nil {
			return err
		}
	}
	if p.f == nil {
		if err := p.openNext(); err != nil {
			return err
		}
	}
	if _, err := p.bw.Write(line); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "write part %s", p.name(p.n-1))
	}
	if err := p.bw.WriteByte('\n'); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "write part %s", p.name(p.n-1))
	}
	p.size += need
	return nil
}

// Parts returns how many part files were opened so far
func (p *partWriter) Parts() int { return p.n }

// Close flushes and closes the current part
func (p *partWriter) Close() error {
	if p.f == nil {
		return nil
	}
	return p.closeCurrent()
}

func (p *partWriter) openNext() error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeConfig, "create mirror folder %s", p.dir)
	}
	path := filepath.Join(p.dir, p.name(p.n))
	f, err := os.Create(path)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "create part %s", path)
	}
	p.f = f
	p.bw = bufio.NewWriterSize(f, 256*1024)
	p.size = 0
	p.n++
	return nil
}

func (p *partWriter) closeCurrent() error {
	if err := p.bw.Flush(); err != nil {
		_ = p.f.Close()
		p.f, p.bw = nil, nil
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "flush part %s", p.name(p.n-1))
	}
	err := p.f.Close()
	p.f, p.bw = nil, nil
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "close part %s", p.name(p.n-1))
	}
	return nil
}

func (p *partWriter) name(i int) string {
	return fmt.Sprintf("%s_%d.json", p.prefix, i)
}
