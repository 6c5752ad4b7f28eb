package gharchive

import (
	"bufio"
	"os"
	"strings"

	perr "github.com/carlospolop/github-archive-scraper/internal/platform/errors"
)

// ReadShardList loads shard references from a text file, one per line.
// Blank lines and #-comments are skipped
func ReadShardList(path string) ([]ShardRef, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perr.NotFoundf("shard list %s not found", path)
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeConfig, "open shard list %s", path)
	}
	defer func() { _ = f.Close() }()

	var refs []ShardRef
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		refs = append(refs, ShardRef(line))
	}
	if err := sc.Err(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDecode, "read shard list %s", path)
	}
	return refs, nil
}
