// Package snapshot persists the entity store as CSV files and loads them
// back for the enrichment phase. Numeric fields are blank when unknown and
// booleans render as 1 or blank; legacy sentinel values (-1, 0/1 booleans)
// are accepted on load
package snapshot

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/carlospolop/github-archive-scraper/internal/core/entity"
	perr "github.com/carlospolop/github-archive-scraper/internal/platform/errors"
)

// Snapshot file names inside the output folder
const (
	ReposFile = "repos.csv"
	UsersFile = "users.csv"
)

var (
	repoHeader = []string{"owner", "repo", "stars", "forks", "watchers", "deleted", "private", "archived", "disabled"}
	userHeader = []string{"user", "repos_collab", "deleted", "site_admin", "hireable", "email", "company", "github_star"}
)

// RepoSink appends repository rows incrementally. Appends from concurrent
// enrichment workers serialize on the sink mutex so no two batches ever
// interleave
type RepoSink struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// CreateRepoSink truncates dir/repos.csv and writes the header row
func CreateRepoSink(dir string) (*RepoSink, error) {
	return createRepoSink(dir, ReposFile)
}

func createRepoSink(dir, name string) (*RepoSink, error) {
	f, w, err := createCSV(dir, name, repoHeader)
	if err != nil {
		return nil, err
	}
	return &RepoSink{f: f, w: w}, nil
}

// Append writes one batch of repository rows under the sink lock
func (s *RepoSink) Append(repos []entity.Repository) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range repos {
		if err := s.w.Write(repoRow(r)); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "write repository row")
		}
	}
	s.w.Flush()
	return perr.WrapIf(s.w.Error(), perr.ErrorCodeUnknown, "flush repository rows")
}

// Close flushes and closes the sink
func (s *RepoSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.f.Close()
		return err
	}
	return s.f.Close()
}

// UserSink appends user rows incrementally under a sink mutex
type UserSink struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// CreateUserSink truncates dir/users.csv and writes the header row
func CreateUserSink(dir string) (*UserSink, error) {
	return createUserSink(dir, UsersFile)
}

func createUserSink(dir, name string) (*UserSink, error) {
	f, w, err := createCSV(dir, name, userHeader)
	if err != nil {
		return nil, err
	}
	return &UserSink{f: f, w: w}, nil
}

// Append writes one batch of user rows under the sink lock
func (s *UserSink) Append(users []entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		if err := s.w.Write(userRow(u)); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "write user row")
		}
	}
	s.w.Flush()
	return perr.WrapIf(s.w.Error(), perr.ErrorCodeUnknown, "flush user rows")
}

// Close flushes and closes the sink
func (s *UserSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.f.Close()
		return err
	}
	return s.f.Close()
}

// WriteRepos writes a full repository snapshot in one pass
func WriteRepos(dir string, repos []entity.Repository) error {
	return WriteReposNamed(dir, ReposFile, repos)
}

// WriteReposNamed writes repository rows to an arbitrary file in the
// snapshot schema; report generation uses it for derived views
func WriteReposNamed(dir, name string, repos []entity.Repository) error {
	s, err := createRepoSink(dir, name)
	if err != nil {
		return err
	}
	if err := s.Append(repos); err != nil {
		_ = s.Close()
		return err
	}
	return s.Close()
}

// WriteUsers writes a full user snapshot in one pass
func WriteUsers(dir string, users []entity.User) error {
	return WriteUsersNamed(dir, UsersFile, users)
}

// WriteUsersNamed writes user rows to an arbitrary file in the snapshot
// schema
func WriteUsersNamed(dir, name string, users []entity.User) error {
	s, err := createUserSink(dir, name)
	if err != nil {
		return err
	}
	if err := s.Append(users); err != nil {
		_ = s.Close()
		return err
	}
	return s.Close()
}

// LoadRepos reads dir/repos.csv back into records
func LoadRepos(dir string) ([]entity.Repository, error) {
	rows, err := readCSV(dir, ReposFile, len(repoHeader))
	if err != nil {
		return nil, err
	}
	out := make([]entity.Repository, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.Repository{
			FullName: row[0] + "/" + row[1],
			Stars:    parseCount(row[2]),
			Forks:    parseCount(row[3]),
			Watchers: parseCount(row[4]),
			Deleted:  parseBool(row[5]),
			Private:  parseBool(row[6]),
			Archived: parseBool(row[7]),
			Disabled: parseBool(row[8]),
		})
	}
	return out, nil
}

// LoadUsers reads dir/users.csv back into records
func LoadUsers(dir string) ([]entity.User, error) {
	rows, err := readCSV(dir, UsersFile, len(userHeader))
	if err != nil {
		return nil, err
	}
	out := make([]entity.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.User{
			Username:    row[0],
			ReposCollab: splitCollab(row[1]),
			Deleted:     parseBool(row[2]),
			SiteAdmin:   parseBool(row[3]),
			Hireable:    parseBool(row[4]),
			Email:       row[5],
			Company:     row[6],
			GitHubStar:  parseBool(row[7]),
		})
	}
	return out, nil
}

func createCSV(dir, name string, header []string) (*os.File, *csv.Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, perr.Wrapf(err, perr.ErrorCodeConfig, "create output folder %s", dir)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, perr.Wrapf(err, perr.ErrorCodeConfig, "create %s", path)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "write header of %s", path)
	}
	return f, w, nil
}

func readCSV(dir, name string, wantFields int) ([][]string, error) {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, perr.NotFoundf("snapshot %s not found", path)
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = wantFields
	rows, err := r.ReadAll()
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeDecode, "parse %s", path)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil // drop header
}

func repoRow(r entity.Repository) []string {
	owner, name := entity.SplitFullName(r.FullName)
	return []string{
		owner, name,
		countField(r.Stars), countField(r.Forks), countField(r.Watchers),
		boolField(r.Deleted), boolField(r.Private), boolField(r.Archived), boolField(r.Disabled),
	}
}

func userRow(u entity.User) []string {
	return []string{
		u.Username,
		strings.Join(u.ReposCollab, ","),
		boolField(u.Deleted), boolField(u.SiteAdmin), boolField(u.Hireable),
		u.Email, u.Company,
		boolField(u.GitHubStar),
	}
}

// countField renders unknown as blank rather than a sentinel
func countField(c entity.Count) string {
	if !c.Known {
		return ""
	}
	return strconv.Itoa(c.Value)
}

// boolField renders true as 1 and false as blank, never 0
func boolField(b bool) string {
	if b {
		return "1"
	}
	return ""
}

// parseCount accepts blank or the legacy -1 sentinel as unknown
func parseCount(s string) entity.Count {
	s = strings.TrimSpace(s)
	if s == "" || s == "-1" {
		return entity.Count{}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return entity.Count{}
	}
	return entity.KnownCount(v)
}

// parseBool accepts blank/0/false and 1/true spellings
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true":
		return true
	}
	return false
}

func splitCollab(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
