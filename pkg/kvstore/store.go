// Package kvstore persists installation decisions as a flat, human-editable
// KEY="value" file shared by every stage.
package kvstore

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/archstep/archstep/pkg/errors"
	"github.com/archstep/archstep/pkg/filesystem"
	"github.com/archstep/archstep/pkg/logging"
	"github.com/archstep/archstep/pkg/types"
	"github.com/gobwas/glob"
	"github.com/joho/godotenv"
)

const header = "# archstep installation state.\n" +
	"# One KEY=\"value\" per line, values use Go string escaping.\n" +
	"# Safe to edit by hand between stages.\n"

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SkippedLine records a line that could not be decoded on Load
type SkippedLine struct {
	Line   int
	Text   string
	Reason string
}

// Store is an in-memory set of configuration entries
type Store struct {
	entries map[string]string
	skipped []SkippedLine
}

// New returns an empty store
func New() *Store {
	return &Store{entries: make(map[string]string)}
}

// ValidKey reports whether key can be stored
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// Set writes or overwrites key
func (s *Store) Set(key, value string) error {
	if !ValidKey(key) {
		return errors.Newf(errors.ErrInvalidInput, "invalid key %q", key).
			WithReason("keys become variable names in the state file").
			WithRemedy("use letters, digits and underscores, not starting with a digit")
	}
	s.entries[key] = value
	return nil
}

// Get returns the value of key, or def if it was never set
func (s *Store) Get(key, def string) string {
	if v, ok := s.entries[key]; ok {
		return v
	}
	return def
}

// Lookup returns the value of key and whether it was set
func (s *Store) Lookup(key string) (string, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// SetList stores values space separated
func (s *Store) SetList(key string, values []string) error {
	return s.Set(key, strings.Join(values, " "))
}

// GetList splits a space separated value. A missing key yields nil.
func (s *Store) GetList(key string) []string {
	v, ok := s.entries[key]
	if !ok {
		return nil
	}
	return strings.Fields(v)
}

// Keys returns every key in sorted order
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries
func (s *Store) Len() int {
	return len(s.entries)
}

// Merge copies every entry of other into s; other's values win
func (s *Store) Merge(other *Store) {
	if other == nil {
		return
	}
	for k, v := range other.entries {
		s.entries[k] = v
	}
}

// Clone returns an independent copy
func (s *Store) Clone() *Store {
	c := New()
	c.Merge(s)
	return c
}

// Equal reports whether both stores hold exactly the same entries
func (s *Store) Equal(other *Store) bool {
	if other == nil || len(s.entries) != len(other.entries) {
		return false
	}
	for k, v := range s.entries {
		if ov, ok := other.entries[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Match returns the sorted keys matching a glob pattern such as "EFI_*"
func (s *Store) Match(pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid pattern %q", pattern)
	}
	var keys []string
	for _, k := range s.Keys() {
		if g.Match(k) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Skipped returns the lines the last Load could not decode
func (s *Store) Skipped() []SkippedLine {
	return s.skipped
}

// Load reads the store at path. A missing file yields an empty store.
// Undecodable lines are logged and skipped.
func Load(fs types.FS, path string) (*Store, error) {
	logger := logging.GetLogger("kvstore")
	s := New()

	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("path", path).Msg("No state file yet, starting empty")
			return s, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read state file %s", path)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, reason := decodeLine(line)
		if reason != "" {
			logger.Warn().
				Str("path", path).
				Int("line", lineNo).
				Str("reason", reason).
				Msg("Skipping malformed state line")
			s.skipped = append(s.skipped, SkippedLine{Line: lineNo, Text: line, Reason: reason})
			continue
		}
		s.entries[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to scan state file %s", path)
	}

	logger.Debug().Str("path", path).Int("entries", s.Len()).Msg("Loaded state file")
	return s, nil
}

// decodeLine returns the entry of one non-blank, non-comment line, or the
// reason it was rejected.
func decodeLine(line string) (key, value, reason string) {
	body := strings.TrimPrefix(line, "export ")
	eq := strings.IndexByte(body, '=')
	if eq < 0 {
		return "", "", "missing '='"
	}
	key = strings.TrimSpace(body[:eq])
	if !ValidKey(key) {
		return "", "", fmt.Sprintf("invalid key %q", key)
	}
	raw := strings.TrimSpace(body[eq+1:])

	if strings.HasPrefix(raw, `"`) {
		if v, err := strconv.Unquote(raw); err == nil {
			return key, v, ""
		}
	}

	// Lines written by hand or by the older shell tooling
	parsed, err := godotenv.Unmarshal(body)
	if err != nil {
		return "", "", err.Error()
	}
	v, ok := parsed[key]
	if !ok {
		return "", "", "unparseable value"
	}
	return key, v, ""
}

// Encode renders the store in its file format
func (s *Store) Encode() []byte {
	var b bytes.Buffer
	b.WriteString(header)
	for _, k := range s.Keys() {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.Quote(s.entries[k]))
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// Save writes the store to path atomically
func (s *Store) Save(fs types.FS, path string) error {
	if err := filesystem.WriteAtomic(fs, path, s.Encode(), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to save state file %s", path)
	}
	logger := logging.GetLogger("kvstore")
	logger.Debug().Str("path", path).Int("entries", s.Len()).Msg("Saved state file")
	return nil
}
