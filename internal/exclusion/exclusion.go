// Package exclusion loads keys that must never be sampled.
package exclusion

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/model"
)

const maxLineSize = 1 << 20

// FileError reports an exclusion file that could not be read or parsed.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("exclusion file %q: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Set holds excluded keys.
type Set map[string]struct{}

// Load reads one key per line from path. Blank lines are ignored.
func Load(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	defer f.Close()

	set, err := Parse(f)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	return set, nil
}

// Parse reads one key per line from r. Only line terminators (LF or CRLF) are
// stripped, since keys may begin or end with spaces. Empty lines are ignored.
func Parse(r io.Reader) (Set, error) {
	set := make(Set)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		set[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read keys: %w", err)
	}

	return set, nil
}

// Excludes reports whether key is excluded. An entry matches either the full
// key or the key relative to prefix. The relative form only applies on a "/"
// boundary, so prefix "img" never strips "img2/a" down to "2/a".
func (s Set) Excludes(key model.ObjectKey, prefix string) bool {
	if len(s) == 0 {
		return false
	}
	if _, ok := s[string(key)]; ok {
		return true
	}
	if prefix == "" {
		return false
	}
	rel, found := strings.CutPrefix(string(key), prefix)
	if !found {
		return false
	}
	if !strings.HasSuffix(prefix, "/") {
		if rel, found = strings.CutPrefix(rel, "/"); !found {
			return false
		}
	}
	if rel == "" {
		return false
	}
	_, ok := s[rel]
	return ok
}

// Apply returns the keys not excluded by s, preserving order.
func Apply(keys model.KeySet, s Set, prefix string) model.KeySet {
	if len(s) == 0 {
		return keys
	}
	out := make(model.KeySet, 0, len(keys))
	for _, k := range keys {
		if !s.Excludes(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}
