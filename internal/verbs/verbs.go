// Package verbs loads the set of reporting verbs: words treated as
// equivalent to "say" when attributing a statement to a speaker.
package verbs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrEmpty is returned when a verb resource contains no verbs
var ErrEmpty = errors.New("no reporting verbs")

// Set is a set of reporting verb surface forms
type Set map[string]struct{}

// NewSet builds a set from the given verbs, ignoring blanks
func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		s[w] = struct{}{}
	}
	return s
}

// Contains reports whether word is a reporting verb
func (s Set) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Len returns the number of verbs
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the verbs in lexical order
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Parse reads whitespace separated verbs from r. Lines starting with '#'
// are comments.
func Parse(r io.Reader) (Set, error) {
	s := make(Set)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, w := range strings.Fields(line) {
			s[w] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan verbs: %w", err)
	}

	if len(s) == 0 {
		return nil, ErrEmpty
	}
	return s, nil
}

// Load reads a verb file
func Load(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open verbs: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
