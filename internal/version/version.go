// Package version parses dotted version fragments embedded in archive
// filenames and compares them.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version is a parsed dotted version, e.g. "1.2.10" -> {1, 2, 10}.
type Version []int

// Parse converts a dotted-integer string into a Version.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	v := make(Version, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("cannot parse version part %q: %w", part, err)
		}

		v = append(v, n)
	}

	return v, nil
}

// Compare returns -1, 0 or 1 ordering a against b lexicographically.
// A shorter version that is a prefix of a longer one compares lower,
// so 1.2 < 1.2.0.
func Compare(a, b Version) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}

	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}

	return 0
}

// Matcher extracts versions from archive filenames of one distinguished
// package, e.g. "One.repo-1.2.0.zip".
type Matcher struct {
	re *regexp.Regexp
}

func NewMatcher(packageName string) *Matcher {
	return &Matcher{
		re: regexp.MustCompile(`^` + regexp.QuoteMeta(packageName) + `-(\d+(?:\.\d+)*)\.zip$`),
	}
}

// Match returns the version embedded in fileName, or false when the name
// does not belong to the matcher's package.
func (m *Matcher) Match(fileName string) (Version, bool) {
	groups := m.re.FindStringSubmatch(fileName)
	if groups == nil {
		return nil, false
	}

	v, err := Parse(groups[1])
	if err != nil {
		return nil, false
	}

	return v, true
}
