package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	v, err := Parse("1.2.10")
	require.NoError(t, err)
	assert.Equal(t, Version{1, 2, 10}, v)

	v, err = Parse("3")
	require.NoError(t, err)
	assert.Equal(t, Version{3}, v)

	_, err = Parse("1.2.beta")
	assert.Error(t, err)

	_, err = Parse("")
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"equal", "1.2.1", "1.2.1", 0},
		{"patch greater", "1.2.1", "1.2.0", 1},
		{"minor smaller", "1.1.9", "1.2.0", -1},
		{"numeric not lexical", "1.10.0", "1.9.0", 1},
		{"prefix is smaller", "1.2", "1.2.0", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Parse(tt.a)
			require.NoError(t, err)
			b, err := Parse(tt.b)
			require.NoError(t, err)

			assert.Equal(t, tt.want, Compare(a, b))
			assert.Equal(t, -tt.want, Compare(b, a))
		})
	}
}

func TestMatcher(t *testing.T) {
	m := NewMatcher("One.repo")

	v, ok := m.Match("One.repo-1.2.1.zip")
	require.True(t, ok)
	assert.Equal(t, Version{1, 2, 1}, v)

	v, ok = m.Match("One.repo-2.zip")
	require.True(t, ok)
	assert.Equal(t, Version{2}, v)

	for _, name := range []string{
		"One.repo-1.2.1.tar",
		"One.repo.zip",
		"OneXrepo-1.2.1.zip", // the dot must not act as a wildcard
		"plugin.sample-2.1.0.zip",
		"prefix-One.repo-1.2.1.zip",
	} {
		_, ok := m.Match(name)
		assert.False(t, ok, name)
	}
}
