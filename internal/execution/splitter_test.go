package execution

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineSplitter(t *testing.T) {
	var forward, archive bytes.Buffer
	s := NewLineSplitter("warning:", &forward, &archive)

	chunks := []string{
		"lib/a.rb:1: warn",
		"ing: shadowing outer variable\nfirst normal line\nsec",
		"ond normal line\n",
		"gems/b.rb:9: warning: deprecated\n",
		"no newline at end",
	}
	for _, c := range chunks {
		n, err := s.Write([]byte(c))
		require.NoError(t, err)
		assert.Equal(t, len(c), n)
	}

	assert.Equal(t, "first normal line\nsecond normal line\n", forward.String(),
		"warning lines are withheld and partial lines wait for their newline")

	require.NoError(t, s.Flush())

	assert.Equal(t, "first normal line\nsecond normal line\nno newline at end", forward.String())
	assert.Equal(t,
		"lib/a.rb:1: warning: shadowing outer variable\n"+
			"first normal line\n"+
			"second normal line\n"+
			"gems/b.rb:9: warning: deprecated\n"+
			"no newline at end",
		archive.String())
}

func TestLineSplitter_EmptyMarkerForwardsEverything(t *testing.T) {
	var forward, archive bytes.Buffer
	s := NewLineSplitter("", &forward, &archive)

	_, err := s.Write([]byte("a: warning: b\nc\n"))
	require.NoError(t, err)
	require.NoError(t, s.Flush())

	assert.Equal(t, "a: warning: b\nc\n", forward.String())
	assert.Equal(t, forward.String(), archive.String())
}
