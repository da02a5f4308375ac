package warnings

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testrig/internal/domain"
)

const project = "/home/dev/client"

func TestClassifier_IsProject(t *testing.T) {
	c := NewClassifier("warning:", project, "vendor")

	tests := []struct {
		name     string
		line     string
		expected bool
	}{
		{name: "project source", line: project + "/lib/client/request.rb:12: warning: assigned but unused variable - x", expected: true},
		{name: "project test", line: project + "/test/helper.rb:3: warning: method redefined", expected: true},
		{name: "vendored dependency", line: project + "/vendor/bundle/ruby/3.3.0/gems/rack-3.0/lib/rack.rb:1: warning: loading in progress", expected: false},
		{name: "system gem", line: "/usr/lib/ruby/gems/3.3.0/gems/excon-1.0/lib/excon.rb:5: warning: ambiguous", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.IsProject(tt.line))
		})
	}
}

func TestClassifier_Classify(t *testing.T) {
	color.NoColor = true
	c := NewClassifier("warning:", project, "vendor")

	t.Run("dependency warnings only", func(t *testing.T) {
		capture := strings.Join([]string{
			project + "/vendor/bundle/gems/rack/lib/rack.rb:1: warning: deprecated",
			"/usr/lib/ruby/3.3.0/net/http.rb:9: warning: constant redefined",
			project + "/lib/client.rb:40:in `get': boom (RuntimeError)",
			"",
		}, "\n")

		report, err := c.Classify(strings.NewReader(capture))
		require.NoError(t, err)

		assert.Len(t, report.Records, 2, "only warning-marked lines are records")
		assert.Empty(t, report.ProjectWarnings())
		assert.NoError(t, report.Err())

		var out bytes.Buffer
		report.Print(&out)
		assert.Equal(t, "0 warning(s) from project source (2 total)\n", out.String())
	})

	t.Run("project warning fails the run", func(t *testing.T) {
		line := project + "/lib/client/connection.rb:88: warning: method redefined; discarding old url_prefix"
		capture := project + "/vendor/gems/x.rb:1: warning: ignored\n" + line + "\n"

		report, err := c.Classify(strings.NewReader(capture))
		require.NoError(t, err)

		found := report.ProjectWarnings()
		require.Len(t, found, 1)
		assert.Equal(t, line, found[0].Line)

		var policyErr *domain.WarningPolicyError
		require.True(t, errors.As(report.Err(), &policyErr))
		assert.GreaterOrEqual(t, policyErr.Count, 1)

		var out bytes.Buffer
		report.Print(&out)
		assert.Equal(t, line+"\n1 warning(s) from project source (2 total)\n", out.String())
	})
}

func TestClassifier_ClassifyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "warnings.log")
	require.NoError(t, os.WriteFile(path, []byte(dir+"/lib/a.rb:1: warning: x\n"), 0644))

	report, err := NewClassifier("warning:", dir, "vendor").ClassifyFile(path)
	require.NoError(t, err)
	assert.Len(t, report.ProjectWarnings(), 1)

	_, err = NewClassifier("warning:", dir, "vendor").ClassifyFile(filepath.Join(dir, "missing.log"))
	assert.Error(t, err)
}
