package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testrig/internal/config"
)

func TestListCommand_MarksAdapterTests(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"test/adapters/net_http_test.rb", "test/request_test.rb"} {
		path := filepath.Join(dir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("def test_get\nend\n"), 0644))
	}
	cfg := config.New()
	cfg.ProjectPath = dir

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, NewListCommand(cfg).Execute(cmd, []string{"adapters"}))

	assert.Contains(t, out.String(), "Found 1 test file(s):")
	assert.Contains(t, out.String(), "└── test/adapters/net_http_test.rb [A]")
	assert.NotContains(t, out.String(), "request_test.rb")
}
