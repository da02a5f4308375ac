package execution

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testrig/internal/config"
	"testrig/internal/domain"
)

func helperConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv(helperEnv, "1")
	t.Setenv("RBENV_VERSION", "")

	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	cfg.Runner = []string{os.Args[0]}
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunner_Args(t *testing.T) {
	cfg := config.New()
	cfg.Runner = []string{"ruby", "-w"}
	r := NewRunner(cfg, io.Discard, io.Discard, quietLogger())

	assert.Equal(t,
		[]string{"ruby", "-w", "test/a_test.rb", "test/b_test.rb"},
		r.Args(Invocation{Files: []string{"test/a_test.rb", "test/b_test.rb"}}))

	assert.Equal(t,
		[]string{"ruby", "-w", "test/a_test.rb", "--", "--seed", "42"},
		r.Args(Invocation{Files: []string{"test/a_test.rb"}, Passthrough: []string{"--seed", "42"}}))

	// Building args must not grow the configured runner slice
	assert.Equal(t, []string{"ruby", "-w"}, cfg.Runner)
}

func TestRunner_Run(t *testing.T) {
	cfg := helperConfig(t)
	var stdout, stderr, capture bytes.Buffer
	r := NewRunner(cfg, &stdout, &stderr, quietLogger())

	err := r.Run(context.Background(), Invocation{
		Files:       []string{"test/adapters/net_http_test.rb"},
		Passthrough: []string{"-n", "test_get"},
		Env:         []string{"LIVE=http://localhost:4000"},
	}, &capture)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "args=test/adapters/net_http_test.rb -- -n test_get")
	assert.Contains(t, stdout.String(), "live=http://localhost:4000")

	assert.NotContains(t, stderr.String(), "warning:")
	assert.Contains(t, stderr.String(), "plain stderr line\n")
	assert.Contains(t, stderr.String(), "trailing without newline")

	assert.Contains(t, capture.String(), "warning: method redefined")
	assert.Contains(t, capture.String(), "plain stderr line\n")
	assert.True(t, strings.HasSuffix(capture.String(), "trailing without newline"))
}

func TestRunner_RunPropagatesExitStatus(t *testing.T) {
	cfg := helperConfig(t)
	r := NewRunner(cfg, io.Discard, io.Discard, quietLogger())

	err := r.Run(context.Background(), Invocation{
		Files: []string{"test/a_test.rb"},
		Env:   []string{helperExitEnv + "=3"},
	}, io.Discard)

	var exitErr *domain.ExitError
	require.True(t, errors.As(err, &exitErr), "expected ExitError, got %v", err)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, 3, domain.ExitCode(err))
}

func TestRunner_RunMissingCommand(t *testing.T) {
	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	cfg.Runner = []string{"testrig-no-such-interpreter"}
	r := NewRunner(cfg, io.Discard, io.Discard, quietLogger())

	err := r.Run(context.Background(), Invocation{Files: []string{"a_test.rb"}}, io.Discard)
	require.Error(t, err)

	var exitErr *domain.ExitError
	assert.False(t, errors.As(err, &exitErr))
}

func TestVersionExecutor(t *testing.T) {
	t.Run("single run with the ambient interpreter", func(t *testing.T) {
		cfg := helperConfig(t)
		var stdout, markers bytes.Buffer
		e := NewVersionExecutor(cfg, NewRunner(cfg, &stdout, io.Discard, quietLogger()), io.Discard, &markers)

		require.NoError(t, e.Execute(context.Background(), domain.TestFileSet{"test/a_test.rb"}, nil, nil))

		assert.Equal(t, 1, strings.Count(stdout.String(), "args="))
		assert.Contains(t, stdout.String(), `version=""`)
		assert.Empty(t, markers.String())
	})

	t.Run("repeats once per version with identical passthrough", func(t *testing.T) {
		cfg := helperConfig(t)
		cfg.Versions = []string{"2.7.8", "3.0.6", "3.3.0"}
		var stdout, markers, capture bytes.Buffer
		e := NewVersionExecutor(cfg, NewRunner(cfg, &stdout, io.Discard, quietLogger()), &capture, &markers)

		err := e.Execute(context.Background(), domain.TestFileSet{"test/a_test.rb"}, []string{"--verbose"}, nil)
		require.NoError(t, err)

		assert.Equal(t, "[2.7.8]\n[3.0.6]\n[3.3.0]\n", markers.String())
		assert.Equal(t, 3, strings.Count(stdout.String(), "args=test/a_test.rb -- --verbose live="))
		for _, v := range cfg.Versions {
			assert.Contains(t, stdout.String(), `version="`+v+`"`)
		}
		assert.Equal(t, 3, strings.Count(capture.String(), "warning: method redefined"))
	})

	t.Run("stops at the first failing version", func(t *testing.T) {
		cfg := helperConfig(t)
		cfg.Versions = []string{"2.7.8", "3.0.6"}
		var stdout bytes.Buffer
		e := NewVersionExecutor(cfg, NewRunner(cfg, &stdout, io.Discard, quietLogger()), io.Discard, io.Discard)

		err := e.Execute(context.Background(), domain.TestFileSet{"test/a_test.rb"}, nil, []string{helperExitEnv + "=1"})

		var exitErr *domain.ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, "2.7.8", exitErr.Version)
		assert.Equal(t, 1, strings.Count(stdout.String(), "args="))
	})
}
