package ui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testrig/internal/server"
)

func TestSpinnerFactory_QuietOffTerminal(t *testing.T) {
	logFile, err := os.Create(filepath.Join(t.TempDir(), "ci.log"))
	require.NoError(t, err)
	defer logFile.Close()

	var buf bytes.Buffer
	tests := []struct {
		name string
		make func(string) server.Indicator
	}{
		{"buffer", SpinnerFactory(&buf)},
		{"regular file", SpinnerFactory(logFile)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := tt.make("Waiting for live server on port 4000")
			assert.Equal(t, server.NoopIndicator{}, ind)
			ind.Tick()
			ind.Done()
		})
	}

	assert.Empty(t, buf.String())
	info, err := logFile.Stat()
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}
