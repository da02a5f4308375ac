package server

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitFor(t *testing.T) {
	t.Run("returns once the probe succeeds", func(t *testing.T) {
		calls := 0
		err := WaitFor(context.Background(), time.Second, time.Millisecond, func() bool {
			calls++
			return calls == 3
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("probes at least once with a zero budget", func(t *testing.T) {
		calls := 0
		err := WaitFor(context.Background(), 0, time.Millisecond, func() bool {
			calls++
			return true
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("times out within the budget", func(t *testing.T) {
		attempts := 0
		start := time.Now()
		err := WaitFor(context.Background(), 200*time.Millisecond, 20*time.Millisecond,
			func() bool { return false },
			func() { attempts++ })
		elapsed := time.Since(start)

		assert.True(t, errors.Is(err, ErrNotReady))
		assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond)
		assert.Less(t, elapsed, time.Second)
		assert.Greater(t, attempts, 1)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := WaitFor(ctx, time.Minute, 10*time.Millisecond, func() bool { return false }, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestListening(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port

	assert.True(t, Listening(port))
	require.NoError(t, ln.Close())
	assert.False(t, Listening(port))
}

func TestWaitForPort(t *testing.T) {
	port := freePort(t)

	done := make(chan error, 1)
	go func() {
		done <- WaitForPort(context.Background(), port, 5*time.Second, 10*time.Millisecond, nil)
	}()

	time.Sleep(50 * time.Millisecond)
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	require.NoError(t, err)
	defer ln.Close()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("WaitForPort did not return after the port started listening")
	}
}
