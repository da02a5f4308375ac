package server

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"
)

// ErrNotReady is returned when a probe keeps failing until its deadline
var ErrNotReady = errors.New("not ready before deadline")

const dialTimeout = 250 * time.Millisecond

// Listening reports whether something accepts TCP connections on localhost:port
func Listening(port int) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("localhost", strconv.Itoa(port)), dialTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// WaitFor polls probe until it succeeds or budget elapses. The deadline is
// fixed before the first probe and the probe always runs at least once.
// onAttempt, when set, is called after every failed probe.
func WaitFor(ctx context.Context, budget, interval time.Duration, probe func() bool, onAttempt func()) error {
	deadline := time.Now().Add(budget)
	for {
		if probe() {
			return nil
		}
		if onAttempt != nil {
			onAttempt()
		}
		if !time.Now().Before(deadline) {
			return ErrNotReady
		}

		wait := interval
		if remaining := time.Until(deadline); remaining < wait {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// WaitForPort waits until localhost:port accepts connections
func WaitForPort(ctx context.Context, port int, budget, interval time.Duration, onAttempt func()) error {
	return WaitFor(ctx, budget, interval, func() bool { return Listening(port) }, onAttempt)
}
