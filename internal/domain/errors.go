package domain

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

var (
	// ErrNoTestsMatched is returned when filter arguments were given but selected nothing
	ErrNoTestsMatched = errors.New("no test files matched the given filters")
	// ErrPortInUse is returned when something already listens on the live server port
	ErrPortInUse = errors.New("port already in use, is another instance running?")
)

// StartupTimeoutError reports a server that did not accept connections within its budget
type StartupTimeoutError struct {
	Name   string
	Port   int
	Budget time.Duration
}

func (e *StartupTimeoutError) Error() string {
	return fmt.Sprintf("%s did not start listening on port %d within %s", e.Name, e.Port, e.Budget)
}

// ExitError carries the exit status of a failed test execution
type ExitError struct {
	Code    int
	Version string
}

func (e *ExitError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("test run for %s exited with status %d", e.Version, e.Code)
	}
	return fmt.Sprintf("test run exited with status %d", e.Code)
}

// WarningPolicyError is returned when warnings originate from the project's own source
type WarningPolicyError struct {
	Count int
}

func (e *WarningPolicyError) Error() string {
	return fmt.Sprintf("%d warning(s) originate from project source", e.Count)
}

// InterruptedError reports a run stopped by SIGINT or SIGTERM
type InterruptedError struct {
	Signal os.Signal
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("interrupted by %s", e.Signal)
}

// SignalExitCode is the shell convention for death by signal: 128+n
func SignalExitCode(sig os.Signal) int {
	if n, ok := sig.(syscall.Signal); ok {
		return 128 + int(n)
	}
	return 1
}

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var interrupted *InterruptedError
	if errors.As(err, &interrupted) {
		return SignalExitCode(interrupted.Signal)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	return 1
}
