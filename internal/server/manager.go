package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"

	"testrig/internal/config"
	"testrig/internal/domain"
)

const defaultGracePeriod = 5 * time.Second

// Indicator reports readiness polling progress
type Indicator interface {
	Tick()
	Done()
}

// NoopIndicator shows nothing
type NoopIndicator struct{}

func (NoopIndicator) Tick() {}
func (NoopIndicator) Done() {}

// Handle is one spawned background server
type Handle struct {
	Name    string
	Port    int
	LogPath string
	Started bool

	cmd    *exec.Cmd
	exited chan struct{}
}

// Pid returns the server's process ID
func (h *Handle) Pid() int {
	return h.cmd.Process.Pid
}

// Exited reports whether the process has been reaped
func (h *Handle) Exited() bool {
	select {
	case <-h.exited:
		return true
	default:
		return false
	}
}

// Manager starts the live and proxy servers adapter tests depend on
type Manager struct {
	config      *config.Config
	logger      *slog.Logger
	out         io.Writer
	indicator   func(description string) Indicator
	terminate   func(p *os.Process) error
	exit        func(code int)
	gracePeriod time.Duration

	handleSignals bool
	notify        func(c chan<- os.Signal, sig ...os.Signal)
	stopNotify    func(c chan<- os.Signal)
}

// Option configures a Manager
type Option func(*Manager)

// WithOutput sets where captured server logs are dumped
func WithOutput(w io.Writer) Option {
	return func(m *Manager) { m.out = w }
}

// WithLogger sets the diagnostic logger
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithIndicator sets the progress display used while polling
func WithIndicator(f func(description string) Indicator) Option {
	return func(m *Manager) { m.indicator = f }
}

// WithSignalHandling controls whether a session releases the servers and
// exits on SIGINT/SIGTERM. Disable it when the caller cancels Start's
// context on those signals and releases the session itself.
func WithSignalHandling(enabled bool) Option {
	return func(m *Manager) { m.handleSignals = enabled }
}

// NewManager creates a new Manager
func NewManager(cfg *config.Config, opts ...Option) *Manager {
	m := &Manager{
		config:      cfg,
		logger:      slog.Default(),
		out:         os.Stderr,
		indicator:   func(string) Indicator { return NoopIndicator{} },
		terminate:   func(p *os.Process) error { return p.Signal(syscall.SIGTERM) },
		exit:        os.Exit,
		gracePeriod: defaultGracePeriod,

		handleSignals: true,
		notify:        signal.Notify,
		stopNotify:    signal.Stop,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches both servers and waits for the live server to listen.
// The returned Session must be released by the caller; on error nothing is left running.
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	cfg := m.config

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if Listening(cfg.Port) {
		return nil, fmt.Errorf("%w: %d", domain.ErrPortInUse, cfg.Port)
	}

	if cfg.SSL {
		generated, err := EnsureCertificate(cfg.SSLCert, cfg.SSLKey)
		if err != nil {
			return nil, fmt.Errorf("ssl certificate: %w", err)
		}
		if generated {
			m.logger.Info("generated self-signed certificate", "cert", cfg.SSLCert, "key", cfg.SSLKey)
		}
	}

	serverArgs, err := m.serverCommand()
	if err != nil {
		return nil, err
	}
	proxyArgs, err := m.proxyCommand()
	if err != nil {
		return nil, err
	}

	// Signals are queued from here on so none can slip in between the spawns
	signals := m.listenSignals()

	server, err := m.spawn("live server", cfg.Port, cfg.ServerLogPath(), serverArgs)
	if err != nil {
		m.newSession(nil, nil, signals).Release(true)
		return nil, err
	}
	proxy, err := m.spawn("proxy server", cfg.ProxyPort, cfg.ProxyLogPath(), proxyArgs)
	if err != nil {
		m.newSession(server, nil, signals).Release(true)
		return nil, err
	}

	s := m.newSession(server, proxy, signals)

	if err := m.waitReady(ctx, server, cfg.ServerTimeout); err != nil {
		if !errors.Is(err, ErrNotReady) {
			s.Release(true)
			return nil, err
		}
		// In CI the release dumps every log, the server's included
		if !cfg.CI {
			m.dumpLog(server)
		}
		s.Release(true)
		return nil, &domain.StartupTimeoutError{Name: server.Name, Port: server.Port, Budget: cfg.ServerTimeout}
	}

	// The proxy is best effort: its wait only bounds how long we give it
	if err := m.waitReady(ctx, proxy, cfg.ProxyTimeout); err != nil {
		m.logger.Debug("proxy server not ready, continuing", "port", proxy.Port, "err", err)
	}

	return s, nil
}

func (m *Manager) waitReady(ctx context.Context, h *Handle, budget time.Duration) error {
	ind := m.indicator(fmt.Sprintf("Waiting for %s on port %d", h.Name, h.Port))
	defer ind.Done()

	if err := WaitForPort(ctx, h.Port, budget, m.config.ProbeInterval, ind.Tick); err != nil {
		return err
	}
	h.Started = true
	m.logger.Debug("server ready", "name", h.Name, "port", h.Port, "pid", h.Pid())
	return nil
}

func (m *Manager) serverCommand() ([]string, error) {
	cfg := m.config
	if len(cfg.ServerCommand) > 0 {
		return cfg.ServerCommand, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate testrig executable: %w", err)
	}
	args := []string{exe, "serve", "live", "--port", strconv.Itoa(cfg.Port)}
	if cfg.SSL {
		args = append(args, "--cert", cfg.SSLCert, "--key", cfg.SSLKey)
	}
	return args, nil
}

func (m *Manager) proxyCommand() ([]string, error) {
	cfg := m.config
	if len(cfg.ProxyCommand) > 0 {
		return cfg.ProxyCommand, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate testrig executable: %w", err)
	}
	return []string{
		exe, "serve", "proxy",
		"--port", strconv.Itoa(cfg.ProxyPort),
		"--user", cfg.ProxyUser,
		"--password", cfg.ProxyPassword,
	}, nil
}

// spawn starts args in the background with stdout and stderr appended to logPath
func (m *Manager) spawn(name string, port int, logPath string, args []string) (*Handle, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s log: %w", name, err)
	}
	// The child holds its own descriptor once started
	defer logFile.Close()

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = m.config.ProjectPath
	cmd.Env = append(os.Environ(), "PORT="+strconv.Itoa(port))
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	h := &Handle{Name: name, Port: port, LogPath: logPath, cmd: cmd, exited: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(h.exited)
	}()

	m.logger.Debug("spawned server", "name", name, "pid", cmd.Process.Pid, "port", port, "log", logPath)
	return h, nil
}

// stop sends a single termination signal and reaps the process, killing it after the grace period
func (m *Manager) stop(h *Handle) {
	if err := m.terminate(h.cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
		m.logger.Warn("failed to signal server", "name", h.Name, "pid", h.Pid(), "err", err)
	}

	select {
	case <-h.exited:
	case <-time.After(m.gracePeriod):
		m.logger.Warn("server ignored termination, killing", "name", h.Name, "pid", h.Pid())
		_ = h.cmd.Process.Kill()
		<-h.exited
	}
}

func (m *Manager) dumpLog(h *Handle) {
	data, err := os.ReadFile(h.LogPath)
	if err != nil {
		m.logger.Warn("failed to read server log", "path", h.LogPath, "err", err)
		return
	}
	color.New(color.FgYellow).Fprintf(m.out, "==> %s log (%s)\n", h.Name, h.LogPath)
	m.out.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Fprintln(m.out)
	}
}
