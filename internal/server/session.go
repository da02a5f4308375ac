package server

import (
	"fmt"
	"os"
	"sync"
	"syscall"

	"testrig/internal/config"
	"testrig/internal/domain"
)

// Session owns the running servers until Release
type Session struct {
	Server *Handle
	Proxy  *Handle

	manager *Manager
	once    sync.Once
	signals chan os.Signal
	done    chan struct{}
}

// listenSignals starts queueing SIGINT and SIGTERM for the session, or
// returns nil when the manager leaves signals to its caller
func (m *Manager) listenSignals() chan os.Signal {
	if !m.handleSignals {
		return nil
	}
	signals := make(chan os.Signal, 1)
	m.notify(signals, os.Interrupt, syscall.SIGTERM)
	return signals
}

// newSession takes over the queued signals; one that arrived while the
// servers were spawning is handled as soon as the watcher starts
func (m *Manager) newSession(server, proxy *Handle, signals chan os.Signal) *Session {
	s := &Session{
		Server:  server,
		Proxy:   proxy,
		manager: m,
		signals: signals,
		done:    make(chan struct{}),
	}
	if signals != nil {
		go s.watchSignals()
	}
	return s
}

func (s *Session) watchSignals() {
	select {
	case sig := <-s.signals:
		s.manager.logger.Warn("interrupted, stopping servers", "signal", sig.String())
		s.Release(true)
		s.manager.exit(domain.SignalExitCode(sig))
	case <-s.done:
	}
}

// Env returns the variables adapter tests use to reach the servers
func (s *Session) Env() []string {
	cfg := s.manager.config
	env := []string{
		config.EnvLive + "=" + cfg.BaseURL(),
		config.EnvLiveProxy + "=" + cfg.ProxyURL(),
	}
	if cfg.SSL {
		env = append(env,
			config.EnvSSLFile+"="+cfg.SSLCert,
			config.EnvSSLKey+"="+cfg.SSLKey,
		)
	}
	return env
}

// Release stops both servers. Only the first call has any effect; failed
// is the outcome of the run and controls the CI log dump.
func (s *Session) Release(failed bool) {
	s.once.Do(func() {
		m := s.manager
		if s.signals != nil {
			m.stopNotify(s.signals)
		}
		close(s.done)

		handles := s.handles()
		if failed && m.config.CI {
			for _, h := range handles {
				m.dumpLog(h)
			}
		}
		for _, h := range handles {
			m.stop(h)
		}
		m.logger.Debug(fmt.Sprintf("released %d server(s)", len(handles)))
	})
}

func (s *Session) handles() []*Handle {
	var handles []*Handle
	for _, h := range []*Handle{s.Server, s.Proxy} {
		if h != nil {
			handles = append(handles, h)
		}
	}
	return handles
}
