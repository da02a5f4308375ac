package domain

import "time"

// RunSummary describes one completed (or aborted) run, persisted for the warnings viewer
type RunSummary struct {
	Files           []string        `json:"files"`
	Versions        []string        `json:"versions,omitempty"`
	Passthrough     []string        `json:"passthrough,omitempty"`
	ServersStarted  bool            `json:"servers_started"`
	BaseURL         string          `json:"base_url,omitempty"`
	ProxyURL        string          `json:"proxy_url,omitempty"`
	ExitCode        int             `json:"exit_code"`
	Error           string          `json:"error,omitempty"`
	Warnings        []WarningRecord `json:"warnings"`
	ProjectWarnings int             `json:"project_warnings"`
	Duration        string          `json:"duration"`
	DurationSeconds float64         `json:"duration_seconds"`
	Timestamp       string          `json:"timestamp"`
}

// SetDuration records the run duration in both human and numeric form
func (s *RunSummary) SetDuration(d time.Duration) {
	s.Duration = d.String()
	s.DurationSeconds = d.Seconds()
}
