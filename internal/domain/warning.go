package domain

// WarningRecord is one line of captured stderr carrying the warning marker
type WarningRecord struct {
	Line    string `json:"line"`
	Project bool   `json:"project"` // Originates from the project's own source, outside the dependency dir
}
