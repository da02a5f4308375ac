package storage

import (
	"testrig/internal/config"
	"testrig/internal/domain"
)

// Storage persists and loads the last run's summary (e.g. for the warnings viewer).
type Storage interface {
	Save(summary *domain.RunSummary) error
	Load() (*domain.RunSummary, error)
}

// JSONStorage stores the summary in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
