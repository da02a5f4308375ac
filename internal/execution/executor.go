package execution

import (
	"context"

	"testrig/internal/domain"
)

// Executor runs a selected test file set
type Executor interface {
	Execute(ctx context.Context, files domain.TestFileSet, passthrough []string, env []string) error
}
