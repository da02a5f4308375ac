package discovery

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"testrig/internal/domain"
)

// Filter narrows discovered test files by literal paths and substring patterns
type Filter struct {
	fs afero.Fs
}

// NewFilter creates a new Filter over the OS filesystem
func NewFilter() *Filter {
	return NewFilterFs(afero.NewOsFs())
}

// NewFilterFs creates a new Filter that checks literal paths on the given filesystem
func NewFilterFs(fs afero.Fs) *Filter {
	return &Filter{fs: fs}
}

// Select applies the filter arguments to the discovered files.
// An argument naming an existing regular file is taken verbatim; anything else
// selects every discovered path containing it, in discovery order. Results are
// concatenated in argument order without deduplication. With no arguments the
// discovered set is returned unchanged.
func (f *Filter) Select(discovered []string, args []string) (domain.TestFileSet, error) {
	if len(args) == 0 {
		return domain.TestFileSet(discovered), nil
	}

	selected := domain.TestFileSet{}
	for _, arg := range args {
		if f.isRegularFile(arg) {
			selected = append(selected, arg)
			continue
		}
		selected = append(selected, FilterBySubstring(discovered, arg)...)
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoTestsMatched, strings.Join(args, " "))
	}
	return selected, nil
}

func (f *Filter) isRegularFile(path string) bool {
	info, err := f.fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// FilterBySubstring returns the paths containing pattern, case-sensitive, in their original order
func FilterBySubstring(paths []string, pattern string) []string {
	var filtered []string
	for _, path := range paths {
		if strings.Contains(path, pattern) {
			filtered = append(filtered, path)
		}
	}
	return filtered
}
