package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Scanner scans for test files in a directory
type Scanner struct {
	fs       afero.Fs
	suffix   string
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner over the OS filesystem
func NewScanner(suffix string, skipDirs []string) *Scanner {
	return NewScannerFs(afero.NewOsFs(), suffix, skipDirs)
}

// NewScannerFs creates a new Scanner over the given filesystem
func NewScannerFs(fs afero.Fs, suffix string, skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{fs: fs, suffix: suffix, skipDirs: skipMap}
}

// Scan finds all test files under root, in traversal order
func (s *Scanner) Scan(root string) ([]string, error) {
	var testfiles []string

	root = filepath.Clean(root)
	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test path is not a directory: %s", root)
	}

	err = afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path == root {
				return nil
			}
			name := info.Name()
			// Skip hidden directories
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasSuffix(info.Name(), s.suffix) {
			testfiles = append(testfiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	return testfiles, nil
}
