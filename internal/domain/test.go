package domain

import "strings"

// TestFileSet is the ordered list of test files selected for one run
type TestFileSet []string

// Contains reports whether any file path contains the given substring
func (s TestFileSet) Contains(substr string) bool {
	for _, path := range s {
		if strings.Contains(path, substr) {
			return true
		}
	}
	return false
}

