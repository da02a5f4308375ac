package discovery

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/spf13/afero"
)

var testCasePatterns = []*regexp.Regexp{
	// def test_create_user
	regexp.MustCompile(`(?m)^\s*def\s+(test_\w+[?!]?)`),
	// test "creates a user" do / test('creates a user') {
	regexp.MustCompile(`(?m)^\s*test\s*\(?\s*["']([^"']+)["']`),
	// it "creates a user" do
	regexp.MustCompile(`(?m)^\s*it\s*\(?\s*["']([^"']+)["']`),
}

// Parser parses test files to extract test cases
type Parser struct {
	fs afero.Fs
}

// NewParser creates a new Parser over the OS filesystem
func NewParser() *Parser {
	return &Parser{fs: afero.NewOsFs()}
}

// NewParserFs creates a new Parser over the given filesystem
func NewParserFs(fs afero.Fs) *Parser {
	return &Parser{fs: fs}
}

// FindTestCases finds all test cases in a test file, in source order
func (p *Parser) FindTestCases(filePath string) ([]string, error) {
	content, err := afero.ReadFile(p.fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}

	type match struct {
		offset int
		name   string
	}
	var matches []match
	seen := make(map[string]bool)

	for _, pattern := range testCasePatterns {
		for _, loc := range pattern.FindAllSubmatchIndex(content, -1) {
			name := string(content[loc[2]:loc[3]])
			if seen[name] {
				continue
			}
			seen[name] = true
			matches = append(matches, match{offset: loc[0], name: name})
		}
	}

	// Source order reads better than pattern order in the list view
	sort.Slice(matches, func(i, j int) bool { return matches[i].offset < matches[j].offset })

	testCases := make([]string, 0, len(matches))
	for _, m := range matches {
		testCases = append(testCases, m.name)
	}
	return testCases, nil
}
