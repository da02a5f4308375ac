// Package warnings classifies interpreter warnings captured from a test run.
package warnings

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"testrig/internal/domain"
)

const maxLineSize = 1024 * 1024

// Classifier decides which captured warnings come from the project itself
type Classifier struct {
	marker        string
	projectDir    string
	dependencyDir string
}

// NewClassifier creates a Classifier. dependencyDir is resolved against projectDir
// unless absolute; warnings under it are tolerated.
func NewClassifier(marker, projectDir, dependencyDir string) *Classifier {
	dep := dependencyDir
	if dep != "" && !filepath.IsAbs(dep) {
		dep = filepath.Join(projectDir, dep)
	}
	return &Classifier{marker: marker, projectDir: projectDir, dependencyDir: dep}
}

// IsProject reports whether a warning line points into project source
func (c *Classifier) IsProject(line string) bool {
	if !strings.Contains(line, c.projectDir) {
		return false
	}
	return c.dependencyDir == "" || !strings.Contains(line, c.dependencyDir)
}

// Classify reads captured stderr and returns every warning-marked line
func (c *Classifier) Classify(r io.Reader) (*Report, error) {
	report := &Report{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, c.marker) {
			continue
		}
		report.Records = append(report.Records, domain.WarningRecord{
			Line:    line,
			Project: c.IsProject(line),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read captured warnings: %w", err)
	}
	return report, nil
}

// ClassifyFile classifies the capture file at path
func (c *Classifier) ClassifyFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open captured warnings: %w", err)
	}
	defer f.Close()
	return c.Classify(f)
}

// Report is the outcome of classifying one run's captured stderr
type Report struct {
	Records []domain.WarningRecord
}

// ProjectWarnings returns the warnings that originate from project source
func (r *Report) ProjectWarnings() []domain.WarningRecord {
	var project []domain.WarningRecord
	for _, rec := range r.Records {
		if rec.Project {
			project = append(project, rec)
		}
	}
	return project
}

// Print writes the project warnings and their count
func (r *Report) Print(w io.Writer) {
	project := r.ProjectWarnings()
	for _, rec := range project {
		fmt.Fprintln(w, rec.Line)
	}

	c := color.New(color.FgGreen)
	if len(project) > 0 {
		c = color.New(color.FgRed, color.Bold)
	}
	c.Fprintf(w, "%d warning(s) from project source (%d total)\n", len(project), len(r.Records))
}

// Err returns a WarningPolicyError when any warning comes from project source
func (r *Report) Err() error {
	if n := len(r.ProjectWarnings()); n > 0 {
		return &domain.WarningPolicyError{Count: n}
	}
	return nil
}
