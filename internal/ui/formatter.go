package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"testrig/internal/config"
	"testrig/internal/discovery"
	"testrig/internal/domain"
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	parser *discovery.Parser
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to out (color.Output when nil)
func NewFormatter(cfg *config.Config, parser *discovery.Parser, out io.Writer) *Formatter {
	if out == nil {
		out = color.Output
	}
	return &Formatter{
		config: cfg,
		parser: parser,
		out:    out,
	}
}

func (f *Formatter) println(s string) {
	fmt.Fprintln(f.out, s)
}

// relPath shortens a test path for display relative to the project
func (f *Formatter) relPath(path string) string {
	if rel, err := filepath.Rel(f.config.ProjectPath, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// adapterMarker tags files that need the live servers
func (f *Formatter) adapterMarker(path string) string {
	if f.config.NeedsServers([]string{path}) {
		return " " + color.MagentaString("[A]")
	}
	return ""
}

// PrintTestList prints a list of test files, optionally with test cases.
// Files that would boot the live servers are marked with [A].
func (f *Formatter) PrintTestList(tests []string, showTestCases bool) error {
	if showTestCases {
		f.println(color.GreenString("Found %d test file(s) with test cases:\n", len(tests)))
	} else {
		f.println(color.GreenString("Found %d test file(s):\n", len(tests)))
	}

	for i, test := range tests {
		isLastFile := i == len(tests)-1
		branch := "├── "
		if isLastFile {
			branch = "└── "
		}
		f.println(color.CyanString("%s%s", branch, f.relPath(test)) + f.adapterMarker(test))

		if !showTestCases {
			continue
		}

		testCases, err := f.parser.FindTestCases(test)
		if err != nil {
			f.println(color.RedString("Error reading test file %s: %v", test, err))
			continue
		}

		indent := "│   "
		if isLastFile {
			indent = "    "
		}
		if len(testCases) == 0 {
			f.println(indent + "└── " + color.RedString("(no test cases found)"))
		}
		for j, testCase := range testCases {
			prefix := indent + "├── "
			if j == len(testCases)-1 {
				prefix = indent + "└── "
			}
			f.println(prefix + color.YellowString(testCase))
		}

		if !isLastFile {
			fmt.Fprintln(f.out)
		}
	}

	return nil
}

func (f *Formatter) row(label, value string, paint func(format string, a ...interface{}) string) {
	fmt.Fprintf(f.out, "│ %-31s │ %s │\n", label, paint("%-27s", value))
}

func (f *Formatter) separator() {
	f.println("├─────────────────────────────────┼─────────────────────────────┤")
}

// PrintSummary prints the post-run table for a summary
func (f *Formatter) PrintSummary(s *domain.RunSummary) {
	fmt.Fprintln(f.out)
	f.println(color.CyanString("╔═══════════════════════════════════════════════════════════════╗"))
	f.println(color.CyanString("║                        Run Summary                            ║"))
	f.println(color.CyanString("╚═══════════════════════════════════════════════════════════════╝"))

	f.println("┌─────────────────────────────────┬─────────────────────────────┐")
	f.row("Test Files", fmt.Sprintf("%d", len(s.Files)), color.WhiteString)
	f.separator()

	versions := "default"
	if len(s.Versions) > 0 {
		versions = strings.Join(s.Versions, " ")
	}
	f.row("Versions", versions, color.WhiteString)
	f.separator()

	servers := "no"
	if s.ServersStarted {
		servers = "yes"
	}
	f.row("Live Servers", servers, color.WhiteString)
	f.separator()

	warnPaint := color.GreenString
	if s.ProjectWarnings > 0 {
		warnPaint = color.RedString
	}
	f.row("Project Warnings", fmt.Sprintf("%d of %d", s.ProjectWarnings, len(s.Warnings)), warnPaint)
	f.separator()

	f.row("Duration", fmt.Sprintf("%.2fs", s.DurationSeconds), color.WhiteString)
	f.separator()

	exitPaint := color.GreenString
	if s.ExitCode != 0 {
		exitPaint = color.RedString
	}
	f.row("Exit Code", fmt.Sprintf("%d", s.ExitCode), exitPaint)
	f.println("└─────────────────────────────────┴─────────────────────────────┘")

	fmt.Fprintln(f.out)
	if s.ExitCode == 0 {
		f.println(color.GreenString("✓ Run succeeded"))
		return
	}
	if s.Error != "" {
		f.println(color.RedString("✗ %s", s.Error))
	} else {
		f.println(color.RedString("✗ Run failed"))
	}
}
