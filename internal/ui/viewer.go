package ui

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"golang.org/x/term"

	"testrig/internal/domain"
)

// Viewer displays the warnings captured by a run
type Viewer interface {
	View(summary *domain.RunSummary) error
}

// locationPattern matches the "path:line:" prefix interpreters put on warnings
var locationPattern = regexp.MustCompile(`^(.+?):(\d+):`)

// WarningViewer browses warnings in a TUI, or prints them when stdout is not a terminal
type WarningViewer struct {
	out         io.Writer
	interactive bool
}

// NewWarningViewer creates a viewer for stdout
func NewWarningViewer() *WarningViewer {
	return &WarningViewer{
		out:         color.Output,
		interactive: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// NewPlainViewer creates a non-interactive viewer writing to out
func NewPlainViewer(out io.Writer) *WarningViewer {
	return &WarningViewer{out: out}
}

// View displays the summary's warnings
func (v *WarningViewer) View(summary *domain.RunSummary) error {
	if len(summary.Warnings) == 0 {
		fmt.Fprintln(v.out, color.GreenString("✓ No warnings captured in the last run"))
		return nil
	}
	if !v.interactive {
		v.printPlain(summary)
		return nil
	}
	return v.runTUI(summary)
}

func (v *WarningViewer) printPlain(summary *domain.RunSummary) {
	for _, w := range summary.Warnings {
		if w.Project {
			fmt.Fprintf(v.out, "%s %s\n", color.RedString("[project]"), w.Line)
		} else {
			fmt.Fprintf(v.out, "%s %s\n", color.HiBlackString("[external]"), w.Line)
		}
	}
	fmt.Fprintf(v.out, "\n%d warning(s) from project source (%d total)\n", summary.ProjectWarnings, len(summary.Warnings))
}

func (v *WarningViewer) runTUI(summary *domain.RunSummary) error {
	app := tview.NewApplication()
	projectOnly := false
	var shown []domain.WarningRecord

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	list.SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	updateDetails := func(index int) {
		if index < 0 || index >= len(shown) {
			detailsView.SetText("")
			return
		}
		detailsView.SetText(formatWarningDetails(shown[index]))
	}

	reload := func() {
		shown = shown[:0]
		list.Clear()
		for _, w := range summary.Warnings {
			if projectOnly && !w.Project {
				continue
			}
			shown = append(shown, w)
			list.AddItem(warningListText(len(shown), w), "", 0, nil)
		}
		filter := "all"
		if projectOnly {
			filter = "project only"
		}
		headerView.SetText(fmt.Sprintf(" Warnings (%d total, [red]%d project[white], showing %s) | [yellow]P[white] toggle filter, → details, ← back, Ctrl+C exit ",
			len(summary.Warnings), summary.ProjectWarnings, filter))
		updateDetails(list.GetCurrentItem())
	}

	list.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		updateDetails(index)
	})

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'p' || event.Rune() == 'P' {
				projectOnly = !projectOnly
				reload()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	reload()

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(detailsView, 0, 2, false)

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(layout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func warningListText(n int, w domain.WarningRecord) string {
	text := tview.Escape(w.Line)
	if file, _, ok := warningLocation(w.Line); ok {
		text = tview.Escape(file)
	}
	if w.Project {
		return fmt.Sprintf("[yellow]%d.[red] %s[white]", n, text)
	}
	return fmt.Sprintf("[yellow]%d.[gray] %s[white]", n, text)
}

func formatWarningDetails(w domain.WarningRecord) string {
	var b strings.Builder
	if w.Project {
		b.WriteString("[red]✗ Project warning[white]\n\n")
	} else {
		b.WriteString("[gray]External warning (tolerated)[white]\n\n")
	}
	if file, line, ok := warningLocation(w.Line); ok {
		fmt.Fprintf(&b, "[cyan]File:[white] %s\n[cyan]Line:[white] %s\n\n", tview.Escape(file), line)
	}
	fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n", tview.Escape(w.Line))
	return b.String()
}

// warningLocation extracts the file and line a warning points at
func warningLocation(line string) (file, lineNo string, ok bool) {
	m := locationPattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
