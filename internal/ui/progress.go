package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// Tracker renders a single-line progress bar for a save or load run. It is
// driven by engine progress callbacks rather than an event loop: each update
// redraws the line in place when stdout is a terminal, and prints one line
// per update otherwise (so piped output stays readable).
type Tracker struct {
	w        io.Writer
	label    string
	total    int
	bar      progress.Model
	terminal bool
	drawn    bool
}

// NewTracker creates a progress tracker writing to w.
func NewTracker(w io.Writer, label string, total int) *Tracker {
	width := GetTerminalWidth()
	barWidth := width - 30 // Leave room for percentage, counter and label
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}

	return &Tracker{
		w:     w,
		label: label,
		total: total,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(barWidth),
		),
		terminal: IsTerminal(),
	}
}

// Update redraws the bar at done of total, with detail appended after the
// counter (e.g. the group just finished).
func (t *Tracker) Update(done int, detail string) {
	percent := 0.0
	if t.total > 0 {
		percent = float64(done) / float64(t.total)
	}

	line := fmt.Sprintf("%s %s %3.0f%% [%d/%d]",
		ProgressLabelStyle.Render(t.label),
		t.bar.ViewAs(percent),
		percent*100,
		done, t.total,
	)
	if detail != "" {
		line += "  " + lipgloss.NewStyle().Foreground(MutedColor).Render(detail)
	}

	if t.terminal {
		if t.drawn {
			fmt.Fprint(t.w, "\r\033[K")
		}
		fmt.Fprint(t.w, line)
		t.drawn = true
		return
	}
	fmt.Fprintln(t.w, line)
}

// Finish ends the in-place line so subsequent output starts fresh.
func (t *Tracker) Finish() {
	if t.terminal && t.drawn {
		fmt.Fprintln(t.w)
		t.drawn = false
	}
}

// RenderResultBox renders a bordered success or error box with a title line
// and key/value detail rows.
func RenderResultBox(success bool, title string, details [][2]string) string {
	width := GetTerminalWidth()

	var b strings.Builder
	marker := SuccessMarker
	titleStyle := SuccessTitleStyle
	boxStyle := SuccessBoxStyle(width)
	if !success {
		marker = FailureMarker
		titleStyle = ErrorTitleStyle
		boxStyle = ErrorBoxStyle(width)
	}

	b.WriteString(titleStyle.Render(marker + " " + title))
	for _, kv := range details {
		b.WriteString("\n")
		b.WriteString(ResultKeyStyle.Render(kv[0]))
		b.WriteString(ResultValueStyle.Render(kv[1]))
	}

	return boxStyle.Render(b.String())
}

// RenderTroubleshooting renders operator advice under a failed result box.
func RenderTroubleshooting(hint string) string {
	return TroubleshootingStyle.Render(hint)
}
