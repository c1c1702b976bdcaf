package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header is the command banner printed before a run starts: the operation
// name plus the parameters that matter (endpoint, layer, file).
type Header struct {
	Title  string      // e.g., "CONFIGURATION SAVE"
	Params [][2]string // ordered key/value pairs
	Width  int         // Terminal width for responsive rendering
}

// NewHeader creates a new header with the given values
func NewHeader(title string, params [][2]string) *Header {
	return &Header{
		Title:  title,
		Params: params,
		Width:  GetTerminalWidth(),
	}
}

// Render returns the styled header as a string
func (h *Header) Render() string {
	width := h.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	titleLine := HeaderTitleStyle.Render(strings.ToUpper(h.Title))

	dividerWidth := width - 6
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Render(strings.Repeat("─", dividerWidth))

	var paramLines []string
	for _, kv := range h.Params {
		keyStyled := HeaderParamKeyStyle.Render(kv[0] + ":")
		valueStyled := HeaderParamValueStyle.Render(kv[1])
		paramLines = append(paramLines, keyStyled+" "+valueStyled)
	}
	paramsSection := strings.Join(paramLines, "\n")

	var content string
	if len(h.Params) > 0 {
		content = lipgloss.JoinVertical(lipgloss.Left, titleLine, divider, paramsSection)
	} else {
		content = titleLine
	}

	return HeaderBorderStyle(width).Render(content)
}

// String implements fmt.Stringer
func (h *Header) String() string {
	return h.Render()
}
