package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"
)

// noMarginStyle removes glamour's document margins so agent messages align
// with the rest of the transcript.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps glamour for agent message content.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewRenderer creates a markdown renderer with the given width and style.
// style should be "dark" or "light"; empty defaults to "dark". A fixed style
// path is used instead of WithAutoStyle to avoid terminal OSC queries leaking
// escape responses into the input stream.
func NewRenderer(width int, style string) (*Renderer, error) {
	if style == "" {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}

// Sanitize strips ANSI escape sequences from untrusted text so server- or
// user-authored content cannot inject terminal control codes. Only the
// markdown renderer may introduce styling, and only for agent content.
func Sanitize(s string) string {
	return ansi.Strip(s)
}

// PlainFallback renders content as escaped plain text, word-wrapped. Used
// when markdown rendering fails; the message is never lost.
func PlainFallback(content string, width int) string {
	return wordwrap.String(Sanitize(content), width)
}

// renderAgentContent renders agent markdown, falling back to escaped plain
// text on any rendering failure.
func renderAgentContent(r *Renderer, content string, width int) string {
	if r != nil {
		if out, err := r.Render(content); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return PlainFallback(content, width)
}
