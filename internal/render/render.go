package render

import (
	"strings"
)

// Markdown renders markdown content for terminal display.
func Markdown(content string, opts Options) (string, error) {
	return renderers.render(content, opts)
}

// Reply renders an assistant reply. Rendering problems never hide the
// reply: on error the raw text is returned. Surrounding blank lines that
// glamour adds are trimmed.
func Reply(content string, opts Options) string {
	if strings.TrimSpace(content) == "" {
		return content
	}
	out, err := Markdown(content, opts)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
