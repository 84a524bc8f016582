package render

import "strings"

// Markdown renders markdown for the terminal using a pooled renderer.
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// Reply renders a model reply as markdown, falling back to the sanitized
// text when the renderer fails.
func Reply(content string, opts Options) string {
	out, err := Markdown(Sanitize(content), opts)
	if err != nil {
		return Flow(content, true)
	}
	return strings.Trim(out, "\n")
}
