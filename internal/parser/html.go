package parser

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// hidden lists elements whose text is never rendered.
var hidden = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// VisibleText parses an HTML document and returns its human-visible text:
// every text node outside hidden elements, trimmed and concatenated with no
// separator. The document title counts as visible.
func VisibleText(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	var parts []string
	depth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return strings.Join(parts, ""), err
			}
			return strings.Join(parts, ""), nil
		case html.StartTagToken:
			name, _ := z.TagName()
			if hidden[string(name)] {
				depth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if hidden[string(name)] && depth > 0 {
				depth--
			}
		case html.TextToken:
			if depth > 0 {
				continue
			}
			text := strings.TrimSpace(string(z.Text()))
			if text != "" {
				parts = append(parts, text)
			}
		}
	}
}
