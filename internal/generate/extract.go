package generate

import (
	"errors"
	"regexp"
	"strings"
)

var ErrNoHTML = errors.New("no usable HTML in model response")

var fenceRe = regexp.MustCompile("(?s)```(?:[a-zA-Z]*)\\s*\\n?(.*?)```")

// ExtractHTML pulls the markup out of a free-form model reply. The rule is
// deterministic: the body of the first fenced code block wins; failing that,
// the whole reply with any stray fence markers stripped, trimmed. An empty
// result is ErrNoHTML.
func ExtractHTML(raw string) (string, error) {
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		if body := strings.TrimSpace(m[1]); body != "" {
			return body, nil
		}
	}
	cleaned := strings.ReplaceAll(raw, "```html", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", ErrNoHTML
	}
	return cleaned, nil
}
