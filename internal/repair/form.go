package repair

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/hyperifyio/pagesnap/internal/markup"
)

// FormEmbed drops a form that a third-party embed script already rendered
// right after its loader <script>. Only the element immediately following
// the script is considered, and only when it is the rendered form; it is
// replaced by a placeholder comment. The script, the container and any
// sibling content stay.
func FormEmbed(o Options) func(string) (string, int) {
	return func(text string) (string, int) {
		if o.FormScriptMarker == "" || !strings.Contains(text, o.FormScriptMarker) {
			return text, 0
		}
		s := markup.NewStream(text)
		fixed := 0
		inLoader := false
		afterLoader := false
		var blanks strings.Builder
		for s.Next() {
			tok := s.Token()
			if afterLoader {
				if tok.IsBlank() {
					blanks.WriteString(tok.Raw)
					continue
				}
				afterLoader = false
				s.Write(blanks.String())
				blanks.Reset()
				if tok.Type == html.StartTagToken && isRenderedForm(tok.Tag, o.FormClasses) {
					s.Write(o.FormPlaceholder)
					s.SkipElement()
					fixed++
					continue
				}
			}
			switch {
			case tok.Type == html.StartTagToken && tok.Name == "script":
				inLoader = false
				if next, ok := s.Peek(); ok && next.Type == html.TextToken && strings.Contains(next.Raw, o.FormScriptMarker) {
					inLoader = true
				}
			case tok.Type == html.EndTagToken && tok.Name == "script" && inLoader:
				inLoader = false
				afterLoader = true
			}
			s.Keep()
		}
		s.Write(blanks.String())
		return s.String(), fixed
	}
}

// isRenderedForm reports the wrapper or <form> the embed script inserts.
func isRenderedForm(t *markup.Tag, classes []string) bool {
	for _, c := range classes {
		if t.HasClass(c) {
			return true
		}
	}
	if id, _ := t.Get("id"); strings.HasPrefix(id, "hbspt-form") {
		return true
	}
	if t.Name != "form" {
		return false
	}
	for _, c := range t.Classes() {
		if strings.HasPrefix(c, "hs-") {
			return true
		}
	}
	return false
}
