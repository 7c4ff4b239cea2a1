package repair

import (
	"golang.org/x/net/html"

	"github.com/hyperifyio/pagesnap/internal/markup"
)

const (
	sliderRootClass = "flickity-enabled"
	viewportClass   = "flickity-viewport"
	trackClass      = "flickity-slider"
)

var (
	sliderStateClasses = []string{sliderRootClass, "is-draggable"}
	slideStyleProps    = []string{"position", "left", "transform"}
)

// Slider reverts the markup the carousel library injects on init so it can
// initialize cleanly again: state classes and tabindex on the root, the
// viewport and track wrappers (their children move back under the root),
// per-slide positioning styles, selection state, and the generated
// prev/next buttons and page dots. Other inline style properties on a slide
// are kept.
func Slider(text string) (string, int) {
	s := markup.NewStream(text)
	fixed := 0
	root := 0
	track := 0
	unwrapped := map[int]bool{}
	for s.Next() {
		tok := s.Token()
		switch {
		case tok.Type == html.EndTagToken:
			if unwrapped[s.Depth()+1] {
				delete(unwrapped, s.Depth()+1)
				if track == s.Depth()+1 {
					track = 0
				}
				continue
			}
			if root > 0 && s.Depth() < root {
				root = 0
			}
			s.Keep()
		case tok.IsBlank():
			// Indentation before a wrapper's end tag goes with the wrapper.
			if next, ok := s.Peek(); ok && next.Type == html.EndTagToken && unwrapped[s.Depth()+1] {
				continue
			}
			s.Keep()
		case !tok.IsStart():
			s.Keep()
		case root == 0:
			if tok.Type == html.StartTagToken && tok.Tag.HasClass(sliderRootClass) {
				root = s.Depth()
				tok.Tag.RemoveClass(sliderStateClasses...)
				tok.Tag.Remove("tabindex")
				s.Write(tok.Tag.String())
				fixed++
				continue
			}
			s.Keep()
		case tok.Type == html.StartTagToken && (tok.Tag.HasClass(viewportClass) || tok.Tag.HasClass(trackClass)):
			unwrapped[s.Depth()] = true
			if tok.Tag.HasClass(trackClass) {
				track = s.Depth()
			}
			dropBlankAfter(s)
		case tok.Type == html.StartTagToken && isSliderControl(tok.Tag):
			s.SkipElement()
			dropBlankAfter(s)
			fixed++
		case track > 0 && parentDepth(s, tok) == track:
			tag := tok.Tag
			changed := tag.RemoveStyleProps(slideStyleProps...)
			if tag.RemoveClass("is-selected") {
				changed = true
			}
			if tag.Remove("aria-hidden") {
				changed = true
			}
			if !changed {
				s.Keep()
				continue
			}
			s.Write(tag.String())
		default:
			s.Keep()
		}
	}
	return s.String(), fixed
}

func isSliderControl(t *markup.Tag) bool {
	return (t.Name == "button" && t.HasClass("flickity-button")) ||
		(t.Name == "ol" && t.HasClass("flickity-page-dots"))
}

// parentDepth is the depth of the element containing the current start tag.
func parentDepth(s *markup.Stream, tok markup.Token) int {
	if tok.Type == html.StartTagToken && !markup.IsVoid(tok.Name) {
		return s.Depth() - 1
	}
	return s.Depth()
}

// dropBlankAfter swallows the indentation that followed a removed tag.
func dropBlankAfter(s *markup.Stream) {
	if next, ok := s.Peek(); ok && next.IsBlank() {
		s.Next()
	}
}
