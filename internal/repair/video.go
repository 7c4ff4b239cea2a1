package repair

import (
	"golang.org/x/net/html"

	"github.com/hyperifyio/pagesnap/internal/markup"
)

// VideoAttributes removes static <video> elements from containers whose
// video is inserted by script (marked by o.VideoSourceAttr), since the
// loader always adds its own; and adds muted to every autoplay video,
// which browsers otherwise refuse to start.
func VideoAttributes(o Options) func(string) (string, int) {
	return func(text string) (string, int) {
		s := markup.NewStream(text)
		fixed := 0
		container := 0
		for s.Next() {
			tok := s.Token()
			switch {
			case tok.Type == html.EndTagToken:
				if container > 0 && s.Depth() < container {
					container = 0
				}
				s.Keep()
			case tok.IsStart() && tok.Name == "video" && container > 0:
				s.SkipElement()
				fixed++
			case tok.IsStart() && tok.Name == "video" && tok.Tag.Has("autoplay") && !tok.Tag.Has("muted"):
				tok.Tag.Set("muted", "")
				s.Write(tok.Tag.String())
				fixed++
			case tok.Type == html.StartTagToken && container == 0 && !markup.IsVoid(tok.Name) && tok.Tag.Has(o.VideoSourceAttr):
				container = s.Depth()
				s.Keep()
			default:
				s.Keep()
			}
		}
		return s.String(), fixed
	}
}
