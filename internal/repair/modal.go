package repair

import (
	"strings"

	"github.com/hyperifyio/pagesnap/internal/markup"
)

// ModalVisibility hides the modal container by default: it gets its
// x-show binding and an inline display:none, replacing a display value
// frozen open at capture time.
func ModalVisibility(o Options) func(string) (string, int) {
	return func(text string) (string, int) {
		if o.ModalID == "" || !strings.Contains(text, o.ModalID) {
			return text, 0
		}
		s := markup.NewStream(text)
		fixed := 0
		for s.Next() {
			tok := s.Token()
			if !tok.IsStart() {
				s.Keep()
				continue
			}
			if id, _ := tok.Tag.Get("id"); id != o.ModalID {
				s.Keep()
				continue
			}
			tag := tok.Tag
			changed := false
			if !tag.Has("x-show") {
				tag.Set("x-show", o.ModalBinding)
				changed = true
			}
			if v, ok := tag.StyleProp("display"); ok && !strings.EqualFold(v, "none") {
				tag.RemoveStyleProps("display")
			}
			if tag.SetStyleProp("display", "none") {
				changed = true
			}
			if !changed {
				s.Keep()
				continue
			}
			fixed++
			s.Write(tag.String())
		}
		return s.String(), fixed
	}
}
