package repair

import (
	"strings"

	"github.com/hyperifyio/pagesnap/internal/markup"
)

// HeaderVisibility restores the reactive bindings a header loses when it is
// captured mid-session. Each governed region gets its x-show marker back and
// any frozen display:none dropped; the header root loses a baked-in
// scrolled-away class and regains the binding that toggles it; class tokens
// left truncated by empty template interpolation are removed.
func HeaderVisibility(o Options) func(string) (string, int) {
	return func(text string) (string, int) {
		s := markup.NewStream(text)
		fixed := 0
		seenRoot := false
		for s.Next() {
			tok := s.Token()
			if !tok.IsStart() {
				s.Keep()
				continue
			}
			tag := tok.Tag
			changed := tag.FilterClasses(isOrphanFragment)
			if !seenRoot && tag.Name == "header" {
				seenRoot = true
				if o.ScrollClass != "" && tag.RemoveClass(o.ScrollClass) {
					changed = true
				}
				if o.ScrollBinding != "" && !tag.Has(":class") && !tag.Has("x-bind:class") {
					tag.Set(":class", o.ScrollBinding)
					changed = true
				}
			}
			for _, r := range o.HeaderRegions {
				if !tag.HasClass(r.Class) {
					continue
				}
				if !tag.Has("x-show") {
					tag.Set("x-show", r.Show)
					changed = true
				}
				if v, ok := tag.StyleProp("display"); ok && strings.EqualFold(v, "none") {
					tag.RemoveStyleProps("display")
					changed = true
				}
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

// isOrphanFragment reports a class token whose interpolated half rendered
// empty: "logo--" or "bg-" lost a suffix, "--dark" or "__item" lost a prefix.
func isOrphanFragment(c string) bool {
	return strings.HasSuffix(c, "-") || strings.HasSuffix(c, "_") ||
		strings.HasPrefix(c, "--") || strings.HasPrefix(c, "__")
}
