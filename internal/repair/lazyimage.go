package repair

import "github.com/hyperifyio/pagesnap/internal/markup"

// deferred maps each parked lazy-load attribute to its live counterpart.
var deferred = [][2]string{
	{"data-src", "src"},
	{"data-srcset", "srcset"},
	{"data-sizes", "sizes"},
}

// LazyImages promotes parked data-src/data-srcset/data-sizes values on
// <img> and <source> to their live attributes, replacing any placeholder,
// and marks lazy-load wrappers as loaded.
func LazyImages(o Options) func(string) (string, int) {
	return func(text string) (string, int) {
		s := markup.NewStream(text)
		fixed := 0
		for s.Next() {
			tok := s.Token()
			if !tok.IsStart() {
				s.Keep()
				continue
			}
			tag := tok.Tag
			changed := false
			if o.LazyWrapperClass != "" && tag.HasClass(o.LazyWrapperClass) && tag.AddClass(o.LoadedClass) {
				changed = true
			}
			if tag.Name == "img" || tag.Name == "source" {
				for _, d := range deferred {
					if v, ok := tag.Get(d[0]); ok {
						tag.Set(d[1], v)
						tag.Remove(d[0])
						changed = true
					}
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
