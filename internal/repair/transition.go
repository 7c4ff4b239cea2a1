package repair

import "github.com/hyperifyio/pagesnap/internal/markup"

// TransitionResidue strips the pre-animation class pair from the static
// class attribute of elements that animate in on intersection. Bound
// class attributes (:class, x-bind:class) keep their conditional logic.
func TransitionResidue(o Options) func(string) (string, int) {
	return func(text string) (string, int) {
		s := markup.NewStream(text)
		fixed := 0
		for s.Next() {
			tok := s.Token()
			if !tok.IsStart() || !tok.Tag.HasPrefix("x-intersect") || !tok.Tag.RemoveClass(o.TransitionClasses...) {
				s.Keep()
				continue
			}
			fixed++
			s.Write(tok.Tag.String())
		}
		return s.String(), fixed
	}
}
