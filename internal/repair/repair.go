// Package repair undoes client-side state that was already applied when a
// page was captured, so the static markup initializes like a fresh load.
//
// Every rule is a pure, idempotent text transform scoped by a fixed anchor
// (a class, attribute or id). A rule that finds nothing returns its input
// unchanged with a zero count.
package repair

import (
	"github.com/rs/zerolog"
)

// Rule is one repair pass. Apply returns the rewritten text and how many
// artifacts it fixed.
type Rule struct {
	Name  string
	Apply func(string) (string, int)
}

// Result records how many fixes a rule applied to a section.
type Result struct {
	Rule  string `json:"rule"`
	Fixed int    `json:"fixed"`
}

// Region ties a header element, found by class, to the boolean state that
// governs its visibility.
type Region struct {
	Class string `yaml:"class" json:"class"`
	Show  string `yaml:"show" json:"show"`
}

// Options holds the anchors every rule matches on.
type Options struct {
	HeaderRegions     []Region
	ScrollClass       string
	ScrollBinding     string
	VideoSourceAttr   string
	LazyWrapperClass  string
	LoadedClass       string
	FormScriptMarker  string
	FormPlaceholder   string
	FormClasses       []string
	ModalID           string
	ModalBinding      string
	TransitionClasses []string
}

// DefaultOptions returns the anchors used by the Pegasus theme.
func DefaultOptions() Options {
	return Options{
		HeaderRegions: []Region{
			{Class: "pegasus-header__toggle", Show: "showToggle"},
			{Class: "pegasus-header__logo", Show: "showLogo"},
			{Class: "pegasus-header__cta", Show: "showCta"},
		},
		ScrollClass:       "-translate-y-full",
		ScrollBinding:     "{ '-translate-y-full': hideOnScroll }",
		VideoSourceAttr:   "data-desktop-video",
		LazyWrapperClass:  "pegasus-lazy-wrapper",
		LoadedClass:       "is-loaded",
		FormScriptMarker:  "hbspt.forms.create",
		FormPlaceholder:   "<!-- HubSpot form renders here on load -->",
		FormClasses:       []string{"hbspt-form", "hs-form"},
		ModalID:           "pegasus-modal",
		ModalBinding:      "modalOpen",
		TransitionClasses: []string{"opacity-0", "translate-y-8"},
	}
}

// HeaderRules repairs the header section.
func HeaderRules(o Options) []Rule {
	return []Rule{
		{Name: "header-visibility", Apply: HeaderVisibility(o)},
	}
}

// MainRules repairs the main content section, in a fixed order.
func MainRules(o Options) []Rule {
	return []Rule{
		{Name: "video-attributes", Apply: VideoAttributes(o)},
		{Name: "lazy-images", Apply: LazyImages(o)},
		{Name: "form-embed", Apply: FormEmbed(o)},
		{Name: "slider", Apply: Slider},
		{Name: "transition-residue", Apply: TransitionResidue(o)},
	}
}

// ModalRules repairs the trailing modal markup.
func ModalRules(o Options) []Rule {
	return []Rule{
		{Name: "modal-visibility", Apply: ModalVisibility(o)},
	}
}

// Run applies rules in order and logs each rule's fix count.
func Run(text string, rules []Rule, logger zerolog.Logger) (string, []Result) {
	results := make([]Result, 0, len(rules))
	for _, r := range rules {
		out, n := r.Apply(text)
		text = out
		results = append(results, Result{Rule: r.Name, Fixed: n})
		ev := logger.Debug()
		if n > 0 {
			ev = logger.Info()
		}
		ev.Str("rule", r.Name).Int("fixed", n).Msg("repair pass")
	}
	return text, results
}
