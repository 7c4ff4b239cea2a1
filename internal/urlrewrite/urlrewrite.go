// Package urlrewrite turns absolute references to the site's own domain
// into root-relative paths. Other domains are left alone. Root-relative
// paths never match again, so every rewrite is idempotent.
package urlrewrite

import (
	"regexp"
	"strings"
)

// DefaultDomain is the production host the captures were taken from.
const DefaultDomain = "paracelsus-recovery.com"

// Rewriter rewrites one site domain, with or without the www prefix.
type Rewriter struct {
	domain   string
	bareAttr *regexp.Regexp
	hostPath *regexp.Regexp
	bare     *regexp.Regexp
	prefix   *regexp.Regexp
}

var (
	srcsetAttr = regexp.MustCompile(`(srcset=")([^"]*)(")`)
	styleAttr  = regexp.MustCompile(`(style=")([^"]*)(")`)
	cssURL     = regexp.MustCompile(`url\(([^)]*)\)`)
)

// New builds a Rewriter for domain. An empty domain selects DefaultDomain.
func New(domain string) *Rewriter {
	domain = strings.TrimSpace(strings.TrimPrefix(strings.ToLower(domain), "www."))
	if domain == "" {
		domain = DefaultDomain
	}
	host := `https?://(?:www\.)?` + regexp.QuoteMeta(domain)
	return &Rewriter{
		domain:   domain,
		bareAttr: regexp.MustCompile(`\b(href|action)="` + host + `/?"`),
		hostPath: regexp.MustCompile(host + `/`),
		bare:     regexp.MustCompile(`^` + host + `/?$`),
		prefix:   regexp.MustCompile(`^` + host + `/`),
	}
}

// Domain returns the host being rewritten.
func (r *Rewriter) Domain() string { return r.domain }

// HTML rewrites an HTML fragment and returns the number of replacements.
// Rules apply most specific first: bare-domain href/action, then any
// domain/path occurrence, then srcset candidates, then inline
// background-image url(...) values.
func (r *Rewriter) HTML(text string) (string, int) {
	n := 0
	text = r.bareAttr.ReplaceAllStringFunc(text, func(m string) string {
		n++
		sub := r.bareAttr.FindStringSubmatch(m)
		return sub[1] + `="/"`
	})
	text, k := r.paths(text)
	n += k
	text = replaceGroup(srcsetAttr, text, func(v string) string {
		out, k := r.Srcset(v)
		n += k
		return out
	})
	text = replaceGroup(styleAttr, text, func(v string) string {
		out, k := r.cssURLs(v)
		n += k
		return out
	})
	return text, n
}

// CSS rewrites a stylesheet: any domain/path occurrence and url(...) values.
func (r *Rewriter) CSS(text string) (string, int) {
	text, n := r.paths(text)
	text, k := r.cssURLs(text)
	return text, n + k
}

func (r *Rewriter) paths(text string) (string, int) {
	n := len(r.hostPath.FindAllStringIndex(text, -1))
	if n == 0 {
		return text, 0
	}
	return r.hostPath.ReplaceAllLiteralString(text, "/"), n
}

// Srcset rewrites each comma-separated candidate URL of a srcset value,
// keeping width/density descriptors and separators verbatim.
func (r *Rewriter) Srcset(value string) (string, int) {
	n := 0
	parts := strings.Split(value, ",")
	for i, part := range parts {
		lead := len(part) - len(strings.TrimLeft(part, " \t\n"))
		rest := part[lead:]
		end := strings.IndexAny(rest, " \t\n")
		if end < 0 {
			end = len(rest)
		}
		if u, ok := r.rootRelative(rest[:end]); ok {
			parts[i] = part[:lead] + u + rest[end:]
			n++
		}
	}
	return strings.Join(parts, ","), n
}

// cssURLs rewrites url(...) values, keeping whatever quoting was used:
// none, single, double, or an entity-encoded double quote inside an
// attribute.
func (r *Rewriter) cssURLs(text string) (string, int) {
	n := 0
	text = cssURL.ReplaceAllStringFunc(text, func(m string) string {
		inner := m[len("url(") : len(m)-1]
		trimmed := strings.TrimSpace(inner)
		quote := ""
		for _, q := range []string{"&quot;", `"`, `'`} {
			if len(trimmed) >= 2*len(q) && strings.HasPrefix(trimmed, q) && strings.HasSuffix(trimmed, q) {
				quote = q
				break
			}
		}
		u := trimmed[len(quote) : len(trimmed)-len(quote)]
		rel, ok := r.rootRelative(u)
		if !ok {
			return m
		}
		n++
		return "url(" + quote + rel + quote + ")"
	})
	return text, n
}

// rootRelative maps a single absolute URL on the site domain to its path.
func (r *Rewriter) rootRelative(u string) (string, bool) {
	if r.bare.MatchString(u) {
		return "/", true
	}
	if loc := r.prefix.FindStringIndex(u); loc != nil {
		return "/" + u[loc[1]:], true
	}
	return u, false
}

// replaceGroup rewrites the second capture group of every match of a
// three-group pattern.
func replaceGroup(re *regexp.Regexp, text string, fn func(string) string) string {
	return re.ReplaceAllStringFunc(text, func(m string) string {
		sub := re.FindStringSubmatch(m)
		return sub[1] + fn(sub[2]) + sub[3]
	})
}
