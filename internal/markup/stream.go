// Package markup rewrites HTML fragments token by token. Tokens nobody
// touches are copied byte for byte, so a pass that finds nothing to repair
// returns its input unchanged.
package markup

import (
	"strings"

	"golang.org/x/net/html"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// IsVoid reports whether name is a void element that never has an end tag.
func IsVoid(name string) bool { return voidElements[name] }

// Token is the current token of a Stream.
type Token struct {
	Type html.TokenType
	// Raw is the exact source text of the token.
	Raw string
	// Name is the lower-case tag name of start and end tags.
	Name string
	// Tag is set for start and self-closing tags.
	Tag *Tag
}

// IsStart reports whether the token opens an element (including void and
// self-closing ones).
func (t Token) IsStart() bool {
	return t.Type == html.StartTagToken || t.Type == html.SelfClosingTagToken
}

// IsBlank reports whether the token is whitespace-only text.
func (t Token) IsBlank() bool {
	return t.Type == html.TextToken && strings.TrimSpace(t.Raw) == ""
}

// Stream walks a fragment and accumulates rewritten output. The caller
// decides per token whether to Keep it, Write a replacement, or drop it.
type Stream struct {
	z       *html.Tokenizer
	tok     Token
	out     strings.Builder
	stack   []string
	pending *Token
}

// NewStream tokenizes src.
func NewStream(src string) *Stream {
	s := &Stream{z: html.NewTokenizer(strings.NewReader(src))}
	s.out.Grow(len(src))
	return s
}

// Next advances to the next token and returns false at end of input.
// Open elements are tracked so Depth reflects the element nesting after
// the current token: a start tag counts itself, an end tag does not.
func (s *Stream) Next() bool {
	if s.pending != nil {
		s.tok, s.pending = *s.pending, nil
		return true
	}
	tok, ok := s.read()
	if !ok {
		return false
	}
	s.tok = tok
	return true
}

// Peek returns the token after the current one without consuming it.
func (s *Stream) Peek() (Token, bool) {
	if s.pending != nil {
		return *s.pending, true
	}
	tok, ok := s.read()
	if !ok {
		return Token{}, false
	}
	s.pending = &tok
	return tok, true
}

func (s *Stream) read() (Token, bool) {
	tt := s.z.Next()
	if tt == html.ErrorToken {
		return Token{}, false
	}
	tok := Token{Type: tt, Raw: string(s.z.Raw())}
	switch tt {
	case html.StartTagToken, html.SelfClosingTagToken:
		tok.Tag = newTag(s.z.Token())
		tok.Name = tok.Tag.Name
		if tt == html.StartTagToken && !IsVoid(tok.Name) {
			s.stack = append(s.stack, tok.Name)
		}
	case html.EndTagToken:
		name, _ := s.z.TagName()
		tok.Name = string(name)
		s.pop(tok.Name)
	}
	return tok, true
}

func (s *Stream) pop(name string) {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if s.stack[i] == name {
			s.stack = s.stack[:i]
			return
		}
	}
}

// Token returns the current token.
func (s *Stream) Token() Token { return s.tok }

// Depth returns the number of open elements. It is only meaningful before
// Peek is called for the current token.
func (s *Stream) Depth() int { return len(s.stack) }

// Keep copies the current token to the output unchanged.
func (s *Stream) Keep() { s.out.WriteString(s.tok.Raw) }

// Write appends text to the output.
func (s *Stream) Write(text string) { s.out.WriteString(text) }

// SkipElement drops the rest of the element opened by the current start
// tag, up to and including its end tag.
func (s *Stream) SkipElement() {
	if s.tok.Type != html.StartTagToken || IsVoid(s.tok.Name) {
		return
	}
	depth := s.Depth()
	for s.Next() {
		if s.tok.Type == html.EndTagToken && s.Depth() < depth {
			return
		}
	}
}

// String returns the accumulated output.
func (s *Stream) String() string { return s.out.String() }
