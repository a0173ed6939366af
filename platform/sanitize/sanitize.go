// Package sanitize provides text sanitization for inbound user content.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// StripHTML removes all markup from a string and returns the visible text.
// Entities are decoded by the tokenizer.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	tokenizer := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(tokenizer.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "br" || string(name) == "p" || string(name) == "li" {
				b.WriteByte('\n')
			}
		}
	}
}

// Text sanitizes inbound message text: strips markup and control
// characters while preserving newlines, which separate order lines.
func Text(s string) string {
	stripped := StripHTML(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r == '\r' {
			return '\n'
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, stripped)
}

// TextPtr is a helper for optional string pointers
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	return &result
}
