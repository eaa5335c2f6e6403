package rdfutil

import "github.com/microcosm-cc/bluemonday"

// NewLiteralPolicy returns the fixed HTML sanitizer allow-list of spec.md
// §6.2: a small set of typographic/structural tags, with only `<a>` allowed
// attributes, no autolinking and no added rel=nofollow (bluemonday's
// UGCPolicy is close but adds nofollow and autolinking we don't want, so this
// builds the allow-list from NewPolicy() directly instead).
func NewLiteralPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "br", "em", "h1", "h2", "h3", "hr", "i", "li", "ol", "p", "strong", "sub", "sup", "ul")
	p.AllowAttrs("href", "name", "target", "title", "rel").OnElements("a")
	p.AllowStandardURLs()
	return p
}

// SanitizeLiterals replaces every literal's lexical form with its
// HTML-sanitized version, preserving datatype and language tag.
// Non-literal terms pass through unchanged.
func SanitizeLiterals(g *Graph, policy *bluemonday.Policy) *Graph {
	out := &Graph{
		Triples:  make([]Triple, len(g.Triples)),
		Prefixes: g.Prefixes,
	}
	for i, t := range g.Triples {
		if t.Obj.Kind == KindLiteral {
			t.Obj.Value = policy.Sanitize(t.Obj.Value)
		}
		out.Triples[i] = t
	}
	return out
}
