package rdfutil

import (
	"bytes"
	"fmt"
	"io"
	"regexp"

	"github.com/knakk/rdf"
)

// prefixDirective recovers @prefix bindings from the raw source bytes.
// github.com/knakk/rdf's triple decoder does not surface the prefixes it
// consumed while parsing, so the namespace bindings UsedNamespaces (C3) and
// the HTML renderer's namespace block (C7) need are recovered with this
// small independent scan instead.
var prefixDirective = regexp.MustCompile(`(?m)^\s*@prefix\s+([A-Za-z][\w.-]*)?:\s*<([^>]*)>\s*\.`)

// ParseTurtle decodes Turtle source into a Graph, including its @prefix
// bindings.
func ParseTurtle(r io.Reader) (*Graph, error) {
	return parse(r, rdf.Turtle)
}

// ParseNTriples decodes N-Triples source into a Graph (no prefix bindings).
func ParseNTriples(r io.Reader) (*Graph, error) {
	return parse(r, rdf.NTriples)
}

func parse(r io.Reader, format rdf.Format) (*Graph, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("rdfutil: read source: %w", err)
	}

	g := NewGraph()
	for _, m := range prefixDirective.FindAllSubmatch(raw, -1) {
		g.Prefixes[string(m[1])] = string(m[2])
	}

	dec := rdf.NewTripleDecoder(bytes.NewReader(raw), format)
	for {
		triple, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("rdfutil: decode triple: %w", err)
		}
		g.Add(Triple{
			Subj: convertTerm(triple.Subj),
			Pred: convertTerm(triple.Pred),
			Obj:  convertTerm(triple.Obj),
		})
	}
	return g, nil
}

func convertTerm(t rdf.Term) Term {
	switch v := t.(type) {
	case rdf.IRI:
		return IRI(v.String())
	case rdf.Blank:
		return Blank(v.String())
	case rdf.Literal:
		dt := v.DataType().String()
		if lang := v.Lang(); lang != "" {
			return LangLiteral(v.String(), lang)
		}
		if dt != "" && dt != xsdString {
			return TypedLiteral(v.String(), dt)
		}
		return PlainLiteral(v.String())
	default:
		return PlainLiteral(fmt.Sprint(t))
	}
}

const xsdString = "http://www.w3.org/2001/XMLSchema#string"
