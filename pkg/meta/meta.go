// Package meta loads the bundled meta-ontology: a small fixed vocabulary of
// RDFS/OWL terms (classes, properties, restriction vocabulary) used by
// pkg/ontology and pkg/htmldom to label well-known predicates and types in
// rendered documentation, independent of what any given indexed ontology
// itself declares about them.
package meta

import (
	"embed"
	"fmt"
	"sync"

	"github.com/tkw1536/lontod/pkg/rdfutil"
)

//go:embed *.ttl
var vocabFS embed.FS

const (
	dcTitle       = "http://purl.org/dc/terms/title"
	dcDescription = "http://purl.org/dc/terms/description"
	rdfsLabel     = "http://www.w3.org/2000/01/rdf-schema#label"
	rdfsComment   = "http://www.w3.org/2000/01/rdf-schema#comment"
)

// PROPS is the fixed set of well-known predicate IRIs the renderer looks up
// a MetaProperty for. Predicates outside this set are rendered using only
// what the indexed ontology itself says about them.
var PROPS = []string{
	"http://www.w3.org/2000/01/rdf-schema#subClassOf",
	"http://www.w3.org/2000/01/rdf-schema#subPropertyOf",
	"http://www.w3.org/2000/01/rdf-schema#domain",
	"http://www.w3.org/2000/01/rdf-schema#range",
	"http://www.w3.org/2002/07/owl#equivalentClass",
	"http://www.w3.org/2002/07/owl#equivalentProperty",
	"http://www.w3.org/2002/07/owl#inverseOf",
	"http://www.w3.org/2002/07/owl#unionOf",
	"http://www.w3.org/2002/07/owl#intersectionOf",
	"http://www.w3.org/2002/07/owl#onProperty",
	"http://www.w3.org/2002/07/owl#someValuesFrom",
	"http://www.w3.org/2002/07/owl#allValuesFrom",
	"http://www.w3.org/2002/07/owl#hasValue",
	"http://www.w3.org/2002/07/owl#cardinality",
	"http://www.w3.org/2002/07/owl#minCardinality",
	"http://www.w3.org/2002/07/owl#maxCardinality",
	"http://www.w3.org/2002/07/owl#qualifiedCardinality",
	"http://www.w3.org/2002/07/owl#minQualifiedCardinality",
	"http://www.w3.org/2002/07/owl#maxQualifiedCardinality",
	"http://www.w3.org/2004/02/skos/core#example",
	"http://purl.org/vocab/vann/preferredNamespacePrefix",
}

// MetaProperty is the documentation the meta-ontology carries for one
// well-known predicate.
type MetaProperty struct {
	IRI     string
	Label   string
	Comment string
}

// Meta is the loaded, queryable meta-ontology.
type Meta struct {
	titles       map[string]string
	descriptions map[string]string
	properties   map[string]MetaProperty
}

var (
	once     sync.Once
	instance *Meta
	loadErr  error
)

// Load returns the process-wide meta-ontology singleton, parsing the bundled
// vocabulary files on first use. Every call returns an independently owned
// copy, so callers may freely read the result without synchronizing with
// each other.
func Load() (*Meta, error) {
	once.Do(func() {
		instance, loadErr = build()
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return instance.clone(), nil
}

func build() (*Meta, error) {
	entries, err := vocabFS.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("meta: read bundled vocabulary: %w", err)
	}

	g := rdfutil.NewGraph()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		f, err := vocabFS.Open(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("meta: open %s: %w", entry.Name(), err)
		}
		parsed, err := rdfutil.ParseTurtle(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("meta: parse %s: %w", entry.Name(), err)
		}
		g.Triples = append(g.Triples, parsed.Triples...)
	}

	m := &Meta{
		titles:       make(map[string]string),
		descriptions: make(map[string]string),
		properties:   make(map[string]MetaProperty),
	}
	for _, t := range g.Triples {
		if t.Subj.Kind != rdfutil.KindIRI || t.Obj.Kind != rdfutil.KindLiteral {
			continue
		}
		switch t.Pred.Value {
		case dcTitle:
			m.titles[t.Subj.Value] = t.Obj.Value
		case dcDescription:
			m.descriptions[t.Subj.Value] = t.Obj.Value
		}
	}

	byIRI := make(map[string]MetaProperty)
	for _, t := range g.Triples {
		if t.Subj.Kind != rdfutil.KindIRI || t.Obj.Kind != rdfutil.KindLiteral {
			continue
		}
		p := byIRI[t.Subj.Value]
		p.IRI = t.Subj.Value
		switch t.Pred.Value {
		case rdfsLabel:
			p.Label = t.Obj.Value
		case rdfsComment:
			p.Comment = t.Obj.Value
		default:
			continue
		}
		byIRI[t.Subj.Value] = p
	}
	for _, iri := range PROPS {
		if p, ok := byIRI[iri]; ok {
			m.properties[iri] = p
		}
	}

	return m, nil
}

func (m *Meta) clone() *Meta {
	out := &Meta{
		titles:       make(map[string]string, len(m.titles)),
		descriptions: make(map[string]string, len(m.descriptions)),
		properties:   make(map[string]MetaProperty, len(m.properties)),
	}
	for k, v := range m.titles {
		out.titles[k] = v
	}
	for k, v := range m.descriptions {
		out.descriptions[k] = v
	}
	for k, v := range m.properties {
		out.properties[k] = v
	}
	return out
}

// Title returns the title the meta-ontology assigns to a type IRI (e.g.
// owl:Class), if any. A nil receiver (no meta-ontology loaded) always
// reports not-found rather than panicking, so callers may pass a nil *Meta
// when none is available.
func (m *Meta) Title(typeIRI string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.titles[typeIRI]
	return v, ok
}

// Description returns the description the meta-ontology assigns to a type
// IRI, if any.
func (m *Meta) Description(typeIRI string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.descriptions[typeIRI]
	return v, ok
}

// Property returns the MetaProperty for a well-known predicate IRI, if it is
// a member of PROPS and the bundled vocabulary documents it.
func (m *Meta) Property(iri string) (MetaProperty, bool) {
	if m == nil {
		return MetaProperty{}, false
	}
	p, ok := m.properties[iri]
	return p, ok
}
