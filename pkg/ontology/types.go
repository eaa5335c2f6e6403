// Package ontology builds the in-memory representation of a single indexed
// ontology from a sorted, inference-expanded RDF graph: the typed resources
// it defines (classes, properties, individuals), the documentation
// extracted for each, and the namespace/metadata blocks a renderer needs.
package ontology

import "github.com/tkw1536/lontod/pkg/rdfutil"

// IndexedProperty is one of the fixed kinds a definiendum may be classified
// under. Order is significant: it is also the section order of the
// generated documentation.
type IndexedProperty int

const (
	Class IndexedProperty = iota
	Property
	ObjectProperty
	DatatypeProperty
	AnnotationProperty
	FunctionalProperty
	InverseFunctionalProperty
	NamedIndividual
)

// String returns the rdf:type local name associated with this classification.
func (p IndexedProperty) String() string {
	switch p {
	case Class:
		return "Class"
	case Property:
		return "Property"
	case ObjectProperty:
		return "ObjectProperty"
	case DatatypeProperty:
		return "DatatypeProperty"
	case AnnotationProperty:
		return "AnnotationProperty"
	case FunctionalProperty:
		return "FunctionalProperty"
	case InverseFunctionalProperty:
		return "InverseFunctionalProperty"
	case NamedIndividual:
		return "NamedIndividual"
	default:
		return "Unknown"
	}
}

// LiteralMode selects how a LiteralResource's lexical form is rendered,
// per spec.md §4.7's "text, sanitized Markdown, raw Markdown" dispatch.
type LiteralMode int

const (
	// ModeText renders the lexical form as escaped text: used for
	// non-prose datatypes (numbers, dates, booleans, ...) where running
	// it through a Markdown parser would not make sense.
	ModeText LiteralMode = iota
	// ModeMarkdownSanitized renders the lexical form as Markdown, then
	// pipes the resulting HTML through the §6.2 sanitizer allow-list.
	ModeMarkdownSanitized
	// ModeMarkdownRaw renders the lexical form as Markdown and emits the
	// resulting HTML verbatim, unsanitized (trusted-source builds only).
	ModeMarkdownRaw
)

// ResourceKind tags the variant held by a Resource value.
type ResourceKind int

const (
	LiteralResource ResourceKind = iota
	ResourceReference
	AgentResource
	RestrictionResource
	SetClassResource
	BlankNodeResource
)

// Resource is a tagged union over the different shapes an RDF object can
// take once extracted for documentation: a plain literal, a reference to
// another named resource, a PROV agent, an OWL restriction, a set-class
// expression (unionOf/intersectionOf), or an opaque blank node fallback.
type Resource struct {
	Kind ResourceKind

	// LiteralResource
	Lexical   string
	Lang      string
	Datatype  string
	IsExample bool
	Mode      LiteralMode

	// ResourceReference
	IRI   string
	QName string
	Label string

	// AgentResource. IRI carries the agent's own subject (URI or blank node
	// label), used as the fallback display when no name was found, per
	// spec.md §4.5 ("Agents with no name render as the raw IRI").
	AgentName         string
	AgentEmail        string
	AgentHome         string
	AgentPrefixes     []string
	AgentIdentifiers  []string
	AgentAffiliations []Affiliation

	// RestrictionResource
	OnProperty *Resource
	Cardinality
	RestrictionKind string // "some" | "all" | "hasValue" | "cardinality" | ...
	RestrictionVal  *Resource

	// SetClassResource
	SetOperator string // "union" | "intersection"
	Members     []Resource
}

// Affiliation is the one-level recursion spec.md §4.5 allows into an
// agent's sdo:affiliation object: its own name and url only, never a
// further nested affiliation or the rest of AGENT_PROPS.
type Affiliation struct {
	Name string
	URL  string
}

// CardinalityKind distinguishes plain numeric cardinality restrictions
// (owl:cardinality/minCardinality/maxCardinality) from qualified ones
// (owl:*QualifiedCardinality), whose Class carries the owl:onClass reference
// when present. someValuesFrom/allValuesFrom/hasValue restrictions use
// Resource.RestrictionVal instead and leave Cardinality unset.
type CardinalityKind int

const (
	NoCardinality CardinalityKind = iota
	NumericCardinality
	ReferenceCardinality
)

// Cardinality holds the payload of a cardinality-flavored restriction.
type Cardinality struct {
	Kind  CardinalityKind
	N     int
	Class *Resource
}

// PropertyResourcePair couples one predicate with one extracted object, the
// unit the documentation renderer iterates over per definiendum.
type PropertyResourcePair struct {
	Predicate Resource
	Object    Resource
}

// Definiendum is a single documented resource (class, property, or
// individual) within an Ontology: its IRI, classification, and the
// predicate/object pairs asserted about it.
type Definiendum struct {
	IRI        string
	QName      string
	Fragment   string
	Types      []IndexedProperty
	Primary    IndexedProperty
	Label      string
	Comment    string
	Pairs      []PropertyResourcePair
	Deprecated bool
}

// TypeDefinienda groups the definienda documented under one IndexedProperty
// section, in the order they should be rendered.
type TypeDefinienda struct {
	Type       IndexedProperty
	Definienda []Definiendum
}

// Ontology is the fully extracted, render-ready representation of one
// indexed ontology document.
type Ontology struct {
	PrimaryIRI    string
	AlternateIRIs []string
	Title         string
	Description   string
	Creators      []Resource
	Contributors  []Resource
	SeeAlso       []Resource
	Sections      []TypeDefinienda
	Namespaces    [][2]string
	SchemaOrgJSON string
	Graph         *rdfutil.Graph
}
