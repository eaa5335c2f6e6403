package ontology

import (
	"strconv"

	"github.com/tkw1536/lontod/pkg/meta"
	"github.com/tkw1536/lontod/pkg/rdfutil"
)

const (
	rdfType              = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	rdfsLabel            = "http://www.w3.org/2000/01/rdf-schema#label"
	owlRestriction       = "http://www.w3.org/2002/07/owl#Restriction"
	owlOnProperty        = "http://www.w3.org/2002/07/owl#onProperty"
	owlSomeValuesFrom    = "http://www.w3.org/2002/07/owl#someValuesFrom"
	owlAllValuesFrom     = "http://www.w3.org/2002/07/owl#allValuesFrom"
	owlHasValue          = "http://www.w3.org/2002/07/owl#hasValue"
	owlCardinality       = "http://www.w3.org/2002/07/owl#cardinality"
	owlMinCardinality    = "http://www.w3.org/2002/07/owl#minCardinality"
	owlMaxCardinality    = "http://www.w3.org/2002/07/owl#maxCardinality"
	owlQualCardinality   = "http://www.w3.org/2002/07/owl#qualifiedCardinality"
	owlMinQualCard       = "http://www.w3.org/2002/07/owl#minQualifiedCardinality"
	owlMaxQualCard       = "http://www.w3.org/2002/07/owl#maxQualifiedCardinality"
	owlOnClass           = "http://www.w3.org/2002/07/owl#onClass"
	owlUnionOf           = "http://www.w3.org/2002/07/owl#unionOf"
	owlIntersectionOf    = "http://www.w3.org/2002/07/owl#intersectionOf"
	provAgent            = "http://www.w3.org/ns/prov#Agent"
	foafName             = "http://xmlns.com/foaf/0.1/name"
	foafMbox             = "http://xmlns.com/foaf/0.1/mbox"
	foafHomepage         = "http://xmlns.com/foaf/0.1/homepage"
	sdoName              = "https://schema.org/name"
	sdoHonorificPrefix   = "https://schema.org/honorificPrefix"
	sdoIdentifier        = "https://schema.org/identifier"
	sdoURL               = "https://schema.org/url"
	sdoEmail             = "https://schema.org/email"
	sdoAffiliation       = "https://schema.org/affiliation"
	rdfFirst             = "http://www.w3.org/1999/02/22-rdf-syntax-ns#first"
	rdfRest              = "http://www.w3.org/1999/02/22-rdf-syntax-ns#rest"
	rdfNil               = "http://www.w3.org/1999/02/22-rdf-syntax-ns#nil"
)

// Extractor dispatches RDF objects to their documentation-facing Resource
// representation: plain literals pass through, IRI/blank-node objects are
// inspected for OWL restriction, set-class, or PROV agent shape, and
// anything else resolves to a plain reference or (for an unrecognised
// blank node) an opaque BlankNodeResource.
type Extractor struct {
	g    *rdfutil.Graph
	nm   *rdfutil.NamespaceManager
	meta *meta.Meta

	// RawMarkdown selects ModeMarkdownRaw over ModeMarkdownSanitized for
	// every prose literal this Extractor produces. Zero value (false)
	// keeps the safe default.
	RawMarkdown bool
}

// NewExtractor builds a resource Extractor over a single ontology's graph.
// m may be nil, in which case reference titles fall back to the ontology's
// own rdfs:label/qname/IRI only.
func NewExtractor(g *rdfutil.Graph, nm *rdfutil.NamespaceManager, m *meta.Meta) *Extractor {
	return &Extractor{g: g, nm: nm, meta: m}
}

// proseDatatypes are the XSD/RDF datatypes whose lexical form is free text
// worth running through Markdown; anything else (numbers, dates, booleans,
// custom datatypes) renders as plain escaped text regardless of mode.
var proseDatatypes = map[string]bool{
	"": true, // plain literal
	"http://www.w3.org/2001/XMLSchema#string":              true,
	"http://www.w3.org/1999/02/22-rdf-syntax-ns#langString": true,
}

// literalMode decides the rendering dispatch for one literal. Non-prose
// datatypes always render as text; prose literals render as Markdown,
// sanitized unless this Extractor was built for raw output.
func (e *Extractor) literalMode(datatype, lang string) LiteralMode {
	if lang == "" && !proseDatatypes[datatype] {
		return ModeText
	}
	if e.RawMarkdown {
		return ModeMarkdownRaw
	}
	return ModeMarkdownSanitized
}

// Extract converts one RDF term into its documentation Resource.
func (e *Extractor) Extract(t rdfutil.Term) Resource {
	switch t.Kind {
	case rdfutil.KindLiteral:
		r := Resource{Kind: LiteralResource, Lexical: t.Value, Lang: t.Lang, Datatype: t.Datatype}
		r.Mode = e.literalMode(t.Datatype, t.Lang)
		return r
	case rdfutil.KindIRI:
		return e.extractNode(t.Value)
	case rdfutil.KindBlank:
		return e.extractBlank(t.Value)
	default:
		return Resource{Kind: LiteralResource, Lexical: t.Value}
	}
}

func (e *Extractor) extractNode(iri string) Resource {
	if e.hasType(iri, owlRestriction) {
		return e.extractRestriction(iri)
	}
	if e.hasType(iri, provAgent) || e.looksLikeAgent(iri) {
		return e.extractAgent(iri)
	}
	return Resource{Kind: ResourceReference, IRI: iri, QName: e.qname(iri), Label: e.labelOf(iri)}
}

func (e *Extractor) extractBlank(label string) Resource {
	if e.hasType(label, owlRestriction) {
		return e.extractRestriction(label)
	}
	if members, op, ok := e.extractSetClass(label); ok {
		return Resource{Kind: SetClassResource, SetOperator: op, Members: members}
	}
	if e.looksLikeAgent(label) {
		return e.extractAgent(label)
	}
	return Resource{Kind: BlankNodeResource, IRI: label}
}

func (e *Extractor) hasType(subj, typeIRI string) bool {
	for _, o := range e.g.ObjectsOf(subj, rdfType) {
		if o.Kind == rdfutil.KindIRI && o.Value == typeIRI {
			return true
		}
	}
	return false
}

func (e *Extractor) looksLikeAgent(subj string) bool {
	return len(e.g.ObjectsOf(subj, foafName)) > 0 ||
		len(e.g.ObjectsOf(subj, foafMbox)) > 0 ||
		len(e.g.ObjectsOf(subj, sdoName)) > 0
}

// extractAgent builds an AgentResource from the AGENT_PROPS predicates
// present on subj: foaf/sdo name, honorific prefix, identifier, url, email,
// affiliation (spec.md §4.5). IRI always carries subj, so the renderer can
// fall back to the raw IRI when no name was found.
func (e *Extractor) extractAgent(subj string) Resource {
	r := Resource{Kind: AgentResource, IRI: subj}
	if name := e.firstLiteral(subj, sdoName, foafName); name != "" {
		r.AgentName = name
	} else if labels := e.g.ObjectsOf(subj, rdfsLabel); len(labels) > 0 {
		r.AgentName = labels[0].Value
	}
	if email := e.firstValue(subj, sdoEmail, foafMbox); email != "" {
		r.AgentEmail = email
	}
	if home := e.firstValue(subj, sdoURL, foafHomepage); home != "" {
		r.AgentHome = home
	}
	for _, o := range e.g.ObjectsOf(subj, sdoHonorificPrefix) {
		r.AgentPrefixes = append(r.AgentPrefixes, o.Value)
	}
	for _, o := range e.g.ObjectsOf(subj, sdoIdentifier) {
		r.AgentIdentifiers = append(r.AgentIdentifiers, o.Value)
	}
	for _, o := range e.g.ObjectsOf(subj, sdoAffiliation) {
		r.AgentAffiliations = append(r.AgentAffiliations, e.extractAffiliation(o.Value))
	}
	return r
}

// extractAffiliation recurses one level into an sdo:affiliation object,
// reading only name and url — never a further nested affiliation or any
// other AGENT_PROPS predicate, per spec.md §4.5.
func (e *Extractor) extractAffiliation(subj string) Affiliation {
	return Affiliation{
		Name: e.firstLiteral(subj, sdoName, foafName),
		URL:  e.firstValue(subj, sdoURL, foafHomepage),
	}
}

// firstLiteral returns the value of the first literal object found across
// preds, tried in order.
func (e *Extractor) firstLiteral(subj string, preds ...string) string {
	for _, pred := range preds {
		for _, o := range e.g.ObjectsOf(subj, pred) {
			if o.Kind == rdfutil.KindLiteral {
				return o.Value
			}
		}
	}
	return ""
}

// firstValue returns the value of the first object (of any kind) found
// across preds, tried in order.
func (e *Extractor) firstValue(subj string, preds ...string) string {
	for _, pred := range preds {
		if objs := e.g.ObjectsOf(subj, pred); len(objs) > 0 {
			return objs[0].Value
		}
	}
	return ""
}

func (e *Extractor) extractRestriction(subj string) Resource {
	r := Resource{Kind: RestrictionResource}
	if props := e.g.ObjectsOf(subj, owlOnProperty); len(props) > 0 {
		ref := e.Extract(props[0])
		r.OnProperty = &ref
	}

	switch {
	case e.setOne(&r, subj, owlSomeValuesFrom, "some"):
	case e.setOne(&r, subj, owlAllValuesFrom, "all"):
	case e.setOne(&r, subj, owlHasValue, "hasValue"):
	case e.setCard(&r, subj, owlCardinality):
	case e.setCard(&r, subj, owlMinCardinality):
	case e.setCard(&r, subj, owlMaxCardinality):
	case e.setQualCard(&r, subj, owlQualCardinality):
	case e.setQualCard(&r, subj, owlMinQualCard):
	case e.setQualCard(&r, subj, owlMaxQualCard):
	}
	return r
}

func (e *Extractor) setOne(r *Resource, subj, pred, kind string) bool {
	objs := e.g.ObjectsOf(subj, pred)
	if len(objs) == 0 {
		return false
	}
	val := e.Extract(objs[0])
	r.RestrictionKind = kind
	r.RestrictionVal = &val
	return true
}

func (e *Extractor) setCard(r *Resource, subj, pred string) bool {
	objs := e.g.ObjectsOf(subj, pred)
	if len(objs) == 0 {
		return false
	}
	n, err := strconv.Atoi(objs[0].Value)
	if err != nil {
		return false
	}
	r.RestrictionKind = cardKindName(pred)
	r.Cardinality = Cardinality{Kind: NumericCardinality, N: n}
	return true
}

func (e *Extractor) setQualCard(r *Resource, subj, pred string) bool {
	objs := e.g.ObjectsOf(subj, pred)
	if len(objs) == 0 {
		return false
	}
	n, err := strconv.Atoi(objs[0].Value)
	if err != nil {
		return false
	}
	card := Cardinality{Kind: ReferenceCardinality, N: n}
	if classes := e.g.ObjectsOf(subj, owlOnClass); len(classes) > 0 {
		cls := e.Extract(classes[0])
		card.Class = &cls
	}
	r.RestrictionKind = cardKindName(pred)
	r.Cardinality = card
	return true
}

func cardKindName(pred string) string {
	switch pred {
	case owlCardinality:
		return "cardinality"
	case owlMinCardinality:
		return "minCardinality"
	case owlMaxCardinality:
		return "maxCardinality"
	case owlQualCardinality:
		return "qualifiedCardinality"
	case owlMinQualCard:
		return "minQualifiedCardinality"
	case owlMaxQualCard:
		return "maxQualifiedCardinality"
	default:
		return ""
	}
}

// extractSetClass recognises an owl:unionOf/owl:intersectionOf blank node
// and walks its rdf:List into a flat member slice. ok is false if subj is
// not a set-class expression.
func (e *Extractor) extractSetClass(subj string) ([]Resource, string, bool) {
	if objs := e.g.ObjectsOf(subj, owlUnionOf); len(objs) > 0 {
		return e.walkList(objs[0]), "union", true
	}
	if objs := e.g.ObjectsOf(subj, owlIntersectionOf); len(objs) > 0 {
		return e.walkList(objs[0]), "intersection", true
	}
	return nil, "", false
}

func (e *Extractor) walkList(head rdfutil.Term) []Resource {
	var out []Resource
	cur := head
	seen := map[string]bool{}
	for {
		key := strconv.Itoa(int(cur.Kind)) + cur.Value
		if seen[key] {
			break
		}
		seen[key] = true
		if cur.Kind == rdfutil.KindIRI && cur.Value == rdfNil {
			break
		}
		firsts := e.g.ObjectsOf(cur.Value, rdfFirst)
		if len(firsts) == 0 {
			break
		}
		out = append(out, e.Extract(firsts[0]))
		rests := e.g.ObjectsOf(cur.Value, rdfRest)
		if len(rests) == 0 {
			break
		}
		cur = rests[0]
	}
	return out
}

func (e *Extractor) qname(iri string) string {
	if e.nm == nil {
		return ""
	}
	qn, ok := e.nm.QName(iri)
	if !ok {
		return ""
	}
	return qn
}

// labelOf finds a display title for a reference: the ontology's own
// rdfs:label/dcterms:title on the node, else the meta-ontology's title for
// that IRI when it names a well-known type (e.g. owl:Class), else empty
// (the renderer falls back further to qname, then the bare IRI).
func (e *Extractor) labelOf(iri string) string {
	if labels := e.g.ObjectsOf(iri, rdfsLabel); len(labels) > 0 {
		return labels[0].Value
	}
	if titles := e.g.ObjectsOf(iri, dctTitle); len(titles) > 0 {
		return titles[0].Value
	}
	if e.meta != nil {
		if title, ok := e.meta.Title(iri); ok {
			return title
		}
	}
	return ""
}
