package ontology

import (
	"encoding/json"
	"sort"

	"github.com/tkw1536/lontod/pkg/meta"
	"github.com/tkw1536/lontod/pkg/rdfutil"
)

// ontProps (ONT_PROPS) is a fixed, ordered list of ontology metadata
// predicates. Nothing reads it: populateMetadata collects only
// dcterms:title, dcterms:description, dcterms:creator, dcterms:contributor
// and rdfs:seeAlso, so publisher, source, license, owl:versionInfo and
// vann:preferredNamespacePrefix do not appear in the metadata block.
var ontProps = []string{
	"http://purl.org/dc/terms/title",
	"http://purl.org/dc/terms/description",
	"http://purl.org/dc/terms/creator",
	"http://purl.org/dc/terms/contributor",
	"http://purl.org/dc/terms/publisher",
	"http://purl.org/dc/terms/source",
	"http://purl.org/dc/terms/license",
	owlVersionInfo,
	"http://purl.org/vocab/vann/preferredNamespacePrefix",
}

const (
	owlOntology    = "http://www.w3.org/2002/07/owl#Ontology"
	skosScheme     = "http://www.w3.org/2004/02/skos/core#ConceptScheme"
	profProfile    = "http://www.w3.org/ns/dx/prof/Profile"
	owlVersionInfo = "http://www.w3.org/2002/07/owl#versionInfo"

	rdfsClass       = "http://www.w3.org/2000/01/rdf-schema#Class"
	owlClass        = "http://www.w3.org/2002/07/owl#Class"
	dctTitle        = "http://purl.org/dc/terms/title"
	dctDescription  = "http://purl.org/dc/terms/description"
	dctSource       = "http://purl.org/dc/terms/source"
	dctLicense      = "http://purl.org/dc/terms/license"
	dctCreator      = "http://purl.org/dc/terms/creator"
	dctContributor  = "http://purl.org/dc/terms/contributor"
	dctPublisher    = "http://purl.org/dc/terms/publisher"
	rdfsSubClassOf  = "http://www.w3.org/2000/01/rdf-schema#subClassOf"
	rdfsSubPropOf   = "http://www.w3.org/2000/01/rdf-schema#subPropertyOf"
	rdfsDomain      = "http://www.w3.org/2000/01/rdf-schema#domain"
	rdfsRange       = "http://www.w3.org/2000/01/rdf-schema#range"
	sdoDomainIncl   = "https://schema.org/domainIncludes"
	sdoRangeIncl    = "https://schema.org/rangeIncludes"

	ontdocSuperClassOf    = "urn:lontod:ontdoc#superClassOf"
	ontdocSuperPropertyOf = "urn:lontod:ontdoc#superPropertyOf"
	ontdocInDomainOf      = "urn:lontod:ontdoc#inDomainOf"
	ontdocInRangeOf       = "urn:lontod:ontdoc#inRangeOf"
	ontdocInDomainInclOf  = "urn:lontod:ontdoc#inDomainIncludesOf"
	ontdocInRangeInclOf   = "urn:lontod:ontdoc#inRangeIncludesOf"
	ontdocHasMember       = "urn:lontod:ontdoc#hasMember"
	ontdocRestriction     = "urn:lontod:ontdoc#restriction"
)

// titleAliases and descriptionAliases are the alternate spellings OntDoc
// inference canonicalizes onto dcterms:title/dcterms:description.
var titleAliases = []string{
	"http://purl.org/dc/elements/1.1/title",
	rdfsLabel,
	"http://www.w3.org/2004/02/skos/core#prefLabel",
	"https://schema.org/name",
}

var descriptionAliases = []string{
	"http://purl.org/dc/elements/1.1/description",
	"http://www.w3.org/2000/01/rdf-schema#comment",
	"http://www.w3.org/2004/02/skos/core#definition",
	"https://schema.org/description",
}

// kindIRI maps each IndexedProperty to the rdf:type object that marks it,
// and kindSpecializations lists the more specific kinds that pre-empt a
// subject from appearing under this (more general) section, per spec.md
// §4.6 step 4.
func kindIRI(k IndexedProperty) string {
	switch k {
	case Class:
		return owlClass
	case Property:
		return "http://www.w3.org/1999/02/22-rdf-syntax-ns#Property"
	case ObjectProperty:
		return "http://www.w3.org/2002/07/owl#ObjectProperty"
	case DatatypeProperty:
		return "http://www.w3.org/2002/07/owl#DatatypeProperty"
	case AnnotationProperty:
		return "http://www.w3.org/2002/07/owl#AnnotationProperty"
	case FunctionalProperty:
		return "http://www.w3.org/2002/07/owl#FunctionalProperty"
	case InverseFunctionalProperty:
		return "http://www.w3.org/2002/07/owl#InverseFunctionalProperty"
	case NamedIndividual:
		return "http://www.w3.org/2002/07/owl#NamedIndividual"
	default:
		return ""
	}
}

// KindTypeIRI exposes kindIRI for renderers outside this package that need
// to look up meta-ontology documentation for a section's rdf:type IRI.
func KindTypeIRI(k IndexedProperty) string { return kindIRI(k) }

func kindSpecializations(k IndexedProperty) []IndexedProperty {
	if k == Property {
		return []IndexedProperty{ObjectProperty, DatatypeProperty, AnnotationProperty, FunctionalProperty, InverseFunctionalProperty}
	}
	return nil
}

// sectionOrder is the fixed rendering order of TypeDefinienda sections.
var sectionOrder = []IndexedProperty{
	Class, Property, ObjectProperty, DatatypeProperty, AnnotationProperty,
	FunctionalProperty, InverseFunctionalProperty, NamedIndividual,
}

// propsFor lists the predicates a Definiendum of a given kind shows in its
// property table.
func propsFor(k IndexedProperty) []string {
	common := []string{dctTitle, dctDescription, rdfsSubClassOf, rdfsSubPropOf, rdfsDomain, rdfsRange,
		"http://www.w3.org/2002/07/owl#equivalentClass", "http://www.w3.org/2002/07/owl#equivalentProperty",
		"http://www.w3.org/2002/07/owl#inverseOf", ontdocSuperClassOf, ontdocSuperPropertyOf,
		ontdocInDomainOf, ontdocInRangeOf, ontdocHasMember, skosExample}
	return common
}

// Extract runs the full C6 pipeline over a freshly parsed graph: normalize
// and sort, apply OntDoc inference, and build the render-ready Ontology
// value (metadata block, per-kind sections, namespaces, schema.org
// projection). rawMarkdown selects ModeMarkdownRaw over
// ModeMarkdownSanitized for every prose literal produced.
func Extract(g *rdfutil.Graph, m *meta.Meta, alwaysNamespaces map[string]string, rawMarkdown bool) (*Ontology, error) {
	sorted := g.Sort()
	inferred := applyOntDocInference(sorted)
	nm := rdfutil.NewNamespaceManager(inferred.Prefixes)
	ex := NewExtractor(inferred, nm, m)
	ex.RawMarkdown = rawMarkdown

	out := &Ontology{Graph: inferred}

	ontIRI := findOntologyIRI(inferred)
	out.PrimaryIRI = ontIRI
	if ontIRI != "" {
		populateMetadata(out, ex, inferred, ontIRI)
	}

	for _, kind := range sectionOrder {
		td := buildSection(ex, inferred, nm, kind)
		if len(td.Definienda) > 0 {
			out.Sections = append(out.Sections, td)
		}
	}

	out.Namespaces = inferred.UsedNamespaces(alwaysNamespaces)
	out.SchemaOrgJSON = buildSchemaOrgProjection(inferred, ontIRI)

	return out, nil
}

// findOntologyIRI locates the document subject: the first IRI typed
// owl:Ontology, else skos:ConceptScheme, else prof:Profile.
func findOntologyIRI(g *rdfutil.Graph) string {
	for _, typeIRI := range []string{owlOntology, skosScheme, profProfile} {
		if subs := g.SubjectsOfType(typeIRI); len(subs) > 0 {
			return subs[0].Value
		}
	}
	return ""
}

func populateMetadata(out *Ontology, ex *Extractor, g *rdfutil.Graph, ontIRI string) {
	if titles := g.ObjectsOf(ontIRI, dctTitle); len(titles) > 0 {
		out.Title = titles[0].Value
	}
	if descs := g.ObjectsOf(ontIRI, dctDescription); len(descs) > 0 {
		out.Description = descs[0].Value
	}
	for _, obj := range g.ObjectsOf(ontIRI, dctCreator) {
		out.Creators = append(out.Creators, ex.Extract(obj))
	}
	for _, obj := range g.ObjectsOf(ontIRI, dctContributor) {
		out.Contributors = append(out.Contributors, ex.Extract(obj))
	}
	for _, obj := range g.ObjectsOf(ontIRI, "http://www.w3.org/2000/01/rdf-schema#seeAlso") {
		out.SeeAlso = append(out.SeeAlso, ex.Extract(obj))
	}
}

func buildSection(ex *Extractor, g *rdfutil.Graph, nm *rdfutil.NamespaceManager, kind IndexedProperty) TypeDefinienda {
	td := TypeDefinienda{Type: kind}
	typeIRI := kindIRI(kind)
	if typeIRI == "" {
		return td
	}
	specializations := kindSpecializations(kind)

	for _, subj := range g.SubjectsOfType(typeIRI) {
		if subj.Kind != rdfutil.KindIRI {
			continue
		}
		if isMoreSpecific(g, subj.Value, specializations) {
			continue
		}
		td.Definienda = append(td.Definienda, buildDefiniendum(ex, g, nm, subj.Value, kind))
	}
	return td
}

func isMoreSpecific(g *rdfutil.Graph, subj string, specializations []IndexedProperty) bool {
	for _, spec := range specializations {
		specIRI := kindIRI(spec)
		for _, t := range g.ObjectsOf(subj, rdfType) {
			if t.Kind == rdfutil.KindIRI && t.Value == specIRI {
				return true
			}
		}
	}
	return false
}

func buildDefiniendum(ex *Extractor, g *rdfutil.Graph, nm *rdfutil.NamespaceManager, iri string, kind IndexedProperty) Definiendum {
	d := Definiendum{IRI: iri, Primary: kind}
	if qn, ok := nm.QName(iri); ok {
		d.QName = qn
	}
	if titles := g.ObjectsOf(iri, dctTitle); len(titles) > 0 {
		d.Label = titles[0].Value
	}
	if descs := g.ObjectsOf(iri, dctDescription); len(descs) > 0 {
		d.Comment = descs[0].Value
	}
	for _, t := range g.ObjectsOf(iri, rdfType) {
		if t.Kind != rdfutil.KindIRI {
			continue
		}
		d.Types = append(d.Types, typeFromIRI(t.Value))
	}

	for _, pred := range propsFor(kind) {
		for _, obj := range g.ObjectsOf(iri, pred) {
			predTerm := rdfutil.IRI(pred)
			if pred == rdfsSubClassOf && isRestriction(g, obj) {
				predTerm = rdfutil.IRI(ontdocRestriction)
			}
			resource := ex.Extract(obj)
			if pred == skosExample && resource.Kind == LiteralResource {
				resource.IsExample = true
			}
			d.Pairs = append(d.Pairs, PropertyResourcePair{
				Predicate: ex.Extract(predTerm),
				Object:    resource,
			})
		}
	}
	return d
}

const skosExample = "http://www.w3.org/2004/02/skos/core#example"

func isRestriction(g *rdfutil.Graph, t rdfutil.Term) bool {
	key := t.Value
	for _, o := range g.ObjectsOf(key, rdfType) {
		if o.Kind == rdfutil.KindIRI && o.Value == owlRestriction {
			return true
		}
	}
	return false
}

func typeFromIRI(iri string) IndexedProperty {
	for _, k := range sectionOrder {
		if kindIRI(k) == iri {
			return k
		}
	}
	return Class
}

// applyOntDocInference runs the fixed syntactic rewrites of spec.md §4.6
// step 2 over g, returning a new graph with the original triples plus the
// inferred ones.
func applyOntDocInference(g *rdfutil.Graph) *rdfutil.Graph {
	out := g.Copy()

	var added []rdfutil.Triple
	for _, t := range out.Triples {
		// rdfs:Class -> owl:Class
		if t.Pred.Value == rdfType && t.Obj.Kind == rdfutil.KindIRI && t.Obj.Value == rdfsClass {
			added = append(added, rdfutil.Triple{Subj: t.Subj, Pred: t.Pred, Obj: rdfutil.IRI(owlClass)})
		}
		// title/description alias canonicalization
		if containsStr(titleAliases, t.Pred.Value) {
			added = append(added, rdfutil.Triple{Subj: t.Subj, Pred: rdfutil.IRI(dctTitle), Obj: t.Obj})
		}
		if containsStr(descriptionAliases, t.Pred.Value) {
			added = append(added, rdfutil.Triple{Subj: t.Subj, Pred: rdfutil.IRI(dctDescription), Obj: t.Obj})
		}
		// inverse relations
		switch t.Pred.Value {
		case rdfsSubClassOf:
			added = append(added, rdfutil.Triple{Subj: t.Obj, Pred: rdfutil.IRI(ontdocSuperClassOf), Obj: t.Subj})
		case rdfsSubPropOf:
			added = append(added, rdfutil.Triple{Subj: t.Obj, Pred: rdfutil.IRI(ontdocSuperPropertyOf), Obj: t.Subj})
		case rdfsDomain:
			added = append(added, rdfutil.Triple{Subj: t.Obj, Pred: rdfutil.IRI(ontdocInDomainOf), Obj: t.Subj})
		case rdfsRange:
			added = append(added, rdfutil.Triple{Subj: t.Obj, Pred: rdfutil.IRI(ontdocInRangeOf), Obj: t.Subj})
		case sdoDomainIncl:
			added = append(added, rdfutil.Triple{Subj: t.Obj, Pred: rdfutil.IRI(ontdocInDomainInclOf), Obj: t.Subj})
		case sdoRangeIncl:
			added = append(added, rdfutil.Triple{Subj: t.Obj, Pred: rdfutil.IRI(ontdocInRangeInclOf), Obj: t.Subj})
		case rdfType:
			added = append(added, rdfutil.Triple{Subj: t.Obj, Pred: rdfutil.IRI(ontdocHasMember), Obj: t.Subj})
		}
		// creator/contributor/publisher are marked as agents
		if t.Pred.Value == dctCreator || t.Pred.Value == dctContributor || t.Pred.Value == dctPublisher {
			if t.Obj.Kind != rdfutil.KindLiteral {
				added = append(added, rdfutil.Triple{Subj: t.Obj, Pred: rdfutil.IRI(rdfType), Obj: rdfutil.IRI(provAgent)})
			}
		}
		// agent name/email copied from foaf to sdo
		switch t.Pred.Value {
		case foafName:
			added = append(added, rdfutil.Triple{Subj: t.Subj, Pred: rdfutil.IRI("https://schema.org/name"), Obj: t.Obj})
		case foafMbox:
			added = append(added, rdfutil.Triple{Subj: t.Subj, Pred: rdfutil.IRI("https://schema.org/email"), Obj: t.Obj})
		}
		// onProperty marks the subject as a Restriction
		if t.Pred.Value == owlOnProperty {
			added = append(added, rdfutil.Triple{Subj: t.Subj, Pred: rdfutil.IRI(rdfType), Obj: rdfutil.IRI(owlRestriction)})
		}
		// union/intersection marks the subject as a Class
		if t.Pred.Value == owlUnionOf || t.Pred.Value == owlIntersectionOf {
			added = append(added, rdfutil.Triple{Subj: t.Subj, Pred: rdfutil.IRI(rdfType), Obj: rdfutil.IRI(owlClass)})
		}
	}

	out.Triples = append(out.Triples, added...)
	return out.Sort()
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// buildSchemaOrgProjection serializes a second, small graph mapping
// dcterms:* onto sdo:* on the ontology IRI into deterministically ordered
// JSON-LD, per spec.md §4.6 step 6. Agent name/email values pass through for
// publisher/creator/contributor.
func buildSchemaOrgProjection(g *rdfutil.Graph, ontIRI string) string {
	if ontIRI == "" {
		return "{}"
	}

	node := map[string]any{"@id": ontIRI, "@type": "Ontology"}
	if titles := g.ObjectsOf(ontIRI, dctTitle); len(titles) > 0 {
		node["name"] = titles[0].Value
	}
	if descs := g.ObjectsOf(ontIRI, dctDescription); len(descs) > 0 {
		node["description"] = descs[0].Value
	}

	agentField := func(pred, sdoKey string) {
		var agents []map[string]string
		for _, obj := range g.ObjectsOf(ontIRI, pred) {
			a := map[string]string{}
			if names := g.ObjectsOf(obj.Value, "https://schema.org/name"); len(names) > 0 {
				a["name"] = names[0].Value
			}
			if emails := g.ObjectsOf(obj.Value, "https://schema.org/email"); len(emails) > 0 {
				a["email"] = emails[0].Value
			}
			if len(a) == 0 && obj.Kind == rdfutil.KindIRI {
				a["@id"] = obj.Value
			}
			agents = append(agents, a)
		}
		if len(agents) > 0 {
			sort.Slice(agents, func(i, j int) bool { return agents[i]["name"] < agents[j]["name"] })
			node[sdoKey] = agents
		}
	}
	agentField(dctCreator, "creator")
	agentField(dctContributor, "contributor")
	agentField(dctPublisher, "publisher")

	raw, err := json.Marshal(node)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
