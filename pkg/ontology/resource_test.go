package ontology

import (
	"strings"
	"testing"

	"github.com/tkw1536/lontod/pkg/rdfutil"
)

const restrictionTurtle = `
@prefix ex: <http://example.org/onto#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .

ex:Gadget
	rdfs:subClassOf [
		a owl:Restriction ;
		owl:onProperty ex:hasWidget ;
		owl:someValuesFrom ex:Widget
	] .
`

func TestExtractorRestriction(t *testing.T) {
	g := parseTestTurtle(t, restrictionTurtle)
	nm := rdfutil.NewNamespaceManager(g.Prefixes)
	ex := NewExtractor(g, nm, nil)

	var restriction rdfutil.Term
	for _, tr := range g.Triples {
		if tr.Obj.Kind == rdfutil.KindBlank {
			restriction = tr.Obj
		}
	}
	if restriction.Value == "" {
		t.Fatalf("no blank-node restriction found in test graph")
	}

	r := ex.Extract(restriction)
	if r.Kind != RestrictionResource {
		t.Fatalf("Extract(restriction).Kind = %v, want RestrictionResource", r.Kind)
	}
	if r.RestrictionKind != "some" {
		t.Fatalf("RestrictionKind = %q, want %q", r.RestrictionKind, "some")
	}
	if r.OnProperty == nil || r.OnProperty.IRI != "http://example.org/onto#hasWidget" {
		t.Fatalf("OnProperty = %+v", r.OnProperty)
	}
}

const setClassTurtle = `
@prefix ex: <http://example.org/onto#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

ex:Combined owl:equivalentClass [
	owl:unionOf ( ex:Widget ex:Gadget )
] .
`

func TestExtractorSetClass(t *testing.T) {
	g := parseTestTurtle(t, setClassTurtle)
	nm := rdfutil.NewNamespaceManager(g.Prefixes)
	ex := NewExtractor(g, nm, nil)

	objs := g.ObjectsOf("http://example.org/onto#Combined", "http://www.w3.org/2002/07/owl#equivalentClass")
	if len(objs) != 1 {
		t.Fatalf("expected one equivalentClass object, got %d", len(objs))
	}
	r := ex.Extract(objs[0])
	if r.Kind != SetClassResource {
		t.Fatalf("Extract(set class).Kind = %v, want SetClassResource", r.Kind)
	}
	if r.SetOperator != "union" {
		t.Fatalf("SetOperator = %q, want union", r.SetOperator)
	}
	if len(r.Members) != 2 {
		t.Fatalf("Members = %+v, want 2 entries", r.Members)
	}
}

func TestExtractorLiteralPassesThrough(t *testing.T) {
	ex := NewExtractor(rdfutil.NewGraph(), rdfutil.NewNamespaceManager(nil), nil)
	r := ex.Extract(rdfutil.LangLiteral("hello", "en"))
	if r.Kind != LiteralResource || r.Lexical != "hello" || r.Lang != "en" {
		t.Fatalf("Extract(literal) = %+v", r)
	}
}

func TestExtractorAgentReference(t *testing.T) {
	g := parseTestTurtle(t, `
@prefix ex: <http://example.org/onto#> .
@prefix foaf: <http://xmlns.com/foaf/0.1/> .
ex:alice foaf:name "Alice" .
`)
	ex := NewExtractor(g, rdfutil.NewNamespaceManager(g.Prefixes), nil)
	r := ex.Extract(rdfutil.IRI("http://example.org/onto#alice"))
	if r.Kind != AgentResource {
		t.Fatalf("Extract(agent-shaped IRI).Kind = %v, want AgentResource", r.Kind)
	}
	if !strings.Contains(r.AgentName, "Alice") {
		t.Fatalf("AgentName = %q", r.AgentName)
	}
}

func TestExtractorAgentFullProps(t *testing.T) {
	g := parseTestTurtle(t, `
@prefix ex: <http://example.org/onto#> .
@prefix sdo: <https://schema.org/> .
ex:bob
	sdo:name "Bob" ;
	sdo:honorificPrefix "Dr." ;
	sdo:identifier "0000-0001" ;
	sdo:email "mailto:bob@example.org" ;
	sdo:url <http://example.org/bob> ;
	sdo:affiliation ex:uni .
ex:uni sdo:name "Example University" ;
	sdo:url <http://example.org/uni> .
`)
	ex := NewExtractor(g, rdfutil.NewNamespaceManager(g.Prefixes), nil)
	r := ex.Extract(rdfutil.IRI("http://example.org/onto#bob"))
	if r.Kind != AgentResource {
		t.Fatalf("Extract(agent).Kind = %v, want AgentResource", r.Kind)
	}
	if r.AgentName != "Bob" {
		t.Fatalf("AgentName = %q, want Bob", r.AgentName)
	}
	if len(r.AgentPrefixes) != 1 || r.AgentPrefixes[0] != "Dr." {
		t.Fatalf("AgentPrefixes = %v, want [Dr.]", r.AgentPrefixes)
	}
	if len(r.AgentIdentifiers) != 1 || r.AgentIdentifiers[0] != "0000-0001" {
		t.Fatalf("AgentIdentifiers = %v, want [0000-0001]", r.AgentIdentifiers)
	}
	if r.AgentEmail != "mailto:bob@example.org" {
		t.Fatalf("AgentEmail = %q", r.AgentEmail)
	}
	if r.AgentHome != "http://example.org/bob" {
		t.Fatalf("AgentHome = %q", r.AgentHome)
	}
	if len(r.AgentAffiliations) != 1 {
		t.Fatalf("AgentAffiliations = %+v, want 1 entry", r.AgentAffiliations)
	}
	aff := r.AgentAffiliations[0]
	if aff.Name != "Example University" || aff.URL != "http://example.org/uni" {
		t.Fatalf("AgentAffiliations[0] = %+v", aff)
	}
}

func TestExtractorAgentWithNoNameCarriesIRI(t *testing.T) {
	g := parseTestTurtle(t, `
@prefix ex: <http://example.org/onto#> .
@prefix foaf: <http://xmlns.com/foaf/0.1/> .
ex:ghost foaf:mbox "mailto:ghost@example.org" .
`)
	ex := NewExtractor(g, rdfutil.NewNamespaceManager(g.Prefixes), nil)
	r := ex.Extract(rdfutil.IRI("http://example.org/onto#ghost"))
	if r.Kind != AgentResource {
		t.Fatalf("Extract(agent).Kind = %v, want AgentResource", r.Kind)
	}
	if r.AgentName != "" {
		t.Fatalf("AgentName = %q, want empty", r.AgentName)
	}
	if r.IRI != "http://example.org/onto#ghost" {
		t.Fatalf("IRI = %q, want the agent's own subject for raw-IRI fallback", r.IRI)
	}
}
