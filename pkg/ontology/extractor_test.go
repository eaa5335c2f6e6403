package ontology

import (
	"strings"
	"testing"

	"github.com/tkw1536/lontod/pkg/rdfutil"
)

func parseTestTurtle(t *testing.T, src string) *rdfutil.Graph {
	t.Helper()
	g, err := rdfutil.ParseTurtle(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseTurtle() error = %v", err)
	}
	return g
}

const sampleOntology = `
@prefix ex: <http://example.org/onto#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix dcterms: <http://purl.org/dc/terms/> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .

ex:
	a owl:Ontology ;
	dcterms:title "Example Ontology" ;
	dcterms:description "An example." .

ex:Widget
	a owl:Class ;
	rdfs:label "Widget" ;
	rdfs:comment "A thing that is widget-shaped." .

ex:Gadget
	a owl:Class ;
	rdfs:subClassOf ex:Widget .

ex:hasWidget
	a owl:ObjectProperty ;
	rdfs:domain ex:Gadget ;
	rdfs:range ex:Widget .
`

func TestExtractBuildsMetadataAndSections(t *testing.T) {
	g := parseTestTurtle(t, sampleOntology)
	out, err := Extract(g, nil, nil, false)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if out.Title != "Example Ontology" {
		t.Fatalf("Title = %q, want %q", out.Title, "Example Ontology")
	}
	if out.PrimaryIRI != "http://example.org/onto#" {
		t.Fatalf("PrimaryIRI = %q", out.PrimaryIRI)
	}

	var classSection *TypeDefinienda
	for i := range out.Sections {
		if out.Sections[i].Type == Class {
			classSection = &out.Sections[i]
		}
	}
	if classSection == nil {
		t.Fatalf("no Class section found in %+v", out.Sections)
	}
	if len(classSection.Definienda) != 2 {
		t.Fatalf("Class section has %d definienda, want 2", len(classSection.Definienda))
	}
}

func TestExtractSubClassOfYieldsInverse(t *testing.T) {
	g := parseTestTurtle(t, sampleOntology)
	out, err := Extract(g, nil, nil, false)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	found := false
	for _, t2 := range out.Graph.Triples {
		if t2.Pred.Value == ontdocSuperClassOf && t2.Subj.Value == "http://example.org/onto#Widget" {
			found = true
		}
	}
	if !found {
		t.Fatalf("ontdoc:superClassOf inverse not found for Widget")
	}
}

func TestExtractSpecializationSkipsGeneralSection(t *testing.T) {
	g := parseTestTurtle(t, sampleOntology)
	out, err := Extract(g, nil, nil, false)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	for _, section := range out.Sections {
		if section.Type != Property {
			continue
		}
		for _, d := range section.Definienda {
			if d.IRI == "http://example.org/onto#hasWidget" {
				t.Fatalf("hasWidget (an ObjectProperty) should not also appear under the generic Property section")
			}
		}
	}
}

func TestExtractSchemaOrgProjectionIncludesTitle(t *testing.T) {
	g := parseTestTurtle(t, sampleOntology)
	out, err := Extract(g, nil, nil, false)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(out.SchemaOrgJSON, "Example Ontology") {
		t.Fatalf("SchemaOrgJSON = %s, want it to contain the ontology title", out.SchemaOrgJSON)
	}
}
