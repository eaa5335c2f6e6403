package owlbuild

import (
	"strings"
	"testing"
)

const sampleTurtle = `
@prefix ex: <http://example.org/onto#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix dct: <http://purl.org/dc/terms/> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .

ex: a owl:Ontology ;
  dct:title "Example Ontology" .

ex:Widget a owl:Class ;
  rdfs:label "Widget" .

ex:Gadget a owl:Class ;
  rdfs:subClassOf ex:Widget .
`

func TestBuildProducesAllSerializationsAndFragments(t *testing.T) {
	res, err := Build(strings.NewReader(sampleTurtle), Options{Format: "turtle"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if res.Ontology.PrimaryIRI != "http://example.org/onto#" {
		t.Fatalf("PrimaryIRI = %q", res.Ontology.PrimaryIRI)
	}

	for _, mt := range []MimeType{MimeRDFXML, MimeN3, MimeTurtle, MimeNTriples, MimeTriG, MimeJSONLD, MimeHext, MimeHTML} {
		blob, ok := res.Blobs[mt]
		if !ok || len(blob) == 0 {
			t.Fatalf("missing or empty blob for %s", mt)
		}
	}

	if !strings.Contains(string(res.Blobs[MimeHTML]), "Widget") {
		t.Fatalf("HTML blob missing expected content: %s", res.Blobs[MimeHTML])
	}

	frag, ok := res.Fragments["http://example.org/onto#Widget"]
	if !ok || frag == "" {
		t.Fatalf("missing fragment for Widget: %v", res.Fragments)
	}
}

func TestBuildMissingOntologyErrors(t *testing.T) {
	_, err := Build(strings.NewReader(`@prefix ex: <http://example.org/onto#> . ex:Widget a <http://www.w3.org/2002/07/owl#Class> .`), Options{Format: "turtle"})
	if err == nil {
		t.Fatalf("expected error for a graph with no ontology subject")
	}
}

func TestBuildUnsupportedFormat(t *testing.T) {
	_, err := Build(strings.NewReader(""), Options{Format: "jsonld"})
	if err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
