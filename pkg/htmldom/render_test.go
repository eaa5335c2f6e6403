package htmldom

import (
	"strings"
	"testing"

	"github.com/tkw1536/lontod/pkg/ontology"
	"github.com/tkw1536/lontod/pkg/rdfutil"
)

func TestRenderOntologyProducesValidSkeleton(t *testing.T) {
	o := &ontology.Ontology{
		PrimaryIRI:    "http://example.org/onto#",
		Title:         "Example",
		SchemaOrgJSON: `{"@id":"http://example.org/onto#"}`,
		Sections: []ontology.TypeDefinienda{
			{
				Type: ontology.Class,
				Definienda: []ontology.Definiendum{
					{IRI: "http://example.org/onto#Widget", QName: "ex:Widget", Primary: ontology.Class},
				},
			},
		},
		Namespaces: [][2]string{{"ex", "http://example.org/onto#"}},
	}
	nm := rdfutil.NewNamespaceManager(map[string]string{"ex": "http://example.org/onto#"})

	node, _, err := RenderOntology(o, nil, nm)
	if err != nil {
		t.Fatalf("RenderOntology() error = %v", err)
	}
	out, err := RenderString(node)
	if err != nil {
		t.Fatalf("RenderString() error = %v", err)
	}
	if !strings.Contains(out, "<title>http://example.org/onto#</title>") {
		t.Fatalf("missing title in output: %s", out)
	}
	if !strings.Contains(out, "ex:Widget") {
		t.Fatalf("missing definiendum qname in output")
	}
	if !strings.Contains(out, `id="schema.org"`) {
		t.Fatalf("missing schema.org script block")
	}
}

func TestRenderOntologyFragmentsAreStableAcrossRuns(t *testing.T) {
	o := &ontology.Ontology{
		PrimaryIRI: "http://example.org/onto#",
		Sections: []ontology.TypeDefinienda{
			{Type: ontology.Class, Definienda: []ontology.Definiendum{
				{IRI: "http://example.org/onto#Widget", Primary: ontology.Class},
			}},
		},
	}
	nm := rdfutil.NewNamespaceManager(nil)

	n1, _, err := RenderOntology(o, nil, nm)
	if err != nil {
		t.Fatalf("RenderOntology() error = %v", err)
	}
	n2, _, err := RenderOntology(o, nil, nm)
	if err != nil {
		t.Fatalf("RenderOntology() error = %v", err)
	}
	s1, _ := RenderString(n1)
	s2, _ := RenderString(n2)
	if s1 != s2 {
		t.Fatalf("rendering the same Ontology twice produced different output")
	}
}

func TestRenderLiteralDispatchesOnMode(t *testing.T) {
	tests := []struct {
		name string
		r    ontology.Resource
		want string
	}{
		{
			name: "example renders as pre regardless of mode",
			r:    ontology.Resource{Kind: ontology.LiteralResource, Lexical: "x = 1", IsExample: true, Mode: ontology.ModeMarkdownSanitized},
			want: "<pre>x = 1</pre>",
		},
		{
			name: "text mode escapes without markdown conversion",
			r:    ontology.Resource{Kind: ontology.LiteralResource, Lexical: "2 < 3", Mode: ontology.ModeText},
			want: "2 &lt; 3",
		},
		{
			name: "sanitized markdown strips disallowed tags but keeps emphasis",
			r:    ontology.Resource{Kind: ontology.LiteralResource, Lexical: "a *b* <script>alert(1)</script>", Mode: ontology.ModeMarkdownSanitized},
			want: "<em>b</em>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := renderLiteral(tt.r)
			out, err := RenderString(node)
			if err != nil {
				t.Fatalf("RenderString() error = %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Fatalf("renderLiteral(%+v) = %q, want substring %q", tt.r, out, tt.want)
			}
			if strings.Contains(out, "<script>") {
				t.Fatalf("renderLiteral(%+v) leaked unsanitized <script>: %q", tt.r, out)
			}
		})
	}
}

func TestRenderAgentWithNoNameFallsBackToRawIRI(t *testing.T) {
	r := ontology.Resource{Kind: ontology.AgentResource, IRI: "http://example.org/onto#ghost"}
	out, err := RenderString(renderAgent(r))
	if err != nil {
		t.Fatalf("RenderString() error = %v", err)
	}
	if out != "http://example.org/onto#ghost" {
		t.Fatalf("renderAgent(no name) = %q, want the raw IRI", out)
	}
}

func TestRenderAgentWithPrefix(t *testing.T) {
	r := ontology.Resource{
		Kind:          ontology.AgentResource,
		IRI:           "http://example.org/onto#bob",
		AgentName:     "Bob",
		AgentPrefixes: []string{"Dr."},
	}
	out, err := RenderString(renderAgent(r))
	if err != nil {
		t.Fatalf("RenderString() error = %v", err)
	}
	if out != "Dr. Bob" {
		t.Fatalf("renderAgent(prefixed name) = %q, want %q", out, "Dr. Bob")
	}
}
