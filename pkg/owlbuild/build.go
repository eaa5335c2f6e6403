package owlbuild

import (
	"fmt"
	"io"

	"github.com/microcosm-cc/bluemonday"

	"github.com/tkw1536/lontod/pkg/htmldom"
	"github.com/tkw1536/lontod/pkg/lontoderr"
	"github.com/tkw1536/lontod/pkg/meta"
	"github.com/tkw1536/lontod/pkg/ontology"
	"github.com/tkw1536/lontod/pkg/rdfutil"
)

// owlVersionIRI marks an ontology's version IRI, recorded as an alternate
// identity row alongside the primary IRI (spec.md §3.1: "zero or more
// non-canonical rows record alternate IRIs (e.g. version IRIs)").
const owlVersionIRI = "http://www.w3.org/2002/07/owl#versionIRI"

// Options configures one Build call.
type Options struct {
	// Format is the source syntax: "turtle" or "ntriples".
	Format string

	// LanguagePreference is the ranked language-tag preference list C3's
	// RestrictLanguages consumes.
	LanguagePreference []string

	// AlwaysNamespaces is unioned into the namespace block regardless of
	// actual use in the graph (e.g. the document's own prefix).
	AlwaysNamespaces map[string]string

	// Policy sanitizes literal values before extraction. If nil, the
	// fixed allow-list policy of §6.2 is used.
	Policy *bluemonday.Policy

	// RawMarkdown selects ModeMarkdownRaw over ModeMarkdownSanitized for
	// every prose literal (spec.md §4.7's text/sanitized/raw dispatch).
	// Literal values were already passed through Policy during C3
	// sanitization regardless of this flag; setting it only changes
	// whether the Markdown renderer's own HTML output is re-sanitized.
	RawMarkdown bool
}

// Result is everything the ingester (C10) needs to persist one ontology:
// the extracted value, its HTML and non-HTML serializations keyed by MIME
// type, and the IRI -> fragment map allocated while rendering the HTML —
// guaranteed consistent with the anchors inside Blobs[MimeHTML].
type Result struct {
	Ontology  *ontology.Ontology
	Blobs     map[MimeType][]byte
	Fragments map[string]string
}

// Build runs the full C8 pipeline over one ontology source document: parse,
// sanitize literals, restrict languages, extract (C5/C6), render HTML (C7),
// and serialize into every format §6.1 offers.
func Build(r io.Reader, opts Options) (*Result, error) {
	g, err := parseSource(r, opts.Format)
	if err != nil {
		return nil, fmt.Errorf("owlbuild: parse source: %w", err)
	}

	policy := opts.Policy
	if policy == nil {
		policy = rdfutil.NewLiteralPolicy()
	}
	g = rdfutil.SanitizeLiterals(g, policy)
	g = rdfutil.RestrictLanguages(g, opts.LanguagePreference)

	m, err := meta.Load()
	if err != nil {
		return nil, fmt.Errorf("owlbuild: load meta-ontology: %w", err)
	}

	o, err := ontology.Extract(g, m, opts.AlwaysNamespaces, opts.RawMarkdown)
	if err != nil {
		return nil, fmt.Errorf("owlbuild: extract ontology: %w", err)
	}
	if o.PrimaryIRI == "" {
		return nil, fmt.Errorf("owlbuild: no owl:Ontology, skos:ConceptScheme or prof:Profile subject found: %w", lontoderr.ErrNotAnOntology)
	}
	o.AlternateIRIs = findAlternateIRIs(g, o.PrimaryIRI)

	nm := rdfutil.NewNamespaceManager(g.Prefixes)
	node, ctx, err := htmldom.RenderOntology(o, m, nm)
	if err != nil {
		return nil, fmt.Errorf("owlbuild: render html: %w", err)
	}
	htmlBytes, err := htmldom.RenderString(node)
	if err != nil {
		return nil, fmt.Errorf("owlbuild: serialize html: %w", err)
	}

	blobs, err := SerializeAll(g)
	if err != nil {
		return nil, err
	}
	blobs[MimeHTML] = []byte(htmlBytes)

	return &Result{
		Ontology:  o,
		Blobs:     blobs,
		Fragments: ctx.Fragments("term"),
	}, nil
}

func parseSource(r io.Reader, format string) (*rdfutil.Graph, error) {
	switch format {
	case "", "turtle":
		return rdfutil.ParseTurtle(r)
	case "ntriples":
		return rdfutil.ParseNTriples(r)
	default:
		return nil, fmt.Errorf("owlbuild: unsupported source format %q", format)
	}
}

// findAlternateIRIs collects every non-canonical ontology identity for this
// document: other owl:Ontology/skos:ConceptScheme/prof:Profile subjects
// (multi-ontology files) and any owl:versionIRI recorded on the primary.
func findAlternateIRIs(g *rdfutil.Graph, primary string) []string {
	seen := map[string]bool{primary: true}
	var out []string

	for _, typeIRI := range []string{owlOntologyType, skosSchemeType, profProfileType} {
		for _, s := range g.SubjectsOfType(typeIRI) {
			if !s.IsIRI() || seen[s.Value] {
				continue
			}
			seen[s.Value] = true
			out = append(out, s.Value)
		}
	}

	for _, obj := range g.ObjectsOf(primary, owlVersionIRI) {
		if !obj.IsIRI() || seen[obj.Value] {
			continue
		}
		seen[obj.Value] = true
		out = append(out, obj.Value)
	}

	return out
}

const (
	owlOntologyType = "http://www.w3.org/2002/07/owl#Ontology"
	skosSchemeType  = "http://www.w3.org/2004/02/skos/core#ConceptScheme"
	profProfileType = "http://www.w3.org/ns/dx/prof/Profile"
)
