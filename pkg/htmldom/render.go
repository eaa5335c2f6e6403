package htmldom

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/tkw1536/lontod/pkg/meta"
	"github.com/tkw1536/lontod/pkg/ontology"
	"github.com/tkw1536/lontod/pkg/rdfutil"
)

// markdownRenderer and literalPolicy implement the §4.7 Markdown literal
// dispatch: goldmark converts the lexical form to HTML, then the §6.2
// allow-list policy re-sanitizes it unless the literal was extracted in
// raw mode.
var (
	markdownRenderer = goldmark.New()
	literalPolicy    = rdfutil.NewLiteralPolicy()
)

const (
	sectionGroup = "section"
	termGroup    = "term"
)

var kindAbbrev = map[ontology.IndexedProperty]string{
	ontology.Class:                     "c",
	ontology.Property:                  "p",
	ontology.ObjectProperty:            "op",
	ontology.DatatypeProperty:          "dp",
	ontology.AnnotationProperty:        "ap",
	ontology.FunctionalProperty:        "fp",
	ontology.InverseFunctionalProperty: "ifp",
	ontology.NamedIndividual:           "ni",
}

var kindPlural = map[ontology.IndexedProperty]string{
	ontology.Class:                     "Classes",
	ontology.Property:                  "Properties",
	ontology.ObjectProperty:            "Object Properties",
	ontology.DatatypeProperty:          "Datatype Properties",
	ontology.AnnotationProperty:        "Annotation Properties",
	ontology.FunctionalProperty:        "Functional Properties",
	ontology.InverseFunctionalProperty: "Inverse Functional Properties",
	ontology.NamedIndividual:           "Named Individuals",
}

// RenderOntology builds the full self-contained documentation page for o:
// head (title, bundled CSS, schema.org JSON-LD), metadata block, one
// section per populated TypeDefinienda, a namespaces block, a legend, and a
// table of contents, per spec.md §4.7.
func RenderOntology(o *ontology.Ontology, m *meta.Meta, nm *rdfutil.NamespaceManager) (Node, *Context, error) {
	ctx := NewContext(nm, o)

	metaID, err := ctx.Fragment(sectionGroup, "lontod:Metadata")
	if err != nil {
		return Node{}, nil, err
	}
	nsID, err := ctx.Fragment(sectionGroup, "lontod:Namespaces")
	if err != nil {
		return Node{}, nil, err
	}
	legendID, err := ctx.Fragment(sectionGroup, "lontod:Legend")
	if err != nil {
		return Node{}, nil, err
	}

	var sections []Node
	var tocEntries []Node
	for _, td := range o.Sections {
		sec, tocEntry, err := renderSection(ctx, td, m)
		if err != nil {
			return Node{}, nil, err
		}
		sections = append(sections, sec)
		tocEntries = append(tocEntries, tocEntry)
	}

	metadataBlock := renderMetadata(ctx, o, metaID)
	namespacesBlock := renderNamespaces(o, nsID)
	legendBlock := renderLegend(legendID)
	toc := renderTOC(metaID, nsID, legendID, tocEntries)

	content := El("div", Attrs{"id": "content"}, append(
		append([]Node{metadataBlock}, sections...),
		namespacesBlock, legendBlock, toc,
	))

	schemaScript := El("script", Attrs{"type": "application/ld+json", "id": "schema.org"},
		Raw(strings.ReplaceAll(o.SchemaOrgJSON, "</", `<\/`)))

	head := El("head", nil,
		El("title", nil, o.PrimaryIRI),
		Void("meta", Attrs{"http-equiv": "Content-Type", "content": "text/html; charset=utf-8"}),
		El("style", nil, Raw(bundledCSS())),
		schemaScript,
	)
	body := El("body", nil, content)

	return El("html", nil, head, body), ctx, nil
}

func renderMetadata(ctx *Context, o *ontology.Ontology, id string) Node {
	rows := []Node{
		El("tr", nil, El("th", nil, "IRI"), El("td", nil, o.PrimaryIRI)),
	}
	if o.Title != "" {
		rows = append(rows, El("tr", nil, El("th", nil, "Title"), El("td", nil, o.Title)))
	}
	if o.Description != "" {
		rows = append(rows, El("tr", nil, El("th", nil, "Description"), El("td", nil, o.Description)))
	}
	if len(o.Creators) > 0 {
		rows = append(rows, El("tr", nil, El("th", nil, "Creators"), El("td", nil, renderResourceList(ctx, o.Creators))))
	}
	if len(o.Contributors) > 0 {
		rows = append(rows, El("tr", nil, El("th", nil, "Contributors"), El("td", nil, renderResourceList(ctx, o.Contributors))))
	}
	if len(o.SeeAlso) > 0 {
		rows = append(rows, El("tr", nil, El("th", nil, "See also"), El("td", nil, renderResourceList(ctx, o.SeeAlso))))
	}

	return El("div", Attrs{"id": id},
		El("h2", nil, "Metadata"),
		El("table", nil, El("tbody", nil, rows)),
	)
}

func renderSection(ctx *Context, td ontology.TypeDefinienda, m *meta.Meta) (Node, Node, error) {
	id, err := ctx.Fragment(sectionGroup, td.Type.String())
	if err != nil {
		return Node{}, Node{}, err
	}

	title := kindPlural[td.Type]
	if title == "" {
		title = td.Type.String()
	}
	var headingNode Node = El("h2", nil, title)
	if desc, ok := m.Description(ontology.KindTypeIRI(td.Type)); ok && desc != "" {
		headingNode = El("h2", Attrs{"title": desc}, title)
	}

	var defs []Node
	var tocItems []Node
	for _, d := range td.Definienda {
		node, tocLink, err := renderDefiniendum(ctx, d, m)
		if err != nil {
			return Node{}, Node{}, err
		}
		defs = append(defs, node)
		tocItems = append(tocItems, El("li", nil, tocLink))
	}

	section := El("div", Attrs{"id": id},
		headingNode,
		defs,
	)
	tocEntry := El("li", nil,
		El("a", Attrs{"href": "#" + id}, title),
		El("ul", nil, tocItems),
	)
	return section, tocEntry, nil
}

func renderDefiniendum(ctx *Context, d ontology.Definiendum, m *meta.Meta) (Node, Node, error) {
	id, err := ctx.Fragment(termGroup, d.IRI)
	if err != nil {
		return Node{}, Node{}, err
	}

	display := d.QName
	if display == "" {
		display = d.IRI
	}

	heading := El("h3", Attrs{"id": "anchor-" + id}, display, El("sup", nil, kindAbbrev[d.Primary]))

	rows := []Node{El("tr", nil, El("th", nil, "IRI"), El("td", nil, d.IRI))}
	for _, pair := range d.Pairs {
		rows = append(rows, El("tr", nil,
			El("th", nil, renderPredicate(ctx, pair.Predicate, m)),
			El("td", nil, renderResource(ctx, pair.Object)),
		))
	}

	node := El("div", Attrs{"id": id},
		heading,
		El("table", nil, El("tbody", nil, rows)),
	)
	tocLink := El("a", Attrs{"href": "#" + id}, display)
	return node, tocLink, nil
}

func renderPredicate(ctx *Context, predicate ontology.Resource, m *meta.Meta) Node {
	if predicate.Kind != ontology.ResourceReference {
		return renderResource(ctx, predicate)
	}
	label := predicate.Label
	if label == "" {
		label = predicate.QName
	}
	if label == "" {
		label = predicate.IRI
	}
	tooltip := predicate.IRI
	if prop, ok := m.Property(predicate.IRI); ok && prop.Comment != "" {
		tooltip = prop.Comment
		if prop.Label != "" {
			label = prop.Label
		}
	}
	return El("abbr", Attrs{"title": tooltip}, label)
}

func renderResourceList(ctx *Context, resources []ontology.Resource) Node {
	var items []Node
	for _, r := range resources {
		items = append(items, El("li", nil, renderResource(ctx, r)))
	}
	return El("ul", nil, items)
}

func renderResource(ctx *Context, r ontology.Resource) Node {
	switch r.Kind {
	case ontology.LiteralResource:
		return renderLiteral(r)
	case ontology.ResourceReference:
		return renderReference(ctx, r)
	case ontology.AgentResource:
		return renderAgent(r)
	case ontology.RestrictionResource:
		return renderRestriction(ctx, r)
	case ontology.SetClassResource:
		return renderSetClass(ctx, r)
	case ontology.BlankNodeResource:
		return Text(r.IRI)
	default:
		return Text("")
	}
}

func renderLiteral(r ontology.Resource) Node {
	if r.IsExample {
		return El("pre", nil, r.Lexical)
	}
	if r.Mode == ontology.ModeText {
		return Text(r.Lexical)
	}

	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(r.Lexical), &buf); err != nil {
		return Text(r.Lexical)
	}
	out := buf.String()
	if r.Mode == ontology.ModeMarkdownSanitized {
		out = literalPolicy.Sanitize(out)
	}
	return Raw(out)
}

func renderReference(ctx *Context, r ontology.Resource) Node {
	label := r.Label
	if label == "" {
		label = r.QName
	}
	if label == "" {
		label = r.IRI
	}
	if ctx.IsLocal(r.IRI) {
		if frag, err := ctx.Fragment(termGroup, r.IRI); err == nil {
			return El("a", Attrs{"href": "#" + frag}, label)
		}
	}
	return El("a", Attrs{"href": r.IRI, "target": "_blank", "rel": "noopener"}, label)
}

func renderAgent(r ontology.Resource) Node {
	name := agentDisplayName(r)
	// Agents with no name render as the raw IRI (spec.md §4.5).
	if r.AgentName == "" {
		return Text(name)
	}
	if r.AgentEmail != "" {
		return El("a", Attrs{"href": "mailto:" + r.AgentEmail}, name)
	}
	if r.AgentHome != "" {
		return El("a", Attrs{"href": r.AgentHome, "target": "_blank", "rel": "noopener"}, name)
	}
	return Text(name)
}

func agentDisplayName(r ontology.Resource) string {
	if r.AgentName == "" {
		return r.IRI
	}
	if len(r.AgentPrefixes) > 0 {
		return r.AgentPrefixes[0] + " " + r.AgentName
	}
	return r.AgentName
}

func renderRestriction(ctx *Context, r ontology.Resource) Node {
	var onProp Node = Text("")
	if r.OnProperty != nil {
		onProp = renderResource(ctx, *r.OnProperty)
	}
	switch r.RestrictionKind {
	case "some":
		return El("span", nil, onProp, " some ", renderMaybe(ctx, r.RestrictionVal))
	case "all":
		return El("span", nil, onProp, " only ", renderMaybe(ctx, r.RestrictionVal))
	case "hasValue":
		return El("span", nil, onProp, " value ", renderMaybe(ctx, r.RestrictionVal))
	case "cardinality", "minCardinality", "maxCardinality":
		return El("span", nil, onProp, fmt.Sprintf(" %s %d", r.RestrictionKind, r.Cardinality.N))
	case "qualifiedCardinality", "minQualifiedCardinality", "maxQualifiedCardinality":
		span := El("span", nil, onProp, fmt.Sprintf(" %s %d", r.RestrictionKind, r.Cardinality.N))
		if r.Cardinality.Class != nil {
			span.Children = append(span.Children, Text(" "), renderResource(ctx, *r.Cardinality.Class))
		}
		return span
	default:
		return El("span", nil, onProp)
	}
}

func renderMaybe(ctx *Context, r *ontology.Resource) Node {
	if r == nil {
		return Text("")
	}
	return renderResource(ctx, *r)
}

func renderSetClass(ctx *Context, r ontology.Resource) Node {
	var items []Node
	for i, member := range r.Members {
		if i > 0 {
			items = append(items, Text(" "+r.SetOperator+" "))
		}
		items = append(items, renderResource(ctx, member))
	}
	return El("span", nil, items)
}

func renderNamespaces(o *ontology.Ontology, id string) Node {
	var rows []Node
	for _, pair := range o.Namespaces {
		rows = append(rows, El("tr", nil, El("th", nil, pair[0]), El("td", nil, pair[1])))
	}
	return El("div", Attrs{"id": id},
		El("h2", nil, "Namespaces"),
		El("table", nil, El("tbody", nil, rows)),
	)
}

func renderLegend(id string) Node {
	var entries []Node
	order := []ontology.IndexedProperty{
		ontology.Class, ontology.Property, ontology.ObjectProperty, ontology.DatatypeProperty,
		ontology.AnnotationProperty, ontology.FunctionalProperty, ontology.InverseFunctionalProperty,
		ontology.NamedIndividual,
	}
	for _, k := range order {
		entries = append(entries, El("dt", nil, kindAbbrev[k]), El("dd", nil, k.String()))
	}
	return El("div", Attrs{"id": id, "_class": "legend"},
		El("h2", nil, "Legend"),
		El("dl", nil, entries),
	)
}

func renderTOC(metaID, nsID, legendID string, entries []Node) Node {
	return El("div", Attrs{"_class": "toc"},
		El("h2", nil, "Table of Contents"),
		El("ul", nil,
			El("li", nil, El("a", Attrs{"href": "#" + metaID}, "Metadata")),
			entries,
			El("li", nil, El("a", Attrs{"href": "#" + nsID}, "Namespaces")),
			El("li", nil, El("a", Attrs{"href": "#" + legendID}, "Legend")),
		),
	)
}
