// Package owlbuild orchestrates the graph utilities, extractors, and HTML
// renderer (C3-C7) into the single entry point the ingester calls: parse one
// ontology file, produce every serialization listed in spec.md §6.1, and
// extract the IRI -> fragment map the indexer persists alongside the blobs.
package owlbuild

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/knakk/rdf"

	"github.com/tkw1536/lontod/pkg/rdfutil"
)

// MimeType is one of the closed set of media types §6.1 serves.
type MimeType string

const (
	MimeRDFXML   MimeType = "application/rdf+xml"
	MimeN3       MimeType = "text/n3"
	MimeTurtle   MimeType = "text/turtle"
	MimeNTriples MimeType = "text/plain"
	MimeTriG     MimeType = "application/trig"
	MimeJSONLD   MimeType = "application/ld+json"
	MimeHext     MimeType = "application/x-ndjson"
	MimeHTML     MimeType = "text/html"
)

// Extension maps each served MIME type to its canonical file extension,
// used to build Content-Disposition filenames.
var Extension = map[MimeType]string{
	MimeRDFXML:   "xml",
	MimeN3:       "n3",
	MimeTurtle:   "turtle",
	MimeNTriples: "nt",
	MimeTriG:     "trig",
	MimeJSONLD:   "json-ld",
	MimeHext:     "hext",
	MimeHTML:     "html",
}

// SerializeAll renders g into every non-HTML format of §6.1.
func SerializeAll(g *rdfutil.Graph) (map[MimeType][]byte, error) {
	out := make(map[MimeType][]byte, 7)

	turtle, err := serializeWithEncoder(g, rdf.Turtle)
	if err != nil {
		return nil, fmt.Errorf("owlbuild: serialize turtle: %w", err)
	}
	out[MimeTurtle] = turtle
	out[MimeN3] = turtle // N3 is a syntactic superset of Turtle; reuse its serialization.

	nt, err := serializeWithEncoder(g, rdf.NTriples)
	if err != nil {
		return nil, fmt.Errorf("owlbuild: serialize ntriples: %w", err)
	}
	out[MimeNTriples] = nt

	out[MimeTriG] = serializeTriG(turtle)
	out[MimeRDFXML] = serializeRDFXML(g)
	out[MimeHext] = serializeHext(g)

	jsonld, err := serializeJSONLD(g)
	if err != nil {
		return nil, fmt.Errorf("owlbuild: serialize json-ld: %w", err)
	}
	out[MimeJSONLD] = jsonld

	return out, nil
}

func serializeWithEncoder(g *rdfutil.Graph, format rdf.Format) ([]byte, error) {
	var buf bytes.Buffer
	enc := rdf.NewTripleEncoder(&buf, format)
	for _, t := range g.Triples {
		triple, ok := toRDFTriple(t)
		if !ok {
			continue // blank-subject-as-literal or other malformed triples are skipped, not fatal.
		}
		if err := enc.Encode(triple); err != nil {
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toRDFTriple(t rdfutil.Triple) (rdf.Triple, bool) {
	subj, ok := toRDFSubject(t.Subj)
	if !ok {
		return rdf.Triple{}, false
	}
	predIRI, err := rdf.NewIRI(t.Pred.Value)
	if err != nil {
		return rdf.Triple{}, false
	}
	obj, ok := toRDFTerm(t.Obj)
	if !ok {
		return rdf.Triple{}, false
	}
	return rdf.Triple{Subj: subj, Pred: predIRI, Obj: obj}, true
}

func toRDFSubject(t rdfutil.Term) (rdf.Term, bool) {
	switch t.Kind {
	case rdfutil.KindIRI:
		iri, err := rdf.NewIRI(t.Value)
		return iri, err == nil
	case rdfutil.KindBlank:
		b, err := rdf.NewBlank(t.Value)
		return b, err == nil
	default:
		return nil, false
	}
}

func toRDFTerm(t rdfutil.Term) (rdf.Term, bool) {
	switch t.Kind {
	case rdfutil.KindIRI:
		iri, err := rdf.NewIRI(t.Value)
		return iri, err == nil
	case rdfutil.KindBlank:
		b, err := rdf.NewBlank(t.Value)
		return b, err == nil
	case rdfutil.KindLiteral:
		var lit rdf.Term
		var err error
		switch {
		case t.Lang != "":
			lit, err = rdf.NewLangLiteral(t.Value, t.Lang)
		case t.Datatype != "":
			dt, dtErr := rdf.NewIRI(t.Datatype)
			if dtErr != nil {
				return nil, false
			}
			lit, err = rdf.NewTypedLiteral(t.Value, dt)
		default:
			lit, err = rdf.NewLiteral(t.Value)
		}
		return lit, err == nil
	default:
		return nil, false
	}
}

// serializeTriG wraps a Turtle-serialized graph in an anonymous default
// graph block, the minimal legal TriG document for a single-graph dataset.
func serializeTriG(turtle []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	buf.Write(turtle)
	buf.WriteString("}\n")
	return buf.Bytes()
}

// serializeRDFXML hand-rolls a minimal RDF/XML document: one rdf:Description
// per subject, its triples as child elements. No third-party package in the
// example pack or its dependency graph offers an RDF/XML encoder (knakk/rdf
// only encodes Turtle/N-Triples/N-Quads), so this is a deliberate,
// documented stdlib fallback (see DESIGN.md).
func serializeRDFXML(g *rdfutil.Graph) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString(`<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">` + "\n")

	bySubject := groupBySubject(g)
	subjects := sortedKeys(bySubject)
	for _, subj := range subjects {
		writeRDFXMLDescription(&buf, subj, bySubject[subj])
	}
	buf.WriteString("</rdf:RDF>\n")
	return buf.Bytes()
}

func writeRDFXMLDescription(buf *bytes.Buffer, subj string, triples []rdfutil.Triple) {
	isBlank := strings.HasPrefix(subj, "_:")
	if isBlank {
		fmt.Fprintf(buf, `  <rdf:Description rdf:nodeID=%q>`+"\n", strings.TrimPrefix(subj, "_:"))
	} else {
		fmt.Fprintf(buf, `  <rdf:Description rdf:about=%q>`+"\n", xmlEscapeAttr(subj))
	}
	for _, t := range triples {
		tag, nsDecl := xmlPredicateTag(t.Pred.Value)
		switch t.Obj.Kind {
		case rdfutil.KindIRI:
			fmt.Fprintf(buf, "    <%s%s rdf:resource=%q/>\n", tag, nsDecl, xmlEscapeAttr(t.Obj.Value))
		case rdfutil.KindBlank:
			fmt.Fprintf(buf, "    <%s%s rdf:nodeID=%q/>\n", tag, nsDecl, xmlEscapeAttr(t.Obj.Value))
		default:
			attrs := nsDecl
			if t.Obj.Lang != "" {
				attrs += fmt.Sprintf(` xml:lang=%q`, t.Obj.Lang)
			} else if t.Obj.Datatype != "" {
				attrs += fmt.Sprintf(` rdf:datatype=%q`, xmlEscapeAttr(t.Obj.Datatype))
			}
			fmt.Fprintf(buf, "    <%s%s>%s</%s>\n", tag, attrs, xmlEscapeText(t.Obj.Value), tag)
		}
	}
	buf.WriteString("  </rdf:Description>\n")
}

// xmlPredicateTag renders a predicate IRI as an element tag plus the
// namespace declaration that tag needs: ns0:local, with ns0 bound on the
// element itself to everything up to the last '#' or '/', when such a
// separator is present with a non-empty local part after it; otherwise the
// fallback tag rdf:value, which needs no extra declaration.
func xmlPredicateTag(iri string) (tag, nsDecl string) {
	idx := strings.LastIndexAny(iri, "#/")
	if idx < 0 || idx == len(iri)-1 {
		return "rdf:value", ""
	}
	return "ns0:" + iri[idx+1:], fmt.Sprintf(` xmlns:ns0=%q`, xmlEscapeAttr(iri[:idx+1]))
}

func xmlEscapeAttr(s string) string {
	r := strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")
	return r.Replace(s)
}

func xmlEscapeText(s string) string {
	r := strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;")
	return r.Replace(s)
}

func groupBySubject(g *rdfutil.Graph) map[string][]rdfutil.Triple {
	out := make(map[string][]rdfutil.Triple)
	for _, t := range g.Triples {
		out[t.Subj.Value] = append(out[t.Subj.Value], t)
	}
	return out
}

func sortedKeys(m map[string][]rdfutil.Triple) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// hextRow is one line of the Hextuples NDJSON format: [subject, predicate,
// value, datatype-or-IRI-marker, language, graph].
type hextRow [6]string

const (
	hextIRIDatatype     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#iri"
	hextBlankDatatype   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#blankNode"
	hextDefaultDatatype = "http://www.w3.org/2001/XMLSchema#string"
)

func serializeHext(g *rdfutil.Graph) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, t := range g.Triples {
		row := hextRow{t.Subj.Value, t.Pred.Value, "", hextDefaultDatatype, "", ""}
		switch t.Obj.Kind {
		case rdfutil.KindIRI:
			row[2] = t.Obj.Value
			row[3] = hextIRIDatatype
		case rdfutil.KindBlank:
			row[2] = t.Obj.Value
			row[3] = hextBlankDatatype
		default:
			row[2] = t.Obj.Value
			if t.Obj.Lang != "" {
				row[3] = ""
				row[4] = t.Obj.Lang
			} else if t.Obj.Datatype != "" {
				row[3] = t.Obj.Datatype
			}
		}
		_ = enc.Encode(row)
	}
	return buf.Bytes()
}

// serializeJSONLD builds a deterministic (sorted-by-@id, except inside
// @list containers where order is semantic) flat JSON-LD document: one node
// object per subject, predicates as arrays of value objects.
func serializeJSONLD(g *rdfutil.Graph) ([]byte, error) {
	bySubject := groupBySubject(g)
	subjects := sortedKeys(bySubject)

	var docs []map[string]any
	for _, subj := range subjects {
		node := map[string]any{"@id": subj}
		for _, t := range bySubject[subj] {
			key := t.Pred.Value
			val := jsonLDValue(t.Obj)
			if existing, ok := node[key]; ok {
				node[key] = append(existing.([]any), val)
			} else {
				node[key] = []any{val}
			}
		}
		docs = append(docs, node)
	}
	return json.MarshalIndent(docs, "", "  ")
}

func jsonLDValue(t rdfutil.Term) map[string]any {
	switch t.Kind {
	case rdfutil.KindIRI:
		return map[string]any{"@id": t.Value}
	case rdfutil.KindBlank:
		return map[string]any{"@id": "_:" + t.Value}
	default:
		v := map[string]any{"@value": t.Value}
		if t.Lang != "" {
			v["@language"] = t.Lang
		} else if t.Datatype != "" {
			v["@type"] = t.Datatype
		}
		return v
	}
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
