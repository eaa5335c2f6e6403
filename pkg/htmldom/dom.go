// Package htmldom implements the minimal typed HTML tree the documentation
// renderer builds before streaming it out: three node kinds (text, raw,
// element) plus a void-element variant, heterogeneous children, and
// Python-kwargs-style attribute construction translated to Go's map
// literals.
package htmldom

import (
	"fmt"
	"html"
	"io"
	"strings"
)

// NodeKind tags the variant held by a Node.
type NodeKind int

const (
	// TextNode holds HTML-escaped text content.
	TextNode NodeKind = iota
	// RawNode holds content emitted verbatim, unescaped.
	RawNode
	// ElementNode is a tag with children and a closing tag.
	ElementNode
	// VoidElementNode is a self-closing tag (br, hr, meta, ...). It never
	// has children.
	VoidElementNode
)

// Attrs is the attribute set passed to El/Void. A nil or true value renders
// a value-less attribute (e.g. `required`); false omits the attribute
// entirely; any other value is rendered as its fmt.Sprint form, HTML
// attribute-escaped. A leading underscore in a key escapes a Go/HTML
// keyword ("_class" -> class="..."); any other underscore becomes a hyphen
// ("http_equiv" -> http-equiv="...").
type Attrs map[string]any

// Node is one element of the typed HTML tree.
type Node struct {
	Kind     NodeKind
	Tag      string
	Text     string
	Attrs    Attrs
	Children []Node
}

// Text builds a plain, HTML-escaped text node.
func Text(s string) Node { return Node{Kind: TextNode, Text: s} }

// Raw builds an unescaped text node. Callers are responsible for ensuring
// the content is already safe HTML (e.g. pre-sanitized Markdown output).
func Raw(s string) Node { return Node{Kind: RawNode, Text: s} }

// El builds an element with zero or more heterogeneous children: Node,
// string (wrapped as Text), []Node, or nil (skipped).
func El(tag string, attrs Attrs, children ...any) Node {
	return Node{Kind: ElementNode, Tag: tag, Attrs: attrs, Children: flatten(children)}
}

// Void builds a self-closing element; it carries attributes but no
// children.
func Void(tag string, attrs Attrs) Node {
	return Node{Kind: VoidElementNode, Tag: tag, Attrs: attrs}
}

func flatten(children []any) []Node {
	var out []Node
	for _, c := range children {
		switch v := c.(type) {
		case nil:
			continue
		case Node:
			out = append(out, v)
		case []Node:
			out = append(out, v...)
		case string:
			out = append(out, Text(v))
		case []string:
			for _, s := range v {
				out = append(out, Text(s))
			}
		default:
			out = append(out, Text(fmt.Sprint(v)))
		}
	}
	return out
}

func attrName(key string) string {
	if strings.HasPrefix(key, "_") {
		return key[1:]
	}
	return strings.ReplaceAll(key, "_", "-")
}

// Render streams n in document order to w: text is HTML-escaped, raw is
// emitted verbatim, elements recurse and close, void elements never do.
func Render(w io.Writer, n Node) error {
	switch n.Kind {
	case TextNode:
		_, err := io.WriteString(w, html.EscapeString(n.Text))
		return err
	case RawNode:
		_, err := io.WriteString(w, n.Text)
		return err
	case VoidElementNode:
		return renderOpenTag(w, n, true)
	case ElementNode:
		if err := renderOpenTag(w, n, false); err != nil {
			return err
		}
		for _, child := range n.Children {
			if err := Render(w, child); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "</%s>", n.Tag)
		return err
	default:
		return fmt.Errorf("htmldom: unknown node kind %d", n.Kind)
	}
}

func renderOpenTag(w io.Writer, n Node, selfClose bool) error {
	if _, err := fmt.Fprintf(w, "<%s", n.Tag); err != nil {
		return err
	}
	for _, key := range sortedAttrKeys(n.Attrs) {
		val := n.Attrs[key]
		if val == false {
			continue
		}
		name := attrName(key)
		if val == nil || val == true {
			if _, err := fmt.Fprintf(w, " %s", name); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, name, html.EscapeString(fmt.Sprint(val))); err != nil {
			return err
		}
	}
	if selfClose {
		_, err := io.WriteString(w, " />")
		return err
	}
	_, err := io.WriteString(w, ">")
	return err
}

// sortedAttrKeys renders attributes in a fixed, deterministic order (map
// iteration order in Go is randomized, but HTML diffability across
// re-indexing runs of an unchanged file depends on stable output).
func sortedAttrKeys(attrs Attrs) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// RenderString renders n into a string; convenience wrapper over Render for
// callers that don't stream directly to an http.ResponseWriter.
func RenderString(n Node) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}
