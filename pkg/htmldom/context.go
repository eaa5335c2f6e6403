package htmldom

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tkw1536/lontod/pkg/lontoderr"
	"github.com/tkw1536/lontod/pkg/ontology"
	"github.com/tkw1536/lontod/pkg/rdfutil"
)

// maxFragmentRetries bounds the numeric-suffix retry loop in Fragment. Past
// this many collisions within one group, allocation fails loudly rather
// than looping forever on a pathological input graph.
const maxFragmentRetries = 500

// Context is the per-render mutable state §3.3 describes: a
// group-partitioned fragment registry, a per-IRI qname cache, and a
// back-reference to the Ontology being rendered (so ResourceReference can
// decide local-fragment vs external-link). Created once per HTML
// serialization and discarded afterwards — fragment identifiers it
// allocates must match exactly what the indexer persists to
// DEFINIENDA.FRAGMENT, so the same Context instance drives both.
type Context struct {
	nm  *rdfutil.NamespaceManager
	own *ontology.Ontology

	fragments map[string]map[string]string // group -> IRI -> fragment
	allocated map[string]map[string]bool   // group -> fragment -> taken
	qnameCache map[string]string
}

// NewContext builds a fresh render context for one HTML serialization pass.
func NewContext(nm *rdfutil.NamespaceManager, own *ontology.Ontology) *Context {
	return &Context{
		nm:         nm,
		own:        own,
		fragments:  make(map[string]map[string]string),
		allocated:  make(map[string]map[string]bool),
		qnameCache: make(map[string]string),
	}
}

// Fragment returns the stable fragment identifier for iri within group,
// allocating one deterministically on first request. Within one group,
// distinct IRIs never collide: a numeric suffix is appended until the
// candidate is free, bounded by maxFragmentRetries, after which allocation
// reports lontoderr.ErrOverflow.
func (c *Context) Fragment(group, iri string) (string, error) {
	if frags, ok := c.fragments[group]; ok {
		if f, ok := frags[iri]; ok {
			return f, nil
		}
	} else {
		c.fragments[group] = make(map[string]string)
		c.allocated[group] = make(map[string]bool)
	}

	base := localSegment(iri)
	if base == "" {
		base = md5Hex(iri)
	}

	taken := c.allocated[group]
	candidate := base
	for i := 0; i < maxFragmentRetries; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		if !taken[candidate] {
			taken[candidate] = true
			c.fragments[group][iri] = candidate
			return candidate, nil
		}
	}
	return "", fmt.Errorf("htmldom: allocating fragment for %s in group %s: %w", iri, group, lontoderr.ErrOverflow)
}

// QName renders iri as prefix:local using the context's namespace manager,
// caching the result per IRI for the lifetime of the render pass.
func (c *Context) QName(iri string) (string, bool) {
	if q, ok := c.qnameCache[iri]; ok {
		return q, q != ""
	}
	q, ok := c.nm.QName(iri)
	c.qnameCache[iri] = q
	return q, ok
}

// Fragments returns a copy of the IRI -> fragment map allocated within
// group during this render pass. The owl ontology builder (C8) uses this
// after an HTML render to persist DEFINIENDA.FRAGMENT values that are
// guaranteed to match the anchors just written into the HTML blob.
func (c *Context) Fragments(group string) map[string]string {
	out := make(map[string]string, len(c.fragments[group]))
	for k, v := range c.fragments[group] {
		out[k] = v
	}
	return out
}

// IsLocal reports whether iri is defined by the ontology this context is
// rendering (its primary IRI or one of its alternates is a prefix of iri),
// meaning ResourceReference should link to an in-document fragment rather
// than an external href.
func (c *Context) IsLocal(iri string) bool {
	if c.own == nil {
		return false
	}
	if c.own.PrimaryIRI != "" && strings.HasPrefix(iri, c.own.PrimaryIRI) {
		return true
	}
	for _, alt := range c.own.AlternateIRIs {
		if strings.HasPrefix(iri, alt) {
			return true
		}
	}
	return false
}

// localSegment extracts the fragment/path-local part of an IRI (after the
// last '#' or '/'), or "" if the IRI ends in a separator or has none.
func localSegment(iri string) string {
	idx := strings.LastIndexAny(iri, "#/")
	if idx < 0 || idx == len(iri)-1 {
		return ""
	}
	return iri[idx+1:]
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
