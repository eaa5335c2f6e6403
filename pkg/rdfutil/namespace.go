package rdfutil

import "strings"

// NamespaceManager wraps qname computation over a fixed set of prefix
// bindings, tolerant of namespaces (or IRIs) ending in a trailing slash:
// per spec.md §4.3, if qname computation fails on a URI ending in "/", it is
// retried once after stripping the trailing slash, and that result's local
// part has the slash re-appended. Any other failure propagates unchanged.
type NamespaceManager struct {
	// byLengthDesc holds (prefix, namespace) pairs sorted by namespace
	// length descending, so QName always matches the longest bound
	// namespace first.
	byLengthDesc [][2]string
}

// NewNamespaceManager builds a manager from prefix -> namespace bindings.
func NewNamespaceManager(prefixes map[string]string) *NamespaceManager {
	pairs := make([][2]string, 0, len(prefixes))
	for prefix, ns := range prefixes {
		pairs = append(pairs, [2]string{prefix, ns})
	}
	// Stable insertion-independent ordering: longest namespace first, then
	// lexicographic for ties, so QName is deterministic.
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0; j-- {
			a, b := pairs[j-1], pairs[j]
			if len(a[1]) < len(b[1]) || (len(a[1]) == len(b[1]) && a[1] > b[1]) {
				pairs[j-1], pairs[j] = pairs[j], pairs[j-1]
			} else {
				break
			}
		}
	}
	return &NamespaceManager{byLengthDesc: pairs}
}

// QName renders iri as "prefix:local" using the longest matching bound
// namespace. ok is false if no bound namespace is a prefix of iri.
func (m *NamespaceManager) QName(iri string) (qname string, ok bool) {
	qname, ok = m.computeQName(iri)
	if ok {
		return qname, true
	}
	if strings.HasSuffix(iri, "/") {
		stripped := strings.TrimSuffix(iri, "/")
		if q, ok2 := m.computeQName(stripped); ok2 {
			return q + "/", true
		}
	}
	return "", false
}

func (m *NamespaceManager) computeQName(iri string) (string, bool) {
	for _, pair := range m.byLengthDesc {
		prefix, ns := pair[0], pair[1]
		if strings.HasPrefix(iri, ns) && len(iri) > len(ns) {
			return prefix + ":" + iri[len(ns):], true
		}
	}
	return "", false
}
