package httpapi

import (
	"sort"
	"strconv"
	"strings"
)

// acceptEntry is one parsed element of an Accept header.
type acceptEntry struct {
	typ, subtype string
	q            float64
}

func (e acceptEntry) matches(mime string) bool {
	t, s, ok := strings.Cut(mime, "/")
	if !ok {
		return false
	}
	return (e.typ == "*" || e.typ == t) && (e.subtype == "*" || e.subtype == s)
}

// specificity ranks a concrete type/subtype above a partial wildcard above
// "*/*", so the most specific matching entry wins ties.
func (e acceptEntry) specificity() int {
	switch {
	case e.typ != "*" && e.subtype != "*":
		return 2
	case e.typ != "*":
		return 1
	default:
		return 0
	}
}

// parseAccept decodes an HTTP Accept header into its entries, most
// preferred first (by q value, then specificity). A missing or empty
// header is treated as "*/*".
func parseAccept(header string) []acceptEntry {
	if strings.TrimSpace(header) == "" {
		return []acceptEntry{{typ: "*", subtype: "*", q: 1}}
	}

	var entries []acceptEntry
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ";")
		mime := strings.TrimSpace(fields[0])
		t, s, ok := strings.Cut(mime, "/")
		if !ok {
			continue
		}
		q := 1.0
		for _, param := range fields[1:] {
			param = strings.TrimSpace(param)
			if name, val, ok := strings.Cut(param, "="); ok && strings.TrimSpace(name) == "q" {
				if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
					q = parsed
				}
			}
		}
		entries = append(entries, acceptEntry{typ: t, subtype: s, q: q})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].q != entries[j].q {
			return entries[i].q > entries[j].q
		}
		return entries[i].specificity() > entries[j].specificity()
	})
	return entries
}

// Negotiate picks the best of offered (in caller-preferred order) acceptable
// to header, per spec.md §4.10/§7: the client's highest-q, most-specific
// entry wins; ties broken by the offered list's own order. ok is false if
// nothing offered has a non-zero-q match.
func Negotiate(header string, offered []string) (string, bool) {
	entries := parseAccept(header)
	for _, e := range entries {
		if e.q <= 0 {
			continue
		}
		for _, mime := range offered {
			if e.matches(mime) {
				return mime, true
			}
		}
	}
	return "", false
}
