package rdfutil

import "testing"

func TestNamespaceManagerTrailingSlashIRI(t *testing.T) {
	nm := NewNamespaceManager(map[string]string{
		"ex": "http://example.org/",
	})
	qname, ok := nm.QName("http://example.org/Thing")
	if !ok || qname != "ex:Thing" {
		t.Fatalf("QName(Thing) = %q, %v", qname, ok)
	}

	// An IRI ending in "/" under a bound namespace keeps the trailing slash
	// in its local part.
	qname, ok = nm.QName("http://example.org/Thing/")
	if !ok || qname != "ex:Thing/" {
		t.Fatalf("QName(Thing/) = %q, %v", qname, ok)
	}
}

func TestNamespaceManagerLongestMatch(t *testing.T) {
	nm := NewNamespaceManager(map[string]string{
		"ex":  "http://example.org/",
		"exo": "http://example.org/ontology/",
	})
	qname, ok := nm.QName("http://example.org/ontology/Thing")
	if !ok || qname != "exo:Thing" {
		t.Fatalf("QName() = %q, %v, want exo:Thing (longest match)", qname, ok)
	}
}

func TestRestrictLanguagesIdempotent(t *testing.T) {
	g := NewGraph()
	g.Add(Triple{Subj: IRI("s"), Pred: IRI("p"), Obj: LangLiteral("hello", "en")})
	g.Add(Triple{Subj: IRI("s"), Pred: IRI("p"), Obj: LangLiteral("bonjour", "fr")})
	g.Add(Triple{Subj: IRI("s"), Pred: IRI("p"), Obj: PlainLiteral("unlabeled")})

	once := RestrictLanguages(g, []string{"fr", "en"})
	twice := RestrictLanguages(once, []string{"fr", "en"})

	if len(once.Triples) != 2 {
		t.Fatalf("after first restriction: %d triples, want 2 (fr + unlabeled)", len(once.Triples))
	}
	if len(twice.Triples) != len(once.Triples) {
		t.Fatalf("restriction not idempotent: once=%d twice=%d", len(once.Triples), len(twice.Triples))
	}
}

func TestRestrictLanguagesFallsBackToLexicographicallySmallest(t *testing.T) {
	g := NewGraph()
	g.Add(Triple{Subj: IRI("s"), Pred: IRI("p"), Obj: LangLiteral("zed", "zz")})
	g.Add(Triple{Subj: IRI("s"), Pred: IRI("p"), Obj: LangLiteral("aye", "aa")})

	restricted := RestrictLanguages(g, []string{"en"})
	if len(restricted.Triples) != 1 || restricted.Triples[0].Obj.Lang != "aa" {
		t.Fatalf("restricted = %+v, want single aa literal", restricted.Triples)
	}
}

func TestUsedNamespaces(t *testing.T) {
	g := NewGraph()
	g.Prefixes = map[string]string{
		"ex":     "http://example.org/",
		"unused": "http://unused.example/",
	}
	g.Add(Triple{Subj: IRI("http://example.org/s"), Pred: IRI("http://example.org/p"), Obj: PlainLiteral("v")})

	used := g.UsedNamespaces(nil)
	if len(used) != 1 || used[0][0] != "ex" {
		t.Fatalf("UsedNamespaces() = %v, want only ex", used)
	}
}

func TestSubjectObjectDicts(t *testing.T) {
	g := NewGraph()
	g.Add(Triple{Subj: IRI("s1"), Pred: IRI("p1"), Obj: IRI("o1")})
	g.Add(Triple{Subj: IRI("s1"), Pred: IRI("p2"), Obj: IRI("o2")})
	g.Add(Triple{Subj: IRI("s2"), Pred: IRI("p1"), Obj: PlainLiteral("lit")})

	results := g.SubjectObjectDicts([]SubjectObjectQuery{
		{Kind: KindIRI, Predicates: []string{"p1", "p2"}},
	})
	if len(results) != 1 {
		t.Fatalf("expected one result map")
	}
	if len(results[0]["s1"]) != 2 {
		t.Fatalf("s1 objects = %v, want 2", results[0]["s1"])
	}
	if _, ok := results[0]["s2"]; ok {
		t.Fatalf("s2 should not appear in IRI-kind query (its object is a literal)")
	}
}
