// Package httpapi implements the HTTP handler (C13): routing, content
// negotiation, IRI dereferencing, the streaming index, and a common error
// wrapper, built over gorilla/mux the way the teacher's own server package
// builds its routing table.
package httpapi

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/tkw1536/lontod/pkg/config"
	"github.com/tkw1536/lontod/pkg/lontoderr"
	"github.com/tkw1536/lontod/pkg/owlbuild"
	"github.com/tkw1536/lontod/pkg/store"
)

// Handler wires C12 (Query) into the route table of spec.md §4.10.
type Handler struct {
	query  *store.Query
	cfg    *config.Config
	logger *log.Logger
	router *mux.Router
}

// New builds the full route table and wraps it in the common error-handling
// middleware. The returned http.Handler is ready to pass to an *http.Server
// (or, in front of that, an rs/cors handler).
func New(query *store.Query, cfg *config.Config, logger *log.Logger) http.Handler {
	h := &Handler{query: query, cfg: cfg, logger: logger}

	r := mux.NewRouter()
	h.router = r

	if !cfg.SkipSafeRoutes {
		r.HandleFunc("/.well-known/{rest:.*}", notFoundHandler).Methods(http.MethodGet)
		r.HandleFunc("/favicon.ico", notFoundHandler).Methods(http.MethodGet)
		r.HandleFunc("/robots.txt", notFoundHandler).Methods(http.MethodGet)
	}

	route := cfg.OntologyRoute
	if route == "" {
		route = "/"
	}
	r.HandleFunc(route, h.recovered(h.handleOntologyRoute)).Methods(http.MethodGet)
	r.PathPrefix("/").HandlerFunc(h.recovered(h.handleDereference)).Methods(http.MethodGet)

	return h.router
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	http.NotFound(w, r)
}

// recovered wraps fn in the common error catcher spec.md §4.10 requires:
// a panic becomes a 500; a returned error wrapping lontoderr.ErrNotFound
// becomes a 404, one wrapping ErrNegotiationFailure a 406, any other a 500.
// The body is a short generic message, or the error detail when Debug is
// enabled.
func (h *Handler) recovered(fn func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Printf("httpapi: panic handling %s %s: %v", r.Method, r.URL.Path, rec)
				h.writeError(w, fmt.Errorf("panic: %v", rec))
			}
		}()
		if err := fn(w, r); err != nil {
			h.logger.Printf("httpapi: error handling %s %s: %v", r.Method, r.URL.Path, err)
			h.writeError(w, err)
		}
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	w.WriteHeader(status)
	if h.cfg.Debug {
		fmt.Fprintf(w, "%v\n", err)
		return
	}
	if status == http.StatusNotFound {
		fmt.Fprintln(w, "not found")
		return
	}
	if status == http.StatusNotAcceptable {
		fmt.Fprintln(w, "no acceptable representation")
		return
	}
	fmt.Fprintln(w, "internal server error")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, lontoderr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lontoderr.ErrNegotiationFailure):
		return http.StatusNotAcceptable
	default:
		return http.StatusInternalServerError
	}
}

// handleOntologyRoute serves §4.10's ontology_route: either a specific
// ontology retrieval (?identifier=…) or, with no identifier, the index.
func (h *Handler) handleOntologyRoute(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	id := q.Get("identifier")
	if id == "" {
		return h.handleIndex(w, r)
	}
	return h.handleRetrieve(w, r, id, q.Get("format"), q.Get("download") == "1")
}

// handleRetrieve implements the ?identifier=<id>[&format=][&download=1]
// shape: negotiate (or require) a MIME type and stream the stored blob.
func (h *Handler) handleRetrieve(w http.ResponseWriter, r *http.Request, id, format string, download bool) error {
	ctx := r.Context()

	mimeTypes, err := h.query.GetMimeTypes(ctx, id)
	if err != nil {
		return fmt.Errorf("httpapi: list mime types for %s: %w", id, err)
	}
	if len(mimeTypes) == 0 {
		return fmt.Errorf("ontology %s: %w", id, lontoderr.ErrNotFound)
	}

	mime := format
	if mime == "" {
		negotiated, ok := Negotiate(r.Header.Get("Accept"), mimeTypes)
		if !ok && containsMime(mimeTypes, string(owlbuild.MimeNTriples)) {
			negotiated, ok = string(owlbuild.MimeNTriples), true
		}
		if !ok {
			return fmt.Errorf("negotiating representation for %s: %w", id, lontoderr.ErrNegotiationFailure)
		}
		mime = negotiated
	} else if !containsMime(mimeTypes, mime) {
		return fmt.Errorf("format %s unavailable for %s: %w", mime, id, lontoderr.ErrNotFound)
	}

	data, ok, err := h.query.GetData(ctx, id, mime)
	if err != nil {
		return fmt.Errorf("httpapi: get data for %s/%s: %w", id, mime, err)
	}
	if !ok {
		return fmt.Errorf("data for %s/%s: %w", id, mime, lontoderr.ErrNotFound)
	}

	ext := owlbuild.Extension[owlbuild.MimeType(mime)]
	if ext == "" {
		ext = "bin"
	}
	disposition := "inline"
	if download {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`%s; filename*=UTF-8''%s.%s`, disposition, url.PathEscape(id), ext))
	w.Write(data)
	return nil
}

func containsMime(haystack []string, needle string) bool {
	for _, m := range haystack {
		if m == needle {
			return true
		}
	}
	return false
}

// handleIndex streams the plain-text or HTML listing of every indexed
// ontology, negotiated between text/plain (default) and text/html.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	ontologies, err := h.query.ListOntologies(ctx)
	if err != nil {
		return fmt.Errorf("httpapi: list ontologies: %w", err)
	}

	mime, ok := Negotiate(r.Header.Get("Accept"), []string{"text/plain", "text/html"})
	if !ok {
		mime = "text/plain"
	}

	w.Header().Set("Content-Type", mime+"; charset=utf-8")
	if mime == "text/html" {
		return h.renderIndexHTML(w, ontologies)
	}
	return h.renderIndexText(w, ontologies)
}

func (h *Handler) renderIndexText(w http.ResponseWriter, ontologies []store.OntologySummary) error {
	if h.cfg.IndexTXTHeader != "" {
		fmt.Fprintln(w, h.cfg.IndexTXTHeader)
	}
	for _, o := range ontologies {
		fmt.Fprintf(w, "%s\t%s\n", o.URI, h.retrieveURL(o.ID, "", false))
	}
	if h.cfg.IndexTXTFooter != "" {
		fmt.Fprintln(w, h.cfg.IndexTXTFooter)
	}
	return nil
}

func (h *Handler) renderIndexHTML(w http.ResponseWriter, ontologies []store.OntologySummary) error {
	fmt.Fprint(w, "<!DOCTYPE html><html><body>")
	if h.cfg.IndexHTMLHeader != "" {
		fmt.Fprint(w, h.cfg.IndexHTMLHeader)
	}
	for _, o := range ontologies {
		fmt.Fprintf(w, `<fieldset><legend>%s</legend><a href="%s">%s</a> (%d terms, %d formats)</fieldset>`,
			htmlEscape(o.URI), htmlEscape(h.retrieveURL(o.ID, "", false)), htmlEscape(o.URI), o.DefiniendaCount, len(o.MimeTypes))
	}
	if h.cfg.IndexHTMLFooter != "" {
		fmt.Fprint(w, h.cfg.IndexHTMLFooter)
	}
	fmt.Fprint(w, "</body></html>")
	return nil
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

// retrieveURL builds the reverse URL a dereference redirect or index entry
// points to — the one place in the codebase that knows this shape
// (spec.md §4.10: "only the handler knows how to build … #frag").
func (h *Handler) retrieveURL(id, fragment string, download bool) string {
	route := h.cfg.OntologyRoute
	if route == "" {
		route = "/"
	}
	v := url.Values{}
	v.Set("identifier", id)
	if download {
		v.Set("download", "1")
	}
	u := route + "?" + v.Encode()
	if fragment != "" {
		u += "#" + fragment
	}
	return u
}

// handleDereference implements the fallback IRI-dereference handler:
// construct the four candidate IRIs for this request and 303-redirect to
// the defining ontology's fragment, or 404 (303-to-index for "/").
func (h *Handler) handleDereference(w http.ResponseWriter, r *http.Request) error {
	host := h.cfg.PublicDomain
	if host == "" {
		host = r.Host
	}

	candidates := []string{
		"http://" + host + r.URL.Path,
		"https://" + host + r.URL.Path,
	}
	if !strings.HasSuffix(r.URL.Path, "/") {
		candidates = append(candidates,
			"http://"+host+r.URL.Path+"/",
			"https://"+host+r.URL.Path+"/",
		)
	}

	rows, err := h.query.GetDefinienda(r.Context(), candidates...)
	if err != nil {
		return fmt.Errorf("httpapi: dereference %s: %w", r.URL.Path, err)
	}

	if len(rows) == 0 {
		if r.URL.Path == "/" {
			http.Redirect(w, r, h.retrieveURL("", "", false), http.StatusSeeOther)
			return nil
		}
		return fmt.Errorf("no ontology defines %s: %w", r.URL.Path, lontoderr.ErrNotFound)
	}

	first := rows[0]
	http.Redirect(w, r, h.retrieveURL(first.OntologyID, first.Fragment, false), http.StatusSeeOther)
	return nil
}
