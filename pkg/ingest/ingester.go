// Package ingest implements the ingester (C10): walk one or more paths,
// build each ontology file found (C8), and upsert the result into the store
// (C9). It issues no transaction control of its own — the controller (C11)
// wraps every call in a single BEGIN/COMMIT/ROLLBACK per spec.md §4.8.
package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tkw1536/lontod/pkg/lontoderr"
	"github.com/tkw1536/lontod/pkg/owlbuild"
	"github.com/tkw1536/lontod/pkg/store"
)

// extensionFormat maps a recognized file extension to the owlbuild source
// format that parses it. Files with any other extension are skipped, not
// treated as failures — a source directory may legitimately hold
// non-ontology files (README, .gitignore, …).
var extensionFormat = map[string]string{
	".ttl":    "turtle",
	".turtle": "turtle",
	".nt":     "ntriples",
}

// Result summarizes one Ingest call: every file successfully indexed, and
// every file that failed along with its error, aggregated rather than
// aborting the whole run per spec.md §2 (C10 "returns per-path
// success/failure lists").
type Result struct {
	Indexed []string
	Failed  []*lontoderr.FailedFile
}

// Options configures how discovered files are parsed and rendered.
type Options struct {
	LanguagePreference []string
	AlwaysNamespaces   map[string]string
}

// Ingest walks paths (each a file or a directory walked recursively),
// builds every recognized ontology file, and upserts it into exec. sortKey
// assigns an ordering key to the Nth successfully-built ontology, in
// discovery order; callers that care about listing order pass a function
// that e.g. counts down from a watch-start timestamp. Parse and extraction
// failures are aggregated into Result.Failed; a failed store write
// (lontoderr.ErrIndexFailure) stops the walk and is returned as the error.
func Ingest(exec store.Execer, paths []string, opts Options, sortKey func(n int) int64) (*Result, error) {
	res := &Result{}
	n := 0

	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				res.Failed = append(res.Failed, &lontoderr.FailedFile{Path: path, Err: err})
				return nil
			}
			if d.IsDir() {
				return nil
			}
			format, ok := extensionFormat[strings.ToLower(filepath.Ext(path))]
			if !ok {
				return nil
			}

			if err := ingestFile(exec, path, format, opts, sortKey(n)); err != nil {
				if errors.Is(err, lontoderr.ErrIndexFailure) {
					return err
				}
				res.Failed = append(res.Failed, &lontoderr.FailedFile{Path: path, Err: err})
				return nil
			}
			res.Indexed = append(res.Indexed, path)
			n++
			return nil
		})
		if err != nil {
			return res, fmt.Errorf("ingest: walk %s: %w", root, err)
		}
	}

	return res, nil
}

func ingestFile(exec store.Execer, path, format string, opts Options, sortKey int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", lontoderr.ErrParseFailure, err)
	}
	defer f.Close()

	result, err := owlbuild.Build(f, owlbuild.Options{
		Format:             format,
		LanguagePreference: opts.LanguagePreference,
		AlwaysNamespaces:   opts.AlwaysNamespaces,
	})
	if err != nil {
		if errors.Is(err, lontoderr.ErrNotAnOntology) {
			return fmt.Errorf("%w: %v", lontoderr.ErrNotAnOntology, err)
		}
		return fmt.Errorf("%w: %v", lontoderr.ErrParseFailure, err)
	}

	id := uuid.New().String()
	spec := store.UpsertSpec{
		PrimaryURI:    result.Ontology.PrimaryIRI,
		AlternateURIs: result.Ontology.AlternateIRIs,
		SortKey:       sortKey,
		Blobs:         blobsByMimeString(result.Blobs),
		Definienda:    definiendaFor(result),
	}

	if err := store.Upsert(exec, id, spec); err != nil {
		return fmt.Errorf("%w: %v", lontoderr.ErrIndexFailure, err)
	}
	return nil
}

func blobsByMimeString(blobs map[owlbuild.MimeType][]byte) map[string][]byte {
	out := make(map[string][]byte, len(blobs))
	for mt, b := range blobs {
		out[string(mt)] = b
	}
	return out
}

// definiendaFor flattens the extracted Ontology's sections into the flat
// Definiendum rows Upsert expects: one per term per fragment allocated
// during HTML rendering, using the canonical IRI/fragment pair the renderer
// actually anchored.
func definiendaFor(result *owlbuild.Result) []store.Definiendum {
	var out []store.Definiendum
	for _, section := range result.Ontology.Sections {
		for _, def := range section.Definienda {
			fragment, ok := result.Fragments[def.IRI]
			if !ok {
				continue
			}
			out = append(out, store.Definiendum{
				URI:       def.IRI,
				Fragment:  fragment,
				Canonical: true,
			})
		}
	}
	return out
}
