// Command lontod-convert is a supplemental single-file utility: it runs
// the same C3-C8 pipeline the daemon's ingester uses against one ontology
// file and writes one requested serialization to stdout, without touching
// the sqlite store at all. Useful for inspecting what the daemon would
// index and render before pointing it at a watched directory.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tkw1536/lontod/pkg/owlbuild"
)

func main() {
	format := flag.String("format", "text/turtle", "output MIME type: one of turtle, ntriples, rdfxml, n3, trig, json-ld, hext, html")
	sourceFormat := flag.String("source-format", "", "source syntax: turtle or ntriples (default: guessed from extension)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: lontod-convert [-format mime] [-source-format turtle|ntriples] <file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	if err := run(path, *sourceFormat, *format); err != nil {
		fmt.Fprintf(os.Stderr, "lontod-convert: %v\n", err)
		os.Exit(1)
	}
}

func run(path, sourceFormat, outputFormat string) error {
	if sourceFormat == "" {
		sourceFormat = guessSourceFormat(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	result, err := owlbuild.Build(f, owlbuild.Options{Format: sourceFormat})
	if err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}

	mime, err := resolveMime(outputFormat)
	if err != nil {
		return err
	}

	blob, ok := result.Blobs[mime]
	if !ok {
		return fmt.Errorf("no %s serialization was produced", mime)
	}
	_, err = os.Stdout.Write(blob)
	return err
}

func guessSourceFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nt":
		return "ntriples"
	default:
		return "turtle"
	}
}

var formatAliases = map[string]owlbuild.MimeType{
	"turtle":   owlbuild.MimeTurtle,
	"ttl":      owlbuild.MimeTurtle,
	"ntriples": owlbuild.MimeNTriples,
	"nt":       owlbuild.MimeNTriples,
	"rdfxml":   owlbuild.MimeRDFXML,
	"xml":      owlbuild.MimeRDFXML,
	"n3":       owlbuild.MimeN3,
	"trig":     owlbuild.MimeTriG,
	"json-ld":  owlbuild.MimeJSONLD,
	"jsonld":   owlbuild.MimeJSONLD,
	"hext":     owlbuild.MimeHext,
	"html":     owlbuild.MimeHTML,
}

func resolveMime(format string) (owlbuild.MimeType, error) {
	if mt, ok := formatAliases[strings.ToLower(format)]; ok {
		return mt, nil
	}
	if mt := owlbuild.MimeType(format); mt != "" {
		for _, known := range formatAliases {
			if known == mt {
				return mt, nil
			}
		}
	}
	return "", fmt.Errorf("unrecognized output format %q", format)
}
