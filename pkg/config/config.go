// Package config loads lontod's runtime configuration from flags and
// environment variables, following the same getEnv/getEnvAsInt pattern the
// rest of the stack uses for its own Config struct.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the full runtime configuration for the lontod daemon.
type Config struct {
	// Paths are the source directories/files to index. May be empty, in
	// which case the daemon serves whatever is already in Database.
	Paths []string

	Database       string
	Watch          bool
	Host           string
	Port           string
	PublicDomain   string
	OntologyRoute  string
	SkipSafeRoutes bool

	IndexHTMLHeader string
	IndexHTMLFooter string
	IndexTXTHeader  string
	IndexTXTFooter  string

	Debug bool
}

// yamlOverrides is the shape of an optional lontod.yaml override file: every
// field optional, so an override file only needs to name the settings it
// changes. Precedence is flags > environment > lontod.yaml > built-in
// default, the same layering the teacher's own ConfigManager uses for its
// file/environment split.
type yamlOverrides struct {
	Database      string   `yaml:"database"`
	Host          string   `yaml:"host"`
	Port          string   `yaml:"port"`
	PublicDomain  string   `yaml:"public_domain"`
	OntologyRoute string   `yaml:"ontology_route"`
	Paths         []string `yaml:"paths"`
	Watch         bool     `yaml:"watch"`
	Debug         bool     `yaml:"debug"`
}

// loadYAMLOverrides reads LONTOD_CONFIG (or, if unset, ./lontod.yaml if it
// exists) and parses it as a yamlOverrides. A missing default path is not an
// error — the override file is entirely optional; an explicitly-named
// LONTOD_CONFIG path that is missing or malformed is.
func loadYAMLOverrides() (*yamlOverrides, error) {
	path := os.Getenv("LONTOD_CONFIG")
	explicit := path != ""
	if !explicit {
		path = "./lontod.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		return &yamlOverrides{}, nil
	}

	var y yamlOverrides
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &y, nil
}

// Load builds a Config from the process's CLI arguments, environment, and an
// optional lontod.yaml override file, mirroring the precedence
// flags-override-environment-override-file-override-default used throughout
// the rest of the pack's config layers.
func Load(args []string) (*Config, error) {
	y, err := loadYAMLOverrides()
	if err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("lontod", flag.ContinueOnError)

	database := fs.String("database", "", "path to the sqlite index file (short: -d)")
	fs.StringVar(database, "d", "", "path to the sqlite index file")

	watch := fs.Bool("watch", false, "watch the input paths for changes (short: -w)")
	fs.BoolVar(watch, "w", false, "watch the input paths for changes")

	host := fs.String("host", "", "address to listen on (short: -H)")
	fs.StringVar(host, "H", "", "address to listen on")

	port := fs.String("port", "", "port to listen on (short: -p)")
	fs.StringVar(port, "p", "", "port to listen on")

	publicDomain := fs.String("public-domain", "", "public-facing domain used to build dereference IRIs (short: -D)")
	fs.StringVar(publicDomain, "D", "", "public-facing domain used to build dereference IRIs")

	route := fs.String("ontology-route", "", "HTTP path serving the ontology index (short: -r)")
	fs.StringVar(route, "r", "", "HTTP path serving the ontology index")

	skipSafeRoutes := fs.Bool("insecure-skip-routes", false, "skip the built-in /.well-known, /favicon.ico, /robots.txt 404s")

	fs.String("log", "", "log file path (short: -l); logging configuration is handled by the caller")
	fs.String("l", "", "log file path")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	paths := fs.Args()
	if len(paths) == 0 {
		if envPaths := os.Getenv("LONTOD_PATHS"); envPaths != "" {
			paths = splitPaths(envPaths)
		} else {
			paths = y.Paths
		}
	}

	cfg := &Config{
		Paths:          paths,
		Database:       firstNonEmpty(*database, os.Getenv("LONTOD_DB"), y.Database),
		Watch:          *watch || y.Watch,
		Host:           firstNonEmpty(*host, os.Getenv("LONTOD_HOST"), y.Host, "localhost"),
		Port:           firstNonEmpty(*port, os.Getenv("LONTOD_PORT"), y.Port, "8080"),
		PublicDomain:   firstNonEmpty(*publicDomain, os.Getenv("PUBLIC_DOMAIN"), y.PublicDomain),
		OntologyRoute:  firstNonEmpty(*route, os.Getenv("LONTOD_ROUTE"), y.OntologyRoute, "/"),
		SkipSafeRoutes: *skipSafeRoutes,

		Debug: getEnvAsBool("LONTOD_DEBUG", y.Debug),
	}

	if cfg.IndexHTMLHeader, err = loadTemplateFile("LONTOD_INDEX_HTML_HEADER"); err != nil {
		return nil, err
	}
	if cfg.IndexHTMLFooter, err = loadTemplateFile("LONTOD_INDEX_HTML_FOOTER"); err != nil {
		return nil, err
	}
	if cfg.IndexTXTHeader, err = loadTemplateFile("LONTOD_INDEX_TXT_HEADER"); err != nil {
		return nil, err
	}
	if cfg.IndexTXTFooter, err = loadTemplateFile("LONTOD_INDEX_TXT_FOOTER"); err != nil {
		return nil, err
	}

	if cfg.Database == "" && len(cfg.Paths) == 0 {
		cfg.Database = "./lontod.index"
	}

	if cfg.Watch && len(cfg.Paths) == 0 {
		return nil, fmt.Errorf("config: --watch requires at least one input path")
	}

	return cfg, nil
}

// loadTemplateFile reads the file at the path named by the environment
// variable envVar, per spec.md §6.3: LONTOD_INDEX_{HTML,TXT}_{HEADER,FOOTER}
// hold paths whose file contents substitute for the built-in index
// templates. An unset variable is not an error; it leaves the template
// empty so the handler skips rendering it.
func loadTemplateFile(envVar string) (string, error) {
	path := os.Getenv(envVar)
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("config: read %s file %q: %w", envVar, path, err)
	}
	return string(data), nil
}

// splitPaths splits LONTOD_PATHS on ';', the fixed canonical separator (see
// spec.md §9 Open Questions: some revisions disagreed between ';' and ',',
// this implementation commits to ';').
func splitPaths(s string) []string {
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func getEnvAsBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}
