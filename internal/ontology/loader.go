package ontology

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"litkg/internal/logging"
)

// SourceRef names one ontology to load. Name overrides the derived cache
// filename and the source's display name.
type SourceRef struct {
	Name string
	URL  string
}

// Loader downloads, caches, and parses ontology documents. Remote sources
// are fetched once and reused from the cache directory on later runs.
type Loader struct {
	CacheDir string
	client   *http.Client
	log      *logging.Logger
}

// NewLoader creates a loader, creating the cache directory if needed.
func NewLoader(cacheDir string, timeout time.Duration, log *logging.Logger) (*Loader, error) {
	if cacheDir == "" {
		cacheDir = "cache_ontologies"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &Loader{
		CacheDir: cacheDir,
		client:   &http.Client{Timeout: timeout},
		log:      logging.OrNop(log),
	}, nil
}

// CacheFilename derives the cache file name for an ontology URL: the last
// path segment, with ".owl" appended unless already present.
func CacheFilename(url string) string {
	name := url
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		name = "ontology"
	}
	if !strings.HasSuffix(name, ".owl") {
		name += ".owl"
	}
	return name
}

func isRemote(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// Load fetches (or reuses from cache) and parses one ontology source.
// Local filesystem paths are parsed in place.
func (l *Loader) Load(ctx context.Context, ref SourceRef) (*Source, error) {
	local := ref.URL
	if isRemote(ref.URL) {
		filename := ref.Name
		if filename == "" {
			filename = CacheFilename(ref.URL)
		} else if !strings.HasSuffix(filename, ".owl") {
			filename += ".owl"
		}
		local = filepath.Join(l.CacheDir, filename)

		if _, err := os.Stat(local); os.IsNotExist(err) {
			l.log.Info("downloading ontology", "url", ref.URL, "path", local)
			if err := l.fetch(ctx, ref.URL, local); err != nil {
				return nil, err
			}
		} else {
			l.log.Info("using cached ontology", "path", local)
		}
	}

	concepts, err := l.parseFile(local)
	if err != nil {
		return nil, err
	}

	name := ref.Name
	if name == "" {
		name = sourceName(local)
	}
	return &Source{Name: name, URL: ref.URL, Path: local, Concepts: concepts}, nil
}

// sourceName derives a display name from a file path. Ontology extensions
// are trimmed repeatedly so a cached remote like "nif.ttl.owl" and a local
// "nif.ttl" both come out as "nif".
func sourceName(path string) string {
	name := filepath.Base(path)
	for {
		trimmed := strings.TrimSuffix(name, ".owl")
		trimmed = strings.TrimSuffix(trimmed, ".ttl")
		trimmed = strings.TrimSuffix(trimmed, ".rdf")
		if trimmed == name || trimmed == "" {
			return name
		}
		name = trimmed
	}
}

// LoadAll loads every source concurrently and merges the successes into the
// index sequentially, in declaration order. The returned slice is aligned
// with refs; a nil entry means the source merged.
func (l *Loader) LoadAll(ctx context.Context, refs []SourceRef, idx *Index) []error {
	sources := make([]*Source, len(refs))
	errs := make([]error, len(refs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for i := range refs {
		i := i
		eg.Go(func() error {
			sources[i], errs[i] = l.Load(ctx, refs[i])
			return nil
		})
	}
	_ = eg.Wait()

	// A failed source never reaches the index.
	for i, src := range sources {
		if errs[i] != nil {
			l.log.Warn("ontology source skipped", "url", refs[i].URL, "error", errs[i])
			continue
		}
		idx.AddSource(src)
		l.log.Info("ontology merged", "name", src.Name, "concepts", len(src.Concepts))
	}
	return errs
}

func (l *Loader) fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &FetchError{URL: url, Err: err}
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &FetchError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	f, err := os.Create(dest)
	if err != nil {
		return &FetchError{URL: url, Err: err}
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		// A truncated download must not poison the cache.
		os.Remove(dest)
		return &FetchError{URL: url, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(dest)
		return &FetchError{URL: url, Err: err}
	}
	return nil
}

type docFormat int

const (
	formatRDFXML docFormat = iota
	formatTurtle
)

// sniffFormat inspects the document head. Extensions lie often enough that
// only content counts: markup means RDF/XML, directives mean Turtle.
func sniffFormat(path string) (docFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return formatRDFXML, err
	}
	defer f.Close()

	head := make([]byte, 4096)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return formatRDFXML, err
	}
	head = head[:n]
	head = bytes.TrimPrefix(head, []byte{0xEF, 0xBB, 0xBF})

	for _, line := range bytes.Split(head, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if line[0] == '<' {
			return formatRDFXML, nil
		}
		if line[0] == '#' {
			continue
		}
		if bytes.HasPrefix(line, []byte("@prefix")) || bytes.HasPrefix(line, []byte("@base")) ||
			bytes.HasPrefix(line, []byte("PREFIX")) || bytes.HasPrefix(line, []byte("BASE")) {
			return formatTurtle, nil
		}
		// First contentful line is neither markup nor a directive;
		// assume XML and let the parser report the details.
		return formatRDFXML, nil
	}
	return formatRDFXML, nil
}

// convertedPath places the RDF/XML rendition of a Turtle document next to
// it in the cache.
func convertedPath(path string) string {
	return strings.TrimSuffix(path, ".owl") + ".rdf"
}

func (l *Loader) parseFile(path string) ([]*Concept, error) {
	format, err := sniffFormat(path)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}

	if format == formatTurtle {
		converted := convertedPath(path)
		if _, statErr := os.Stat(converted); os.IsNotExist(statErr) {
			l.log.Info("converting turtle ontology", "path", path)
			if err := l.convert(path, converted); err != nil {
				l.log.Warn("turtle conversion failed, attempting direct parse", "path", path, "error", err)
			} else {
				path = converted
			}
		} else {
			path = converted
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}
	defer f.Close()

	concepts, err := ParseOWL(f)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}
	return concepts, nil
}

func (l *Loader) convert(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return &ConversionError{Source: src, Err: err}
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return &ConversionError{Source: src, Err: err}
	}
	if err := ConvertTurtle(in, out); err != nil {
		out.Close()
		os.Remove(dest)
		return &ConversionError{Source: src, Err: err}
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return &ConversionError{Source: src, Err: err}
	}
	return nil
}
