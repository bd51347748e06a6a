package gff

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// DefaultFeatureFilter lists the GFF3 feature types processed when the
// caller does not supply a filter.
var DefaultFeatureFilter = []string{"gene", "pseudogene", "ncRNA_gene"}

// versionPragma is the mandatory first line of a GFF3 file. A mismatch is
// logged but does not halt parsing: malformed upstream files are common and
// the design favors maximal extraction over strict validation.
const versionPragma = "##gff-version 3"

// maxLineSize bounds a single feature line. Attribute columns on dense
// annotation releases run to tens of kilobytes.
const maxLineSize = 1 << 20

// Parse streams the source file one line at a time and populates the
// gene-annotation table from every line whose feature type is in
// featureFilter (DefaultFeatureFilter when nil). A missing source file is
// the only fatal condition; per-line extraction failures are logged and
// skipped.
func (t *Translator) Parse(featureFilter []string) error {
	if err := t.ensureSourceExists(); err != nil {
		return err
	}
	if len(featureFilter) == 0 {
		featureFilter = DefaultFeatureFilter
	}
	filter := make(map[string]bool, len(featureFilter))
	for _, ft := range featureFilter {
		filter[ft] = true
	}

	path := t.source
	if strings.HasSuffix(path, ".gz") {
		decompressed, cleanup, err := decompressToTemp(path)
		if err != nil {
			return err
		}
		defer cleanup()
		path = decompressed
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		t.collector.LinesScanned.Inc()
		t.parseLine(scanner.Text(), line, filter)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read source file: %w", err)
	}
	return nil
}

// parseLine handles a single raw line of the source file.
func (t *Translator) parseLine(raw string, line int, filter map[string]bool) {
	stripped := strings.TrimSpace(raw)

	switch {
	case line == 1:
		if !strings.HasPrefix(stripped, versionPragma) {
			t.logger.Error(`"##gff-version 3" missing from the first line, the file may not be a valid GFF3 file`,
				slog.Int("line", line))
		}
		return
	case stripped == "":
		return
	case strings.HasPrefix(stripped, "#"):
		// Metadata and comment lines, including ## directives.
		// TODO: extract sequence-region and species directives.
		return
	}

	tokens := strings.Split(raw, "\t")
	for i, tok := range tokens {
		tokens[i] = strings.TrimSpace(tok)
	}
	if len(tokens) != 9 {
		t.logger.Warn("Features are expected to have 9 columns",
			slog.Int("line", line), slog.Int("columns", len(tokens)))
	}
	if len(tokens) < 3 || !filter[tokens[2]] {
		return
	}
	t.collector.FeaturesMatched.Inc()

	var rawAttributes string
	if len(tokens) > 8 {
		rawAttributes = tokens[8]
	}
	attrs, err := mergeAttributes(rawAttributes)
	if err != nil {
		t.logger.Error("Skipping feature line with malformed attribute column",
			slog.Int("line", line), slog.String("error", err.Error()))
		return
	}

	candidate, ok := t.builder.build(attrs, line)
	if !ok {
		return
	}
	t.upsert(candidate, line)
}

// decompressToTemp writes the decompressed content of a gzip source to a
// temporary file and returns its path together with a cleanup function that
// removes it. The cleanup runs on every exit path of the caller.
func decompressToTemp(path string) (string, func(), error) {
	in, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("open compressed source: %w", err)
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return "", nil, fmt.Errorf("read gzip header: %w", err)
	}
	defer gz.Close()

	out, err := os.CreateTemp("", "bkbit-gff-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temporary file: %w", err)
	}
	cleanup := func() { os.Remove(out.Name()) }

	if _, err := io.Copy(out, gz); err != nil {
		out.Close()
		cleanup()
		return "", nil, fmt.Errorf("decompress source: %w", err)
	}
	if err := out.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temporary file: %w", err)
	}
	return out.Name(), cleanup, nil
}
