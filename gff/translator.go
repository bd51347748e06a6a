// Package gff implements the GFF3 genome-annotation translator: a streaming
// parser over NCBI and Ensembl annotation releases that resolves gene
// records into a canonical BICAN object graph.
package gff

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/brain-bican/bkbit/digest"
	"github.com/brain-bican/bkbit/metrics"
	"github.com/brain-bican/bkbit/model"
	"github.com/brain-bican/bkbit/taxon"
)

// genomeAnnotationDescription is the template for the release description:
// "<authority> <scientific name> Annotation Release <version>".
const genomeAnnotationDescription = "%s %s Annotation Release %s"

// Params carries the identifying metadata for one annotation release.
// Everything here is caller-supplied configuration; validation failures are
// fatal and reported before any file is parsed.
type Params struct {
	// Source is the path to the GFF3 file (optionally gzip-compressed).
	Source string

	// ContentURL records where the file was retrieved from. Defaults to
	// Source when empty.
	ContentURL string

	// TaxonID is the numeric NCBI taxon identifier, e.g. "9606".
	TaxonID string

	// Assembly identity.
	AssemblyID      string
	AssemblyVersion string
	AssemblyLabel   string
	AssemblyStrain  string

	// Genome annotation identity.
	GenomeLabel   string
	GenomeVersion string
	Authority     string

	// HashAlgorithms selects the checksum set computed over the source
	// file content. Defaults to digest.DefaultAlgorithms.
	HashAlgorithms []string
}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) { t.logger = logger }
}

// WithMetrics sets the metrics collector for progress accounting.
func WithMetrics(c *metrics.Collector) Option {
	return func(t *Translator) { t.collector = c }
}

// Translator owns the full lifecycle of one GFF3 translation: provenance
// record construction, the streaming parse, duplicate resolution, and the
// accumulated gene-annotation table. It is not safe for concurrent use;
// all table mutation happens from the single parse loop.
type Translator struct {
	logger    *slog.Logger
	collector *metrics.Collector

	source string

	organismTaxon    model.OrganismTaxon
	genomeAssembly   model.GenomeAssembly
	checksums        []model.Checksum
	genomeAnnotation model.GenomeAnnotation

	builder geneBuilder
	genes   *geneTable
}

// New constructs a translator and eagerly builds the taxon, assembly,
// checksum, and annotation records. Unknown taxon IDs, unsupported
// authorities, and an unreadable source file are fatal here.
func New(p Params, opts ...Option) (*Translator, error) {
	t := &Translator{
		logger: slog.Default(),
		source: p.Source,
		genes:  newGeneTable(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.collector == nil {
		t.collector = metrics.NewCollector("bkbit_gff")
	}

	authority, err := model.ParseAuthority(p.Authority)
	if err != nil {
		return nil, err
	}

	t.organismTaxon, err = taxon.Lookup(p.TaxonID)
	if err != nil {
		return nil, err
	}

	t.genomeAssembly = model.GenomeAssembly{
		ID:           model.AssemblyPrefix + ":" + p.AssemblyID,
		InTaxon:      []string{t.organismTaxon.ID},
		InTaxonLabel: t.organismTaxon.FullName,
		Version:      p.AssemblyVersion,
		Name:         p.AssemblyLabel,
		Strain:       p.AssemblyStrain,
	}

	t.checksums, err = digest.GenerateFile(p.Source, p.HashAlgorithms, t.logger)
	if err != nil {
		return nil, err
	}

	contentURL := p.ContentURL
	if contentURL == "" {
		contentURL = p.Source
	}
	digestIDs := make([]string, 0, len(t.checksums))
	for _, ck := range t.checksums {
		digestIDs = append(digestIDs, ck.ID)
	}
	t.genomeAnnotation = model.GenomeAnnotation{
		ID:                model.BICANAnnotationPrefix + strings.ToUpper(p.GenomeLabel),
		Digest:            digestIDs,
		ContentURL:        []string{contentURL},
		ReferenceAssembly: t.genomeAssembly.ID,
		Version:           p.GenomeVersion,
		InTaxon:           []string{t.organismTaxon.ID},
		InTaxonLabel:      t.organismTaxon.FullName,
		Description: fmt.Sprintf(genomeAnnotationDescription,
			authority, t.organismTaxon.FullName, p.GenomeVersion),
		Authority: authority,
	}

	// Authority dispatch is fixed at construction time: it cannot change
	// mid-parse.
	switch authority {
	case model.AuthorityEnsembl:
		t.builder = &ensemblBuilder{translator: t}
	case model.AuthorityNCBI:
		t.builder = &ncbiBuilder{translator: t}
	}

	return t, nil
}

// Records returns the full flattened record sequence: taxon, assembly,
// annotation, checksums, then gene annotations in insertion order.
func (t *Translator) Records() []any {
	records := []any{t.organismTaxon, t.genomeAssembly, t.genomeAnnotation}
	for _, ck := range t.checksums {
		records = append(records, ck)
	}
	for _, g := range t.genes.ordered() {
		records = append(records, g)
	}
	return records
}

// GenomeAnnotation returns the annotation release record.
func (t *Translator) GenomeAnnotation() model.GenomeAnnotation {
	return t.genomeAnnotation
}

// Genes returns the resolved gene annotations in insertion order.
func (t *Translator) Genes() []model.GeneAnnotation {
	return t.genes.ordered()
}

// geneTable is the gene-annotation table: an insertion-ordered map from
// stable gene ID to the most complete record observed for it. Entries are
// replaced whole, never field-mutated.
type geneTable struct {
	byID  map[string]model.GeneAnnotation
	order []string
}

func newGeneTable() *geneTable {
	return &geneTable{byID: make(map[string]model.GeneAnnotation)}
}

func (g *geneTable) get(id string) (model.GeneAnnotation, bool) {
	rec, ok := g.byID[id]
	return rec, ok
}

func (g *geneTable) put(rec model.GeneAnnotation) {
	if _, exists := g.byID[rec.ID]; !exists {
		g.order = append(g.order, rec.ID)
	}
	g.byID[rec.ID] = rec
}

func (g *geneTable) len() int {
	return len(g.byID)
}

func (g *geneTable) ordered() []model.GeneAnnotation {
	out := make([]model.GeneAnnotation, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.byID[id])
	}
	return out
}

// ensureSourceExists verifies the parse precondition.
func (t *Translator) ensureSourceExists() error {
	info, err := os.Stat(t.source)
	if err != nil {
		return fmt.Errorf("source file %s does not exist: %w", t.source, err)
	}
	if info.IsDir() {
		return fmt.Errorf("source %s is a directory", t.source)
	}
	return nil
}
