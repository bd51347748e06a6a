package gff

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/brain-bican/bkbit/model"
)

// sourceCitation matches the trailing "[Source: ...]" citation suffix on
// Ensembl and NCBI description attributes.
var sourceCitation = regexp.MustCompile(`\s*\[Source.*?\]`)

// geneBuilder turns the merged attributes of one qualifying feature line
// into a candidate gene-annotation record. The second return is false when
// the line yields no record (missing or ambiguous identifiers).
type geneBuilder interface {
	build(attrs attributeSet, line int) (model.GeneAnnotation, bool)
}

// ensemblBuilder extracts gene records from Ensembl-authored releases. The
// stable ID comes directly from the gene_id attribute with any trailing
// version suffix stripped.
type ensemblBuilder struct {
	translator *Translator
}

func (b *ensemblBuilder) build(attrs attributeSet, line int) (model.GeneAnnotation, bool) {
	t := b.translator

	stableID, ok := attrs.single("gene_id")
	if !ok {
		t.logger.Error("No gene annotation created for this row due to missing or ambiguous gene_id attribute",
			slog.Int("line", line))
		return model.GeneAnnotation{}, false
	}
	stableID = strings.SplitN(stableID, ".", 2)[0]

	name := t.getAttribute(attrs, "Name", line)
	description := t.getAttribute(attrs, "description", line)
	biotype := t.getAttribute(attrs, "biotype", line)

	return model.GeneAnnotation{
		ID:            model.EnsemblGenePrefix + ":" + stableID,
		SourceID:      stableID,
		Symbol:        name,
		Name:          name,
		Description:   description,
		MolecularType: biotype,
		ReferencedIn:  t.genomeAnnotation.ID,
		InTaxon:       []string{t.organismTaxon.ID},
		InTaxonLabel:  t.organismTaxon.FullName,
	}, true
}

// ncbiBuilder extracts gene records from NCBI-authored releases. The stable
// ID is resolved indirectly through the Dbxref cross-reference set and must
// be unambiguous: exactly one distinct GeneID value across all occurrences.
type ncbiBuilder struct {
	translator *Translator
}

func (b *ncbiBuilder) build(attrs attributeSet, line int) (model.GeneAnnotation, bool) {
	t := b.translator

	dbxref, ok := attrs["Dbxref"]
	if !ok {
		t.logger.Error("No gene annotation created for this row due to missing Dbxref attribute",
			slog.Int("line", line))
		return model.GeneAnnotation{}, false
	}

	geneIDs := make(map[string]bool)
	for ref := range dbxref {
		prefix, value, found := strings.Cut(ref, ":")
		if found && prefix == "GeneID" {
			geneIDs[strings.SplitN(value, ".", 2)[0]] = true
		}
	}
	if len(geneIDs) != 1 {
		t.logger.Error("No gene annotation created for this row due to number of GeneIDs in Dbxref attribute not equal to one",
			slog.Int("line", line), slog.Int("gene_ids", len(geneIDs)))
		return model.GeneAnnotation{}, false
	}
	var stableID string
	for id := range geneIDs {
		stableID = id
	}

	name := t.getAttribute(attrs, "Name", line)
	description := t.getAttribute(attrs, "description", line)
	biotype := t.getAttribute(attrs, "gene_biotype", line)

	synonyms := attrs.sorted("gene_synonym")
	if synonyms == nil {
		t.logger.Debug("Synonym not set for this row's gene annotation due to missing gene_synonym attribute",
			slog.Int("line", line))
	}

	return model.GeneAnnotation{
		ID:            model.NCBIGenePrefix + ":" + stableID,
		SourceID:      stableID,
		Symbol:        name,
		Name:          name,
		Description:   description,
		MolecularType: biotype,
		ReferencedIn:  t.genomeAnnotation.ID,
		InTaxon:       []string{t.organismTaxon.ID},
		InTaxonLabel:  t.organismTaxon.FullName,
		Synonym:       synonyms,
	}, true
}

// getAttribute retrieves a single-valued attribute. Missing or multi-valued
// attributes yield "" with a warning. Description values additionally get
// the trailing [Source...] citation stripped and percent-escapes decoded.
// Any other attribute whose value still contains a comma is rejected: it is
// a sign of an upstream multi-value that was never split.
func (t *Translator) getAttribute(attrs attributeSet, key string, line int) string {
	values, ok := attrs[key]
	if !ok {
		t.logger.Warn("Attribute not set for this row's gene annotation due to missing attribute",
			slog.Int("line", line), slog.String("attribute", key))
		return ""
	}
	if len(values) != 1 {
		t.logger.Warn("Attribute not set for this row's gene annotation due to more than one value provided",
			slog.Int("line", line), slog.String("attribute", key))
		return ""
	}
	value, _ := attrs.single(key)
	if key == "description" {
		return sourceCitation.ReplaceAllString(unescape(value), "")
	}
	if strings.Contains(value, ",") {
		t.logger.Warn("Attribute not set for this row's gene annotation due to value containing a comma",
			slog.Int("line", line), slog.String("attribute", key))
		return ""
	}
	return value
}

// unescape percent-decodes a value, keeping the original text when it is
// not valid percent-encoding.
func unescape(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
