// Package model provides the BICAN biolink-derived record types emitted by
// the translators. All records serialize to flat JSON-LD nodes; unset
// optional fields are excluded from the output.
package model

import "slices"

// Identifier prefixes for the CURIEs and synthetic IDs used across records.
const (
	TaxonPrefix           = "NCBITaxon"
	AssemblyPrefix        = "NCBIAssembly"
	NCBIGenePrefix        = "NCBIGene"
	EnsemblGenePrefix     = "ENSEMBL"
	BICANAnnotationPrefix = "bican:annotation-"
)

// OrganismTaxon describes the organism an annotation release belongs to.
// Built once from the static taxonomy lookup tables.
type OrganismTaxon struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Name     string `json:"name,omitempty"`
	IRI      string `json:"iri,omitempty"`
}

// GenomeAssembly describes the reference assembly the annotation was
// produced against.
type GenomeAssembly struct {
	ID           string   `json:"id"`
	InTaxon      []string `json:"in_taxon,omitempty"`
	InTaxonLabel string   `json:"in_taxon_label,omitempty"`
	Version      string   `json:"version,omitempty"`
	Name         string   `json:"name,omitempty"`
	Strain       string   `json:"strain,omitempty"`
}

// Checksum is a provenance record holding one content digest of the source
// file. Its ID is a synthetic URN minted from a random UUID.
type Checksum struct {
	ID                string     `json:"id"`
	ChecksumAlgorithm DigestType `json:"checksum_algorithm"`
	Value             string     `json:"value"`
}

// GenomeAnnotation describes a whole annotation release.
type GenomeAnnotation struct {
	ID                string        `json:"id"`
	Digest            []string      `json:"digest,omitempty"`
	ContentURL        []string      `json:"content_url,omitempty"`
	ReferenceAssembly string        `json:"reference_assembly,omitempty"`
	Version           string        `json:"version,omitempty"`
	InTaxon           []string      `json:"in_taxon,omitempty"`
	InTaxonLabel      string        `json:"in_taxon_label,omitempty"`
	Description       string        `json:"description,omitempty"`
	Authority         AuthorityType `json:"authority,omitempty"`
}

// GeneAnnotation is one gene record extracted from a qualifying GFF3
// feature line. Empty optional fields mean the attribute was absent or
// rejected on the source line. Records are only ever replaced whole in the
// gene-annotation table, never field-mutated in place.
type GeneAnnotation struct {
	ID            string   `json:"id"`
	SourceID      string   `json:"source_id,omitempty"`
	Symbol        string   `json:"symbol,omitempty"`
	Name          string   `json:"name,omitempty"`
	Description   string   `json:"description,omitempty"`
	MolecularType string   `json:"molecular_type,omitempty"`
	ReferencedIn  string   `json:"referenced_in,omitempty"`
	InTaxon       []string `json:"in_taxon,omitempty"`
	InTaxonLabel  string   `json:"in_taxon_label,omitempty"`
	Synonym       []string `json:"synonym,omitempty"`
}

// Equal reports full value equality between two gene records.
func (g GeneAnnotation) Equal(other GeneAnnotation) bool {
	return g.ID == other.ID &&
		g.SourceID == other.SourceID &&
		g.Symbol == other.Symbol &&
		g.Name == other.Name &&
		g.Description == other.Description &&
		g.MolecularType == other.MolecularType &&
		g.ReferencedIn == other.ReferencedIn &&
		g.InTaxonLabel == other.InTaxonLabel &&
		slices.Equal(g.InTaxon, other.InTaxon) &&
		slices.Equal(g.Synonym, other.Synonym)
}
