// Package taxon holds the static NCBI taxonomy lookup tables used to build
// OrganismTaxon records. An unknown taxon ID is a fatal configuration
// error: every downstream identifier depends on the taxon resolution.
package taxon

import (
	"fmt"

	"github.com/brain-bican/bkbit/model"
)

// IRIBase is the OBO ontology IRI prefix for NCBI taxon identifiers.
const IRIBase = "http://purl.obolibrary.org/obo/NCBITaxon_"

// scientificName maps numeric taxon IDs to scientific names.
var scientificName = map[string]string{
	"9606":  "Homo sapiens",
	"10090": "Mus musculus",
	"9544":  "Macaca mulatta",
	"9483":  "Callithrix jacchus",
}

// commonName maps numeric taxon IDs to common names.
var commonName = map[string]string{
	"9606":  "human",
	"10090": "mouse",
	"9544":  "rhesus macaque",
	"9483":  "common marmoset",
}

// Lookup builds the OrganismTaxon record for a numeric taxon ID.
func Lookup(taxonID string) (model.OrganismTaxon, error) {
	full, ok := scientificName[taxonID]
	if !ok {
		return model.OrganismTaxon{}, fmt.Errorf("unknown taxon ID %q", taxonID)
	}
	return model.OrganismTaxon{
		ID:       model.TaxonPrefix + ":" + taxonID,
		FullName: full,
		Name:     commonName[taxonID],
		IRI:      IRIBase + taxonID,
	}, nil
}
