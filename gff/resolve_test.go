package gff

import (
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/brain-bican/bkbit/metrics"
	"github.com/brain-bican/bkbit/model"
)

func newBareTranslator() *Translator {
	return &Translator{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		collector: metrics.NewCollector("test"),
		genes:     newGeneTable(),
	}
}

func gene(id, name, description, molecularType string) model.GeneAnnotation {
	return model.GeneAnnotation{
		ID:            id,
		SourceID:      id,
		Symbol:        name,
		Name:          name,
		Description:   description,
		MolecularType: molecularType,
	}
}

func TestResolve_DescriptionWins(t *testing.T) {
	existing := gene("NCBIGene:1", "A", "", "lncRNA")
	candidate := gene("NCBIGene:1", "A", "long non-coding RNA", "")

	winner, ok := resolve(existing, candidate)
	assert.True(t, ok)
	assert.Equal(t, candidate, winner)

	// Mirrored: description on the existing record keeps it.
	winner, ok = resolve(candidate, existing)
	assert.True(t, ok)
	assert.Equal(t, candidate, winner)
}

func TestResolve_MolecularTypeWins(t *testing.T) {
	existing := gene("NCBIGene:2", "B", "", "")
	candidate := gene("NCBIGene:2", "B", "", "protein_coding")

	winner, ok := resolve(existing, candidate)
	assert.True(t, ok)
	assert.Equal(t, candidate, winner)

	winner, ok = resolve(candidate, existing)
	assert.True(t, ok)
	assert.Equal(t, candidate, winner)
}

func TestResolve_NoncodingSuperseded(t *testing.T) {
	existing := gene("NCBIGene:3", "C", "some gene", model.BioTypeNoncoding)
	candidate := gene("NCBIGene:3", "C", "some gene", "lncRNA")

	winner, ok := resolve(existing, candidate)
	assert.True(t, ok)
	assert.Equal(t, "lncRNA", winner.MolecularType)

	winner, ok = resolve(candidate, existing)
	assert.True(t, ok)
	assert.Equal(t, "lncRNA", winner.MolecularType)
}

func TestResolve_Unresolvable(t *testing.T) {
	existing := gene("NCBIGene:4", "D", "one description", "lncRNA")
	candidate := gene("NCBIGene:4", "D", "another description", "snoRNA")

	_, ok := resolve(existing, candidate)
	assert.False(t, ok)
}

func TestUpsert_FirstSightingInserts(t *testing.T) {
	tr := newBareTranslator()
	tr.upsert(gene("NCBIGene:5", "E", "", ""), 10)

	assert.Equal(t, 1, tr.genes.len())
	assert.Equal(t, float64(1), testutil.ToFloat64(tr.collector.GenesCreated))
}

func TestUpsert_EqualCandidateIsNoOp(t *testing.T) {
	tr := newBareTranslator()
	tr.upsert(gene("NCBIGene:6", "F", "desc", "lncRNA"), 10)
	tr.upsert(gene("NCBIGene:6", "F", "desc", "lncRNA"), 20)

	assert.Equal(t, 1, tr.genes.len())
	assert.Equal(t, float64(1), testutil.ToFloat64(tr.collector.GenesCreated))
	assert.Equal(t, float64(0), testutil.ToFloat64(tr.collector.GenesDiscarded))
}

func TestUpsert_NameOnlyDivergenceDiscarded(t *testing.T) {
	tr := newBareTranslator()
	tr.upsert(gene("NCBIGene:7", "G", "desc", "lncRNA"), 10)
	tr.upsert(gene("NCBIGene:7", "G-alias", "desc", "lncRNA"), 20)

	stored, ok := tr.genes.get("NCBIGene:7")
	assert.True(t, ok)
	assert.Equal(t, "G", stored.Name)
	assert.Equal(t, float64(1), testutil.ToFloat64(tr.collector.GenesDiscarded))
}

func TestUpsert_CandidateSupersedes(t *testing.T) {
	tr := newBareTranslator()
	tr.upsert(gene("NCBIGene:8", "H", "", "lncRNA"), 10)
	tr.upsert(gene("NCBIGene:8", "H", "a real description", "lncRNA"), 20)

	stored, _ := tr.genes.get("NCBIGene:8")
	assert.Equal(t, "a real description", stored.Description)
	assert.Equal(t, float64(1), testutil.ToFloat64(tr.collector.GenesSuperseded))
}

func TestUpsert_UnresolvedKeepsExisting(t *testing.T) {
	tr := newBareTranslator()
	tr.upsert(gene("NCBIGene:9", "I", "first", "lncRNA"), 10)
	tr.upsert(gene("NCBIGene:9", "I", "second", "snoRNA"), 20)

	stored, _ := tr.genes.get("NCBIGene:9")
	assert.Equal(t, "first", stored.Description)
	assert.Equal(t, float64(1), testutil.ToFloat64(tr.collector.ConflictsUnresolved))
}

func TestGeneTable_PreservesInsertionOrder(t *testing.T) {
	tr := newBareTranslator()
	tr.upsert(gene("NCBIGene:30", "Z", "", ""), 1)
	tr.upsert(gene("NCBIGene:10", "X", "", ""), 2)
	tr.upsert(gene("NCBIGene:20", "Y", "", ""), 3)
	// Supersession keeps the original position.
	tr.upsert(gene("NCBIGene:30", "Z", "described", ""), 4)

	ordered := tr.genes.ordered()
	assert.Equal(t, []string{"NCBIGene:30", "NCBIGene:10", "NCBIGene:20"},
		[]string{ordered[0].ID, ordered[1].ID, ordered[2].ID})
	assert.Equal(t, "described", ordered[0].Description)
}
