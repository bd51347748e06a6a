package gff

import (
	"log/slog"

	"github.com/brain-bican/bkbit/model"
)

// upsert stores a candidate gene record in the gene-annotation table.
// First sighting of a stable ID inserts unconditionally. A candidate equal
// to the stored record is a no-op. A candidate differing only in its name
// is discarded with a warning: name divergence alone never triggers
// supersession. Any other divergence goes through the resolution policy.
func (t *Translator) upsert(candidate model.GeneAnnotation, line int) {
	existing, ok := t.genes.get(candidate.ID)
	if !ok {
		t.genes.put(candidate)
		t.collector.GenesCreated.Inc()
		return
	}
	if existing.Equal(candidate) {
		return
	}
	if equalExceptName(existing, candidate) {
		t.logger.Warn("Gene annotation already exists with a different name, keeping the existing record",
			slog.Int("line", line),
			slog.String("id", candidate.ID),
			slog.String("existing_name", existing.Name),
			slog.String("new_name", candidate.Name))
		t.collector.GenesDiscarded.Inc()
		return
	}

	winner, resolved := resolve(existing, candidate)
	if !resolved {
		t.logger.Error("Unable to resolve duplicates for gene, keeping the existing record",
			slog.Int("line", line), slog.String("id", candidate.ID))
		t.collector.ConflictsUnresolved.Inc()
		return
	}
	if winner.Equal(existing) {
		t.collector.GenesDiscarded.Inc()
		return
	}
	t.genes.put(winner)
	t.collector.GenesSuperseded.Inc()
}

// resolve applies the deterministic tie-break policy between an existing
// stored record and a new candidate for the same stable ID. Rules fire in
// fixed priority order, first match wins:
//
//  1. description present only on the candidate  -> candidate
//  2. description present only on the existing   -> existing
//  3. molecular_type present only on candidate   -> candidate
//  4. molecular_type present only on existing    -> existing
//  5. existing is the generic "noncoding", candidate is more specific
//     -> candidate
//  6. candidate is "noncoding", existing is more specific -> existing
//
// When no rule fires the conflict is unresolvable and the second return is
// false; the caller keeps the existing record and surfaces the ambiguity.
func resolve(existing, candidate model.GeneAnnotation) (model.GeneAnnotation, bool) {
	switch {
	case existing.Description == "" && candidate.Description != "":
		return candidate, true
	case existing.Description != "" && candidate.Description == "":
		return existing, true
	case existing.MolecularType == "" && candidate.MolecularType != "":
		return candidate, true
	case existing.MolecularType != "" && candidate.MolecularType == "":
		return existing, true
	case existing.MolecularType == model.BioTypeNoncoding && candidate.MolecularType != model.BioTypeNoncoding:
		return candidate, true
	case existing.MolecularType != model.BioTypeNoncoding && candidate.MolecularType == model.BioTypeNoncoding:
		return existing, true
	}
	return model.GeneAnnotation{}, false
}

// equalExceptName reports whether two records differ only in their
// name-derived fields.
func equalExceptName(a, b model.GeneAnnotation) bool {
	a.Name, a.Symbol = "", ""
	b.Name, b.Symbol = "", ""
	return a.Equal(b)
}
