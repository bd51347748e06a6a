package gff

import (
	"compress/gzip"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brain-bican/bkbit/model"
)

const ncbiSample = `##gff-version 3
#!gff-spec-version 1.21
##sequence-region NC_000013.11 1 114364328
NC_000013.11	BestRefSeq	region	1	114364328	.	+	.	ID=NC_000013.11:1..114364328;Dbxref=taxon:9606
NC_000013.11	BestRefSeq	gene	32315508	32400268	.	+	.	ID=gene-BRCA2;Dbxref=GeneID:675,HGNC:HGNC:1101;Name=BRCA2;description=BRCA2 DNA repair associated;gene_biotype=protein_coding;gene_synonym=FACD,FAD,FAD1,BRCC2
NC_000013.11	Gnomon	pseudogene	100	200	.	+	.	ID=gene-LOC1;Dbxref=GeneID:100421;Name=LOC1;gene_biotype=pseudogene
NC_000013.11	BestRefSeq	mRNA	32315508	32400268	.	+	.	ID=rna-NM_000059.4;Parent=gene-BRCA2
`

const ensemblSample = `##gff-version 3
##sequence-region 13 1 114364328
13	ensembl	chromosome	1	114364328	.	.	.	ID=chromosome:13
13	ensembl_havana	gene	32315474	32400266	.	+	.	ID=gene:ENSG00000139618;gene_id=ENSG00000139618.2;Name=BRCA2;biotype=protein_coding;description=BRCA2 DNA repair associated [Source:HGNC Symbol%3BAcc:HGNC:1101]
13	havana	ncRNA_gene	1000	2000	.	-	.	ID=gene:ENSG00000223972;gene_id=ENSG00000223972;Name=DDX11L1;biotype=lncRNA
13	ensembl	mRNA	32315474	32400266	.	+	.	ID=transcript:ENST00000380152;Parent=gene:ENSG00000139618
`

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testParams(source, authority string) Params {
	return Params{
		Source:          source,
		TaxonID:         "9606",
		AssemblyID:      "GCF_000001405.40",
		AssemblyVersion: "40",
		AssemblyLabel:   "GRCh38.p14",
		GenomeLabel:     "NCBI-GRCh38",
		GenomeVersion:   "110",
		Authority:       authority,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_BuildsProvenanceRecords(t *testing.T) {
	source := writeSource(t, "human.gff", ncbiSample)
	tr, err := New(testParams(source, "NCBI"), WithLogger(quietLogger()))
	require.NoError(t, err)

	records := tr.Records()
	require.GreaterOrEqual(t, len(records), 5)

	taxonRec, ok := records[0].(model.OrganismTaxon)
	require.True(t, ok)
	assert.Equal(t, "NCBITaxon:9606", taxonRec.ID)
	assert.Equal(t, "Homo sapiens", taxonRec.FullName)
	assert.Equal(t, "human", taxonRec.Name)

	assemblyRec, ok := records[1].(model.GenomeAssembly)
	require.True(t, ok)
	assert.Equal(t, "NCBIAssembly:GCF_000001405.40", assemblyRec.ID)
	assert.Equal(t, []string{"NCBITaxon:9606"}, assemblyRec.InTaxon)

	annotation, ok := records[2].(model.GenomeAnnotation)
	require.True(t, ok)
	assert.Equal(t, "bican:annotation-NCBI-GRCH38", annotation.ID)
	assert.Equal(t, "NCBI Homo sapiens Annotation Release 110", annotation.Description)
	assert.Equal(t, model.AuthorityNCBI, annotation.Authority)
	assert.Equal(t, "NCBIAssembly:GCF_000001405.40", annotation.ReferenceAssembly)
	assert.Equal(t, []string{source}, annotation.ContentURL)

	// Default checksum set is SHA256 and MD5, each with a fresh URN.
	require.Len(t, annotation.Digest, 2)
	for _, rec := range records[3:5] {
		ck, ok := rec.(model.Checksum)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(ck.ID, "urn:uuid:"))
		assert.NotEmpty(t, ck.Value)
	}
}

func TestNew_UnknownAuthority(t *testing.T) {
	source := writeSource(t, "human.gff", ncbiSample)
	_, err := New(testParams(source, "RefSeq"), WithLogger(quietLogger()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RefSeq")
}

func TestNew_UnknownTaxon(t *testing.T) {
	source := writeSource(t, "human.gff", ncbiSample)
	p := testParams(source, "NCBI")
	p.TaxonID = "4932"
	_, err := New(p, WithLogger(quietLogger()))
	require.Error(t, err)
}

func TestNew_MissingSource(t *testing.T) {
	p := testParams(filepath.Join(t.TempDir(), "nope.gff"), "NCBI")
	_, err := New(p, WithLogger(quietLogger()))
	require.Error(t, err)
}

func TestTranslator_Parse_NCBI(t *testing.T) {
	source := writeSource(t, "human.gff", ncbiSample)
	tr, err := New(testParams(source, "NCBI"), WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, tr.Parse(nil))

	genes := tr.Genes()
	require.Len(t, genes, 2)

	brca2 := genes[0]
	assert.Equal(t, "NCBIGene:675", brca2.ID)
	assert.Equal(t, "675", brca2.SourceID)
	assert.Equal(t, "BRCA2", brca2.Symbol)
	assert.Equal(t, "BRCA2 DNA repair associated", brca2.Description)
	assert.Equal(t, "protein_coding", brca2.MolecularType)
	assert.Equal(t, "bican:annotation-NCBI-GRCH38", brca2.ReferencedIn)
	assert.Equal(t, []string{"NCBITaxon:9606"}, brca2.InTaxon)
	assert.Equal(t, "Homo sapiens", brca2.InTaxonLabel)
	assert.Equal(t, []string{"BRCC2", "FACD", "FAD", "FAD1"}, brca2.Synonym)

	assert.Equal(t, "NCBIGene:100421", genes[1].ID)
	assert.Nil(t, genes[1].Synonym)
}

func TestTranslator_Parse_Ensembl(t *testing.T) {
	source := writeSource(t, "human.gff3", ensemblSample)
	tr, err := New(testParams(source, "Ensembl"), WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, tr.Parse(nil))

	genes := tr.Genes()
	require.Len(t, genes, 2)

	brca2 := genes[0]
	// Version suffix on gene_id is stripped.
	assert.Equal(t, "ENSEMBL:ENSG00000139618", brca2.ID)
	assert.Equal(t, "ENSG00000139618", brca2.SourceID)
	// The [Source:...] citation is stripped and %3B decodes to ';'.
	assert.Equal(t, "BRCA2 DNA repair associated", brca2.Description)
	assert.Equal(t, "protein_coding", brca2.MolecularType)

	assert.Equal(t, "ENSEMBL:ENSG00000223972", genes[1].ID)
	assert.Equal(t, "lncRNA", genes[1].MolecularType)
}

func TestTranslator_Parse_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "human.gff.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(ncbiSample))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	tr, err := New(testParams(path, "NCBI"), WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, tr.Parse(nil))
	assert.Len(t, tr.Genes(), 2)
}

func TestTranslator_Parse_FeatureFilter(t *testing.T) {
	source := writeSource(t, "human.gff", ncbiSample)
	tr, err := New(testParams(source, "NCBI"), WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, tr.Parse([]string{"gene"}))

	genes := tr.Genes()
	require.Len(t, genes, 1)
	assert.Equal(t, "NCBIGene:675", genes[0].ID)
}

func TestTranslator_Parse_SkipsAmbiguousGeneIDs(t *testing.T) {
	sample := "##gff-version 3\n" +
		"NC_1	x	gene	1	10	.	+	.	ID=gene-A;Dbxref=GeneID:1,GeneID:2;Name=A\n" +
		"NC_1	x	gene	1	10	.	+	.	ID=gene-B;Name=B\n" +
		"NC_1	x	gene	1	10	.	+	.	ID=gene-C;Dbxref=GeneID:3;Name=C\n"
	source := writeSource(t, "odd.gff", sample)
	tr, err := New(testParams(source, "NCBI"), WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, tr.Parse(nil))

	// A has two distinct GeneIDs, B has no Dbxref; only C survives.
	genes := tr.Genes()
	require.Len(t, genes, 1)
	assert.Equal(t, "NCBIGene:3", genes[0].ID)
}

func TestTranslator_Parse_ToleratesMalformedLines(t *testing.T) {
	sample := "##gff-version 3\n" +
		"\n" +
		"NC_1	x	gene	1	10	.	+	.	ID=gene-A;Dbxref=GeneID:7;Name=A	trailing\n" +
		"NC_1	x	gene	1	10	.	+	ID=gene-B;Dbxref=GeneID:8;Name=B\n" +
		"NC_1	gene\n" +
		"\n" +
		"NC_1	x	gene	1	10	.	+	.	ID=gene-C;Dbxref=GeneID:9;Name=C\n"
	source := writeSource(t, "ragged.gff", sample)
	tr, err := New(testParams(source, "NCBI"), WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, tr.Parse(nil))

	// The 10-column line still resolves from its available fields, the
	// 8-column line has no attribute column left so its gene is dropped,
	// the 2-column line and blank lines are skipped, and the well-formed
	// line after them all still resolves.
	genes := tr.Genes()
	require.Len(t, genes, 2)
	assert.Equal(t, "NCBIGene:7", genes[0].ID)
	assert.Equal(t, "NCBIGene:9", genes[1].ID)
}

func TestTranslator_Parse_MissingPragmaIsNotFatal(t *testing.T) {
	sample := "NC_1	x	gene	1	10	.	+	.	ID=gene-A;Dbxref=GeneID:1;Name=A\n" +
		"NC_1	x	gene	1	10	.	+	.	ID=gene-B;Dbxref=GeneID:2;Name=B\n"
	source := writeSource(t, "headless.gff", sample)
	tr, err := New(testParams(source, "NCBI"), WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, tr.Parse(nil))

	// The first line is consumed by the pragma check regardless of content.
	genes := tr.Genes()
	require.Len(t, genes, 1)
	assert.Equal(t, "NCBIGene:2", genes[0].ID)
}

func TestTranslator_Parse_Deterministic(t *testing.T) {
	source := writeSource(t, "human.gff", ncbiSample)

	run := func() []model.GeneAnnotation {
		tr, err := New(testParams(source, "NCBI"), WithLogger(quietLogger()))
		require.NoError(t, err)
		require.NoError(t, tr.Parse(nil))
		return tr.Genes()
	}

	assert.Equal(t, run(), run())
}
