package gff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeAttributes_Basic(t *testing.T) {
	attrs, err := mergeAttributes("ID=gene-BRCA2;Name=BRCA2;gene_biotype=protein_coding")
	require.NoError(t, err)

	name, ok := attrs.single("Name")
	assert.True(t, ok)
	assert.Equal(t, "BRCA2", name)

	biotype, ok := attrs.single("gene_biotype")
	assert.True(t, ok)
	assert.Equal(t, "protein_coding", biotype)
}

func TestMergeAttributes_CommaSplitsValues(t *testing.T) {
	attrs, err := mergeAttributes("Dbxref=GeneID:675,HGNC:HGNC:1101,MIM:600185")
	require.NoError(t, err)

	assert.Equal(t, []string{"GeneID:675", "HGNC:HGNC:1101", "MIM:600185"}, attrs.sorted("Dbxref"))
}

func TestMergeAttributes_RepeatedKeysMerge(t *testing.T) {
	attrs, err := mergeAttributes("gene_synonym=FAD;gene_synonym=FACD,FAD;gene_synonym=BRCC2")
	require.NoError(t, err)

	assert.Equal(t, []string{"BRCC2", "FACD", "FAD"}, attrs.sorted("gene_synonym"))
}

func TestMergeAttributes_TrimsWhitespaceAndSkipsEmptySegments(t *testing.T) {
	attrs, err := mergeAttributes(" Name = BRCA2 ;; biotype=protein_coding; ")
	require.NoError(t, err)

	name, ok := attrs.single("Name")
	assert.True(t, ok)
	assert.Equal(t, "BRCA2", name)
	assert.Len(t, attrs, 2)
}

func TestMergeAttributes_MalformedSegment(t *testing.T) {
	_, err := mergeAttributes("Name=BRCA2;not-a-pair")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-a-pair")
}

func TestMergeAttributes_Empty(t *testing.T) {
	attrs, err := mergeAttributes("")
	require.NoError(t, err)
	assert.Empty(t, attrs)
}

func TestAttributeSet_Single_MultiValued(t *testing.T) {
	attrs, err := mergeAttributes("Name=A,B")
	require.NoError(t, err)

	_, ok := attrs.single("Name")
	assert.False(t, ok)
}

func TestAttributeSet_Sorted_MissingKey(t *testing.T) {
	attrs, err := mergeAttributes("Name=BRCA2")
	require.NoError(t, err)

	assert.Nil(t, attrs.sorted("gene_synonym"))
}
