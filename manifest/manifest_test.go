package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `Project ID,Specimen ID,File Name,Checksum,File Type,Archive,Archive URI
U01_Zeng,LA-XY123,sample1.fastq.gz,fd2345a1,fastq,NeMO,https://nemoarchive.org/sample1
U01_Zeng,LA-XY123,sample1.bam,ab9981c2,bam,NeMO,https://nemoarchive.org/sample1.bam
U01_Zeng,LA-AB456,sample2.fastq.gz,77cd01ee,fastq,NeMO,https://nemoarchive.org/sample2
`

func TestTranslate_Basic(t *testing.T) {
	result, err := translate(strings.NewReader(sampleManifest), 2)
	require.NoError(t, err)

	require.Len(t, result.Objects, 3)
	assert.Equal(t, DigitalObject{
		FileName:   "sample1.fastq.gz",
		Checksum:   "fd2345a1",
		FileType:   "fastq",
		Archive:    "NeMO",
		ArchiveURI: "https://nemoarchive.org/sample1",
		ProjectID:  "U01_Zeng",
	}, result.Objects[0])

	// Row order survives the worker pool.
	assert.Equal(t, "sample1.bam", result.Objects[1].FileName)
	assert.Equal(t, "sample2.fastq.gz", result.Objects[2].FileName)

	// Specimen IDs are distinct and sorted.
	assert.Equal(t, []string{"LA-AB456", "LA-XY123"}, result.SpecimenIDs)
}

func TestTranslate_HeaderOnly(t *testing.T) {
	result, err := translate(strings.NewReader("Project ID,Specimen ID,File Name\n"), 4)
	require.NoError(t, err)
	assert.Empty(t, result.Objects)
	assert.Empty(t, result.SpecimenIDs)
}

func TestTranslate_EmptyInput(t *testing.T) {
	_, err := translate(strings.NewReader(""), 1)
	require.Error(t, err)
}

func TestTranslate_PreservesOrder_ManyRows(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Project ID,Specimen ID,File Name,Checksum,File Type,Archive,Archive URI\n")
	for i := 0; i < 200; i++ {
		sb.WriteString("p,s,file")
		sb.WriteString(strings.Repeat("x", i%7))
		sb.WriteString(",c,t,a,u\n")
	}

	result, err := translate(strings.NewReader(sb.String()), 8)
	require.NoError(t, err)
	require.Len(t, result.Objects, 200)
	for i, obj := range result.Objects {
		assert.Equal(t, "file"+strings.Repeat("x", i%7), obj.FileName, "row %d", i)
	}
}

func TestExpandGlobs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.csv", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	paths, err := ExpandGlobs([]string{filepath.Join(dir, "*.csv")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}, paths)
}

func TestExpandGlobs_LiteralPassThrough(t *testing.T) {
	paths, err := ExpandGlobs([]string{"no/such/manifest.csv"})
	require.NoError(t, err)
	assert.Equal(t, []string{"no/such/manifest.csv"}, paths)
}

func TestExpandGlobs_Deduplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.csv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	paths, err := ExpandGlobs([]string{path, filepath.Join(dir, "*.csv")})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, paths)
}
