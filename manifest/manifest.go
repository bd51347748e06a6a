// Package manifest translates specimen file-manifest CSV exports into
// digital-object records.
package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// DigitalObject describes one archived file referenced by the manifest.
type DigitalObject struct {
	FileName   string `json:"file_name"`
	Checksum   string `json:"checksum"`
	FileType   string `json:"file_type"`
	Archive    string `json:"archive"`
	ArchiveURI string `json:"archive_uri"`
	ProjectID  string `json:"project_id"`
}

// Result holds the translated manifest: the digital objects in source row
// order and the distinct specimen IDs referenced, sorted.
type Result struct {
	Objects     []DigitalObject
	SpecimenIDs []string
}

// row pairs a CSV record with its position so worker output can be
// reassembled in source order.
type row struct {
	index  int
	record map[string]string
}

// Translate reads a file-manifest CSV and processes its rows through a
// bounded worker pool. workers <= 0 selects one worker per CPU.
func Translate(path string, workers int) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	return translate(f, workers)
}

func translate(r io.Reader, workers int) (*Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read manifest header: %w", err)
	}

	rows := make(chan row, workers)
	type output struct {
		index      int
		object     DigitalObject
		specimenID string
	}
	outputs := make(chan output, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range rows {
				outputs <- output{
					index: r.index,
					object: DigitalObject{
						FileName:   r.record["File Name"],
						Checksum:   r.record["Checksum"],
						FileType:   r.record["File Type"],
						Archive:    r.record["Archive"],
						ArchiveURI: r.record["Archive URI"],
						ProjectID:  r.record["Project ID"],
					},
					specimenID: r.record["Specimen ID"],
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(outputs)
	}()

	var readErr error
	go func() {
		defer close(rows)
		for index := 0; ; index++ {
			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				readErr = fmt.Errorf("read manifest row %d: %w", index+2, err)
				return
			}
			fields := make(map[string]string, len(header))
			for i, name := range header {
				if i < len(record) {
					fields[name] = record[i]
				}
			}
			rows <- row{index: index, record: fields}
		}
	}()

	objects := make(map[int]DigitalObject)
	specimens := make(map[string]bool)
	for out := range outputs {
		objects[out.index] = out.object
		if out.specimenID != "" {
			specimens[out.specimenID] = true
		}
	}
	if readErr != nil {
		return nil, readErr
	}

	result := &Result{
		Objects:     make([]DigitalObject, len(objects)),
		SpecimenIDs: make([]string, 0, len(specimens)),
	}
	for index, obj := range objects {
		result.Objects[index] = obj
	}
	for id := range specimens {
		result.SpecimenIDs = append(result.SpecimenIDs, id)
	}
	sort.Strings(result.SpecimenIDs)
	return result, nil
}

// ExpandGlobs resolves doublestar patterns against the filesystem and
// returns the matched paths, deduplicated and sorted. Literal paths pass
// through unchanged.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expand pattern %q: %w", pattern, err)
		}
		if matches == nil {
			// Not a pattern, or nothing matched: keep the literal path so
			// the caller reports a useful open error.
			matches = []string{pattern}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}
