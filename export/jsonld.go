// Package export serializes translated record graphs to JSON-LD and Turtle.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ContextURL is the fixed JSON-LD context for the genome-annotation schema.
const ContextURL = "https://raw.githubusercontent.com/brain-bican/models/main/jsonld-context-autogen/genome_annotation.context.jsonld"

// Document is the top-level JSON-LD structure: a context URL and a flat
// graph of records.
type Document struct {
	Context string `json:"@context"`
	Graph   []any  `json:"@graph"`
}

// WriteJSONLD writes the records as an indented UTF-8 JSON-LD document.
// An empty record set still produces a well-formed document with an empty
// graph array.
func WriteJSONLD(w io.Writer, records []any) error {
	doc := Document{
		Context: ContextURL,
		Graph:   records,
	}
	if doc.Graph == nil {
		doc.Graph = []any{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode JSON-LD document: %w", err)
	}
	return nil
}

// WriteJSONLDFile writes the JSON-LD document to a file, creating or
// truncating it.
func WriteJSONLDFile(path string, records []any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := WriteJSONLD(f, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}
