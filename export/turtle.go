package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// defaultPrefixes returns the namespace prefixes emitted at the top of a
// Turtle export.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"bican":        "https://identifiers.org/brain-bican/vocab/",
		"biolink":      "https://w3id.org/biolink/vocab/",
		"NCBITaxon":    "http://purl.obolibrary.org/obo/NCBITaxon_",
		"NCBIGene":     "http://identifiers.org/ncbigene/",
		"ENSEMBL":      "http://identifiers.org/ensembl/",
		"NCBIAssembly": "https://www.ncbi.nlm.nih.gov/assembly/",
	}
}

// WriteTurtle writes the records as Turtle triples. Records are flattened
// through their JSON form so unset optional fields are excluded, and
// predicates are emitted in sorted order for deterministic output.
func WriteTurtle(w io.Writer, records []any) error {
	var sb strings.Builder

	prefixes := defaultPrefixes()
	prefixNames := make([]string, 0, len(prefixes))
	for p := range prefixes {
		prefixNames = append(prefixNames, p)
	}
	sort.Strings(prefixNames)
	for _, p := range prefixNames {
		fmt.Fprintf(&sb, "@prefix %s: <%s> .\n", p, prefixes[p])
	}
	sb.WriteString("\n")

	for _, record := range records {
		fields, err := flatten(record)
		if err != nil {
			return err
		}
		writeRecordTurtle(&sb, fields, prefixes)
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write turtle output: %w", err)
	}
	return nil
}

// flatten round-trips a record through JSON into a field map, dropping
// unset optional fields along the way.
func flatten(record any) (map[string]any, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return fields, nil
}

// writeRecordTurtle writes one record as a predicate list on its subject.
func writeRecordTurtle(sb *strings.Builder, fields map[string]any, prefixes map[string]string) {
	id, _ := fields["id"].(string)
	if id == "" {
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k != "id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	fmt.Fprintf(sb, "%s\n", formatSubject(id, prefixes))
	for i, key := range keys {
		terminator := " ;"
		if i == len(keys)-1 {
			terminator = " ."
		}
		fmt.Fprintf(sb, "    bican:%s %s%s\n", key, formatObject(fields[key], prefixes), terminator)
	}
	sb.WriteString("\n")
}

// formatSubject renders a record ID as a prefixed name when its prefix is
// known, and as an explicit IRI reference otherwise.
func formatSubject(id string, prefixes map[string]string) string {
	prefix, _, found := strings.Cut(id, ":")
	if found {
		if _, known := prefixes[prefix]; known {
			return id
		}
	}
	return "<" + id + ">"
}

// formatObject renders a field value as a Turtle object.
func formatObject(value any, prefixes map[string]string) string {
	switch v := value.(type) {
	case string:
		if prefix, _, found := strings.Cut(v, ":"); found && !strings.Contains(v, " ") {
			if _, known := prefixes[prefix]; known {
				return v
			}
			if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") || strings.HasPrefix(v, "urn:") {
				return "<" + v + ">"
			}
		}
		return `"` + escapeString(v) + `"`
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, formatObject(item, prefixes))
		}
		return strings.Join(parts, ", ")
	case bool:
		return fmt.Sprintf("%t", v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return `"` + escapeString(fmt.Sprintf("%v", v)) + `"`
	}
}

// escapeString escapes special characters for Turtle string literals.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
