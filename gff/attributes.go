package gff

import (
	"fmt"
	"sort"
	"strings"
)

// attributeSet maps a GFF3 attribute key to the set of values observed for
// it across every semicolon-delimited segment of the attribute column.
type attributeSet map[string]map[string]bool

// mergeAttributes parses the 9th-column attribute string into a multi-valued
// mapping. Segments split on ';', each segment splits on the first '=', the
// value half splits on ','; every token is trimmed and accumulated into a
// per-key set so repeated keys merge. A non-empty segment without '=' is
// structurally malformed input.
func mergeAttributes(raw string) (attributeSet, error) {
	result := make(attributeSet)
	for _, segment := range strings.Split(raw, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		key, value, found := strings.Cut(segment, "=")
		if !found {
			return nil, fmt.Errorf("malformed attribute segment %q", segment)
		}
		key = strings.TrimSpace(key)
		if result[key] == nil {
			result[key] = make(map[string]bool)
		}
		for _, token := range strings.Split(value, ",") {
			result[key][strings.TrimSpace(token)] = true
		}
	}
	return result, nil
}

// single returns the sole value for a key, or "" when the key is absent or
// holds more than one value.
func (a attributeSet) single(key string) (string, bool) {
	values, ok := a[key]
	if !ok || len(values) != 1 {
		return "", false
	}
	for v := range values {
		return v, true
	}
	return "", false
}

// sorted returns the values for a key as a lexicographically sorted slice.
func (a attributeSet) sorted(key string) []string {
	values, ok := a[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(values))
	for v := range values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
