package profile

import "strings"

// artifactChars are left over by the model when it renders dictionaries.
const artifactChars = "'{}"

// Entry is a single key/value pair of an ordered mapping.
type Entry[V any] struct {
	Key   string `json:"key"`
	Value V      `json:"value"`
}

// NormalizeToken strips quote and brace residue from both ends of s.
func NormalizeToken(s string) string {
	return strings.Trim(s, artifactChars)
}

// NormalizeEntries normalizes every key and every string value of the entries.
// Values of other types are kept as is. Keys that collapse into the same
// normalized key are merged: the first position is kept, the last value wins.
func NormalizeEntries[V any](entries []Entry[V]) []Entry[V] {
	out := make([]Entry[V], 0, len(entries))
	index := make(map[string]int, len(entries))

	for _, e := range entries {
		key := NormalizeToken(e.Key)
		value := e.Value
		if s, ok := any(value).(string); ok {
			value = any(NormalizeToken(s)).(V)
		}

		if i, ok := index[key]; ok {
			out[i].Value = value
			continue
		}
		index[key] = len(out)
		out = append(out, Entry[V]{Key: key, Value: value})
	}

	return out
}
