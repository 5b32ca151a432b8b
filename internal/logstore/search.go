package logstore

import "strings"

// Match is one hit in the persisted reading log.
type Match struct {
	Record int    // 1-based position in the array
	Field  string
	Value  string
}

// Search scans the persisted readings case-insensitively. The word "error"
// is special: it matches only records whose error field is populated, so
// searching for failures does not hit the ERROR status literal of every
// sentinel token.
func (s *Store) Search(word string) []Match {
	word = strings.ToLower(word)

	var out []Match
	for i, r := range s.Readings() {
		if word == "error" {
			if r.Error != "" {
				out = append(out, Match{Record: i + 1, Field: "error", Value: r.Error})
			}
			continue
		}

		for _, fv := range []struct{ name, value string }{
			{"timestamp", r.Timestamp},
			{"voltage", r.Voltage},
			{"current", r.Current},
			{"serial", r.Serial},
			{"status", r.Status},
			{"error", r.Error},
		} {
			if fv.value != "" && strings.Contains(strings.ToLower(fv.value), word) {
				out = append(out, Match{Record: i + 1, Field: fv.name, Value: fv.value})
			}
		}
	}
	return out
}
