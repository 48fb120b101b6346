// Package segmenter splits normalized text into ordered translation
// units. One non-empty line is one unit; sentence splitting is only a
// fallback for single-line inputs.
package segmenter

import (
	"strings"
	"unicode"
)

// Segment splits text into independently translatable units. Precedence
// is strict: if the text contains a line break, each trimmed non-empty
// line becomes a unit and no sentence splitting happens. Only when no
// line break exists (or no non-empty line results) is the text split at
// sentence-terminal punctuation followed by whitespace. If both paths
// yield nothing, the trimmed text itself is the single unit. Empty input
// yields nil.
func Segment(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if strings.Contains(text, "\n") {
		var units []string
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				units = append(units, line)
			}
		}
		if len(units) > 0 {
			return units
		}
	}

	if units := splitSentences(text); len(units) > 0 {
		return units
	}

	return []string{strings.TrimSpace(text)}
}

// splitSentences splits after '.', '!' or '?' when followed by
// whitespace, returning trimmed non-empty sentences.
func splitSentences(text string) []string {
	var units []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				units = append(units, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		units = append(units, s)
	}
	return units
}
