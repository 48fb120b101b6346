// Package mathspan protects mathematical notation during markdown
// stripping by replacing each math span with a numbered marker that no
// stripping substitution can touch. After stripping, Restore substitutes
// the original spans back byte-for-byte.
//
// Four delimiter forms are recognized, extracted in this precedence
// order:
//
//  1. $$...$$ display math (may span multiple lines)
//  2. \[...\] display math, normalized to $$...$$
//  3. $...$ inline math (single line, not adjacent to a second $)
//  4. \(...\) inline math, normalized to $...$
package mathspan

import (
	"fmt"
	"regexp"
	"strings"
)

// Marker keys use white corner brackets so none of the markdown
// substitutions (emphasis, links, code, headers) can ever match into
// them, and so they cannot collide with user text.
const (
	markerPrefix = "⟦MATH"
	markerSuffix = "⟧"
)

var (
	// display math: $$...$$, non-greedy, dot matches newline
	reDisplayMath = regexp.MustCompile(`(?s)\$\$.*?\$\$`)

	// \[...\] display math
	reBracketMath = regexp.MustCompile(`(?s)\\\[(.*?)\\\]`)

	// \(...\) inline math
	reParenMath = regexp.MustCompile(`\\\(([^)]+?)\\\)`)

	// marker reference in stripped text
	reMarker = regexp.MustCompile(`\x{27e6}MATH(\d+)\x{27e7}`)
)

// Protect replaces every math span in text with a numbered marker, in
// the precedence order documented above. It returns the protected text
// and the slice of captured spans so Restore can put them back. Spans
// in their backslash forms are normalized to dollar delimiters when
// captured.
func Protect(text string) (string, []string) {
	var spans []string

	capture := func(span string) string {
		id := fmt.Sprintf("%s%d%s", markerPrefix, len(spans), markerSuffix)
		spans = append(spans, span)
		return id
	}

	text = reDisplayMath.ReplaceAllStringFunc(text, capture)

	text = reBracketMath.ReplaceAllStringFunc(text, func(m string) string {
		inner := reBracketMath.FindStringSubmatch(m)[1]
		return capture("$$" + inner + "$$")
	})

	text = protectInline(text, capture)

	text = reParenMath.ReplaceAllStringFunc(text, func(m string) string {
		inner := reParenMath.FindStringSubmatch(m)[1]
		return capture("$" + inner + "$")
	})

	return text, spans
}

// protectInline captures $...$ spans. The opening and closing dollar
// must not be adjacent to another dollar and the span must not cross a
// line break. RE2 has no lookarounds, so this is a scan rather than a
// regexp.
func protectInline(text string, capture func(string) string) string {
	var b strings.Builder
	b.Grow(len(text))

	i := 0
	for i < len(text) {
		c := text[i]
		if c != '$' || (i > 0 && text[i-1] == '$') || (i+1 < len(text) && text[i+1] == '$') {
			b.WriteByte(c)
			i++
			continue
		}
		// Opening candidate. Find a closing $ on the same line that is
		// not followed by another $.
		end := -1
		for j := i + 1; j < len(text); j++ {
			if text[j] == '\n' {
				break
			}
			if text[j] == '$' {
				if j+1 < len(text) && text[j+1] == '$' {
					break
				}
				if j > i+1 {
					end = j
				}
				break
			}
		}
		if end == -1 {
			b.WriteByte(c)
			i++
			continue
		}
		b.WriteString(capture(text[i : end+1]))
		i = end + 1
	}

	return b.String()
}

// Restore substitutes markers in text back with the spans captured by
// Protect. Restoration is order-independent; unrecognized indices leave
// the marker as-is.
func Restore(text string, spans []string) string {
	return reMarker.ReplaceAllStringFunc(text, func(match string) string {
		sub := reMarker.FindStringSubmatch(match)
		idx := 0
		fmt.Sscanf(sub[1], "%d", &idx)
		if idx < 0 || idx >= len(spans) {
			return match
		}
		return spans[idx]
	})
}

// Missing returns the indices of captured spans whose markers are no
// longer present in text.
func Missing(text string, spans []string) []int {
	var missing []int
	for i := range spans {
		if !strings.Contains(text, fmt.Sprintf("%s%d%s", markerPrefix, i, markerSuffix)) {
			missing = append(missing, i)
		}
	}
	return missing
}
