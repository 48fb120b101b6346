// Package normalizer strips markdown formatting from request text while
// keeping embedded math notation byte-for-byte intact. Math spans are
// extracted to markers first, the stripping substitutions run over the
// remainder, and the spans are restored afterwards, so no substitution
// can ever reach inside a formula.
package normalizer

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/valpere/nllbd/internal/mathspan"
)

var (
	reHeader     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	reBold       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reItalic     = regexp.MustCompile(`\*([^*]+)\*`)
	reBoldUnder  = regexp.MustCompile(`__([^_]+)__`)
	reItalUnder  = regexp.MustCompile(`_([^_\n]+?)_`)
	reRuleDash   = regexp.MustCompile(`(?m)^---+\s*$`)
	reRuleEqual  = regexp.MustCompile(`(?m)^===+\s*$`)
	reFencedCode = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")
	reInlineCode = regexp.MustCompile("`([^`]+)`")
	reLink       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	reBlankRuns  = regexp.MustCompile(`\n{3,}`)
)

// Normalize returns text with markdown removed and math notation
// preserved. Each logical line is trimmed and runs of three or more
// newlines collapse to one blank line. Normalizing already-normalized
// text is a no-op beyond whitespace collapsing.
func Normalize(raw string) string {
	text, spans := mathspan.Protect(raw)

	text = reHeader.ReplaceAllString(text, "")
	text = reBold.ReplaceAllString(text, "$1")
	text = reItalic.ReplaceAllString(text, "$1")
	text = reBoldUnder.ReplaceAllString(text, "$1")
	text = reItalUnder.ReplaceAllString(text, "$1")
	text = reRuleDash.ReplaceAllString(text, "")
	text = reRuleEqual.ReplaceAllString(text, "")
	text = reFencedCode.ReplaceAllString(text, "$1")
	text = reInlineCode.ReplaceAllString(text, "$1")
	text = reLink.ReplaceAllString(text, "$1")
	text = reBlankRuns.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")

	// NFC before restoring so composition never reaches into a formula.
	text = norm.NFC.String(text)
	text = mathspan.Restore(text, spans)

	return strings.TrimSpace(text)
}
