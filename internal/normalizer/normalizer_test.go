package normalizer_test

import (
	"strings"
	"testing"

	"github.com/valpere/nllbd/internal/normalizer"
)

func TestNormalize_StripsMarkdown(t *testing.T) {
	raw := "# Title\n\nSome **bold** and *italic* text with `code` and [a link](https://example.com).\n\n---\n"
	got := normalizer.Normalize(raw)

	for _, forbidden := range []string{"#", "**", "`", "](", "---"} {
		if strings.Contains(got, forbidden) {
			t.Errorf("markdown %q survived normalization: %q", forbidden, got)
		}
	}
	for _, kept := range []string{"Title", "bold", "italic", "code", "a link"} {
		if !strings.Contains(got, kept) {
			t.Errorf("content %q lost in normalization: %q", kept, got)
		}
	}
}

func TestNormalize_PreservesMath(t *testing.T) {
	raw := "The **famous** formula $E = mc^2$ and also\n\n$$\n\\sum_{i=0}^n i = \\frac{n(n+1)}{2}\n$$\n\nin display form."
	got := normalizer.Normalize(raw)

	if !strings.Contains(got, "$E = mc^2$") {
		t.Errorf("inline math altered: %q", got)
	}
	if !strings.Contains(got, "\\sum_{i=0}^n i = \\frac{n(n+1)}{2}") {
		t.Errorf("display math interior altered: %q", got)
	}
	if strings.Contains(got, "**") {
		t.Errorf("bold markers survived: %q", got)
	}
}

func TestNormalize_MathWithMarkdownLookalikes(t *testing.T) {
	// Underscores and asterisks inside math must never be treated as
	// emphasis.
	raw := "value $a_1 * b_2$ here"
	got := normalizer.Normalize(raw)

	if !strings.Contains(got, "$a_1 * b_2$") {
		t.Errorf("math interior changed by emphasis stripping: %q", got)
	}
}

func TestNormalize_CodeFenceKeepsContent(t *testing.T) {
	raw := "Before\n```go\nfmt.Println(1)\n```\nAfter"
	got := normalizer.Normalize(raw)

	if strings.Contains(got, "```") {
		t.Errorf("fence survived: %q", got)
	}
	if !strings.Contains(got, "fmt.Println(1)") {
		t.Errorf("fenced content lost: %q", got)
	}
}

func TestNormalize_CollapsesBlankRuns(t *testing.T) {
	raw := "a\n\n\n\n\nb"
	got := normalizer.Normalize(raw)

	if got != "a\n\nb" {
		t.Errorf("expected single blank line, got %q", got)
	}
}

func TestNormalize_TrimsLines(t *testing.T) {
	raw := "  spaced line  \n\tanother\t"
	got := normalizer.Normalize(raw)

	if got != "spaced line\nanother" {
		t.Errorf("expected trimmed lines, got %q", got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"# Head\n**bold** $x^2$ tail",
		"plain text with $a+b$ math",
		"$$\nmulti\nline\n$$\n\ntext",
		"a\n\n\n\nb with \\(c\\)",
	}
	for _, raw := range inputs {
		once := normalizer.Normalize(raw)
		twice := normalizer.Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\n once: %q\ntwice: %q", raw, once, twice)
		}
	}
}

func TestNormalize_ScenarioSecondUnit(t *testing.T) {
	raw := "Hello world.\nThis is $x^2+1$ math."
	got := normalizer.Normalize(raw)

	if !strings.Contains(got, "$x^2+1$") {
		t.Errorf("math span lost: %q", got)
	}
	if !strings.Contains(got, "Hello world.") {
		t.Errorf("first line lost: %q", got)
	}
}
