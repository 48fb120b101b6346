package mathspan_test

import (
	"strings"
	"testing"

	"github.com/valpere/nllbd/internal/mathspan"
)

func TestProtect_NoMath(t *testing.T) {
	text := "Hello, world!"
	got, spans := mathspan.Protect(text)
	if got != text {
		t.Errorf("expected unchanged text, got %q", got)
	}
	if len(spans) != 0 {
		t.Errorf("expected 0 spans, got %d", len(spans))
	}
}

func TestProtect_InlineDollar(t *testing.T) {
	text := "The value $x^2+1$ grows."
	got, spans := mathspan.Protect(text)

	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d: %v", len(spans), spans)
	}
	if spans[0] != "$x^2+1$" {
		t.Errorf("expected span %q, got %q", "$x^2+1$", spans[0])
	}
	if strings.Contains(got, "$") {
		t.Errorf("dollar still present in protected text %q", got)
	}
}

func TestProtect_DisplayBeforeInline(t *testing.T) {
	text := "$$\na = b\n$$ and $c$"
	_, spans := mathspan.Protect(text)

	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d: %v", len(spans), spans)
	}
	if spans[0] != "$$\na = b\n$$" {
		t.Errorf("display span captured first, got %q", spans[0])
	}
	if spans[1] != "$c$" {
		t.Errorf("expected inline span %q, got %q", "$c$", spans[1])
	}
}

func TestProtect_BracketNormalized(t *testing.T) {
	text := `before \[E=mc^2\] after`
	got, spans := mathspan.Protect(text)

	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0] != "$$E=mc^2$$" {
		t.Errorf("expected normalized display form, got %q", spans[0])
	}
	if strings.Contains(got, `\[`) {
		t.Errorf("bracket delimiter still present: %q", got)
	}
}

func TestProtect_ParenNormalized(t *testing.T) {
	text := `inline \(a+b\) math`
	_, spans := mathspan.Protect(text)

	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0] != "$a+b$" {
		t.Errorf("expected normalized inline form, got %q", spans[0])
	}
}

func TestProtect_InlineNotAcrossLines(t *testing.T) {
	text := "price $5\nand $3 more"
	got, spans := mathspan.Protect(text)

	if len(spans) != 0 {
		t.Errorf("expected no spans across line break, got %v", spans)
	}
	if got != text {
		t.Errorf("text should be unchanged, got %q", got)
	}
}

func TestRestore_ByteForByte(t *testing.T) {
	inputs := []string{
		"one $a_1 + b_2$ two",
		"$$\\int_0^1 f(x)\\,dx$$",
		"mixed $x$ and $$y$$ and \\(z\\)",
	}
	for _, text := range inputs {
		protected, spans := mathspan.Protect(text)
		restored := mathspan.Restore(protected, spans)
		for _, span := range spans {
			if !strings.Contains(restored, span) {
				t.Errorf("span %q lost in restore of %q: got %q", span, text, restored)
			}
		}
	}
}

func TestRestore_OrderIndependent(t *testing.T) {
	text := "$a$ then $b$ then $c$"
	protected, spans := mathspan.Protect(text)

	if got := mathspan.Restore(protected, spans); got != text {
		t.Errorf("expected %q, got %q", text, got)
	}
}

func TestMissing(t *testing.T) {
	protected, spans := mathspan.Protect("$a$ and $b$")
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	if missing := mathspan.Missing(protected, spans); len(missing) != 0 {
		t.Errorf("expected no missing markers, got %v", missing)
	}

	// Drop the first marker.
	damaged := strings.Replace(protected, "⟦MATH0⟧", "", 1)
	missing := mathspan.Missing(damaged, spans)
	if len(missing) != 1 || missing[0] != 0 {
		t.Errorf("expected missing [0], got %v", missing)
	}
}
