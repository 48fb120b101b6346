package segmenter_test

import (
	"strings"
	"testing"

	"github.com/valpere/nllbd/internal/segmenter"
)

func TestSegment_Empty(t *testing.T) {
	if units := segmenter.Segment(""); units != nil {
		t.Errorf("expected nil for empty input, got %v", units)
	}
	if units := segmenter.Segment("   \n  \n "); units != nil {
		t.Errorf("expected nil for whitespace input, got %v", units)
	}
}

func TestSegment_LinesTakePrecedence(t *testing.T) {
	// Lines with embedded sentence punctuation must NOT be re-split.
	text := "First line. Still first line.\nSecond line!"
	units := segmenter.Segment(text)

	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d: %v", len(units), units)
	}
	if units[0] != "First line. Still first line." {
		t.Errorf("line split further than line break: %q", units[0])
	}
	if units[1] != "Second line!" {
		t.Errorf("expected %q, got %q", "Second line!", units[1])
	}
}

func TestSegment_DiscardsEmptyLines(t *testing.T) {
	text := "one\n\n  \ntwo\n"
	units := segmenter.Segment(text)

	if len(units) != 2 || units[0] != "one" || units[1] != "two" {
		t.Errorf("expected [one two], got %v", units)
	}
}

func TestSegment_SentenceFallback(t *testing.T) {
	text := "First sentence. Second one! Third?"
	units := segmenter.Segment(text)

	want := []string{"First sentence.", "Second one!", "Third?"}
	if len(units) != len(want) {
		t.Fatalf("expected %d units, got %d: %v", len(want), len(units), units)
	}
	for i := range want {
		if units[i] != want[i] {
			t.Errorf("unit %d: expected %q, got %q", i, want[i], units[i])
		}
	}
}

func TestSegment_NoTerminatorSingleUnit(t *testing.T) {
	text := "just a fragment without punctuation"
	units := segmenter.Segment(text)

	if len(units) != 1 || units[0] != text {
		t.Errorf("expected single unit %q, got %v", text, units)
	}
}

func TestSegment_UnitsNeverEmpty(t *testing.T) {
	inputs := []string{
		"a\nb\nc",
		"One. Two. Three.",
		"  padded  ",
		"ends with period.",
	}
	for _, text := range inputs {
		for i, u := range segmenter.Segment(text) {
			if strings.TrimSpace(u) == "" {
				t.Errorf("input %q produced empty unit at %d", text, i)
			}
			if u != strings.TrimSpace(u) {
				t.Errorf("input %q produced untrimmed unit %q", text, u)
			}
		}
	}
}
