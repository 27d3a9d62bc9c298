package calendar

import (
	"strings"
	"testing"
)

func TestTruncateHTML_ShortContentUnchanged(t *testing.T) {
	src := "<p>Hello world</p>"
	if got := TruncateHTML(src, 100); got != src {
		t.Errorf("Expected unchanged HTML, got %q", got)
	}
}

func TestTruncateHTML_CutsMidParagraphAndClosesTag(t *testing.T) {
	got := TruncateHTML("<p>Hello world</p>", 5)
	if got != "<p>Hello</p>" {
		t.Errorf("Expected '<p>Hello</p>', got %q", got)
	}
}

func TestTruncateHTML_MultipleParagraphs(t *testing.T) {
	src := "<p>First paragraph</p><p>Second paragraph</p>"

	// Budget covers the first paragraph and part of the second.
	got := TruncateHTML(src, 21)
	if got != "<p>First paragraph</p><p>Second</p>" {
		t.Errorf("Unexpected truncation result: %q", got)
	}
}

func TestTruncateHTML_ClosesNestedTags(t *testing.T) {
	got := TruncateHTML("<p>Some <b>bold text</b> here</p>", 9)
	if got != "<p>Some <b>bold</b></p>" {
		t.Errorf("Expected nested tags closed in reverse order, got %q", got)
	}
}

func TestTruncateHTML_VoidElements(t *testing.T) {
	got := TruncateHTML("<p>line one<br>line two</p>", 100)
	if got != "<p>line one<br>line two</p>" {
		t.Errorf("Void element handling broke the markup: %q", got)
	}

	// A cut right after the void element must not try to close it.
	got = TruncateHTML("<p>line one<br>line two</p>", 10)
	if got != "<p>line one<br>li</p>" {
		t.Errorf("Unexpected result: %q", got)
	}
}

func TestTruncateHTML_TagsDoNotCountAgainstBudget(t *testing.T) {
	got := TruncateHTML("<p><b><i>abc</i></b></p>", 3)
	if got != "<p><b><i>abc</i></b></p>" {
		t.Errorf("Markup characters should be free, got %q", got)
	}
}

func TestTruncateHTML_EntitiesCountAsOneCharacter(t *testing.T) {
	got := TruncateHTML("<p>a&amp;b</p>", 3)
	if got != "<p>a&amp;b</p>" {
		t.Errorf("Expected entity to count as one character, got %q", got)
	}

	got = TruncateHTML("<p>a&amp;bcd</p>", 2)
	if got != "<p>a&amp;</p>" {
		t.Errorf("Expected cut after the entity, got %q", got)
	}
}

func TestTruncateHTML_ZeroBudget(t *testing.T) {
	if got := TruncateHTML("<p>anything</p>", 0); got != "" {
		t.Errorf("Expected empty snippet for zero budget, got %q", got)
	}
}

func TestTruncateHTML_NeverLeavesUnclosedTags(t *testing.T) {
	src := "<div><p>alpha <b>beta</b> gamma</p><p>delta <i>epsilon</i></p></div>"

	for budget := 1; budget < 40; budget++ {
		got := TruncateHTML(src, budget)
		for _, tag := range []string{"div", "p", "b", "i"} {
			opens := strings.Count(got, "<"+tag+">")
			closes := strings.Count(got, "</"+tag+">")
			if opens != closes {
				t.Fatalf("budget %d: tag %q opened %d times but closed %d times in %q",
					budget, tag, opens, closes, got)
			}
		}
	}
}
