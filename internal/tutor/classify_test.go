package tutor

import (
	"testing"

	"github.com/nvoisard/bilingo/internal/lang"
)

func TestClassifyHidesNativeLanguageOnly(t *testing.T) {
	tests := []struct {
		name    string
		native  lang.Code
		target  lang.Code
		segLang lang.Code
		visible bool
	}{
		{"french native hides french", lang.French, lang.Russian, lang.French, false},
		{"french native shows russian", lang.French, lang.Russian, lang.Russian, true},
		{"russian native hides russian", lang.Russian, lang.French, lang.Russian, false},
		{"russian native shows french", lang.Russian, lang.French, lang.French, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Session{ID: "s1", NativeLang: tt.native, TargetLang: tt.target, Level: "A1"}
			d := Classify(Segment{Lang: tt.segLang, Text: "x"}, s)
			if d.VisibleImmediately != tt.visible {
				t.Fatalf("expected visible=%v for %s segment with native %s, got %v",
					tt.visible, tt.segLang, tt.native, d.VisibleImmediately)
			}
		})
	}
}

func TestClassifyIndicators(t *testing.T) {
	s := Session{ID: "s1", NativeLang: lang.French, TargetLang: lang.Russian, Level: "A1"}

	if d := Classify(Segment{Lang: lang.French, Text: "Bonjour"}, s); d.Indicator != "FR" {
		t.Fatalf("expected FR indicator, got %q", d.Indicator)
	}
	if d := Classify(Segment{Lang: lang.Russian, Text: "Привет"}, s); d.Indicator != "RU" {
		t.Fatalf("expected RU indicator, got %q", d.Indicator)
	}
}

func TestClassifyUnknownTagFailsClosed(t *testing.T) {
	s := Session{ID: "s1", NativeLang: lang.French, TargetLang: lang.Russian, Level: "A1"}

	d := Classify(Segment{Lang: "en", Text: "Hello"}, s)
	if d.Indicator != "" {
		t.Fatalf("expected no indicator for unknown tag, got %q", d.Indicator)
	}
	// Unknown is not the native language, so the text itself stays visible.
	if !d.VisibleImmediately {
		t.Fatal("expected unknown-language segment to remain visible")
	}
}

func TestClassifyIsIndependentPerSegment(t *testing.T) {
	s := Session{ID: "s1", NativeLang: lang.French, TargetLang: lang.Russian, Level: "A1"}
	segs := []Segment{
		{Lang: lang.French, Text: "En russe on dit"},
		{Lang: lang.Russian, Text: "Здравствуйте"},
		{Lang: lang.French, Text: "Essaie de répéter"},
	}

	first := make([]Disclosure, len(segs))
	for i, seg := range segs {
		first[i] = Classify(seg, s)
	}
	// Classifying in reverse order must not change any result.
	for i := len(segs) - 1; i >= 0; i-- {
		if d := Classify(segs[i], s); d != first[i] {
			t.Fatalf("classification of segment %d changed across calls: %+v vs %+v", i, first[i], d)
		}
	}
}
