package tutor

import (
	"strings"
	"testing"
)

func TestSentinelCorrectionIsNeverRendered(t *testing.T) {
	variants := []string{
		"aucune correction nécessaire",
		"Aucune correction nécessaire",
		"AUCUNE CORRECTION NÉCESSAIRE",
		"Aucune correction nécessaire.",
		"  aucune correction nécessaire  ",
	}

	for _, v := range variants {
		a := &Analysis{IsCorrect: true, CorrectedText: v}
		if a.HasCorrection() {
			t.Fatalf("expected %q to count as no correction", v)
		}
		for _, line := range RenderAnalysis(a) {
			if strings.Contains(strings.ToLower(line), "aucune correction") {
				t.Fatalf("sentinel leaked into rendered output: %q", line)
			}
		}
	}
}

func TestRealCorrectionIsRendered(t *testing.T) {
	a := &Analysis{IsCorrect: false, CorrectedText: "Меня зовут Грег", Explanation: "Le verbe demande le génitif."}

	lines := RenderAnalysis(a)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "Меня зовут Грег") {
		t.Fatalf("expected corrected text in first line, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "génitif") {
		t.Fatalf("expected explanation in second line, got %q", lines[1])
	}
}

func TestAnalysisPartsOmittedIndependently(t *testing.T) {
	if lines := RenderAnalysis(nil); lines != nil {
		t.Fatalf("expected no lines for nil analysis, got %v", lines)
	}

	onlyExplanation := &Analysis{IsCorrect: true, Explanation: "Bien dit."}
	lines := RenderAnalysis(onlyExplanation)
	if len(lines) != 1 || !strings.Contains(lines[0], "Bien dit.") {
		t.Fatalf("expected lone explanation line, got %v", lines)
	}

	onlyCorrection := &Analysis{IsCorrect: false, CorrectedText: "Je vais au cinéma"}
	lines = RenderAnalysis(onlyCorrection)
	if len(lines) != 1 || !strings.Contains(lines[0], "Je vais au cinéma") {
		t.Fatalf("expected lone correction line, got %v", lines)
	}
}

func TestScoreBands(t *testing.T) {
	tests := []struct {
		score float64
		want  Band
	}{
		{100, BandHigh},
		{80, BandHigh},
		{79.9, BandMedium},
		{60, BandMedium},
		{59.9, BandLow},
		{0, BandLow},
		{150, BandHigh},
		{-5, BandLow},
	}

	for _, tt := range tests {
		if got := ScoreBand(tt.score); got != tt.want {
			t.Fatalf("score %.1f: expected band %s, got %s", tt.score, tt.want, got)
		}
	}
}

func TestClampScoreBounds(t *testing.T) {
	if got := ClampScore(-12); got != 0 {
		t.Fatalf("expected clamp to 0, got %.1f", got)
	}
	if got := ClampScore(130); got != 100 {
		t.Fatalf("expected clamp to 100, got %.1f", got)
	}
	if got := ClampScore(42.5); got != 42.5 {
		t.Fatalf("expected in-range score untouched, got %.1f", got)
	}
}

func TestRenderPronunciationOmitsMissingParts(t *testing.T) {
	if lines := RenderPronunciation(nil); lines != nil {
		t.Fatalf("expected no lines for nil report, got %v", lines)
	}

	bare := &Pronunciation{Score: 85}
	lines := RenderPronunciation(bare)
	if len(lines) != 1 {
		t.Fatalf("expected single score line, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "85%") || !strings.Contains(lines[0], "excellent") {
		t.Fatalf("unexpected score line: %q", lines[0])
	}

	full := &Pronunciation{
		Score:    64,
		Words:    []WordScore{{Word: "говорить", Score: 70}, {Word: "я", Score: 58}},
		Prosody:  &Prosody{AveragePitchHz: 180, SpeechRateWPS: 2.1, DurationS: 3.2},
		Feedback: "Bon rythme, attention aux accents.",
	}
	lines = RenderPronunciation(full)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[1], "говорить 70%") {
		t.Fatalf("expected word scores, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "180 Hz") {
		t.Fatalf("expected prosody metrics, got %q", lines[2])
	}
	if lines[3] != "Bon rythme, attention aux accents." {
		t.Fatalf("expected feedback passthrough, got %q", lines[3])
	}
}
