package service

import (
	"testing"

	"github.com/nvoisard/bilingo/internal/client"
)

func TestComparePronunciationFullMatch(t *testing.T) {
	p := ComparePronunciation("Здравствуйте, как дела?", "здравствуйте как дела")
	if p == nil {
		t.Fatal("expected a pronunciation result")
	}
	if p.Score != 100 {
		t.Errorf("expected score 100, got %g", p.Score)
	}
	if len(p.Words) != 3 {
		t.Fatalf("expected 3 word scores, got %d", len(p.Words))
	}
	for _, w := range p.Words {
		if w.Score != 100 {
			t.Errorf("word %q scored %g, want 100", w.Word, w.Score)
		}
	}
	if p.Feedback != "Excellente prononciation !" {
		t.Errorf("unexpected feedback %q", p.Feedback)
	}
}

func TestComparePronunciationPartialMatch(t *testing.T) {
	p := ComparePronunciation("je voudrais un café", "je voudrais")
	if p == nil {
		t.Fatal("expected a pronunciation result")
	}
	if p.Score != 50 {
		t.Errorf("expected score 50, got %g", p.Score)
	}
	missed := map[string]bool{}
	for _, w := range p.Words {
		if w.Score == 0 {
			missed[w.Word] = true
		}
	}
	if !missed["un"] || !missed["café"] {
		t.Errorf("expected un and café marked missed, got %v", missed)
	}
}

func TestComparePronunciationNoMatch(t *testing.T) {
	p := ComparePronunciation("привет", "bonjour")
	if p == nil {
		t.Fatal("expected a pronunciation result")
	}
	if p.Score != 0 {
		t.Errorf("expected score 0, got %g", p.Score)
	}
	if p.Feedback != "Réécoute le modèle et réessaie." {
		t.Errorf("unexpected feedback %q", p.Feedback)
	}
}

func TestComparePronunciationEmptyExpected(t *testing.T) {
	if p := ComparePronunciation("   ", "bonjour"); p != nil {
		t.Errorf("expected nil for empty exercise text, got %+v", p)
	}
}

func TestPronunciationFeedbackBands(t *testing.T) {
	if got := pronunciationFeedback(80); got != "Excellente prononciation !" {
		t.Errorf("score 80: %q", got)
	}
	if got := pronunciationFeedback(60); got != "Bien, continue à t'entraîner." {
		t.Errorf("score 60: %q", got)
	}
	if got := pronunciationFeedback(59.9); got != "Réécoute le modèle et réessaie." {
		t.Errorf("score 59.9: %q", got)
	}
}

func TestAlignedPronunciationConversion(t *testing.T) {
	result := &client.PronunciationResult{
		PronunciationScore: 85,
		Words: []client.PronunciationWord{
			{Word: "привет", Start: 0.1, End: 0.6, Score: 90},
			{Word: "мир", Start: 0.7, End: 1.0, Score: 80},
		},
		Prosody: &client.ProsodyMetrics{AveragePitchHz: 180, SpeechRateWPS: 2.1, DurationS: 1.0},
	}

	p := alignedPronunciation(result)
	if p.Score != 85 {
		t.Errorf("expected score 85, got %g", p.Score)
	}
	if len(p.Words) != 2 || p.Words[0].Word != "привет" || p.Words[1].Score != 80 {
		t.Errorf("unexpected word scores %+v", p.Words)
	}
	if p.Prosody == nil || p.Prosody.AveragePitchHz != 180 {
		t.Errorf("unexpected prosody %+v", p.Prosody)
	}
	if p.Feedback != "Excellente prononciation !" {
		t.Errorf("unexpected feedback %q", p.Feedback)
	}

	if alignedPronunciation(nil) != nil {
		t.Error("nil result should convert to nil")
	}
}
