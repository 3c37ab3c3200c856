package tutor

import (
	"fmt"
	"strings"
)

// NoCorrectionSentinel is the phrase the language model emits when the
// learner's sentence needs no fixing. It counts as an absent correction
// and must never reach the rendered output.
const NoCorrectionSentinel = "aucune correction nécessaire"

// Band buckets a pronunciation score for display emphasis. Bands affect
// only how a score is shown; nothing else branches on them.
type Band int

const (
	BandLow Band = iota
	BandMedium
	BandHigh
)

func (b Band) String() string {
	switch b {
	case BandHigh:
		return "high"
	case BandMedium:
		return "medium"
	default:
		return "low"
	}
}

// Label returns the French display label for the band.
func (b Band) Label() string {
	switch b {
	case BandHigh:
		return "excellent"
	case BandMedium:
		return "bien"
	default:
		return "à travailler"
	}
}

// ClampScore bounds a score to the 0..100 display scale.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ScoreBand partitions a clamped score: 80 and above is high, 60 and
// above is medium, everything below is low.
func ScoreBand(score float64) Band {
	score = ClampScore(score)
	switch {
	case score >= 80:
		return BandHigh
	case score >= 60:
		return BandMedium
	default:
		return BandLow
	}
}

// HasCorrection reports whether the analysis carries a correction worth
// showing. The sentinel phrase counts as no correction regardless of
// case or trailing punctuation.
func (a *Analysis) HasCorrection() bool {
	if a == nil {
		return false
	}
	text := strings.TrimSpace(a.CorrectedText)
	text = strings.TrimSpace(strings.TrimRight(text, "."))
	if text == "" {
		return false
	}
	return !strings.EqualFold(text, NoCorrectionSentinel)
}

// RenderPronunciation formats a pronunciation report as display lines.
// Each optional part is omitted when absent rather than padded with a
// placeholder. A nil report renders nothing.
func RenderPronunciation(p *Pronunciation) []string {
	if p == nil {
		return nil
	}
	score := ClampScore(p.Score)
	lines := []string{
		fmt.Sprintf("Prononciation : %.0f%% (%s)", score, ScoreBand(score).Label()),
	}
	if len(p.Words) > 0 {
		parts := make([]string, len(p.Words))
		for i, w := range p.Words {
			parts[i] = fmt.Sprintf("%s %.0f%%", w.Word, ClampScore(w.Score))
		}
		lines = append(lines, "Mots : "+strings.Join(parts, ", "))
	}
	if p.Prosody != nil {
		lines = append(lines, fmt.Sprintf("Prosodie : %.0f Hz, %.1f mots/s, %.1f s",
			p.Prosody.AveragePitchHz, p.Prosody.SpeechRateWPS, p.Prosody.DurationS))
	}
	if p.Feedback != "" {
		lines = append(lines, p.Feedback)
	}
	return lines
}

// RenderAnalysis formats the tutor's correction as display lines. The
// correction and the explanation are omitted independently; an analysis
// reduced to the sentinel renders nothing at all.
func RenderAnalysis(a *Analysis) []string {
	if a == nil {
		return nil
	}
	var lines []string
	if a.HasCorrection() {
		lines = append(lines, "Correction : "+strings.TrimSpace(a.CorrectedText))
	}
	if a.Explanation != "" {
		lines = append(lines, "Explication : "+a.Explanation)
	}
	return lines
}
