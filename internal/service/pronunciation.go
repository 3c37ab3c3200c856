package service

import (
	"strings"
	"unicode"

	"github.com/nvoisard/bilingo/internal/client"
	"github.com/nvoisard/bilingo/internal/tutor"
)

// alignedPronunciation converts an analysis server result into the
// lesson payload shape, attaching the standard feedback line.
func alignedPronunciation(result *client.PronunciationResult) *tutor.Pronunciation {
	if result == nil {
		return nil
	}

	words := make([]tutor.WordScore, len(result.Words))
	for i, w := range result.Words {
		words[i] = tutor.WordScore{Word: w.Word, Score: w.Score}
	}

	p := &tutor.Pronunciation{
		Score:    result.PronunciationScore,
		Words:    words,
		Feedback: pronunciationFeedback(result.PronunciationScore),
	}
	if result.Prosody != nil {
		p.Prosody = &tutor.Prosody{
			AveragePitchHz: result.Prosody.AveragePitchHz,
			SpeechRateWPS:  result.Prosody.SpeechRateWPS,
			DurationS:      result.Prosody.DurationS,
		}
	}
	return p
}

// ComparePronunciation scores a transcription against the expected
// exercise text by word overlap. It is the fallback used when the
// aligned analysis server is unavailable; coarse, but it tells the
// learner which expected words never made it into their utterance.
func ComparePronunciation(expected, actual string) *tutor.Pronunciation {
	expWords := speechWords(expected)
	if len(expWords) == 0 {
		return nil
	}

	heard := make(map[string]bool)
	for _, w := range speechWords(actual) {
		heard[w] = true
	}

	words := make([]tutor.WordScore, len(expWords))
	matched := 0
	for i, w := range expWords {
		score := 0.0
		if heard[w] {
			score = 100
			matched++
		}
		words[i] = tutor.WordScore{Word: w, Score: score}
	}

	score := float64(matched) / float64(len(expWords)) * 100
	return &tutor.Pronunciation{
		Score:    score,
		Words:    words,
		Feedback: pronunciationFeedback(score),
	}
}

func pronunciationFeedback(score float64) string {
	switch {
	case score >= 80:
		return "Excellente prononciation !"
	case score >= 60:
		return "Bien, continue à t'entraîner."
	default:
		return "Réécoute le modèle et réessaie."
	}
}

// speechWords lowercases and splits a sentence into bare words,
// dropping punctuation.
func speechWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
