package service

import (
	"regexp"
	"strings"

	"github.com/nvoisard/bilingo/internal/lang"
)

var (
	boldRe     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRe   = regexp.MustCompile(`\*([^*]+)\*`)
	codeRe     = regexp.MustCompile("`([^`]+)`")
	headerRe   = regexp.MustCompile(`#+\s*`)
	bulletRe   = regexp.MustCompile(`(?m)^\s*[-*•]\s+`)
	numberedRe = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	parensRe   = regexp.MustCompile(`\([^)]*\)`)
	spacesRe   = regexp.MustCompile(`\s+`)
)

// DetectTextLanguage guesses the language of a text between the two the
// system teaches. Any Cyrillic content marks it Russian; everything
// else defaults to French.
func DetectTextLanguage(text string) lang.Code {
	for _, r := range text {
		if r >= 0x0400 && r <= 0x04FF {
			return lang.Russian
		}
	}
	return lang.French
}

// CleanTextForSpeech strips markdown decoration and parenthetical
// asides that a voice would otherwise read aloud.
func CleanTextForSpeech(text string) string {
	text = boldRe.ReplaceAllString(text, "$1")
	text = italicRe.ReplaceAllString(text, "$1")
	text = codeRe.ReplaceAllString(text, "$1")
	text = headerRe.ReplaceAllString(text, "")
	text = bulletRe.ReplaceAllString(text, "")
	text = numberedRe.ReplaceAllString(text, "")
	text = parensRe.ReplaceAllString(text, "")
	text = spacesRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
