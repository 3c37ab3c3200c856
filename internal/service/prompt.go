package service

import (
	"fmt"
	"strings"

	"github.com/nvoisard/bilingo/internal/lang"
)

// lessonJSONShape is the exact reply format demanded from the model.
const lessonJSONShape = `{"segments":[{"lang":"fr|ru","text":"..."}],` +
	`"user_analysis":{"is_correct":true,"corrected_text":"...","explanation":"..."}}`

const greetingJSONShape = `{"segments":[{"lang":"fr|ru","text":"..."}]}`

// frenchNames gives the language names used inside the prompts, which
// are written in French for both lesson directions.
var frenchNames = map[lang.Code]string{
	lang.French:  "français",
	lang.Russian: "russe",
}

// BuildGreetingPrompt returns the system and user prompts that open a
// lesson: a short bilingual welcome plus a first exercise to repeat.
func BuildGreetingPrompt(native, target lang.Code, level string) (system, user string) {
	system = fmt.Sprintf(
		"Tu es un professeur de %s pour un élève dont la langue maternelle est le %s. "+
			"L'élève est de niveau %s (CEFR). "+
			"Les explications sont dans sa langue maternelle, les phrases à pratiquer dans la langue apprise. "+
			"Chaque segment porte l'étiquette de sa langue ('fr' ou 'ru'). "+
			"Réponds UNIQUEMENT au format JSON : %s",
		frenchNames[target], frenchNames[native], level, greetingJSONShape)
	user = fmt.Sprintf(
		"Commence la leçon : salue l'élève et propose une première phrase simple à répéter en %s, adaptée au niveau %s.",
		frenchNames[target], level)
	return system, user
}

// BuildLessonPrompt returns the system and user prompts for one turn of
// conversation around what the learner just said.
func BuildLessonPrompt(native, target lang.Code, level, userText string) (system, user string) {
	system = fmt.Sprintf(
		"Tu es un professeur de %s pour un élève dont la langue maternelle est le %s. "+
			"L'élève est de niveau %s (CEFR). "+
			"1. Analyse sa phrase dans user_analysis : corrige les erreurs de grammaire ou de formulation dans corrected_text "+
			"et explique-les dans sa langue maternelle. Si la phrase est parfaite, mets exactement "+
			"'Aucune correction nécessaire' dans corrected_text. "+
			"2. Continue la conversation dans segments : les explications dans sa langue maternelle, "+
			"les exemples et la prochaine phrase à répéter en %s. "+
			"Chaque segment porte l'étiquette de sa langue ('fr' ou 'ru'). "+
			"Réponds UNIQUEMENT au format JSON : %s",
		frenchNames[target], frenchNames[native], level, frenchNames[target], lessonJSONShape)
	user = fmt.Sprintf("L'élève vient de dire : %s", userText)
	return system, user
}

// ExtractJSON isolates the outermost JSON object from model chatter.
// Markdown fences and surrounding prose fall away since they sit
// outside the braces. The boolean reports whether braces were found.
func ExtractJSON(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return content[start : end+1], true
}
