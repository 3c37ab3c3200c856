// Package tutor holds the domain model for a bilingual speaking lesson:
// session parameters, the language-tagged segments a tutor reply is made
// of, and the per-turn feedback attached to the learner's utterance.
package tutor

import "github.com/nvoisard/bilingo/internal/lang"

// Session is the parameter set of one lesson. It is fixed at start and
// never mutated by turn submission.
type Session struct {
	ID         string
	NativeLang lang.Code
	TargetLang lang.Code
	Level      string
}

// Segment is one language-tagged piece of a tutor reply.
type Segment struct {
	Lang lang.Code `json:"lang"`
	Text string    `json:"text"`
}

// AudioSegment references the synthesized audio for one reply segment.
type AudioSegment struct {
	Lang     lang.Code `json:"lang"`
	AudioURL string    `json:"audio_url"`
}

// WordScore is the pronunciation score of a single word.
type WordScore struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// Prosody carries pitch and pacing metrics for one utterance.
type Prosody struct {
	AveragePitchHz float64 `json:"average_pitch_hz"`
	SpeechRateWPS  float64 `json:"speech_rate_wps"`
	DurationS      float64 `json:"duration_s"`
}

// Pronunciation is the assessment of the learner's recorded utterance.
// Every field besides Score is optional.
type Pronunciation struct {
	Score    float64     `json:"score"`
	Words    []WordScore `json:"words,omitempty"`
	Prosody  *Prosody    `json:"prosody,omitempty"`
	Feedback string      `json:"feedback,omitempty"`
}

// Analysis is the tutor's correction of what the learner said.
type Analysis struct {
	IsCorrect     bool   `json:"is_correct"`
	CorrectedText string `json:"corrected_text,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

// Turn is one exchange: what the learner said plus the tutor's reply.
// A failed turn carries only the failure marker; a turn whose playback
// broke partway keeps its text but is flagged AudioFailed.
type Turn struct {
	UserText      string
	Pronunciation *Pronunciation
	Analysis      *Analysis
	Segments      []Segment
	AudioSegments []AudioSegment

	Failed      bool
	FailReason  string
	AudioFailed bool
}

// FailedTurn builds the conversation marker for a submit attempt that
// produced no reply. The session stays usable; the learner may retry.
func FailedTurn(err error) Turn {
	t := Turn{Failed: true}
	if err != nil {
		t.FailReason = err.Error()
	}
	return t
}

// Acknowledgment is the fallback segment rendered when a reply carries
// no text segments at all, so the learner never faces a silent turn.
func Acknowledgment(native lang.Code) Segment {
	if native == lang.Russian {
		return Segment{Lang: lang.Russian, Text: "Ответ получен."}
	}
	return Segment{Lang: lang.French, Text: "Réponse reçue."}
}
