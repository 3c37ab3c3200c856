// Package lang holds the registry of languages the tutor supports and the
// CEFR proficiency levels a session can be configured with.
package lang

import "fmt"

// Code is an ISO 639-1 language code from the supported set.
type Code string

const (
	French  Code = "fr"
	Russian Code = "ru"
)

// registry entry for one supported language.
type language struct {
	name      string // self-designated name, shown in pickers
	indicator string // short display indicator attached to reply segments
	locale    string // BCP 47 tag used by speech services
	edgeVoice string // default edge TTS voice
}

var registry = map[Code]language{
	French: {
		name:      "Français",
		indicator: "FR",
		locale:    "fr-FR",
		edgeVoice: "fr-FR-VivienneMultilingualNeural",
	},
	Russian: {
		name:      "Русский",
		indicator: "RU",
		locale:    "ru-RU",
		edgeVoice: "ru-RU-SvetlanaNeural",
	},
}

// Levels are the CEFR proficiency levels accepted on session start.
var Levels = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

// Supported reports whether c belongs to the supported set.
func Supported(c Code) bool {
	_, ok := registry[c]
	return ok
}

// Name returns the language's self-designated name, or "" for unknown codes.
func Name(c Code) string {
	return registry[c].name
}

// Indicator returns the display indicator for a language tag. Unknown tags
// yield "" so rendering degrades to no indicator instead of failing.
func Indicator(c Code) string {
	return registry[c].indicator
}

// Locale returns the BCP 47 tag for speech services, or "" for unknown codes.
func Locale(c Code) string {
	return registry[c].locale
}

// EdgeVoice returns the default edge TTS voice for a language, or "" for
// unknown codes.
func EdgeVoice(c Code) string {
	return registry[c].edgeVoice
}

// ValidLevel reports whether level is one of the accepted CEFR levels.
func ValidLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

// ValidatePair checks that native and target form a usable session pair:
// both supported and distinct.
func ValidatePair(native, target Code) error {
	if !Supported(native) {
		return fmt.Errorf("unsupported native language %q", native)
	}
	if !Supported(target) {
		return fmt.Errorf("unsupported target language %q", target)
	}
	if native == target {
		return fmt.Errorf("native and target languages must differ, both are %q", native)
	}
	return nil
}
