package tutor

import "github.com/nvoisard/bilingo/internal/lang"

// Disclosure describes how one reply segment is presented to the learner.
// Segments in the learner's native language start collapsed behind a tip
// toggle so the target language stays in front; everything else is shown
// immediately. Indicator is the short language label next to the text,
// empty when the segment's tag is not a supported language.
type Disclosure struct {
	VisibleImmediately bool
	Indicator          string
}

// Classify decides the disclosure of a single segment against the
// session it belongs to. It is pure: classifying the same segment twice
// yields the same result, and no segment affects another's disclosure.
func Classify(seg Segment, s Session) Disclosure {
	return Disclosure{
		VisibleImmediately: seg.Lang != s.NativeLang,
		Indicator:          lang.Indicator(seg.Lang),
	}
}
