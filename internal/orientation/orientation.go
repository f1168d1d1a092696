// Package orientation decides what text and audio go on each side of a note.
package orientation

import "github.com/NickLewanowicz/anki-translation-maker-sub001/internal/domain"

// Sides is the input to a Strategy for one card. SourceSound and TargetSound
// hold the "[sound:N.mp3]" marker for the card's audio, or "" when absent.
type Sides struct {
	Source      string
	Target      string
	SourceSound string
	TargetSound string
}

// Fields is the rendered front and back of a note.
type Fields struct {
	Front string
	Back  string
}

// Strategy renders the two note fields for a card.
type Strategy interface {
	Fields(s Sides) Fields
}

// For selects the strategy for a set. Explicit orientation is used only
// when all four languages are known; otherwise the audio presence table applies.
func For(langs domain.Languages) Strategy {
	if langs.Complete() {
		return Explicit{Languages: langs}
	}
	return Legacy{}
}

// Explicit orients cards by the configured front and back languages.
type Explicit struct {
	Languages domain.Languages
}

// Fields implements Strategy.
func (e Explicit) Fields(s Sides) Fields {
	return Fields{
		Front: e.side(e.Languages.Front, s),
		Back:  e.side(e.Languages.Back, s),
	}
}

func (e Explicit) side(lang string, s Sides) string {
	text := s.Target
	if lang == e.Languages.Source {
		text = s.Source
	}
	switch {
	case lang == e.Languages.Source && s.SourceSound != "":
		return text + s.SourceSound
	case lang == e.Languages.Target && s.TargetSound != "":
		return text + s.TargetSound
	}
	return text
}

// Legacy orients cards purely by which audio is present.
//
//	source audio  target audio  front                back
//	yes           no            source+sourceSound   target
//	no            yes           target+targetSound   source
//	yes           yes           target+targetSound   source+sourceSound
//	no            no            target               source
type Legacy struct{}

// Fields implements Strategy.
func (Legacy) Fields(s Sides) Fields {
	hasSource := s.SourceSound != ""
	hasTarget := s.TargetSound != ""

	switch {
	case hasSource && !hasTarget:
		return Fields{Front: s.Source + s.SourceSound, Back: s.Target}
	case hasTarget && !hasSource:
		return Fields{Front: s.Target + s.TargetSound, Back: s.Source}
	case hasSource && hasTarget:
		return Fields{Front: s.Target + s.TargetSound, Back: s.Source + s.SourceSound}
	default:
		return Fields{Front: s.Target, Back: s.Source}
	}
}
