package domain

// Card is a single source/target pair with optional pronunciation audio.
type Card struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	SourceAudio []byte `json:"sourceAudio,omitempty"`
	TargetAudio []byte `json:"targetAudio,omitempty"`
}

// HasSourceAudio reports whether the card carries non-empty source audio.
func (c Card) HasSourceAudio() bool {
	return len(c.SourceAudio) > 0
}

// HasTargetAudio reports whether the card carries non-empty target audio.
func (c Card) HasTargetAudio() bool {
	return len(c.TargetAudio) > 0
}

// Languages holds the language preferences used to orient cards.
// Empty values mean "unknown".
type Languages struct {
	Source string `json:"sourceLanguage,omitempty"`
	Target string `json:"targetLanguage,omitempty"`
	Front  string `json:"frontLanguage,omitempty"`
	Back   string `json:"backLanguage,omitempty"`
}

// Complete reports whether all four languages are known.
func (l Languages) Complete() bool {
	return l.Source != "" && l.Target != "" && l.Front != "" && l.Back != ""
}

// Merge returns l with every empty field filled from defaults.
func (l Languages) Merge(defaults Languages) Languages {
	if l.Source == "" {
		l.Source = defaults.Source
	}
	if l.Target == "" {
		l.Target = defaults.Target
	}
	if l.Front == "" {
		l.Front = defaults.Front
	}
	if l.Back == "" {
		l.Back = defaults.Back
	}
	return l
}

// Set is a named group of cards that becomes one child deck.
type Set struct {
	Name  string `json:"name" validate:"required"`
	Cards []Card `json:"cards" validate:"required"`
	Languages
}

// DeckBuildConfig describes one package build.
type DeckBuildConfig struct {
	ParentName string    `json:"parentName" validate:"required"`
	Sets       []Set     `json:"sets" validate:"required,min=1,dive"`
	Defaults   Languages `json:"globalLanguageDefaults"`
}

// CardCount returns the number of cards across all sets.
func (c DeckBuildConfig) CardCount() int {
	n := 0
	for _, s := range c.Sets {
		n += len(s.Cards)
	}
	return n
}

// Flatten returns every card in set order.
func (c DeckBuildConfig) Flatten() []Card {
	cards := make([]Card, 0, c.CardCount())
	for _, s := range c.Sets {
		cards = append(cards, s.Cards...)
	}
	return cards
}
