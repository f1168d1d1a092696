package orientation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/domain"
)

func TestLegacy(t *testing.T) {
	testCases := []struct {
		name  string
		sides Sides
		want  Fields
	}{
		{
			name:  "source audio only",
			sides: Sides{Source: "hello", Target: "hola", SourceSound: "[sound:0.mp3]"},
			want:  Fields{Front: "hello[sound:0.mp3]", Back: "hola"},
		},
		{
			name:  "target audio only",
			sides: Sides{Source: "hello", Target: "hola", TargetSound: "[sound:0.mp3]"},
			want:  Fields{Front: "hola[sound:0.mp3]", Back: "hello"},
		},
		{
			name:  "both audios",
			sides: Sides{Source: "water", Target: "nước", TargetSound: "[sound:0.mp3]", SourceSound: "[sound:1.mp3]"},
			want:  Fields{Front: "nước[sound:0.mp3]", Back: "water[sound:1.mp3]"},
		},
		{
			name:  "no audio",
			sides: Sides{Source: "hello", Target: "hola"},
			want:  Fields{Front: "hola", Back: "hello"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Legacy{}.Fields(tc.sides))
		})
	}
}

func TestExplicit(t *testing.T) {
	langs := domain.Languages{Source: "en", Target: "vi", Front: "en", Back: "vi"}

	testCases := []struct {
		name  string
		langs domain.Languages
		sides Sides
		want  Fields
	}{
		{
			name:  "source on front with both audios",
			langs: langs,
			sides: Sides{Source: "water", Target: "nước", TargetSound: "[sound:0.mp3]", SourceSound: "[sound:1.mp3]"},
			want:  Fields{Front: "water[sound:1.mp3]", Back: "nước[sound:0.mp3]"},
		},
		{
			name:  "target on front",
			langs: domain.Languages{Source: "en", Target: "vi", Front: "vi", Back: "en"},
			sides: Sides{Source: "water", Target: "nước", TargetSound: "[sound:0.mp3]"},
			want:  Fields{Front: "nước[sound:0.mp3]", Back: "water"},
		},
		{
			name:  "no audio renders plain text",
			langs: langs,
			sides: Sides{Source: "water", Target: "nước"},
			want:  Fields{Front: "water", Back: "nước"},
		},
		{
			name:  "audio ignored on a side of another language",
			langs: domain.Languages{Source: "en", Target: "vi", Front: "fr", Back: "en"},
			sides: Sides{Source: "water", Target: "nước", TargetSound: "[sound:0.mp3]"},
			want:  Fields{Front: "nước", Back: "water"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Explicit{Languages: tc.langs}.Fields(tc.sides))
		})
	}
}

func TestFor(t *testing.T) {
	assert.IsType(t, Legacy{}, For(domain.Languages{}))
	assert.IsType(t, Legacy{}, For(domain.Languages{Source: "en", Target: "vi", Front: "en"}))
	assert.IsType(t, Explicit{}, For(domain.Languages{Source: "en", Target: "vi", Front: "en", Back: "vi"}))
}
