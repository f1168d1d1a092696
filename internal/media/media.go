// Package media assigns sequential numeric identities to card audio.
//
// Target audio is numbered first, in card order, followed by source audio.
// Note fields embed these numbers and archive entries are named after them,
// so the order is part of the package format.
package media

import (
	"fmt"
	"strconv"

	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/domain"
)

// Entry is one audio blob to be archived.
type Entry struct {
	Index    int
	Filename string
	Data     []byte
}

// Manifest maps the archive entry name to the filename notes refer to.
type Manifest map[string]string

// Mapping holds the audio indices for one build.
type Mapping struct {
	target  map[int]int
	source  map[int]int
	entries []Entry
}

// NewMapping numbers the audio of cards, which must be flattened across all sets.
func NewMapping(cards []domain.Card) *Mapping {
	m := &Mapping{
		target: make(map[int]int),
		source: make(map[int]int),
	}

	next := 0
	for i, card := range cards {
		if !card.HasTargetAudio() {
			continue
		}
		m.target[i] = next
		m.entries = append(m.entries, Entry{Index: next, Filename: Filename(next), Data: card.TargetAudio})
		next++
	}
	for i, card := range cards {
		if !card.HasSourceAudio() {
			continue
		}
		m.source[i] = next
		m.entries = append(m.entries, Entry{Index: next, Filename: Filename(next), Data: card.SourceAudio})
		next++
	}
	return m
}

// TargetIndex returns the media index of the target audio of card i.
func (m *Mapping) TargetIndex(i int) (int, bool) {
	idx, ok := m.target[i]
	return idx, ok
}

// SourceIndex returns the media index of the source audio of card i.
func (m *Mapping) SourceIndex(i int) (int, bool) {
	idx, ok := m.source[i]
	return idx, ok
}

// TargetSound returns the sound marker for the target audio of card i, or "".
func (m *Mapping) TargetSound(i int) string {
	if idx, ok := m.target[i]; ok {
		return SoundTag(idx)
	}
	return ""
}

// SourceSound returns the sound marker for the source audio of card i, or "".
func (m *Mapping) SourceSound(i int) string {
	if idx, ok := m.source[i]; ok {
		return SoundTag(idx)
	}
	return ""
}

// Len returns the number of media files.
func (m *Mapping) Len() int {
	return len(m.entries)
}

// Entries returns the audio blobs in index order.
func (m *Mapping) Entries() []Entry {
	return m.entries
}

// Manifest builds the index to filename map written as the "media" entry.
func (m *Mapping) Manifest() Manifest {
	manifest := make(Manifest, len(m.entries))
	for _, e := range m.entries {
		manifest[strconv.Itoa(e.Index)] = e.Filename
	}
	return manifest
}

// Filename is the synthetic filename notes use for media index idx.
func Filename(idx int) string {
	return fmt.Sprintf("%d.mp3", idx)
}

// SoundTag is the inline marker that plays media index idx.
func SoundTag(idx int) string {
	return "[sound:" + Filename(idx) + "]"
}
