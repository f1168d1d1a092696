package storage

import "time"

// Id offsets from the per-build seed. The seed is in seconds so that
// seed+offset+index stays far below 2^53 for any realistic build.
const (
	deckIDOffset  int64 = 1_000
	modelIDOffset int64 = 2_000
	noteIDOffset  int64 = 10_000
	cardIDOffset  int64 = 20_000

	// dueRange bounds the due position of new cards.
	dueRange int64 = 100_000
)

// IDs derives every id of one build from a single seed.
type IDs struct {
	Seed int64
}

// NewIDs seeds ids from now at second granularity.
func NewIDs(now time.Time) IDs {
	return IDs{Seed: now.Unix()}
}

// Deck returns the id of the deck for set i.
func (ids IDs) Deck(i int) int64 { return ids.Seed + deckIDOffset + int64(i) }

// Model returns the id of the shared note model.
func (ids IDs) Model() int64 { return ids.Seed + modelIDOffset }

// Note returns the id of the note for card i.
func (ids IDs) Note(i int) int64 { return ids.Seed + noteIDOffset + int64(i) }

// Card returns the id of the card row for card i.
func (ids IDs) Card(i int) int64 { return ids.Seed + cardIDOffset + int64(i) }

// Due returns the due position derived from a card id.
func Due(cardID int64) int64 { return cardID % dueRange }
