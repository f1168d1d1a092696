package deckbuild

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/domain"
)

func TestValidate(t *testing.T) {
	set := func(name string) domain.Set {
		return domain.Set{Name: name, Cards: []domain.Card{}}
	}

	testCases := []struct {
		name    string
		cfg     domain.DeckBuildConfig
		wantErr error
		wantMsg string
	}{
		{
			name: "valid",
			cfg:  domain.DeckBuildConfig{ParentName: "P", Sets: []domain.Set{set("A"), set("B")}},
		},
		{
			name:    "empty parent name",
			cfg:     domain.DeckBuildConfig{ParentName: "", Sets: []domain.Set{set("A")}},
			wantErr: ErrParentNameRequired,
			wantMsg: "parent deck name is required",
		},
		{
			name:    "no sets",
			cfg:     domain.DeckBuildConfig{ParentName: "P", Sets: []domain.Set{}},
			wantErr: ErrNoSets,
			wantMsg: "at least one set is required",
		},
		{
			name:    "nil sets",
			cfg:     domain.DeckBuildConfig{ParentName: "P"},
			wantErr: ErrNoSets,
		},
		{
			name:    "set without name",
			cfg:     domain.DeckBuildConfig{ParentName: "P", Sets: []domain.Set{set("A"), set("")}},
			wantErr: ErrSetNameRequired,
		},
		{
			name:    "set without cards",
			cfg:     domain.DeckBuildConfig{ParentName: "P", Sets: []domain.Set{{Name: "A"}}},
			wantErr: ErrSetCardsMissing,
		},
		{
			name:    "duplicate set names",
			cfg:     domain.DeckBuildConfig{ParentName: "P", Sets: []domain.Set{set("Unit 1"), set("Unit 1")}},
			wantErr: ErrDuplicateSetName,
			wantMsg: "all set names must be unique",
		},
		{
			name:    "parent name is checked first",
			cfg:     domain.DeckBuildConfig{},
			wantErr: ErrParentNameRequired,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.cfg)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
			if tc.wantMsg != "" {
				assert.EqualError(t, err, tc.wantMsg)
			}
		})
	}
}

func TestBuildDeckValidationIsNotWrapped(t *testing.T) {
	svc, tmp := newTestService(t)

	_, err := svc.BuildDeck(context.Background(), domain.DeckBuildConfig{ParentName: "P"})
	assert.EqualError(t, err, "at least one set is required")
	assertNoScratchLeft(t, tmp)
}
