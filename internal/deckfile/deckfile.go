// Package deckfile reads deck definitions written in YAML.
//
//	parent: Vietnamese
//	defaults:
//	  source: english
//	  target: vietnamese
//	sets:
//	  - name: Unit 1
//	    front: vietnamese
//	    back: english
//	    cards:
//	      - source: water
//	        target: nước
//	        target_audio: audio/nuoc.mp3
//
// Audio paths are resolved relative to the definition file.
package deckfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/domain"
)

type fileLanguages struct {
	Source string `koanf:"source"`
	Target string `koanf:"target"`
	Front  string `koanf:"front"`
	Back   string `koanf:"back"`
}

type fileCard struct {
	Source      string `koanf:"source"`
	Target      string `koanf:"target"`
	SourceAudio string `koanf:"source_audio"`
	TargetAudio string `koanf:"target_audio"`
}

type fileSet struct {
	Name   string     `koanf:"name"`
	Source string     `koanf:"source"`
	Target string     `koanf:"target"`
	Front  string     `koanf:"front"`
	Back   string     `koanf:"back"`
	Cards  []fileCard `koanf:"cards"`
}

type fileDeck struct {
	Parent   string        `koanf:"parent"`
	Defaults fileLanguages `koanf:"defaults"`
	Sets     []fileSet     `koanf:"sets"`
}

// Load parses the definition at path and reads every referenced audio file.
func Load(path string) (domain.DeckBuildConfig, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return domain.DeckBuildConfig{}, fmt.Errorf("failed to read deck file %s: %w", path, err)
	}

	var fd fileDeck
	if err := k.Unmarshal("", &fd); err != nil {
		return domain.DeckBuildConfig{}, fmt.Errorf("failed to decode deck file %s: %w", path, err)
	}

	base := filepath.Dir(path)
	cfg := domain.DeckBuildConfig{
		ParentName: fd.Parent,
		Defaults:   fd.Defaults.languages(),
	}
	for _, fs := range fd.Sets {
		set := domain.Set{
			Name:      fs.Name,
			Cards:     make([]domain.Card, 0, len(fs.Cards)),
			Languages: fileLanguages{fs.Source, fs.Target, fs.Front, fs.Back}.languages(),
		}
		for i, fc := range fs.Cards {
			card := domain.Card{Source: fc.Source, Target: fc.Target}
			var err error
			if card.SourceAudio, err = readAudio(base, fc.SourceAudio); err != nil {
				return domain.DeckBuildConfig{}, fmt.Errorf("set %q card %d: %w", fs.Name, i, err)
			}
			if card.TargetAudio, err = readAudio(base, fc.TargetAudio); err != nil {
				return domain.DeckBuildConfig{}, fmt.Errorf("set %q card %d: %w", fs.Name, i, err)
			}
			set.Cards = append(set.Cards, card)
		}
		cfg.Sets = append(cfg.Sets, set)
	}
	return cfg, nil
}

func (l fileLanguages) languages() domain.Languages {
	return domain.Languages{Source: l.Source, Target: l.Target, Front: l.Front, Back: l.Back}
}

func readAudio(base, rel string) ([]byte, error) {
	if rel == "" {
		return nil, nil
	}
	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, rel)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio %s: %w", rel, err)
	}
	return data, nil
}
