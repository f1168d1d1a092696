// Package deckbuild turns a DeckBuildConfig into an importable package.
//
// A build validates its input, creates a scratch directory for the
// intermediate collection file, writes schema and rows, archives the result
// and removes the scratch directory on every exit path.
package deckbuild

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/apkg"
	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/domain"
	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/media"
	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/orientation"
	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/storage"
)

const databaseFile = "collection.anki2"

// Options configures a Service.
type Options struct {
	// TempDir is the parent of per-build scratch directories; "" uses os.TempDir.
	TempDir        string
	InsertWorkers  int
	PackageTimeout time.Duration
	// CompressionLevel is a deflate level; 0 keeps the packager default.
	CompressionLevel int
	Logger           *slog.Logger
	// Clock overrides time.Now for id generation.
	Clock func() time.Time
}

// Service builds packages. It holds no per-build state and is safe for
// concurrent use.
type Service struct {
	opts     Options
	logger   *slog.Logger
	packager *apkg.Builder
}

// NewService creates a Service.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	packager := apkg.NewBuilder(opts.PackageTimeout)
	if opts.CompressionLevel != 0 {
		packager.Level = opts.CompressionLevel
	}
	return &Service{opts: opts, logger: logger, packager: packager}
}

// BuildDeck validates cfg and returns the package bytes.
func (s *Service) BuildDeck(ctx context.Context, cfg domain.DeckBuildConfig) ([]byte, error) {
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	start := time.Now()
	data, stats, err := s.build(ctx, cfg)
	if err != nil {
		s.logger.Error("deck build failed", "parent", cfg.ParentName, "error", err)
		return nil, fmt.Errorf("deck build failed: %w", err)
	}

	s.logger.Info("deck built",
		"parent", cfg.ParentName,
		"sets", len(cfg.Sets),
		"cards", stats.cards,
		"media", stats.media,
		"bytes", len(data),
		"duration", time.Since(start),
	)
	return data, nil
}

// BuildSingleDeck is the single-set form of BuildDeck: the set takes the
// deck name and langs become the deck-level defaults.
func (s *Service) BuildSingleDeck(ctx context.Context, name string, cards []domain.Card, langs domain.Languages) ([]byte, error) {
	return s.BuildDeck(ctx, domain.DeckBuildConfig{
		ParentName: name,
		Sets:       []domain.Set{{Name: name, Cards: cards}},
		Defaults:   langs,
	})
}

type buildStats struct {
	cards int
	media int
}

func (s *Service) build(ctx context.Context, cfg domain.DeckBuildConfig) (data []byte, stats buildStats, err error) {
	dir, err := os.MkdirTemp(s.opts.TempDir, "ankipack-*")
	if err != nil {
		return nil, stats, fmt.Errorf("failed to create temporary directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			s.logger.Warn("failed to remove temporary directory", "dir", dir, "error", rmErr)
		}
	}()

	cards := cfg.Flatten()
	mapping := media.NewMapping(cards)
	stats = buildStats{cards: len(cards), media: mapping.Len()}

	dbPath := filepath.Join(dir, databaseFile)
	if err := s.writeCollection(ctx, dbPath, cfg, mapping); err != nil {
		return nil, stats, err
	}

	data, err = s.packager.Build(ctx, dbPath, mapping)
	if err != nil {
		return nil, stats, err
	}
	return data, stats, nil
}

func (s *Service) writeCollection(ctx context.Context, path string, cfg domain.DeckBuildConfig, mapping *media.Mapping) (err error) {
	opts := []storage.Option{
		storage.WithLogger(s.logger),
		storage.WithInsertWorkers(s.opts.InsertWorkers),
	}
	if s.opts.Clock != nil {
		opts = append(opts, storage.WithClock(s.opts.Clock))
	}

	db, err := storage.Open(path, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close database: %w", closeErr)
		}
	}()

	if err := db.CreateSchema(ctx); err != nil {
		return err
	}
	_, err = db.Populate(ctx, Decks(cfg, mapping))
	return err
}

// Decks renders every set into its deck name and oriented notes. Card
// indices run across sets in order, matching the media mapping.
func Decks(cfg domain.DeckBuildConfig, mapping *media.Mapping) []storage.DeckInput {
	decks := make([]storage.DeckInput, 0, len(cfg.Sets))
	i := 0
	for _, set := range cfg.Sets {
		strategy := orientation.For(set.Languages.Merge(cfg.Defaults))
		deck := storage.DeckInput{
			Name:  storage.DeckName(cfg.ParentName, set.Name, len(cfg.Sets)),
			Notes: make([]storage.NoteInput, 0, len(set.Cards)),
		}
		for _, card := range set.Cards {
			fields := strategy.Fields(orientation.Sides{
				Source:      card.Source,
				Target:      card.Target,
				SourceSound: mapping.SourceSound(i),
				TargetSound: mapping.TargetSound(i),
			})
			deck.Notes = append(deck.Notes, storage.NoteInput{
				Front:  fields.Front,
				Back:   fields.Back,
				Target: card.Target,
			})
			i++
		}
		decks = append(decks, deck)
	}
	return decks
}
