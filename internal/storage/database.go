package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// fieldSeparator joins note fields in the flds column.
const fieldSeparator = "\x1f"

// collectionVersion is the anki2 schema version written to col.ver.
const collectionVersion = 11

// DB represents a wrapper around the SQL connection of one collection file.
type DB struct {
	conn    *sql.DB
	logger  *slog.Logger
	workers int
	now     func() time.Time
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) { db.logger = l }
}

// WithInsertWorkers bounds the number of concurrent note/card inserts.
func WithInsertWorkers(n int) Option {
	return func(db *DB) {
		if n > 0 {
			db.workers = n
		}
	}
}

// WithClock replaces time.Now as the id and timestamp source.
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

// Open creates a new collection file at path. The schema is not applied;
// call CreateSchema before Populate.
func Open(path string, opts ...Option) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		conn:    conn,
		logger:  slog.Default(),
		workers: 4,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// DeckInput is one set's deck and its rendered notes.
type DeckInput struct {
	Name  string
	Notes []NoteInput
}

// NoteInput is a note whose fields are already oriented.
type NoteInput struct {
	Front  string
	Back   string
	Target string
}

// Result summarizes a Populate run.
type Result struct {
	ModelID int64
	DeckIDs []int64
	Notes   int
}

// Populate writes the collection row, then one note and one card row per
// NoteInput. Inserts run concurrently inside a single transaction; Populate
// returns only after every insert has finished.
func (db *DB) Populate(ctx context.Context, decks []DeckInput) (Result, error) {
	ids := NewIDs(db.now())
	mod := ids.Seed

	col, deckIDs := buildCollection(ids, decks)
	if err := db.insertCollection(ctx, col); err != nil {
		return Result{}, err
	}

	total := 0
	for _, d := range decks {
		total += len(d.Notes)
	}
	res := Result{ModelID: ids.Model(), DeckIDs: deckIDs, Notes: total}
	if total == 0 {
		db.logger.Debug("collection written without notes")
		return res, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to begin note transaction: %w", err)
	}
	defer tx.Rollback()

	noteStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Result{}, fmt.Errorf("failed to prepare note insert: %w", err)
	}
	defer noteStmt.Close()

	cardStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Result{}, fmt.Errorf("failed to prepare card insert: %w", err)
	}
	defer cardStmt.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(db.workers)

	i := 0
	for d, deck := range decks {
		for _, note := range deck.Notes {
			note := note
			noteID, cardID, deckID := ids.Note(i), ids.Card(i), deckIDs[d]
			g.Go(func() error {
				if _, err := noteStmt.ExecContext(gctx,
					noteID,
					uuid.NewString(),
					ids.Model(),
					mod,
					-1,
					"",
					strings.Join([]string{note.Front, note.Back}, fieldSeparator),
					note.Front,
					Checksum(note.Target),
					0,
					"",
				); err != nil {
					return fmt.Errorf("failed to insert note %d: %w", noteID, err)
				}
				if _, err := cardStmt.ExecContext(gctx,
					cardID,
					noteID,
					deckID,
					0, // ord: forward card only
					mod,
					-1,
					0, // type: new
					0, // queue: new
					Due(cardID),
					0, 0, 0, 0, 0, 0, 0, 0,
					"",
				); err != nil {
					return fmt.Errorf("failed to insert card %d: %w", cardID, err)
				}
				return nil
			})
			i++
		}
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("failed to commit notes: %w", err)
	}

	db.logger.Debug("notes written", "notes", total, "decks", len(decks))
	return res, nil
}

// Checksum is the legacy csum value: the length of the target text in
// UTF-16 code units. It is not a content hash.
func Checksum(target string) int64 {
	return int64(len(utf16.Encode([]rune(target))))
}

// DeckName returns the deck name for set name within parent. A single-set
// build uses the parent name directly.
func DeckName(parent, set string, sets int) string {
	if sets == 1 {
		return parent
	}
	return parent + "::" + set
}

func buildCollection(ids IDs, decks []DeckInput) (Collection, []int64) {
	mod := ids.Seed
	deckIDs := make([]int64, len(decks))

	tree := map[string]Deck{
		idKey(DefaultDeckID): newDeck(DefaultDeckID, "Default", mod),
	}
	for i, d := range decks {
		deckIDs[i] = ids.Deck(i)
		tree[idKey(deckIDs[i])] = newDeck(deckIDs[i], d.Name, mod)
	}

	current := DefaultDeckID
	if len(deckIDs) > 0 {
		current = deckIDs[0]
	}

	col := Collection{
		Created:  ids.Seed,
		Modified: ids.Seed * 1000,
		Config: CollectionConfig{
			ActiveDecks:  []int64{current},
			CurDeck:      current,
			CollapseTime: 1200,
			EstTimes:     true,
			DueCounts:    true,
			CurModel:     idKey(ids.Model()),
			NextPos:      1,
			SortType:     "noteFld",
			AddToCur:     true,
		},
		Models: map[string]NoteModel{
			idKey(ids.Model()): basicModel(ids.Model(), current, mod),
		},
		Decks:    tree,
		DeckConf: map[string]DeckConfig{idKey(defaultDeckConfID): defaultDeckConfig(mod)},
		Tags:     map[string]int{},
	}
	return col, deckIDs
}

func (db *DB) insertCollection(ctx context.Context, col Collection) error {
	blobs, err := col.encode()
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		VALUES (1, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?, ?, ?)
	`,
		col.Created,
		col.Modified,
		col.Modified,
		collectionVersion,
		blobs.conf,
		blobs.models,
		blobs.decks,
		blobs.dconf,
		blobs.tags,
	)
	if err != nil {
		return fmt.Errorf("failed to insert collection row: %w", err)
	}
	db.logger.Debug("collection row written", "decks", len(col.Decks))
	return nil
}
