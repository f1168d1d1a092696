package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/deckbuild"
	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/domain"
)

// maxRequestBytes bounds a deck request body, audio included.
const maxRequestBytes = 64 << 20

// DeckBuilder is the part of deckbuild.Service the server needs.
type DeckBuilder interface {
	BuildDeck(ctx context.Context, cfg domain.DeckBuildConfig) ([]byte, error)
	BuildSingleDeck(ctx context.Context, name string, cards []domain.Card, langs domain.Languages) ([]byte, error)
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	builder DeckBuilder
	router  chi.Router
	logger  *slog.Logger
}

// NewServer creates and configures a new server.
func NewServer(builder DeckBuilder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		builder: builder,
		router:  chi.NewRouter(),
		logger:  logger,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID, middleware.Recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	s.router.Post("/api/decks", s.handlePostDeck())
	s.router.Post("/api/decks/single", s.handlePostSingleDeck())
}

// singleDeckRequest is the body of the legacy single-set endpoint.
type singleDeckRequest struct {
	DeckName string        `json:"deckName"`
	Cards    []domain.Card `json:"cards"`
	domain.Languages
}

// handlePostDeck builds a multi-set package.
func (s *Server) handlePostDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cfg domain.DeckBuildConfig
		if !s.decode(w, r, &cfg) {
			return
		}
		data, err := s.builder.BuildDeck(r.Context(), cfg)
		s.respond(w, r, cfg.ParentName, data, err)
	}
}

// handlePostSingleDeck builds a single-set package.
func (s *Server) handlePostSingleDeck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req singleDeckRequest
		if !s.decode(w, r, &req) {
			return
		}
		data, err := s.builder.BuildSingleDeck(r.Context(), req.DeckName, req.Cards, req.Languages)
		s.respond(w, r, req.DeckName, data, err)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, name string, data []byte, err error) {
	if err != nil {
		if isValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error("deck request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"error", err)
		http.Error(w, "Failed to build deck", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.apkg\"", fileName(name)))
	w.Header().Set("Content-Type", "application/apkg")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func isValidationError(err error) bool {
	for _, target := range []error{
		deckbuild.ErrParentNameRequired,
		deckbuild.ErrNoSets,
		deckbuild.ErrSetNameRequired,
		deckbuild.ErrSetCardsMissing,
		deckbuild.ErrDuplicateSetName,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// fileName strips characters that would break the attachment header.
func fileName(name string) string {
	name = strings.NewReplacer("/", "-", "\\", "-", ":", "-", "\"", "").Replace(name)
	if name == "" {
		return "deck"
	}
	return name
}
