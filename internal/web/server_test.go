package web

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/deckbuild"
	"github.com/NickLewanowicz/anki-translation-maker-sub001/internal/domain"
)

type fakeBuilder struct {
	cfg    domain.DeckBuildConfig
	single string
	langs  domain.Languages
	err    error
}

func (f *fakeBuilder) BuildDeck(_ context.Context, cfg domain.DeckBuildConfig) ([]byte, error) {
	f.cfg = cfg
	return []byte("PK"), f.err
}

func (f *fakeBuilder) BuildSingleDeck(_ context.Context, name string, _ []domain.Card, langs domain.Languages) ([]byte, error) {
	f.single, f.langs = name, langs
	return []byte("PK"), f.err
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestPostDeck(t *testing.T) {
	fb := &fakeBuilder{}
	s := NewServer(fb, nil)

	rec := do(s, http.MethodPost, "/api/decks", `{
		"parentName": "Spanish",
		"globalLanguageDefaults": {"sourceLanguage": "en"},
		"sets": [{"name": "Unit 1", "frontLanguage": "es", "cards": [{"source": "hi", "target": "hola", "sourceAudio": "AQI="}]}]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/apkg", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Spanish.apkg"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK", rec.Body.String())

	require.Len(t, fb.cfg.Sets, 1)
	assert.Equal(t, "en", fb.cfg.Defaults.Source)
	assert.Equal(t, "es", fb.cfg.Sets[0].Front)
	assert.Equal(t, []byte{1, 2}, fb.cfg.Sets[0].Cards[0].SourceAudio)
}

func TestPostSingleDeck(t *testing.T) {
	fb := &fakeBuilder{}
	s := NewServer(fb, nil)

	rec := do(s, http.MethodPost, "/api/decks/single", `{"deckName": "Lang: Basics", "cards": [], "targetLanguage": "fr"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lang: Basics", fb.single)
	assert.Equal(t, "fr", fb.langs.Target)
	assert.Equal(t, `attachment; filename="Lang- Basics.apkg"`, rec.Header().Get("Content-Disposition"))
}

func TestPostDeckErrors(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		body string
		code int
	}{
		{"malformed body", nil, `{`, http.StatusBadRequest},
		{"validation error", deckbuild.ErrDuplicateSetName, `{}`, http.StatusBadRequest},
		{"build failure", errors.New("deck build failed: disk full"), `{}`, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewServer(&fakeBuilder{err: tc.err}, nil)
			rec := do(s, http.MethodPost, "/api/decks", tc.body)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestHealthz(t *testing.T) {
	rec := do(NewServer(&fakeBuilder{}, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
