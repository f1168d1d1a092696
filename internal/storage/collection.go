package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DefaultDeckID is the id of the built-in "Default" deck.
const DefaultDeckID int64 = 1

// defaultDeckConfID is the deck options group every deck points at.
const defaultDeckConfID int64 = 1

const modelCSS = `.card {
 font-family: arial;
 font-size: 20px;
 text-align: center;
 color: black;
 background-color: white;
}
`

const (
	latexPre  = "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}\n"
	latexPost = "\\end{document}"
)

// CollectionConfig is the "conf" blob of the collection row.
type CollectionConfig struct {
	ActiveDecks   []int64 `json:"activeDecks"`
	CurDeck       int64   `json:"curDeck"`
	NewSpread     int     `json:"newSpread"`
	CollapseTime  int     `json:"collapseTime"`
	TimeLim       int     `json:"timeLim"`
	EstTimes      bool    `json:"estTimes"`
	DueCounts     bool    `json:"dueCounts"`
	CurModel      string  `json:"curModel"`
	NextPos       int     `json:"nextPos"`
	SortType      string  `json:"sortType"`
	SortBackwards bool    `json:"sortBackwards"`
	AddToCur      bool    `json:"addToCur"`
}

// NoteModel is one entry of the "models" blob.
type NoteModel struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Type      int             `json:"type"`
	Mod       int64           `json:"mod"`
	Usn       int             `json:"usn"`
	Sortf     int             `json:"sortf"`
	Did       int64           `json:"did"`
	Tmpls     []CardTemplate  `json:"tmpls"`
	Flds      []ModelField    `json:"flds"`
	CSS       string          `json:"css"`
	LatexPre  string          `json:"latexPre"`
	LatexPost string          `json:"latexPost"`
	Tags      []string        `json:"tags"`
	Vers      []int           `json:"vers"`
	Req       [][]interface{} `json:"req"`
}

// CardTemplate describes how a card renders its note.
type CardTemplate struct {
	Name  string `json:"name"`
	Ord   int    `json:"ord"`
	Qfmt  string `json:"qfmt"`
	Afmt  string `json:"afmt"`
	Did   *int64 `json:"did"`
	Bqfmt string `json:"bqfmt"`
	Bafmt string `json:"bafmt"`
}

// ModelField is one named field of a note model.
type ModelField struct {
	Name   string        `json:"name"`
	Ord    int           `json:"ord"`
	Sticky bool          `json:"sticky"`
	RTL    bool          `json:"rtl"`
	Font   string        `json:"font"`
	Size   int           `json:"size"`
	Media  []interface{} `json:"media"`
}

// Deck is one entry of the "decks" blob.
type Deck struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Mod       int64  `json:"mod"`
	Usn       int    `json:"usn"`
	LrnToday  [2]int `json:"lrnToday"`
	RevToday  [2]int `json:"revToday"`
	NewToday  [2]int `json:"newToday"`
	TimeToday [2]int `json:"timeToday"`
	Collapsed bool   `json:"collapsed"`
	Desc      string `json:"desc"`
	Dyn       int    `json:"dyn"`
	Conf      int64  `json:"conf"`
	ExtendNew int    `json:"extendNew"`
	ExtendRev int    `json:"extendRev"`
}

// DeckConfig is one entry of the "dconf" blob.
type DeckConfig struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Mod      int64         `json:"mod"`
	Usn      int           `json:"usn"`
	MaxTaken int           `json:"maxTaken"`
	Autoplay bool          `json:"autoplay"`
	Timer    int           `json:"timer"`
	Replayq  bool          `json:"replayq"`
	Dyn      bool          `json:"dyn"`
	New      NewCardConfig `json:"new"`
	Rev      ReviewConfig  `json:"rev"`
	Lapse    LapseConfig   `json:"lapse"`
}

// NewCardConfig holds the new-card options of a deck config.
type NewCardConfig struct {
	Delays        []float64 `json:"delays"`
	Ints          [3]int    `json:"ints"`
	InitialFactor int       `json:"initialFactor"`
	Order         int       `json:"order"`
	PerDay        int       `json:"perDay"`
	Bury          bool      `json:"bury"`
	Separate      bool      `json:"separate"`
}

// ReviewConfig holds the review options of a deck config.
type ReviewConfig struct {
	PerDay   int     `json:"perDay"`
	Ease4    float64 `json:"ease4"`
	Fuzz     float64 `json:"fuzz"`
	MinSpace int     `json:"minSpace"`
	IvlFct   float64 `json:"ivlFct"`
	MaxIvl   int     `json:"maxIvl"`
	Bury     bool    `json:"bury"`
}

// LapseConfig holds the lapse options of a deck config.
type LapseConfig struct {
	Delays      []float64 `json:"delays"`
	Mult        float64   `json:"mult"`
	MinInt      int       `json:"minInt"`
	LeechFails  int       `json:"leechFails"`
	LeechAction int       `json:"leechAction"`
}

// Collection is the typed form of the single collection row.
type Collection struct {
	Created  int64
	Modified int64
	Config   CollectionConfig
	Models   map[string]NoteModel
	Decks    map[string]Deck
	DeckConf map[string]DeckConfig
	Tags     map[string]int
}

// encoded holds the serialized blobs ready for insertion.
type encoded struct {
	conf, models, decks, dconf, tags string
}

func (c Collection) encode() (encoded, error) {
	var out encoded
	blobs := []struct {
		name string
		v    interface{}
		dst  *string
	}{
		{"conf", c.Config, &out.conf},
		{"models", c.Models, &out.models},
		{"decks", c.Decks, &out.decks},
		{"dconf", c.DeckConf, &out.dconf},
		{"tags", c.Tags, &out.tags},
	}
	for _, b := range blobs {
		raw, err := json.Marshal(b.v)
		if err != nil {
			return encoded{}, fmt.Errorf("failed to encode collection %s: %w", b.name, err)
		}
		*b.dst = string(raw)
	}
	return out, nil
}

// basicModel returns the two-field Front/Back model shared by every note.
func basicModel(id, deckID, mod int64) NoteModel {
	field := func(name string, ord int) ModelField {
		return ModelField{Name: name, Ord: ord, Font: "Arial", Size: 20, Media: []interface{}{}}
	}
	return NoteModel{
		ID:    id,
		Name:  "Basic",
		Type:  0,
		Mod:   mod,
		Usn:   -1,
		Sortf: 0,
		Did:   deckID,
		Tmpls: []CardTemplate{{
			Name: "Card 1",
			Ord:  0,
			Qfmt: "{{Front}}",
			Afmt: "{{FrontSide}}\n\n<hr id=answer>\n\n{{Back}}",
		}},
		Flds:      []ModelField{field("Front", 0), field("Back", 1)},
		CSS:       modelCSS,
		LatexPre:  latexPre,
		LatexPost: latexPost,
		Tags:      []string{},
		Vers:      []int{},
		Req:       [][]interface{}{{0, "all", []int{0}}},
	}
}

func newDeck(id int64, name string, mod int64) Deck {
	return Deck{
		ID:        id,
		Name:      name,
		Mod:       mod,
		Usn:       -1,
		Conf:      defaultDeckConfID,
		ExtendNew: 10,
		ExtendRev: 50,
	}
}

func defaultDeckConfig(mod int64) DeckConfig {
	return DeckConfig{
		ID:       defaultDeckConfID,
		Name:     "Default",
		Mod:      mod,
		MaxTaken: 60,
		Autoplay: true,
		Replayq:  true,
		New: NewCardConfig{
			Delays:        []float64{1, 10},
			Ints:          [3]int{1, 4, 7},
			InitialFactor: 2500,
			Order:         1,
			PerDay:        20,
			Separate:      true,
		},
		Rev: ReviewConfig{
			PerDay:   100,
			Ease4:    1.3,
			Fuzz:     0.05,
			MinSpace: 1,
			IvlFct:   1,
			MaxIvl:   36500,
		},
		Lapse: LapseConfig{
			Delays:      []float64{10},
			Mult:        0,
			MinInt:      1,
			LeechFails:  8,
			LeechAction: 0,
		},
	}
}

func idKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
