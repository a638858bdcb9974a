// Package content loads the static prompt pools the games draw from.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// File names looked up inside the content directory.
const (
	CardsFile     = "cah_cards.json"
	QuestionsFile = "cah_questions.json"
	MemesFile     = "memes.json"
	PollsFile     = "questions.json"
)

// Question is a black card. Blanks is the number of white cards a player must play.
type Question struct {
	Text   string `json:"text"`
	Blanks int    `json:"blanks"`
}

// CaptionSlot is a labelled position on a meme template.
type CaptionSlot struct {
	Label string `json:"label"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

// Meme is a captionable template.
type Meme struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	URL          string        `json:"url"`
	CaptionSlots []CaptionSlot `json:"caption_slots"`
}

// Pools holds every content pool. It is read-only after Load.
type Pools struct {
	cards     []string
	questions []Question
	memes     []Meme
	polls     []string
}

// NewPools builds pools from in-memory slices after validating them.
func NewPools(cards []string, questions []Question, memes []Meme, polls []string) (*Pools, error) {
	p := &Pools{
		cards:     cloneSlice(cards),
		questions: cloneSlice(questions),
		memes:     make([]Meme, 0, len(memes)),
		polls:     cloneSlice(polls),
	}
	for i, c := range p.cards {
		if strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("card %d: empty text", i)
		}
	}
	for i, q := range p.questions {
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("question %d: empty text", i)
		}
		if q.Blanks < 1 {
			return nil, fmt.Errorf("question %d (%q): blanks must be at least 1", i, q.Text)
		}
	}
	for i, m := range memes {
		if m.ID == "" {
			return nil, fmt.Errorf("meme %d: missing id", i)
		}
		if len(m.CaptionSlots) == 0 {
			return nil, fmt.Errorf("meme %s: at least one caption slot is required", m.ID)
		}
		m.CaptionSlots = cloneSlice(m.CaptionSlots)
		p.memes = append(p.memes, m)
	}
	for i, q := range p.polls {
		if strings.TrimSpace(q) == "" {
			return nil, fmt.Errorf("poll question %d: empty text", i)
		}
	}
	return p, nil
}

// Load reads all pools from dir. A missing file leaves its pool empty and logs
// a warning; malformed or invalid content is an error.
func Load(dir string, logger *logrus.Logger) (*Pools, error) {
	var (
		cards     []string
		questions []Question
		memes     []Meme
		polls     []string
	)
	files := []struct {
		name string
		dst  interface{}
	}{
		{CardsFile, &cards},
		{QuestionsFile, &questions},
		{MemesFile, &memes},
		{PollsFile, &polls},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			logger.Warnf("content file %s not found, pool will be empty", path)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := json.Unmarshal(data, f.dst); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	p, err := NewPools(cards, questions, memes, polls)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"cards":     len(p.cards),
		"questions": len(p.questions),
		"memes":     len(p.memes),
		"polls":     len(p.polls),
	}).Info("content pools loaded")
	return p, nil
}

// Cards returns a copy of the white card pool.
func (p *Pools) Cards() []string { return cloneSlice(p.cards) }

// Questions returns a copy of the black card pool.
func (p *Pools) Questions() []Question { return cloneSlice(p.questions) }

// Memes returns a copy of the meme template pool.
func (p *Pools) Memes() []Meme {
	out := make([]Meme, len(p.memes))
	for i, m := range p.memes {
		m.CaptionSlots = cloneSlice(m.CaptionSlots)
		out[i] = m
	}
	return out
}

// Polls returns a copy of the voting game questions.
func (p *Pools) Polls() []string { return cloneSlice(p.polls) }

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
