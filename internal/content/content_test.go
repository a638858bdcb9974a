package content

import (
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadReadsAllPools(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, CardsFile, `["A cat", "Taxes"]`)
	writeFile(t, dir, QuestionsFile, `[{"text":"Why ___?","blanks":1},{"text":"___ and ___","blanks":2}]`)
	writeFile(t, dir, MemesFile, `[{"id":"drake","name":"Drake","url":"/m/drake.png","caption_slots":[{"label":"top","x":10,"y":10},{"label":"bottom","x":10,"y":90}]}]`)
	writeFile(t, dir, PollsFile, `["Who is most likely to oversleep?"]`)

	p, err := Load(dir, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"A cat", "Taxes"}, p.Cards())
	assert.Len(t, p.Questions(), 2)
	assert.Equal(t, 2, p.Questions()[1].Blanks)
	require.Len(t, p.Memes(), 1)
	assert.Len(t, p.Memes()[0].CaptionSlots, 2)
	assert.Equal(t, []string{"Who is most likely to oversleep?"}, p.Polls())
}

func TestLoadMissingFileLeavesPoolEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, CardsFile, `["A cat"]`)

	p, err := Load(dir, quietLogger())
	require.NoError(t, err)
	assert.Len(t, p.Cards(), 1)
	assert.Empty(t, p.Questions())
	assert.Empty(t, p.Memes())
	assert.Empty(t, p.Polls())
}

func TestLoadRejectsInvalidContent(t *testing.T) {
	cases := map[string]struct{ file, body string }{
		"zero blanks":    {QuestionsFile, `[{"text":"Why?","blanks":0}]`},
		"no slots":       {MemesFile, `[{"id":"x","name":"x","url":"x","caption_slots":[]}]`},
		"empty card":     {CardsFile, `["  "]`},
		"malformed json": {PollsFile, `{"not":"a list"}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tc.file, tc.body)
			_, err := Load(dir, quietLogger())
			assert.Error(t, err)
		})
	}
}

func TestGettersReturnCopies(t *testing.T) {
	p, err := NewPools([]string{"a"}, []Question{{Text: "q", Blanks: 1}},
		[]Meme{{ID: "m", CaptionSlots: []CaptionSlot{{Label: "top"}}}}, []string{"p"})
	require.NoError(t, err)

	p.Cards()[0] = "changed"
	p.Memes()[0].CaptionSlots[0].Label = "changed"
	assert.Equal(t, "a", p.Cards()[0])
	assert.Equal(t, "top", p.Memes()[0].CaptionSlots[0].Label)
}

func TestDeckDrawsEveryItemOnce(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	d := NewDeck(items, rand.New(rand.NewSource(7)))
	assert.Equal(t, 5, d.Len())

	seen := map[int]bool{}
	for i := 0; i < 5; i++ {
		v, ok := d.Draw()
		require.True(t, ok)
		assert.False(t, seen[v], "item %d drawn twice", v)
		seen[v] = true
	}
	_, ok := d.Draw()
	assert.False(t, ok)
	assert.Equal(t, 0, d.Len())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, items, "source slice must not be shuffled in place")
}
