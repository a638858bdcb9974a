package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func votesFor(targets ...string) map[string]Vote {
	out := make(map[string]Vote, len(targets))
	for i, t := range targets {
		out[string(rune('a'+i))] = Vote{Target: t}
	}
	return out
}

func TestScoreUniqueWinnerTie(t *testing.T) {
	inst := &Instance{Roster: testRoster(3), Votes: votesFor("p1", "p1", "p2", "p2", "p3")}
	res := scoreUniqueWinner(inst)

	assert.Nil(t, res.Winner)
	assert.Empty(t, res.Awards)
	assert.Equal(t, []string{"p1", "p2"}, res.Winners)
	assert.Equal(t, map[string]int{"p1": 2, "p2": 2, "p3": 1}, res.VoteCounts)
}

func TestScoreUniqueWinnerClearWinner(t *testing.T) {
	inst := &Instance{Roster: testRoster(2), Votes: votesFor("p1", "p1", "p1", "p2")}
	res := scoreUniqueWinner(inst)

	require.NotNil(t, res.Winner)
	assert.Equal(t, "p1", *res.Winner)
	assert.Equal(t, map[string]int{"p1": 1}, res.Awards)
}

func TestScoreWithoutVotes(t *testing.T) {
	inst := &Instance{Roster: testRoster(2), Votes: map[string]Vote{}}

	res := scoreUniqueWinner(inst)
	assert.Nil(t, res.Winner)
	assert.NotNil(t, res.Winners)
	assert.Empty(t, res.Winners)

	res = scorePointsWeighted(inst)
	assert.Empty(t, res.Winners)
	assert.Empty(t, res.Awards)
}

func TestScorePointsWeightedCountsZeroPointVotes(t *testing.T) {
	inst := &Instance{Roster: testRoster(4), Votes: map[string]Vote{
		"p1": {Target: "p2", Points: 2},
		"p2": {Target: "p3"},
		"p3": {Target: "p4"},
		"p4": {Target: "p3"},
	}}
	res := scorePointsWeighted(inst)

	assert.Equal(t, map[string]int{"p2": 2, "p3": 2, "p4": 1}, res.Points)
	assert.Equal(t, []string{"p2", "p3"}, res.Winners)
	assert.Nil(t, res.Winner)
	assert.Equal(t, map[string]int{"p2": 2, "p3": 2, "p4": 1}, res.Awards)
}

func TestLeadersFollowRosterOrder(t *testing.T) {
	roster := testRoster(4)
	assert.Equal(t, []string{"p2", "p4"}, leaders(map[string]int{"p4": 2, "p2": 2, "p1": 1}, roster))
	assert.Empty(t, leaders(map[string]int{"p1": 0}, roster))
}
