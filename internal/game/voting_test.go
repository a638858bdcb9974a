package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVotingEndToEndWithoutVotes(t *testing.T) {
	h := newHarness(t, testPools(t, nil, nil, []string{"q1", "q2"}), 2)
	h.start(KindVoting)
	ctx := context.Background()

	h.with(func(inst *Instance) {
		assert.Equal(t, PhaseVoting, inst.Phase, "the poll game opens in voting")
		assert.Equal(t, VotingDuration, inst.Duration)
	})

	_, err := h.m.Advance(ctx, KindVoting, h.room, "p1")
	assert.ErrorIs(t, err, ErrWrongPhase)

	h.clock.Advance(VotingDuration - time.Second)
	h.tick()
	assert.Equal(t, PhaseVoting, h.phase())
	_, err = h.m.Advance(ctx, KindVoting, h.room, "p1")
	assert.ErrorIs(t, err, ErrWrongPhase)

	h.clock.Advance(time.Second)
	h.mb.clear()
	h.tick()
	assert.Equal(t, PhaseFinished, h.phase())

	ev, ok := lastEvent[*ResultsUpdate](h.mb)
	require.True(t, ok)
	assert.Equal(t, PhaseFinished, ev.Status)
	assert.NotNil(t, ev.Winners)
	assert.Empty(t, ev.Winners, "no votes means no winners")
	assert.Nil(t, ev.RoundWinner)

	res, err := h.m.Advance(ctx, KindVoting, h.room, "p1")
	require.NoError(t, err, "advance is allowed from finished")
	assert.Equal(t, 2, res.Round)
	assert.Equal(t, PhaseVoting, h.phase())
}

func TestVotingVoteValidation(t *testing.T) {
	h := newHarness(t, testPools(t, nil, nil, []string{"q1"}), 3)
	h.start(KindVoting)
	ctx := context.Background()

	assert.ErrorIs(t, h.m.Vote(ctx, KindVoting, h.room, "p1", VotePayload{For: "p1"}), ErrInvalidPayload)
	assert.ErrorIs(t, h.m.Vote(ctx, KindVoting, h.room, "p1", VotePayload{For: "p9"}), ErrInvalidPayload)
	assert.ErrorIs(t, h.m.Vote(ctx, KindVoting, h.room, "p9", VotePayload{For: "p1"}), ErrUnauthorized)

	require.NoError(t, h.m.Vote(ctx, KindVoting, h.room, "p1", VotePayload{For: "p2"}))
	assert.ErrorIs(t, h.m.Vote(ctx, KindVoting, h.room, "p1", VotePayload{For: "p3"}), ErrDuplicateAction)
	h.with(func(inst *Instance) {
		assert.Equal(t, map[string]Vote{"p1": {Target: "p2"}}, inst.Votes)
	})

	view, err := h.m.Status(ctx, KindVoting, h.room, "p2")
	require.NoError(t, err)
	vu := view.(*VotingUpdate)
	assert.Equal(t, "q1", vu.Poll)
	assert.Len(t, vu.Submissions, 3, "every player is a candidate")
	assert.Equal(t, 1, vu.VotesCast)
	assert.False(t, vu.You.HasVoted)
}

func TestVotingWinnersAndTies(t *testing.T) {
	h := newHarness(t, testPools(t, nil, nil, []string{"q1", "q2"}), 4)
	h.start(KindVoting)
	ctx := context.Background()

	require.NoError(t, h.m.Vote(ctx, KindVoting, h.room, "p1", VotePayload{For: "p2"}))
	require.NoError(t, h.m.Vote(ctx, KindVoting, h.room, "p3", VotePayload{For: "p2"}))
	require.NoError(t, h.m.Vote(ctx, KindVoting, h.room, "p2", VotePayload{For: "p1"}))
	h.clock.Advance(VotingDuration)
	h.tick()

	h.with(func(inst *Instance) {
		assert.Equal(t, []string{"p2"}, inst.LastResult.Winners)
		assert.Equal(t, 1, inst.Scores["p2"])
	})

	_, err := h.m.Advance(ctx, KindVoting, h.room, "p1")
	require.NoError(t, err)
	require.NoError(t, h.m.Vote(ctx, KindVoting, h.room, "p1", VotePayload{For: "p2"}))
	require.NoError(t, h.m.Vote(ctx, KindVoting, h.room, "p2", VotePayload{For: "p1"}))
	h.clock.Advance(VotingDuration)
	h.tick()

	h.with(func(inst *Instance) {
		assert.Equal(t, []string{"p1", "p2"}, inst.LastResult.Winners, "a tie lists every leader")
		assert.Nil(t, inst.LastResult.Winner)
		assert.Equal(t, map[string]int{"p1": 0, "p2": 1, "p3": 0, "p4": 0}, inst.Scores, "a tie awards nothing")
	})
}

func TestVotingPoolExhaustion(t *testing.T) {
	h := newHarness(t, testPools(t, nil, nil, []string{"q1", "q2"}), 2)
	h.start(KindVoting)
	ctx := context.Background()

	h.clock.Advance(VotingDuration)
	h.tick()
	_, err := h.m.Advance(ctx, KindVoting, h.room, "p1")
	require.NoError(t, err)

	h.clock.Advance(VotingDuration)
	h.tick()
	_, err = h.m.Advance(ctx, KindVoting, h.room, "p1")
	assert.ErrorIs(t, err, ErrPoolExhausted)
	h.with(func(inst *Instance) {
		assert.True(t, inst.Over)
		assert.Contains(t, []string{"q1", "q2"}, inst.Poll, "a failed draw leaves the last question in place")
	})
}

func TestVotingHasNoSubmissions(t *testing.T) {
	h := newHarness(t, testPools(t, nil, nil, []string{"q1"}), 2)
	h.start(KindVoting)
	h.with(func(inst *Instance) {
		_, err := inst.recordSubmission("p1", []string{"x"}, h.clock.Now())
		assert.ErrorIs(t, err, ErrWrongPhase)
	})
}
