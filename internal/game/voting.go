package game

import (
	"fmt"
	"time"

	"github.com/jason-s-yu/partygames/internal/content"
)

// VotingDuration is how long a "who is most likely to" question stays open.
const VotingDuration = 20 * time.Second

// votingRules is the poll game: every round is a single question, players vote
// for another player, and the round ends when the clock runs out.
type votingRules struct {
	pools *content.Pools
}

// NewVotingRules returns the poll game policy drawing from pools.
func NewVotingRules(pools *content.Pools) Rules {
	return &votingRules{pools: pools}
}

func (r *votingRules) Kind() Kind { return KindVoting }

func (r *votingRules) Phases() (Phase, Phase, Phase) {
	return "", PhaseVoting, PhaseFinished
}

func (r *votingRules) Duration(p Phase) time.Duration {
	if p == PhaseVoting {
		return VotingDuration
	}
	return 0
}

func (r *votingRules) Setup(inst *Instance) error {
	inst.polls = content.NewDeck(r.pools.Polls(), inst.rng)
	return r.draw(inst)
}

func (r *votingRules) NextRound(inst *Instance) error {
	return r.draw(inst)
}

func (r *votingRules) draw(inst *Instance) error {
	q, ok := inst.polls.Draw()
	if !ok {
		return fmt.Errorf("%w: no more questions", ErrPoolExhausted)
	}
	inst.Poll = q
	return nil
}

func (r *votingRules) GameOver(*Instance) bool { return false }

func (r *votingRules) Submitters(*Instance) []string { return nil }

func (r *votingRules) CanSubmit(*Instance, string) error {
	return fmt.Errorf("%w: this game has no submissions", ErrWrongPhase)
}

func (r *votingRules) Submit(*Instance, string, []string) ([]string, error) {
	return nil, fmt.Errorf("%w: this game has no submissions", ErrWrongPhase)
}

func (r *votingRules) Voters(inst *Instance) []string {
	return rosterIDs(inst)
}

func (r *votingRules) CanVote(*Instance, string) error { return nil }

func (r *votingRules) ResolveVote(inst *Instance, clientID string, p VotePayload) (Vote, error) {
	if p.For == clientID {
		return Vote{}, fmt.Errorf("%w: you cannot vote for yourself", ErrInvalidPayload)
	}
	if !inst.inRoster(p.For) {
		return Vote{}, fmt.Errorf("%w: %q is not a player in this game", ErrInvalidPayload, p.For)
	}
	return Vote{Target: p.For}, nil
}

func (r *votingRules) EarlyVoteClose() bool { return false }

// Candidates are the players themselves; a poll vote names a person.
func (r *votingRules) Candidates(inst *Instance, viewer string) []Candidate {
	out := make([]Candidate, len(inst.Roster))
	for i, p := range inst.Roster {
		out[i] = Candidate{
			ID:       p.ClientID,
			Username: p.Username,
			Own:      viewer != "" && viewer == p.ClientID,
		}
	}
	return out
}

func (r *votingRules) Score(inst *Instance) *RoundResult {
	return scoreUniqueWinner(inst)
}
