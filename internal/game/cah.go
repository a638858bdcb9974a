package game

import (
	"fmt"
	"time"

	"github.com/jason-s-yu/partygames/internal/content"
)

// Card game constants.
const (
	HandSize     = 7
	WinningScore = 5

	CAHPlayDuration = 60 * time.Second
	CAHVoteDuration = 30 * time.Second
)

// cahRules is the card game: a rotating czar reads a question, everybody else
// plays white cards from a private hand, and the czar picks the winner.
type cahRules struct {
	pools *content.Pools
}

// NewCAHRules returns the card game policy drawing from pools.
func NewCAHRules(pools *content.Pools) Rules {
	return &cahRules{pools: pools}
}

func (r *cahRules) Kind() Kind { return KindCAH }

func (r *cahRules) Phases() (Phase, Phase, Phase) {
	return PhasePlaying, PhaseVoting, PhaseResults
}

func (r *cahRules) Duration(p Phase) time.Duration {
	switch p {
	case PhasePlaying:
		return CAHPlayDuration
	case PhaseVoting:
		return CAHVoteDuration
	}
	return 0
}

func (r *cahRules) Setup(inst *Instance) error {
	inst.questions = content.NewDeck(r.pools.Questions(), inst.rng)
	q, ok := inst.questions.Draw()
	if !ok {
		return fmt.Errorf("%w: no questions available", ErrPoolExhausted)
	}
	inst.Question = &q

	inst.cards = content.NewDeck(r.pools.Cards(), inst.rng)
	for _, p := range inst.Roster {
		hand := make([]string, 0, HandSize)
		for len(hand) < HandSize {
			card, ok := inst.cards.Draw()
			if !ok {
				break
			}
			hand = append(hand, card)
		}
		inst.Hands[p.ClientID] = hand
	}

	inst.JudgeIndex = 0
	inst.Judge = inst.Roster[0].ClientID
	return nil
}

// NextRound draws the next question, reshuffling a fresh copy of the pool once
// it runs out, then passes the czar role to the next player in roster order.
func (r *cahRules) NextRound(inst *Instance) error {
	q, ok := inst.questions.Draw()
	if !ok {
		inst.questions = content.NewDeck(r.pools.Questions(), inst.rng)
		if q, ok = inst.questions.Draw(); !ok {
			return fmt.Errorf("%w: no questions available", ErrPoolExhausted)
		}
	}
	inst.Question = &q
	inst.JudgeIndex = (inst.JudgeIndex + 1) % len(inst.Roster)
	inst.Judge = inst.Roster[inst.JudgeIndex].ClientID
	return nil
}

func (r *cahRules) GameOver(inst *Instance) bool {
	for _, s := range inst.Scores {
		if s >= WinningScore {
			return true
		}
	}
	return false
}

func (r *cahRules) Submitters(inst *Instance) []string {
	out := make([]string, 0, len(inst.Roster))
	for _, p := range inst.Roster {
		if p.ClientID != inst.Judge {
			out = append(out, p.ClientID)
		}
	}
	return out
}

func (r *cahRules) CanSubmit(inst *Instance, clientID string) error {
	if clientID == inst.Judge {
		return fmt.Errorf("%w: the card czar does not play cards", ErrUnauthorized)
	}
	return nil
}

func (r *cahRules) Submit(inst *Instance, clientID string, cards []string) ([]string, error) {
	if inst.Question == nil {
		return nil, fmt.Errorf("%w: no active question", ErrWrongPhase)
	}
	if len(cards) != inst.Question.Blanks {
		return nil, fmt.Errorf("%w: must submit exactly %d card(s)", ErrInvalidPayload, inst.Question.Blanks)
	}
	hand := inst.Hands[clientID]
	left := append([]string(nil), hand...)
	for _, card := range cards {
		idx := indexOf(left, card)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q is not in your hand", ErrInvalidPayload, card)
		}
		left = append(left[:idx], left[idx+1:]...)
	}
	for len(left) < HandSize {
		card, ok := inst.cards.Draw()
		if !ok {
			break
		}
		left = append(left, card)
	}
	inst.Hands[clientID] = left
	return append([]string(nil), cards...), nil
}

func (r *cahRules) Voters(inst *Instance) []string {
	return []string{inst.Judge}
}

func (r *cahRules) CanVote(inst *Instance, clientID string) error {
	if clientID != inst.Judge {
		return fmt.Errorf("%w: only the card czar picks the winner", ErrUnauthorized)
	}
	return nil
}

func (r *cahRules) ResolveVote(inst *Instance, clientID string, p VotePayload) (Vote, error) {
	for _, sub := range inst.Submissions {
		if sub.CandidateID == p.For && sub.ClientID != inst.Judge {
			return Vote{Target: sub.ClientID}, nil
		}
	}
	return Vote{}, fmt.Errorf("%w: unknown submission %q", ErrInvalidPayload, p.For)
}

// EarlyVoteClose is on: the czar is the only voter.
func (r *cahRules) EarlyVoteClose() bool { return true }

func (r *cahRules) Candidates(inst *Instance, viewer string) []Candidate {
	return submissionCandidates(inst, viewer, inst.Judge)
}

func (r *cahRules) Score(inst *Instance) *RoundResult {
	return scoreUniqueWinner(inst)
}

// submissionCandidates lists the round's submissions in roster order, skipping
// the excluded player.
func submissionCandidates(inst *Instance, viewer, exclude string) []Candidate {
	out := make([]Candidate, 0, len(inst.Submissions))
	for _, p := range inst.Roster {
		sub, ok := inst.Submissions[p.ClientID]
		if !ok || p.ClientID == exclude {
			continue
		}
		out = append(out, Candidate{
			ID:      sub.CandidateID,
			Content: append([]string(nil), sub.Content...),
			Own:     viewer != "" && viewer == p.ClientID,
		})
	}
	return out
}
