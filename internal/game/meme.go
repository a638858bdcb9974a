package game

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jason-s-yu/partygames/internal/content"
)

// Meme game constants.
const (
	MaxCaptionLength = 200
	MaxVotePoints    = 5

	MemeCaptionDuration = 60 * time.Second
	MemeVoteDuration    = 60 * time.Second
)

// memeRules is the captioning game: everyone captions the same template and
// then votes for someone else's, optionally weighting the vote with points.
type memeRules struct {
	pools *content.Pools
}

// NewMemeRules returns the meme game policy drawing from pools.
func NewMemeRules(pools *content.Pools) Rules {
	return &memeRules{pools: pools}
}

func (r *memeRules) Kind() Kind { return KindMeme }

func (r *memeRules) Phases() (Phase, Phase, Phase) {
	return PhaseCaptioning, PhaseVoting, PhaseResults
}

func (r *memeRules) Duration(p Phase) time.Duration {
	switch p {
	case PhaseCaptioning:
		return MemeCaptionDuration
	case PhaseVoting:
		return MemeVoteDuration
	}
	return 0
}

func (r *memeRules) Setup(inst *Instance) error {
	inst.memes = content.NewDeck(r.pools.Memes(), inst.rng)
	return r.draw(inst)
}

func (r *memeRules) NextRound(inst *Instance) error {
	return r.draw(inst)
}

func (r *memeRules) draw(inst *Instance) error {
	m, ok := inst.memes.Draw()
	if !ok {
		return fmt.Errorf("%w: no more memes", ErrPoolExhausted)
	}
	inst.Meme = &m
	return nil
}

func (r *memeRules) GameOver(*Instance) bool { return false }

func (r *memeRules) Submitters(inst *Instance) []string {
	return rosterIDs(inst)
}

func (r *memeRules) CanSubmit(*Instance, string) error { return nil }

func (r *memeRules) Submit(inst *Instance, clientID string, captions []string) ([]string, error) {
	if inst.Meme == nil {
		return nil, fmt.Errorf("%w: no active meme", ErrWrongPhase)
	}
	if want := len(inst.Meme.CaptionSlots); len(captions) != want {
		return nil, fmt.Errorf("%w: this meme needs exactly %d caption(s)", ErrInvalidPayload, want)
	}
	out := make([]string, len(captions))
	for i, c := range captions {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, fmt.Errorf("%w: caption %d is empty", ErrInvalidPayload, i+1)
		}
		if utf8.RuneCountInString(c) > MaxCaptionLength {
			return nil, fmt.Errorf("%w: caption %d is longer than %d characters", ErrInvalidPayload, i+1, MaxCaptionLength)
		}
		out[i] = c
	}
	return out, nil
}

func (r *memeRules) Voters(inst *Instance) []string {
	return rosterIDs(inst)
}

func (r *memeRules) CanVote(*Instance, string) error { return nil }

func (r *memeRules) ResolveVote(inst *Instance, clientID string, p VotePayload) (Vote, error) {
	if p.Points < 0 || p.Points > MaxVotePoints {
		return Vote{}, fmt.Errorf("%w: points must be between 0 and %d", ErrInvalidPayload, MaxVotePoints)
	}
	for _, sub := range inst.Submissions {
		if sub.CandidateID != p.For {
			continue
		}
		if sub.ClientID == clientID {
			return Vote{}, fmt.Errorf("%w: you cannot vote for your own caption", ErrInvalidPayload)
		}
		return Vote{Target: sub.ClientID, Points: p.Points}, nil
	}
	return Vote{}, fmt.Errorf("%w: unknown submission %q", ErrInvalidPayload, p.For)
}

func (r *memeRules) EarlyVoteClose() bool { return false }

func (r *memeRules) Candidates(inst *Instance, viewer string) []Candidate {
	return submissionCandidates(inst, viewer, "")
}

func (r *memeRules) Score(inst *Instance) *RoundResult {
	return scorePointsWeighted(inst)
}

func rosterIDs(inst *Instance) []string {
	out := make([]string, len(inst.Roster))
	for i, p := range inst.Roster {
		out[i] = p.ClientID
	}
	return out
}
