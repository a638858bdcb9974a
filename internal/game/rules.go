// internal/game/rules.go
package game

import "time"

// Rules is the per-kind policy the generic engine is parameterized by. All
// methods are called with the instance lock held and must not block.
type Rules interface {
	Kind() Kind

	// Phases returns the submission, voting and results phases of a round.
	// submit is empty when a round opens directly in voting.
	Phases() (submit, vote, results Phase)
	Duration(p Phase) time.Duration

	// Setup prepares a fresh instance: decks, private state and the first prompt.
	Setup(inst *Instance) error
	// NextRound rotates roles and draws the next prompt. It returns an error
	// wrapping ErrPoolExhausted when nothing is left to draw, and must leave
	// the instance untouched in that case.
	NextRound(inst *Instance) error
	// GameOver reports whether advancing should end the game instead.
	GameOver(inst *Instance) bool

	Submitters(inst *Instance) []string
	CanSubmit(inst *Instance, clientID string) error
	// Submit validates a payload and applies its private side effects (hand
	// refills), returning the content to record.
	Submit(inst *Instance, clientID string, entries []string) ([]string, error)

	Voters(inst *Instance) []string
	CanVote(inst *Instance, clientID string) error
	ResolveVote(inst *Instance, clientID string, p VotePayload) (Vote, error)
	// EarlyVoteClose opts the kind into closing the voting phase once every
	// voter has voted.
	EarlyVoteClose() bool

	// Candidates lists what can be voted for, in a stable order. The engine
	// shuffles it on every view.
	Candidates(inst *Instance, viewer string) []Candidate
	Score(inst *Instance) *RoundResult
}

// Submission is one player's entry for the current round.
type Submission struct {
	CandidateID string
	ClientID    string
	Content     []string
	At          time.Time
}

// VotePayload is a vote as sent by a client. For is a candidate id taken from
// the voting view. Points is only meaningful for the meme game.
type VotePayload struct {
	For    string `json:"vote_for"`
	Points int    `json:"points,omitempty"`
}

// Vote is a resolved vote: Target is always a roster client id.
type Vote struct {
	Target string
	Points int
}

// Candidate is an anonymized entry of the voting view.
type Candidate struct {
	ID       string   `json:"candidate_id"`
	Content  []string `json:"content,omitempty"`
	Username string   `json:"username,omitempty"`
	Own      bool     `json:"own,omitempty"`
}

// RoundResult is computed once when a round enters its results phase.
type RoundResult struct {
	// Winner is set only when a single player holds the maximum.
	Winner     *string
	Winners    []string
	VoteCounts map[string]int
	Points     map[string]int
	// Awards is added to the cumulative scores.
	Awards map[string]int
}
