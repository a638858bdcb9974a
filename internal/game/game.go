// internal/game/game.go
package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/partygames/internal/content"
	"github.com/jason-s-yu/partygames/internal/models"
)

// Game-over reasons reported in game_over messages.
const (
	ReasonScoreLimit    = "score_limit"
	ReasonPoolExhausted = "pool_exhausted"
)

// Instance is the state of one running game in a room. The Manager owns it;
// every field is guarded by mu.
type Instance struct {
	mu sync.Mutex

	ID      uuid.UUID
	RoomID  uuid.UUID
	Kind    Kind
	Creator string
	// Roster is fixed at start. Its order drives judge rotation.
	Roster []models.Player

	Phase     Phase
	StartTime time.Time
	Duration  time.Duration
	Round     int

	// Card game only.
	JudgeIndex int
	Judge      string
	Hands      map[string][]string
	Question   *content.Question

	Meme *content.Meme
	Poll string

	Submissions map[string]*Submission
	Votes       map[string]Vote
	Scores      map[string]int
	LastResult  *RoundResult

	Over       bool
	OverReason string

	rules     Rules
	rng       *rand.Rand
	cards     *content.Deck[string]
	questions *content.Deck[content.Question]
	memes     *content.Deck[content.Meme]
	polls     *content.Deck[string]
}

func newInstance(rules Rules, roomID uuid.UUID, roster []models.Player, creator string, now time.Time) (*Instance, error) {
	inst := &Instance{
		ID:      uuid.New(),
		RoomID:  roomID,
		Kind:    rules.Kind(),
		Creator: creator,
		Roster:  append([]models.Player(nil), roster...),
		Round:   1,
		Hands:   make(map[string][]string),
		Scores:  make(map[string]int, len(roster)),
		rules:   rules,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, p := range inst.Roster {
		inst.Scores[p.ClientID] = 0
	}
	if err := rules.Setup(inst); err != nil {
		return nil, err
	}
	inst.startRound(now)
	return inst, nil
}

// startRound opens the round's first phase and clears round data.
func (inst *Instance) startRound(now time.Time) {
	submit, vote, _ := inst.rules.Phases()
	inst.Phase = submit
	if submit == "" {
		inst.Phase = vote
	}
	inst.StartTime = now
	inst.Duration = inst.rules.Duration(inst.Phase)
	inst.Submissions = make(map[string]*Submission)
	inst.Votes = make(map[string]Vote)
	inst.LastResult = nil
}

// remaining is the whole seconds left in the current phase, never negative.
func (inst *Instance) remaining(now time.Time) int {
	left := int((inst.Duration - now.Sub(inst.StartTime)) / time.Second)
	if left < 0 {
		return 0
	}
	return left
}

func (inst *Instance) inRoster(clientID string) bool {
	for _, p := range inst.Roster {
		if p.ClientID == clientID {
			return true
		}
	}
	return false
}

func (inst *Instance) username(clientID string) string {
	for _, p := range inst.Roster {
		if p.ClientID == clientID {
			return p.Username
		}
	}
	return clientID
}

func (inst *Instance) submittedCount() (done, needed int) {
	for _, id := range inst.rules.Submitters(inst) {
		needed++
		if _, ok := inst.Submissions[id]; ok {
			done++
		}
	}
	return done, needed
}

func (inst *Instance) votedCount() (done, needed int) {
	for _, id := range inst.rules.Voters(inst) {
		needed++
		if _, ok := inst.Votes[id]; ok {
			done++
		}
	}
	return done, needed
}

// due is the single transition rule: it reports the phase the instance should
// move to at now, if any.
func (inst *Instance) due(now time.Time) (Phase, bool) {
	if inst.Over {
		return "", false
	}
	submit, vote, results := inst.rules.Phases()
	expired := inst.remaining(now) <= 0
	switch {
	case submit != "" && inst.Phase == submit:
		done, needed := inst.submittedCount()
		if expired || done == needed {
			return vote, true
		}
	case inst.Phase == vote:
		if expired {
			return results, true
		}
		if inst.rules.EarlyVoteClose() {
			done, needed := inst.votedCount()
			if needed > 0 && done == needed {
				return results, true
			}
		}
	}
	return "", false
}

// transition applies at most one due phase change. Only the phase timer, or the
// status path when no timer runs, may call it.
func (inst *Instance) transition(now time.Time) bool {
	next, ok := inst.due(now)
	if !ok {
		return false
	}
	_, vote, results := inst.rules.Phases()
	switch next {
	case vote:
		inst.Phase = vote
		inst.StartTime = now
		inst.Duration = inst.rules.Duration(vote)
	case results:
		res := inst.rules.Score(inst)
		for id, n := range res.Awards {
			if _, ok := inst.Scores[id]; ok {
				inst.Scores[id] += n
			}
		}
		inst.LastResult = res
		inst.Phase = results
		inst.StartTime = now
		inst.Duration = 0
	}
	return true
}

func (inst *Instance) recordSubmission(clientID string, entries []string, now time.Time) (*PlayerSubmitted, error) {
	if inst.Over {
		return nil, fmt.Errorf("%w: the game is over", ErrWrongPhase)
	}
	if !inst.inRoster(clientID) {
		return nil, fmt.Errorf("%w: %s is not playing in this game", ErrUnauthorized, clientID)
	}
	submit, _, _ := inst.rules.Phases()
	if submit == "" || inst.Phase != submit {
		return nil, fmt.Errorf("%w: cannot submit during %s", ErrWrongPhase, inst.Phase)
	}
	if err := inst.rules.CanSubmit(inst, clientID); err != nil {
		return nil, err
	}
	if _, dup := inst.Submissions[clientID]; dup {
		return nil, fmt.Errorf("%w: you already submitted", ErrDuplicateAction)
	}
	recorded, err := inst.rules.Submit(inst, clientID, entries)
	if err != nil {
		return nil, err
	}
	inst.Submissions[clientID] = &Submission{
		CandidateID: uuid.NewString(),
		ClientID:    clientID,
		Content:     recorded,
		At:          now,
	}
	done, needed := inst.submittedCount()
	return &PlayerSubmitted{
		Type:     TypePlayerSubmitted,
		Game:     inst.Kind,
		ClientID: clientID,
		Username: inst.username(clientID),
		Count:    done,
		Needed:   needed,
	}, nil
}

func (inst *Instance) recordVote(clientID string, p VotePayload) (*PlayerVoted, error) {
	if inst.Over {
		return nil, fmt.Errorf("%w: the game is over", ErrWrongPhase)
	}
	if !inst.inRoster(clientID) {
		return nil, fmt.Errorf("%w: %s is not playing in this game", ErrUnauthorized, clientID)
	}
	_, vote, _ := inst.rules.Phases()
	if inst.Phase != vote {
		return nil, fmt.Errorf("%w: cannot vote during %s", ErrWrongPhase, inst.Phase)
	}
	if err := inst.rules.CanVote(inst, clientID); err != nil {
		return nil, err
	}
	if _, dup := inst.Votes[clientID]; dup {
		return nil, fmt.Errorf("%w: you already voted", ErrDuplicateAction)
	}
	v, err := inst.rules.ResolveVote(inst, clientID, p)
	if err != nil {
		return nil, err
	}
	inst.Votes[clientID] = v
	done, needed := inst.votedCount()
	return &PlayerVoted{
		Type:   TypePlayerVoted,
		Game:   inst.Kind,
		Count:  done,
		Needed: needed,
	}, nil
}

// advance moves from results into the next round, or ends the game. The
// returned message is what the room should receive.
func (inst *Instance) advance(actorID string, now time.Time) (*AdvanceResult, interface{}, error) {
	_, _, results := inst.rules.Phases()
	if inst.Phase != results {
		return nil, nil, fmt.Errorf("%w: the round is still in %s", ErrWrongPhase, inst.Phase)
	}
	if actorID != inst.Creator {
		return nil, nil, fmt.Errorf("%w: only the room creator can advance", ErrUnauthorized)
	}
	if inst.Over {
		return nil, nil, fmt.Errorf("%w: %s", ErrPoolExhausted, inst.OverReason)
	}

	if inst.rules.GameOver(inst) {
		msg := inst.end(ReasonScoreLimit)
		return &AdvanceResult{Round: inst.Round, GameOver: true, Final: msg}, msg, nil
	}
	if err := inst.rules.NextRound(inst); err != nil {
		msg := inst.end(ReasonPoolExhausted)
		return &AdvanceResult{Round: inst.Round, GameOver: true, Final: msg}, msg, err
	}
	inst.Round++
	inst.startRound(now)
	return &AdvanceResult{Round: inst.Round}, inst.view(now, ""), nil
}

func (inst *Instance) end(reason string) *GameOver {
	inst.Over = true
	inst.OverReason = reason
	return inst.gameOverMessage()
}

// AdvanceResult reports the outcome of an accepted advance.
type AdvanceResult struct {
	Round    int       `json:"round"`
	GameOver bool      `json:"game_over"`
	Final    *GameOver `json:"final,omitempty"`
}
